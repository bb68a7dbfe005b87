package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotConnected is returned by operations that require an active
// realtime session when none exists.
var ErrNotConnected = errors.New("agent: not connected")

// ConnectionError wraps a failure to establish the realtime session
// (token retrieval or transport handshake).
type ConnectionError struct {
	Stage string // "credential" or "dial"
	Err   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("agent: connect failed during %s: %v", e.Stage, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ConnState is the lifecycle state of the lesson session.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
)

// TokenSource mints a fresh ephemeral credential per connection attempt.
type TokenSource interface {
	EphemeralKey(ctx context.Context) (string, error)
}

// Conn is the minimal interface to an established realtime agent
// session. Implementations deliver inbound traffic through the Events
// callbacks supplied at dial time.
type Conn interface {
	// SendUserText injects a text turn into the conversation and asks
	// the agent to respond to it aloud.
	SendUserText(ctx context.Context, text string) error
	// SendToolResult returns the output of a tool invocation to the agent.
	SendToolResult(ctx context.Context, callID, output string) error
	// SetMicEnabled mutes or unmutes the inbound audio leg without
	// tearing down the session.
	SetMicEnabled(enabled bool) error
	Close() error
}

// Events are the transport callbacks the bridge reacts to. Speech
// start/end are explicit transport events, not inferred from history.
type Events struct {
	OnAgentSpeechStarted func()
	OnAgentSpeechEnded   func()
	// OnUserTranscript delivers a finalized transcription of a student
	// utterance.
	OnUserTranscript func(text string)
	// OnAgentMessage delivers the text of what the agent said.
	OnAgentMessage func(text string)
	// OnToolCall delivers a tool invocation; the handler's result must be
	// sent back with Conn.SendToolResult.
	OnToolCall func(callID, name string, args json.RawMessage)
	OnError    func(err error)
	OnClosed   func(err error)
}

// SessionConfig is everything a Dialer needs to open a session.
type SessionConfig struct {
	EphemeralKey string
	Model        string
	Instructions string
	Tools        []ToolDef
}

// ToolDef is the schema advertised to the agent for one callable tool.
type ToolDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// Dialer opens the realtime channel. Split out as a function type so
// tests can substitute a fake transport.
type Dialer func(ctx context.Context, cfg SessionConfig, ev Events) (Conn, error)
