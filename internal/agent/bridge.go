package agent

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Timings bounds the waits the bridge performs. Tests shrink these so
// serialization behavior can be observed without real delays.
type Timings struct {
	// SpeakGrace is the settle delay after the agent stops speaking
	// before the next utterance is sent.
	SpeakGrace time.Duration
	// SpeakBail caps how long Speak waits for the agent to go quiet
	// before sending anyway.
	SpeakBail time.Duration
	// DefaultWait is used when AwaitUserSpeech gets a zero timeout.
	DefaultWait time.Duration
	// Poll is the interval for checking the speaking flag.
	Poll time.Duration
}

// DefaultTimings matches the pacing a young student can follow.
func DefaultTimings() Timings {
	return Timings{
		SpeakGrace:  300 * time.Millisecond,
		SpeakBail:   1800 * time.Millisecond,
		DefaultWait: 8 * time.Second,
		Poll:        20 * time.Millisecond,
	}
}

// Snapshot is a point-in-time view of the bridge for status endpoints.
type Snapshot struct {
	State       ConnState `json:"state"`
	Speaking    bool      `json:"speaking"`
	MicEnabled  bool      `json:"micEnabled"`
	PlaybackURL string    `json:"playbackUrl,omitempty"`
	LastMessage string    `json:"lastMessage,omitempty"`
	LastError   string    `json:"lastError,omitempty"`
}

// Bridge owns the lifetime of one agent connection and serializes all
// speech directed at the student. It is safe for concurrent use.
type Bridge struct {
	tokens       TokenSource
	dial         Dialer
	model        string
	instructions func(letter string) string
	tools        *ToolRegistry
	timings      Timings

	mu          sync.Mutex
	state       ConnState
	conn        Conn
	speaking    bool
	micEnabled  bool
	playbackURL string
	lastMessage string
	lastError   string
	waitSlot    chan string
}

// NewBridge wires a bridge from its collaborators. instructions receives
// the current letter and returns the system prompt for the session.
func NewBridge(tokens TokenSource, dial Dialer, model string, instructions func(string) string, tools *ToolRegistry, timings Timings) *Bridge {
	if timings.Poll <= 0 {
		timings = DefaultTimings()
	}
	return &Bridge{
		tokens:       tokens,
		dial:         dial,
		model:        model,
		instructions: instructions,
		tools:        tools,
		timings:      timings,
		state:        StateDisconnected,
		micEnabled:   true,
	}
}

// Connect mints an ephemeral credential and dials the agent. A failure
// at any stage tears down whatever was established and reports the
// stage that failed.
func (b *Bridge) Connect(ctx context.Context, letter string) error {
	b.mu.Lock()
	if b.state != StateDisconnected {
		b.mu.Unlock()
		return nil
	}
	b.state = StateConnecting
	b.mu.Unlock()

	key, err := b.tokens.EphemeralKey(ctx)
	if err != nil {
		b.setDisconnected()
		return &ConnectionError{Stage: "credential", Err: err}
	}

	cfg := SessionConfig{
		EphemeralKey: key,
		Model:        b.model,
		Instructions: b.instructions(letter),
		Tools:        b.tools.Defs(),
	}
	conn, err := b.dial(ctx, cfg, Events{
		OnAgentSpeechStarted: b.onSpeechStarted,
		OnAgentSpeechEnded:   b.onSpeechEnded,
		OnUserTranscript:     b.onTranscript,
		OnAgentMessage:       b.onMessage,
		OnToolCall:           b.onToolCall,
		OnError:              b.onError,
		OnClosed:             b.onClosed,
	})
	if err != nil {
		b.setDisconnected()
		return &ConnectionError{Stage: "dial", Err: err}
	}

	b.mu.Lock()
	b.conn = conn
	b.state = StateConnected
	b.speaking = false
	b.mu.Unlock()
	log.Printf("agent: connected, letter hint %q", letter)
	return nil
}

// Disconnect closes the connection and resolves any pending speech wait
// with an empty transcript. Calling it when already disconnected is a
// no-op.
func (b *Bridge) Disconnect() {
	b.mu.Lock()
	conn := b.conn
	b.conn = nil
	b.state = StateDisconnected
	b.speaking = false
	b.playbackURL = ""
	slot := b.waitSlot
	b.waitSlot = nil
	b.mu.Unlock()

	if slot != nil {
		slot <- ""
	}
	if conn != nil {
		_ = conn.Close()
		log.Println("agent: disconnected")
	}
}

// Speak sends text for the agent to voice, waiting first for any current
// agent speech or recording playback to finish. The wait is bounded; if
// the agent never goes quiet the text is sent anyway.
func (b *Bridge) Speak(ctx context.Context, text string) error {
	b.mu.Lock()
	if b.state != StateConnected || b.conn == nil {
		b.mu.Unlock()
		return ErrNotConnected
	}
	conn := b.conn
	b.mu.Unlock()

	b.waitQuiet(ctx)
	return conn.SendUserText(ctx, text)
}

func (b *Bridge) waitQuiet(ctx context.Context) {
	if !b.busy() {
		return
	}
	deadline := time.Now().Add(b.timings.SpeakBail)
	for time.Now().Before(deadline) {
		if !b.busy() {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(b.timings.Poll):
		}
	}
	// Let the tail of the previous utterance land before speaking over it.
	select {
	case <-ctx.Done():
	case <-time.After(b.timings.SpeakGrace):
	}
}

func (b *Bridge) busy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.speaking || b.playbackURL != ""
}

// AwaitUserSpeech blocks until the student says something or the timeout
// passes. Only one wait is live at a time: a newer call supersedes the
// older one, which resolves immediately with an empty transcript. A
// timeout also resolves to an empty transcript, never an error.
func (b *Bridge) AwaitUserSpeech(ctx context.Context, timeout time.Duration) string {
	if timeout <= 0 {
		timeout = b.timings.DefaultWait
	}
	slot := make(chan string, 1)

	b.mu.Lock()
	prev := b.waitSlot
	b.waitSlot = slot
	b.mu.Unlock()
	if prev != nil {
		prev <- ""
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case transcript := <-slot:
		return transcript
	case <-timer.C:
	case <-ctx.Done():
	}

	b.mu.Lock()
	if b.waitSlot == slot {
		b.waitSlot = nil
	}
	b.mu.Unlock()
	// Drain a transcript that raced the timeout.
	select {
	case transcript := <-slot:
		return transcript
	default:
	}
	return ""
}

// SetMicEnabled toggles whether student audio reaches the agent.
func (b *Bridge) SetMicEnabled(enabled bool) error {
	b.mu.Lock()
	conn := b.conn
	if conn == nil {
		b.mu.Unlock()
		return ErrNotConnected
	}
	b.micEnabled = enabled
	b.mu.Unlock()
	return conn.SetMicEnabled(enabled)
}

// PlayRecording marks a letter sound recording as playing. While the
// mark is set, Speak holds back so the recording is not talked over.
func (b *Bridge) PlayRecording(url string) {
	b.mu.Lock()
	b.playbackURL = url
	b.mu.Unlock()
}

// StopRecording clears the playback mark.
func (b *Bridge) StopRecording() {
	b.mu.Lock()
	b.playbackURL = ""
	b.mu.Unlock()
}

// State reports the current connection snapshot.
func (b *Bridge) State() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		State:       b.state,
		Speaking:    b.speaking,
		MicEnabled:  b.micEnabled,
		PlaybackURL: b.playbackURL,
		LastMessage: b.lastMessage,
		LastError:   b.lastError,
	}
}

func (b *Bridge) onMessage(text string) {
	b.mu.Lock()
	b.lastMessage = text
	b.mu.Unlock()
}

func (b *Bridge) onError(err error) {
	log.Printf("agent: %v", err)
	b.mu.Lock()
	b.lastError = err.Error()
	b.mu.Unlock()
}

func (b *Bridge) setDisconnected() {
	b.mu.Lock()
	b.state = StateDisconnected
	b.conn = nil
	b.mu.Unlock()
}

func (b *Bridge) onSpeechStarted() {
	b.mu.Lock()
	b.speaking = true
	b.mu.Unlock()
}

func (b *Bridge) onSpeechEnded() {
	b.mu.Lock()
	b.speaking = false
	b.mu.Unlock()
}

func (b *Bridge) onTranscript(text string) {
	b.mu.Lock()
	slot := b.waitSlot
	b.waitSlot = nil
	b.mu.Unlock()
	if slot != nil {
		slot <- text
		return
	}
	log.Printf("agent: unclaimed transcript %q", text)
}

func (b *Bridge) onToolCall(callID, name string, args json.RawMessage) {
	go func() {
		result := b.tools.Dispatch(name, args)
		b.mu.Lock()
		conn := b.conn
		b.mu.Unlock()
		if conn == nil {
			return
		}
		if err := conn.SendToolResult(context.Background(), callID, result); err != nil {
			log.Printf("agent: tool result for %s: %v", name, err)
		}
	}()
}

func (b *Bridge) onClosed(err error) {
	if err != nil {
		log.Printf("agent: connection lost: %v", err)
	}
	b.Disconnect()
}
