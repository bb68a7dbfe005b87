// Package realtime implements the WebSocket transport to the hosted
// conversational voice agent. It is the concrete implementation of the
// agent.Conn contract; all lesson logic lives above it.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/agent"
)

// Client is one live realtime session over WebSocket.
type Client struct {
	conn   *websocket.Conn
	events agent.Events

	mu        sync.Mutex
	writeMu   sync.Mutex
	connected bool
	micOn     bool
	stopCh    chan struct{}
	closeOnce sync.Once
}

// Dialer returns an agent.Dialer bound to the given API base URL.
// baseURL uses the https scheme; it is rewritten to wss for the socket.
func Dialer(baseURL string) agent.Dialer {
	return func(ctx context.Context, cfg agent.SessionConfig, ev agent.Events) (agent.Conn, error) {
		return dial(ctx, baseURL, cfg, ev)
	}
}

func dial(ctx context.Context, baseURL string, cfg agent.SessionConfig, ev agent.Events) (*Client, error) {
	if cfg.EphemeralKey == "" {
		return nil, fmt.Errorf("realtime: ephemeral key is empty")
	}

	wsURL, err := socketURL(baseURL, cfg.Model)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+cfg.EphemeralKey)
	headers.Set("OpenAI-Beta", "realtime=v1")

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	log.Printf("realtime: connecting to %s", wsURL)
	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			log.Printf("realtime: handshake failed with status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("realtime: dial: %w", err)
	}

	c := &Client{
		conn:      conn,
		events:    ev,
		connected: true,
		micOn:     true,
		stopCh:    make(chan struct{}),
	}

	if err := c.configureSession(cfg); err != nil {
		_ = c.Close()
		return nil, err
	}

	go c.readLoop()
	return c, nil
}

func socketURL(baseURL, model string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("realtime: invalid base url %q: %w", baseURL, err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/v1/realtime"
	q := u.Query()
	q.Set("model", model)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// configureSession installs instructions, tool definitions and semantic
// VAD turn detection before any conversation traffic flows.
func (c *Client) configureSession(cfg agent.SessionConfig) error {
	tools := make([]sessionTool, 0, len(cfg.Tools))
	for _, t := range cfg.Tools {
		tools = append(tools, sessionTool{
			Type:        "function",
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		})
	}
	update := sessionUpdateEvent{
		Type: "session.update",
		Session: sessionPatch{
			Instructions: cfg.Instructions,
			Tools:        tools,
			TurnDetection: &turnDetection{
				Type:              "semantic_vad",
				Eagerness:         "medium",
				CreateResponse:    true,
				InterruptResponse: true,
			},
			InputAudioTranscription: &transcriptionSpec{Model: "whisper-1"},
		},
	}
	return c.writeJSON(update)
}

// SendUserText injects a text turn and requests a spoken response.
func (c *Client) SendUserText(ctx context.Context, text string) error {
	if !c.isConnected() {
		return agent.ErrNotConnected
	}
	item := itemCreateEvent{
		Type: "conversation.item.create",
		Item: conversationItem{
			Type: "message",
			Role: "user",
			Content: []itemContent{
				{Type: "input_text", Text: text},
			},
		},
	}
	if err := c.writeJSON(item); err != nil {
		return err
	}
	return c.writeJSON(responseCreateEvent{Type: "response.create"})
}

// SendToolResult returns a tool output to the agent and lets it continue
// the turn it paused for the call.
func (c *Client) SendToolResult(ctx context.Context, callID, output string) error {
	if !c.isConnected() {
		return agent.ErrNotConnected
	}
	item := itemCreateEvent{
		Type: "conversation.item.create",
		Item: conversationItem{
			Type:   "function_call_output",
			CallID: callID,
			Output: output,
		},
	}
	if err := c.writeJSON(item); err != nil {
		return err
	}
	return c.writeJSON(responseCreateEvent{Type: "response.create"})
}

// SetMicEnabled toggles inbound audio without tearing down the session.
// The browser owns the capture tracks; the server mirrors the toggle so
// the agent stops receiving buffered audio while muted.
func (c *Client) SetMicEnabled(enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return agent.ErrNotConnected
	}
	c.micOn = enabled
	if !enabled {
		return c.writeJSON(clearAudioEvent{Type: "input_audio_buffer.clear"})
	}
	return nil
}

// Close is idempotent and releases the socket.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		close(c.stopCh)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
			time.Now().Add(time.Second))
		_ = c.conn.Close()
		log.Println("realtime: connection closed")
	})
	return nil
}

func (c *Client) isConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Client) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// readLoop decodes server events until the socket closes.
func (c *Client) readLoop() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("realtime: recovered from panic in readLoop: %v", r)
		}
	}()
	for {
		select {
		case <-c.stopCh:
			return
		default:
		}
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			wasConnected := c.connected
			c.connected = false
			c.mu.Unlock()
			if wasConnected && c.events.OnClosed != nil {
				c.events.OnClosed(err)
			}
			return
		}
		c.processEvent(message)
	}
}

func (c *Client) processEvent(message []byte) {
	var env serverEnvelope
	if err := json.Unmarshal(message, &env); err != nil {
		log.Printf("realtime: undecodable event: %v", err)
		return
	}
	switch env.Type {
	case "session.created", "session.updated":
		log.Printf("realtime: %s", env.Type)
	case "response.created":
		if c.events.OnAgentSpeechStarted != nil {
			c.events.OnAgentSpeechStarted()
		}
	case "response.done":
		if c.events.OnAgentSpeechEnded != nil {
			c.events.OnAgentSpeechEnded()
		}
	case "response.output_text.done", "response.audio_transcript.done":
		if env.Text != "" && c.events.OnAgentMessage != nil {
			c.events.OnAgentMessage(env.Text)
		} else if env.Transcript != "" && c.events.OnAgentMessage != nil {
			c.events.OnAgentMessage(env.Transcript)
		}
	case "conversation.item.input_audio_transcription.completed":
		if c.events.OnUserTranscript != nil {
			c.events.OnUserTranscript(strings.TrimSpace(env.Transcript))
		}
	case "response.function_call_arguments.done":
		if c.events.OnToolCall != nil {
			c.events.OnToolCall(env.CallID, env.Name, env.Arguments)
		}
	case "error":
		if c.events.OnError != nil {
			c.events.OnError(fmt.Errorf("realtime: server error: %s", env.Error.Message))
		}
	default:
		// High-volume delta events (audio chunks, partial text) are
		// handled by the browser leg, not the control plane.
	}
}
