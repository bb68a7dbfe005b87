package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/agent"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// fakeAgentServer accepts one realtime socket and records everything the
// client sends. Events pushed to send are forwarded to the client.
type fakeAgentServer struct {
	t *testing.T

	mu       sync.Mutex
	received []map[string]interface{}
	authz    string

	send chan interface{}
}

func newFakeAgentServer(t *testing.T) (*fakeAgentServer, *httptest.Server) {
	f := &fakeAgentServer{t: t, send: make(chan interface{}, 8)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.authz = r.Header.Get("Authorization")
		f.mu.Unlock()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		go func() {
			for msg := range f.send {
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			}
		}()
		for {
			var m map[string]interface{}
			if err := conn.ReadJSON(&m); err != nil {
				return
			}
			f.mu.Lock()
			f.received = append(f.received, m)
			f.mu.Unlock()
		}
	}))
	return f, srv
}

func (f *fakeAgentServer) waitForMessages(n int) []map[string]interface{} {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		if len(f.received) >= n {
			out := append([]map[string]interface{}(nil), f.received...)
			f.mu.Unlock()
			return out
		}
		f.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
	f.t.Fatalf("timed out waiting for %d messages", n)
	return nil
}

func dialTestClient(t *testing.T, srv *httptest.Server, ev agent.Events) *Client {
	t.Helper()
	cfg := agent.SessionConfig{
		EphemeralKey: "ek_test",
		Model:        "gpt-realtime",
		Instructions: "teach the letter A",
		Tools: []agent.ToolDef{
			{Name: "show_letter", Parameters: json.RawMessage(`{"type":"object"}`)},
		},
	}
	c, err := dial(context.Background(), srv.URL, cfg, ev)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return c
}

func TestDialSendsSessionUpdate(t *testing.T) {
	fake, srv := newFakeAgentServer(t)
	defer srv.Close()

	c := dialTestClient(t, srv, agent.Events{})
	defer c.Close()

	msgs := fake.waitForMessages(1)
	if msgs[0]["type"] != "session.update" {
		t.Fatalf("first message type = %v, want session.update", msgs[0]["type"])
	}
	session, ok := msgs[0]["session"].(map[string]interface{})
	if !ok {
		t.Fatalf("session.update without session body")
	}
	if session["instructions"] != "teach the letter A" {
		t.Errorf("instructions = %v", session["instructions"])
	}
	tools, _ := session["tools"].([]interface{})
	if len(tools) != 1 {
		t.Fatalf("got %d tools, want 1", len(tools))
	}

	fake.mu.Lock()
	authz := fake.authz
	fake.mu.Unlock()
	if authz != "Bearer ek_test" {
		t.Errorf("Authorization = %q", authz)
	}
}

func TestSendUserTextCreatesItemAndResponse(t *testing.T) {
	fake, srv := newFakeAgentServer(t)
	defer srv.Close()

	c := dialTestClient(t, srv, agent.Events{})
	defer c.Close()

	if err := c.SendUserText(context.Background(), "قل مرحبا"); err != nil {
		t.Fatalf("SendUserText: %v", err)
	}

	msgs := fake.waitForMessages(3)
	if msgs[1]["type"] != "conversation.item.create" {
		t.Fatalf("second message type = %v", msgs[1]["type"])
	}
	if msgs[2]["type"] != "response.create" {
		t.Fatalf("third message type = %v", msgs[2]["type"])
	}
}

func TestToolResultRoundTrip(t *testing.T) {
	fake, srv := newFakeAgentServer(t)
	defer srv.Close()

	var (
		mu     sync.Mutex
		callID string
		name   string
		args   string
	)
	ev := agent.Events{
		OnToolCall: func(id, n string, a json.RawMessage) {
			mu.Lock()
			callID, name, args = id, n, string(a)
			mu.Unlock()
		},
	}
	c := dialTestClient(t, srv, ev)
	defer c.Close()

	fake.send <- map[string]interface{}{
		"type":      "response.function_call_arguments.done",
		"call_id":   "call_1",
		"name":      "show_letter",
		"arguments": `{"case":"capital"}`,
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		got := callID
		mu.Unlock()
		if got != "" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("tool call never delivered")
		}
		time.Sleep(10 * time.Millisecond)
	}
	mu.Lock()
	if name != "show_letter" || !strings.Contains(args, "capital") {
		t.Errorf("tool call = %q %q", name, args)
	}
	mu.Unlock()

	if err := c.SendToolResult(context.Background(), "call_1", `{"ok":true}`); err != nil {
		t.Fatalf("SendToolResult: %v", err)
	}
	msgs := fake.waitForMessages(3)
	item, _ := msgs[1]["item"].(map[string]interface{})
	if item["type"] != "function_call_output" || item["call_id"] != "call_1" {
		t.Fatalf("unexpected tool result item: %v", item)
	}
}

func TestSpeechLifecycleEvents(t *testing.T) {
	fake, srv := newFakeAgentServer(t)
	defer srv.Close()

	var (
		mu      sync.Mutex
		started int
		ended   int
		heard   string
	)
	ev := agent.Events{
		OnAgentSpeechStarted: func() { mu.Lock(); started++; mu.Unlock() },
		OnAgentSpeechEnded:   func() { mu.Lock(); ended++; mu.Unlock() },
		OnUserTranscript:     func(s string) { mu.Lock(); heard = s; mu.Unlock() },
	}
	c := dialTestClient(t, srv, ev)
	defer c.Close()

	fake.send <- map[string]interface{}{"type": "response.created"}
	fake.send <- map[string]interface{}{"type": "response.done"}
	fake.send <- map[string]interface{}{
		"type":       "conversation.item.input_audio_transcription.completed",
		"transcript": "  نعم جاهز  ",
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		ok := started == 1 && ended == 1 && heard != ""
		mu.Unlock()
		if ok {
			break
		}
		if time.Now().After(deadline) {
			mu.Lock()
			t.Fatalf("events not delivered: started=%d ended=%d heard=%q", started, ended, heard)
		}
		time.Sleep(10 * time.Millisecond)
	}
	mu.Lock()
	if heard != "نعم جاهز" {
		t.Errorf("transcript = %q, want trimmed", heard)
	}
	mu.Unlock()
}

func TestCloseIsIdempotentAndBlocksSends(t *testing.T) {
	_, srv := newFakeAgentServer(t)
	defer srv.Close()

	c := dialTestClient(t, srv, agent.Events{})
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := c.SendUserText(context.Background(), "hi"); err != agent.ErrNotConnected {
		t.Fatalf("SendUserText after Close = %v, want ErrNotConnected", err)
	}
}

func TestSocketURL(t *testing.T) {
	got, err := socketURL("https://api.openai.com", "gpt-realtime")
	if err != nil {
		t.Fatalf("socketURL: %v", err)
	}
	if got != "wss://api.openai.com/v1/realtime?model=gpt-realtime" {
		t.Errorf("socketURL = %q", got)
	}
}
