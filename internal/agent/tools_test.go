package agent

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestDispatchUnknownTool(t *testing.T) {
	reg := NewToolRegistry()
	got := reg.Dispatch("nope", nil)
	if !strings.Contains(got, "unknown tool") {
		t.Fatalf("payload = %q", got)
	}
}

func TestDispatchWrapsErrors(t *testing.T) {
	reg := NewToolRegistry()
	reg.Register(ToolDef{Name: "boom"}, func(json.RawMessage) (string, error) {
		return "", errors.New("kaput")
	})
	got := reg.Dispatch("boom", nil)
	var payload map[string]string
	if err := json.Unmarshal([]byte(got), &payload); err != nil {
		t.Fatalf("payload not JSON: %q", got)
	}
	if payload["error"] != "kaput" {
		t.Fatalf("error = %q", payload["error"])
	}
}

func TestDispatchDefaultsToOK(t *testing.T) {
	reg := NewToolRegistry()
	reg.Register(ToolDef{Name: "noop"}, func(json.RawMessage) (string, error) {
		return "", nil
	})
	if got := reg.Dispatch("noop", nil); got != `{"ok":true}` {
		t.Fatalf("payload = %q", got)
	}
}

func TestRegisterReplacesHandlerKeepsOneDef(t *testing.T) {
	reg := NewToolRegistry()
	reg.Register(ToolDef{Name: "x"}, func(json.RawMessage) (string, error) { return `1`, nil })
	reg.Register(ToolDef{Name: "x"}, func(json.RawMessage) (string, error) { return `2`, nil })
	if len(reg.Defs()) != 1 {
		t.Fatalf("defs = %d, want 1", len(reg.Defs()))
	}
	if got := reg.Dispatch("x", nil); got != `2` {
		t.Fatalf("dispatch = %q", got)
	}
}

func TestBindParams(t *testing.T) {
	type params struct {
		TimeoutMs int `json:"timeoutMs" validate:"required,min=1000,max=60000"`
	}

	var p params
	if err := BindParams(json.RawMessage(`{"timeoutMs":5000}`), &p); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}
	if p.TimeoutMs != 5000 {
		t.Fatalf("timeoutMs = %d", p.TimeoutMs)
	}

	var bad params
	if err := BindParams(json.RawMessage(`{"timeoutMs":100}`), &bad); err == nil {
		t.Fatal("out-of-range timeout accepted")
	}
	var missing params
	if err := BindParams(nil, &missing); err == nil {
		t.Fatal("missing required field accepted")
	}
}
