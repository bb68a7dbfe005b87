package lesson

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Ibrahem-Khaled/smart-letter-guide/internal/agent"
)

func registeredTools(t *testing.T) (*Controller, *agent.ToolRegistry) {
	t.Helper()
	c, _ := newTestController()
	reg := agent.NewToolRegistry()
	c.RegisterTools(reg)
	return c, reg
}

func TestUpdateRepetitionCountSetsAbsoluteValue(t *testing.T) {
	c, reg := registeredTools(t)

	out := reg.Dispatch("update_repetition_count", json.RawMessage(`{"letter":"a","count":4}`))
	if out != `{"count":4}` {
		t.Fatalf("output = %q", out)
	}
	if n := c.RepetitionCount("A"); n != 4 {
		t.Fatalf("counter = %d, want 4", n)
	}

	// The count is a position, not an increment.
	reg.Dispatch("update_repetition_count", json.RawMessage(`{"letter":"a","count":2}`))
	if n := c.RepetitionCount("A"); n != 2 {
		t.Fatalf("counter = %d, want 2", n)
	}

	if out := reg.Dispatch("update_repetition_count", json.RawMessage(`{"letter":"a","count":9}`)); !strings.Contains(out, "error") {
		t.Fatalf("out-of-range count accepted: %q", out)
	}
	if out := reg.Dispatch("update_repetition_count", json.RawMessage(`{"count":3}`)); !strings.Contains(out, "error") {
		t.Fatalf("missing letter accepted: %q", out)
	}
}

func TestResetRepetitionCountZeroesLetter(t *testing.T) {
	c, reg := registeredTools(t)

	c.SetRepetitionCount("B", 3)
	if out := reg.Dispatch("reset_repetition_count", json.RawMessage(`{"letter":"b"}`)); strings.Contains(out, "error") {
		t.Fatalf("reset failed: %q", out)
	}
	if n := c.RepetitionCount("B"); n != 0 {
		t.Fatalf("counter = %d after reset", n)
	}
}

func TestSetRepetitionCountClamps(t *testing.T) {
	c, _ := newTestController()
	if n := c.SetRepetitionCount("A", 9); n != successesNeeded {
		t.Fatalf("over-set = %d, want %d", n, successesNeeded)
	}
	if n := c.SetRepetitionCount("A", -1); n != 0 {
		t.Fatalf("under-set = %d, want 0", n)
	}
}
