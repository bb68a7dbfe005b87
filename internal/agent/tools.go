package agent

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ToolFunc executes one tool call. The returned string is the payload
// handed back to the agent; an error becomes an error payload instead.
type ToolFunc func(args json.RawMessage) (string, error)

// ToolRegistry maps tool names to handlers and carries the definitions
// advertised to the agent at session setup.
type ToolRegistry struct {
	mu       sync.RWMutex
	defs     []ToolDef
	handlers map[string]ToolFunc
}

func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{handlers: make(map[string]ToolFunc)}
}

// Register adds a tool. Registering the same name twice replaces the
// handler but keeps a single definition.
func (r *ToolRegistry) Register(def ToolDef, fn ToolFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[def.Name]; !exists {
		r.defs = append(r.defs, def)
	}
	r.handlers[def.Name] = fn
}

// Defs returns the advertised tool definitions in registration order.
func (r *ToolRegistry) Defs() []ToolDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ToolDef, len(r.defs))
	copy(out, r.defs)
	return out
}

// Dispatch runs the named tool and always produces a JSON payload, so a
// misbehaving call cannot stall the agent's turn.
func (r *ToolRegistry) Dispatch(name string, args json.RawMessage) string {
	r.mu.RLock()
	fn, ok := r.handlers[name]
	r.mu.RUnlock()
	if !ok {
		log.Printf("tools: unknown tool %q", name)
		return errorPayload(fmt.Sprintf("unknown tool %q", name))
	}
	result, err := fn(args)
	if err != nil {
		log.Printf("tools: %s: %v", name, err)
		return errorPayload(err.Error())
	}
	if result == "" {
		return `{"ok":true}`
	}
	return result
}

func errorPayload(msg string) string {
	out, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return `{"error":"internal"}`
	}
	return string(out)
}

var paramValidator = validator.New(validator.WithRequiredStructEnabled())

// BindParams unmarshals tool arguments into a tagged params struct and
// validates it. Empty args are treated as an empty object so tools with
// all-optional parameters accept a bare call.
func BindParams(args json.RawMessage, out interface{}) error {
	if len(args) > 0 {
		if err := json.Unmarshal(args, out); err != nil {
			return fmt.Errorf("decode params: %w", err)
		}
	}
	if err := paramValidator.Struct(out); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}
