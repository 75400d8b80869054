package mcp

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/craftstudio/craftstudio-mcp/catalog"
	"github.com/craftstudio/craftstudio-mcp/dispatch"
	"github.com/craftstudio/craftstudio-mcp/schema"
)

// stubSource is a ToolSource with a fixed tool list and a pluggable
// invoke function. It records every invocation for assertions.
type stubSource struct {
	tools  []catalog.Tool
	invoke func(ctx context.Context, name string, args map[string]any) dispatch.Envelope

	mu    sync.Mutex
	calls []stubCall
}

type stubCall struct {
	name string
	args map[string]any
}

func (s *stubSource) ListTools(ctx context.Context) []catalog.Tool {
	return s.tools
}

func (s *stubSource) Invoke(ctx context.Context, name string, args map[string]any) dispatch.Envelope {
	s.mu.Lock()
	s.calls = append(s.calls, stubCall{name: name, args: args})
	s.mu.Unlock()

	if s.invoke != nil {
		return s.invoke(ctx, name, args)
	}
	return dispatch.Envelope{
		Content: []dispatch.ContentBlock{{Type: "text", Text: `{"ok":true}`}},
		Outcome: dispatch.OutcomeSuccess,
	}
}

func (s *stubSource) recorded() []stubCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]stubCall(nil), s.calls...)
}

// listTool builds a tool whose schema requires a single string "query"
// property, enough to exercise argument validation.
func listTool(name string) catalog.Tool {
	obj := schema.NewObject()
	obj.Props = append(obj.Props, schema.Property{
		Name:  "query",
		Value: schema.StringProperty("search expression"),
	})
	obj.Required = []string{"query"}

	return catalog.Tool{
		Name:        name,
		Title:       "List",
		Description: "lists things",
		InputSchema: obj,
	}
}

func mustJSON(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}
