package mcp

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/craftstudio/craftstudio-mcp/catalog"
	"github.com/craftstudio/craftstudio-mcp/dispatch"
)

// ToolSource supplies the tools the server exposes and executes calls
// against them. ListTools must not fail: on any upstream problem it
// returns an empty slice. Invoke must not fail either; every failure
// is reported inside the returned envelope.
type ToolSource interface {
	ListTools(ctx context.Context) []catalog.Tool
	Invoke(ctx context.Context, name string, args map[string]any) dispatch.Envelope
}

// schemaCache remembers the input schema of every tool seen in the most
// recent tools/list response so tools/call can validate arguments before
// dispatching. It is safe for concurrent use; the server refreshes it
// whenever the tool list is served.
type schemaCache struct {
	mu      sync.Mutex
	schemas map[string][]byte
}

func newSchemaCache() *schemaCache {
	return &schemaCache{schemas: make(map[string][]byte)}
}

func (c *schemaCache) update(tools []ToolDefinition) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.schemas = make(map[string][]byte, len(tools))
	for _, tool := range tools {
		c.schemas[tool.Name] = tool.InputSchema
	}
}

// validate checks args against the cached schema for name. Tools the
// cache has not seen pass unchecked; the dispatcher reports unknown
// names on its own. A schema that itself fails to compile also passes,
// since rejecting the call would hide a server-side bug behind a
// client-facing error.
func (c *schemaCache) validate(name string, args map[string]any) error {
	c.mu.Lock()
	raw, ok := c.schemas[name]
	c.mu.Unlock()
	if !ok {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(raw),
		gojsonschema.NewGoLoader(args),
	)
	if err != nil || result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("invalid arguments for %s: %s", name, strings.Join(problems, "; "))
}
