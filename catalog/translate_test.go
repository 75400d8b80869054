package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findTool(t *testing.T, tools []Tool, name string) Tool {
	t.Helper()
	for _, tool := range tools {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %q not found", name)
	return Tool{}
}

func TestTranslateInjectsContextProperty(t *testing.T) {
	cat := Catalog{
		Canvas: {
			{
				Name:        "READ_FILE",
				Description: "Read a file from the canvas",
				Parameters:  json.RawMessage(`{"type":"object","properties":{"path":{"type":"string"}},"required":["path"]}`),
			},
		},
	}

	tools := Translate(cat)
	require.Len(t, tools, 1)

	tool := tools[0]
	assert.Equal(t, "canvas_READ_FILE", tool.Name)
	require.Len(t, tool.InputSchema.Props, 2)
	assert.Equal(t, ContextProperty, tool.InputSchema.Props[0].Name)
	assert.Equal(t, "path", tool.InputSchema.Props[1].Name)
	assert.Equal(t, []string{ContextProperty, "path"}, tool.InputSchema.Required)
}

func TestTranslateLeavesDeclaredContextPropertyAlone(t *testing.T) {
	src := `{"type":"object","properties":{"path":{"type":"string"},"projectId":{"type":"string","description":"backend-declared"}},"required":["path","projectId"]}`
	cat := Catalog{
		Canvas: {{Name: "READ_FILE", Parameters: json.RawMessage(src)}},
	}

	tools := Translate(cat)
	require.Len(t, tools, 1)

	tool := tools[0]
	require.Len(t, tool.InputSchema.Props, 2)
	// No duplicate insertion, no reordering.
	assert.Equal(t, "path", tool.InputSchema.Props[0].Name)
	assert.Equal(t, "projectId", tool.InputSchema.Props[1].Name)
	assert.Equal(t, []string{"path", "projectId"}, tool.InputSchema.Required)
}

func TestTranslateIsIdempotentOnDeclaredContext(t *testing.T) {
	src := `{"type":"object","properties":{"projectId":{"type":"string"}},"required":["projectId"]}`
	cat := Catalog{
		MongoDB: {{Name: "QUERY", Parameters: json.RawMessage(src)}},
	}

	first := Translate(cat)
	require.Len(t, first, 1)
	out, err := json.Marshal(first[0].InputSchema)
	require.NoError(t, err)

	again := Catalog{
		MongoDB: {{Name: "QUERY", Parameters: out}},
	}
	second := Translate(again)
	require.Len(t, second, 1)
	out2, err := json.Marshal(second[0].InputSchema)
	require.NoError(t, err)

	assert.Equal(t, string(out), string(out2))
}

func TestTranslateStripsClosedSchemaFlag(t *testing.T) {
	for _, flag := range []string{"true", "false"} {
		cat := Catalog{
			Project: {{Name: "CREATE", Parameters: json.RawMessage(`{"type":"object","properties":{"name":{"type":"string"}},"additionalProperties":` + flag + `}`)}},
		}
		tools := Translate(cat)
		require.Len(t, tools, 1)

		out, err := json.Marshal(tools[0].InputSchema)
		require.NoError(t, err)
		assert.NotContains(t, string(out), "additionalProperties", "flag value %s", flag)
	}
}

func TestTranslateNoInjectionForProjectCategory(t *testing.T) {
	cat := Catalog{
		Project: {{Name: "LIST", Description: "List projects"}},
	}
	tools := Translate(cat)
	require.Len(t, tools, 1)

	tool := tools[0]
	assert.Equal(t, "project_LIST", tool.Name)
	assert.Empty(t, tool.InputSchema.Props)
	assert.Empty(t, tool.InputSchema.Required)
}

func TestTranslateEndToEnd(t *testing.T) {
	cat := Catalog{
		Project: {{Name: "LIST", Description: "List projects"}},
		Canvas: {{
			Name:        "READ_FILE",
			Description: "Read a canvas file",
			Parameters:  json.RawMessage(`{"type":"object","properties":{"path":{"type":"string"}},"required":["path"]}`),
		}},
	}

	tools := Translate(cat)
	require.Len(t, tools, 2)

	list := findTool(t, tools, "project_LIST")
	assert.Empty(t, list.InputSchema.Props)

	read := findTool(t, tools, "canvas_READ_FILE")
	require.Len(t, read.InputSchema.Props, 2)
	assert.Equal(t, "projectId", read.InputSchema.Props[0].Name)
	assert.Equal(t, []string{"projectId", "path"}, read.InputSchema.Required)
}

func TestTranslateSkipsMalformedSchemas(t *testing.T) {
	cat := Catalog{
		Canvas: {
			{Name: "BROKEN", Parameters: json.RawMessage(`{"type":`)},
			{Name: "OK", Parameters: json.RawMessage(`{"type":"object"}`)},
		},
	}
	tools := Translate(cat)
	require.Len(t, tools, 1)
	assert.Equal(t, "canvas_OK", tools[0].Name)
}

func TestTranslateEmptyCatalog(t *testing.T) {
	assert.Empty(t, Translate(Catalog{}))
	assert.Empty(t, Translate(nil))
}

func TestTranslateSetsTitle(t *testing.T) {
	cat := Catalog{
		System: {{Name: "RESTART_SERVICE", Parameters: json.RawMessage(`{"type":"object"}`)}},
	}
	tools := Translate(cat)
	require.Len(t, tools, 1)
	assert.Equal(t, "Restart Service", tools[0].Title)
}
