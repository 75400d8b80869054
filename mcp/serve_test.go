package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftstudio/craftstudio-mcp/catalog"
)

func TestServe(t *testing.T) {
	source := &stubSource{tools: []catalog.Tool{listTool("canvas_LIST")}}
	server, err := NewServer(source, Implementation{Name: "test", Version: "1.0"})
	require.NoError(t, err)

	// Build input with multiple JSON-RPC messages
	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-11-25","clientInfo":{"name":"test","version":"1.0"},"capabilities":{}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"canvas_LIST","arguments":{"query":"recent"}}}`,
	}, "\n")

	in := strings.NewReader(input)
	out := &bytes.Buffer{}

	err = server.Serve(context.Background(), in, out)
	require.NoError(t, err)

	// Parse the output - should have 4 responses (no response for notification)
	decoder := json.NewDecoder(out)
	var responses []Response
	for decoder.More() {
		var resp Response
		require.NoError(t, decoder.Decode(&resp))
		responses = append(responses, resp)
	}

	require.Len(t, responses, 4)

	// Check initialize response
	assert.Equal(t, json.RawMessage("1"), responses[0].ID)
	assert.Nil(t, responses[0].Error)

	// Check ping response
	assert.Equal(t, json.RawMessage("2"), responses[1].ID)
	assert.Nil(t, responses[1].Error)

	// Check tools/list response
	assert.Equal(t, json.RawMessage("3"), responses[2].ID)
	assert.Nil(t, responses[2].Error)
	listResult, ok := responses[2].Result.(map[string]any)
	require.True(t, ok)
	tools, ok := listResult["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 1)

	// Check tools/call response
	assert.Equal(t, json.RawMessage("4"), responses[3].ID)
	assert.Nil(t, responses[3].Error)
	callResult, ok := responses[3].Result.(map[string]any)
	require.True(t, ok)
	content, ok := callResult["content"].([]any)
	require.True(t, ok)
	require.Len(t, content, 1)

	require.Len(t, source.recorded(), 1)
}

func TestServeNilChecks(t *testing.T) {
	server, err := NewServer(&stubSource{}, Implementation{Name: "test", Version: "1.0"})
	require.NoError(t, err)

	require.Error(t, server.Serve(context.Background(), nil, &bytes.Buffer{}))
	require.Error(t, server.Serve(context.Background(), strings.NewReader(""), nil))

	var nilServer *Server
	require.Error(t, nilServer.Serve(context.Background(), strings.NewReader(""), &bytes.Buffer{}))
}

func TestServeParseError(t *testing.T) {
	server, err := NewServer(&stubSource{}, Implementation{Name: "test", Version: "1.0"})
	require.NoError(t, err)

	in := strings.NewReader("not-json")
	out := &bytes.Buffer{}

	err = server.Serve(context.Background(), in, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode failed")

	// Should still have written an error response
	var resp Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, errParse, resp.Error.Code)
}

func TestServeContextCancellation(t *testing.T) {
	server, err := NewServer(&stubSource{}, Implementation{Name: "test", Version: "1.0"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	// Use a reader that blocks forever (would hang without context cancellation)
	in := &blockingReader{}
	out := &bytes.Buffer{}

	err = server.Serve(ctx, in, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context canceled")
}

// blockingReader is a reader that never returns data, used to test context cancellation
type blockingReader struct{}

func (b *blockingReader) Read(p []byte) (n int, err error) {
	// Block forever - this simulates waiting for input that never comes
	select {}
}

func TestServeWriteFailure(t *testing.T) {
	server, err := NewServer(&stubSource{}, Implementation{Name: "test", Version: "1.0"})
	require.NoError(t, err)

	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	out := &failingWriter{}

	err = server.Serve(context.Background(), in, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing response")
}

type failingWriter struct{}

func (f *failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("write failed")
}
