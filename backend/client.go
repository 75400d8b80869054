// Package backend is the HTTP client for the CraftStudio platform API.
// It covers the four collaborator calls the gateway needs: credential
// validation, catalog fetch, the unified execute entry point, and the
// direct per-endpoint entry point used by the project category.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/craftstudio/craftstudio-mcp/catalog"
)

const defaultTimeout = 120 * time.Second

// Client talks to the CraftStudio backend API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a backend client. A zero timeout falls back to the
// default.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Validation is the result of a credential check.
type Validation struct {
	Valid    bool   `json:"valid"`
	Identity string `json:"identity,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// ValidateCredential checks the API key with the backend and returns
// the resolved identity on success.
func (c *Client) ValidateCredential(ctx context.Context, secret string) (Validation, error) {
	body := map[string]string{"apiKey": secret}
	raw, err := c.post(ctx, "/v1/auth/validate", body, "")
	if err != nil {
		return Validation{}, err
	}
	var v Validation
	if err := json.Unmarshal(raw, &v); err != nil {
		return Validation{}, fmt.Errorf("decode validation response: %w", err)
	}
	return v, nil
}

// FetchCatalog retrieves the backend's action catalog grouped by
// category.
func (c *Client) FetchCatalog(ctx context.Context) (catalog.Catalog, error) {
	raw, err := c.get(ctx, "/v1/actions")
	if err != nil {
		return nil, err
	}
	var cat catalog.Catalog
	if err := json.Unmarshal(raw, &cat); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return cat, nil
}

// ExecuteUnified forwards an action to the backend's single execution
// entry point. A structured backend failure comes back as *Error.
func (c *Client) ExecuteUnified(ctx context.Context, category, action string, params map[string]any, identity string) (json.RawMessage, error) {
	body := map[string]any{
		"category": category,
		"action":   action,
		"params":   params,
	}
	return c.post(ctx, "/v1/execute", body, identity)
}

// ExecuteDirect calls a specific backend endpoint, used by categories
// whose actions resolve through a static endpoint table.
func (c *Client) ExecuteDirect(ctx context.Context, endpoint string, params map[string]any, identity string) (json.RawMessage, error) {
	return c.post(ctx, endpoint, params, identity)
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return c.do(req, "")
}

func (c *Client) post(ctx context.Context, path string, body any, identity string) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, identity)
}

func (c *Client) do(req *http.Request, identity string) (json.RawMessage, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if identity != "" {
		req.Header.Set("X-CraftStudio-Identity", identity)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read backend response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, decodeError(resp.StatusCode, raw)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode backend response: %w", err)
	}
	if envelope.Data == nil {
		return json.RawMessage("null"), nil
	}
	return envelope.Data, nil
}

// decodeError turns a non-2xx body into a structured *Error. Bodies
// that don't parse fall back to the HTTP status.
func decodeError(status int, raw []byte) error {
	var envelope struct {
		Error *Error `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil && envelope.Error.Code != 0 {
		return envelope.Error
	}

	var direct Error
	if err := json.Unmarshal(raw, &direct); err == nil && direct.Code != 0 {
		return &direct
	}

	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Code: status, Message: msg}
}
