// Package dispatch routes tool invocations to the backend. A tool name
// is split into category and action on the first underscore only, the
// category picks the backend entry point from a strategy table, and
// every outcome — success, generic failure, or the reserved
// insufficient-balance condition — is folded into a uniform response
// envelope. No retries happen here; after a payment-required response
// the caller settles out of band and invokes again.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/craftstudio/craftstudio-mcp/backend"
	"github.com/craftstudio/craftstudio-mcp/catalog"
	"github.com/craftstudio/craftstudio-mcp/payment"
)

// Executor is the backend collaborator that runs actions.
type Executor interface {
	ExecuteUnified(ctx context.Context, category, action string, params map[string]any, identity string) (json.RawMessage, error)
	ExecuteDirect(ctx context.Context, endpoint string, params map[string]any, identity string) (json.RawMessage, error)
}

// ContentBlock is one piece of envelope content.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Envelope outcomes, for observability only. They never cross the wire.
const (
	OutcomeSuccess         = "success"
	OutcomeError           = "error"
	OutcomeMalformed       = "malformed"
	OutcomePaymentRequired = "payment_required"
)

// Envelope is the uniform invocation result: a single text block plus
// an error flag. Failures are always in-band; dispatch never panics or
// propagates an error to the transport.
type Envelope struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`

	// Outcome classifies the envelope for audit logging.
	Outcome string `json:"-"`
}

func textEnvelope(text string, outcome string) Envelope {
	return Envelope{
		Content: []ContentBlock{{Type: "text", Text: text}},
		IsError: outcome != OutcomeSuccess,
		Outcome: outcome,
	}
}

// AuthFailureEnvelope wraps an identity failure as an in-band error
// envelope, keeping authentication problems off the transport layer.
func AuthFailureEnvelope(err error) Envelope {
	return textEnvelope("Authentication failed: "+err.Error(), OutcomeError)
}

// MalformedEnvelope reports a request the caller can fix, such as a bad
// tool name or arguments that fail schema validation.
func MalformedEnvelope(msg string) Envelope {
	return textEnvelope(msg, OutcomeMalformed)
}

// SplitToolName splits an external tool name into category and action
// at the first underscore. Action names may themselves contain
// underscores and are never split further.
func SplitToolName(name string) (catalog.Category, string, bool) {
	i := strings.Index(name, "_")
	if i <= 0 || i == len(name)-1 {
		return "", "", false
	}
	return catalog.Category(name[:i]), name[i+1:], true
}

// errUnknownAction marks a project action with no endpoint mapping. The
// backend is never contacted for these.
var errUnknownAction = errors.New("unknown action")

// projectEndpoints is the static action-to-endpoint table for the
// project category, which bypasses the unified entry point.
var projectEndpoints = map[string]string{
	"LIST":   "/v1/projects/list",
	"GET":    "/v1/projects/get",
	"CREATE": "/v1/projects/create",
	"UPDATE": "/v1/projects/update",
	"DELETE": "/v1/projects/delete",
}

type routeFunc func(ctx context.Context, action string, args map[string]any, identity string) (json.RawMessage, error)

// Dispatcher forwards invocations to the backend and shapes responses.
type Dispatcher struct {
	routes   map[catalog.Category]routeFunc
	payments payment.Config
}

// New builds a dispatcher over the executor. Every known category
// routes through the unified entry point except project, which resolves
// through the static endpoint table.
func New(executor Executor, payments payment.Config) *Dispatcher {
	d := &Dispatcher{
		routes:   make(map[catalog.Category]routeFunc, 8),
		payments: payments,
	}

	for _, c := range catalog.Categories() {
		category := c
		d.routes[category] = func(ctx context.Context, action string, args map[string]any, identity string) (json.RawMessage, error) {
			return executor.ExecuteUnified(ctx, string(category), action, args, identity)
		}
	}
	d.routes[catalog.Project] = func(ctx context.Context, action string, args map[string]any, identity string) (json.RawMessage, error) {
		endpoint, ok := projectEndpoints[action]
		if !ok {
			return nil, fmt.Errorf("%w %q", errUnknownAction, action)
		}
		return executor.ExecuteDirect(ctx, endpoint, args, identity)
	}

	return d
}

// Dispatch runs one tool invocation and returns its envelope. All
// failure modes are encoded in the envelope, never raised.
func (d *Dispatcher) Dispatch(ctx context.Context, toolName string, args map[string]any, identity string) Envelope {
	category, action, ok := SplitToolName(toolName)
	if !ok {
		return textEnvelope(fmt.Sprintf("invalid tool name format: %q (want {category}_{ACTION})", toolName), OutcomeMalformed)
	}

	if !catalog.Known(category) {
		return textEnvelope(fmt.Sprintf("unknown tool category: %q", category), OutcomeMalformed)
	}

	result, err := d.routes[category](ctx, action, args, identity)
	if err != nil {
		return d.failureEnvelope(toolName, err)
	}

	return textEnvelope(prettyJSON(result), OutcomeSuccess)
}

func (d *Dispatcher) failureEnvelope(toolName string, err error) Envelope {
	if errors.Is(err, errUnknownAction) {
		return textEnvelope(fmt.Sprintf("Error executing %s: %s", toolName, err.Error()), OutcomeMalformed)
	}

	var be *backend.Error
	if errors.As(err, &be) && be.InsufficientBalance() {
		descriptor := payment.Build(be.Data, d.payments)
		out, merr := json.MarshalIndent(descriptor, "", "  ")
		if merr != nil {
			return textEnvelope(fmt.Sprintf("Error executing %s: %s", toolName, be.Message), OutcomeError)
		}
		return textEnvelope(string(out), OutcomePaymentRequired)
	}

	message := err.Error()
	if be != nil {
		message = be.Message
	}
	return textEnvelope(fmt.Sprintf("Error executing %s: %s", toolName, message), OutcomeError)
}

// prettyJSON re-indents a raw backend payload for the text block.
func prettyJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
