// Package gateway exposes the CraftStudio backend's action catalog as a
// callable tool surface. It wires the identity cache, the catalog
// translator, and the dispatcher behind two operations: ListTools,
// which never fails (it degrades to an empty list when the backend is
// unreachable), and Invoke, which resolves every failure mode into a
// response envelope.
package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/craftstudio/craftstudio-mcp/audit"
	"github.com/craftstudio/craftstudio-mcp/catalog"
	"github.com/craftstudio/craftstudio-mcp/dispatch"
	"github.com/craftstudio/craftstudio-mcp/identity"
	"github.com/craftstudio/craftstudio-mcp/internal/logging"
	"github.com/craftstudio/craftstudio-mcp/payment"
)

// CatalogFetcher is the backend collaborator that supplies the action
// catalog.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context) (catalog.Catalog, error)
}

// Gateway is the core façade over the backend.
type Gateway struct {
	fetcher    CatalogFetcher
	ids        *identity.Cache
	dispatcher *dispatch.Dispatcher
	audit      audit.Store
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithAuditStore enables best-effort invocation logging.
func WithAuditStore(store audit.Store) Option {
	return func(g *Gateway) {
		g.audit = store
	}
}

// New wires a Gateway over the backend collaborators.
func New(fetcher CatalogFetcher, executor dispatch.Executor, ids *identity.Cache, payments payment.Config, opts ...Option) *Gateway {
	g := &Gateway{
		fetcher:    fetcher,
		ids:        ids,
		dispatcher: dispatch.New(executor, payments),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// ListTools translates the current backend catalog into tool
// descriptors. It never returns an error: authentication failures and
// backend unavailability both degrade to an empty list so the session
// stays alive.
func (g *Gateway) ListTools(ctx context.Context) []catalog.Tool {
	if _, err := g.ids.Ensure(ctx); err != nil {
		logging.Logger().Warn("tool listing degraded to empty", "error", err)
		return nil
	}

	cat, err := g.fetcher.FetchCatalog(ctx)
	if err != nil {
		logging.Logger().Warn("catalog unavailable, listing no tools", "error", err)
		return nil
	}

	return catalog.Translate(cat)
}

// Invoke runs one tool invocation. All failure modes are encoded in the
// envelope; Invoke never returns an error.
func (g *Gateway) Invoke(ctx context.Context, toolName string, args map[string]any) dispatch.Envelope {
	invocationID := uuid.NewString()
	start := time.Now()

	ident, err := g.ids.Ensure(ctx)
	if err != nil {
		env := dispatch.AuthFailureEnvelope(err)
		g.record(invocationID, toolName, env, start)
		return env
	}

	env := g.dispatcher.Dispatch(ctx, toolName, args, ident)
	g.record(invocationID, toolName, env, start)
	return env
}

// record appends an audit entry. Failures are logged and ignored: the
// audit trail never affects request outcomes.
func (g *Gateway) record(invocationID, toolName string, env dispatch.Envelope, start time.Time) {
	if g.audit == nil {
		return
	}

	category, action, _ := dispatch.SplitToolName(toolName)
	_, err := g.audit.Add(audit.Record{
		InvocationID: invocationID,
		ToolName:     toolName,
		Category:     string(category),
		Action:       action,
		Outcome:      env.Outcome,
		DurationMS:   time.Since(start).Milliseconds(),
		Timestamp:    start.UTC(),
	})
	if err != nil {
		logging.Logger().Debug("audit write failed", "invocation", invocationID, "error", err)
	}
}
