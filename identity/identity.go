// Package identity resolves the configured credential to a backend
// identity exactly once per process and caches the result.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/craftstudio/craftstudio-mcp/backend"
)

// ErrMissingCredential indicates no API key was configured. This is a
// startup-time configuration problem, not something a retry can fix.
var ErrMissingCredential = errors.New("no API key configured (set CRAFTSTUDIO_API_KEY)")

// AuthError indicates the backend rejected the configured credential.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("credential rejected: %s", e.Reason)
}

// Validator is the external collaborator that checks a credential.
type Validator interface {
	ValidateCredential(ctx context.Context, secret string) (backend.Validation, error)
}

// Cache holds one resolved identity per credential. Ensure is
// idempotent and safe to call before every operation; validation runs
// at most once per process lifetime on the success path. Concurrent
// first calls may each validate, which is harmless since validation is
// idempotent; the first writer wins.
type Cache struct {
	validator Validator
	secret    string

	mu       sync.Mutex
	identity string
	resolved bool
}

// NewCache creates a cache over the given validator and credential.
func NewCache(validator Validator, secret string) *Cache {
	return &Cache{validator: validator, secret: secret}
}

// Ensure returns the cached identity, validating the credential on
// first use. Failures are surfaced immediately and are not cached: a
// subsequent call validates again.
func (c *Cache) Ensure(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resolved {
		return c.identity, nil
	}

	if c.secret == "" {
		return "", ErrMissingCredential
	}

	v, err := c.validator.ValidateCredential(ctx, c.secret)
	if err != nil {
		return "", fmt.Errorf("validate credential: %w", err)
	}
	if !v.Valid {
		reason := v.Reason
		if reason == "" {
			reason = "credential is not valid"
		}
		return "", &AuthError{Reason: reason}
	}

	c.identity = v.Identity
	c.resolved = true
	return c.identity, nil
}
