package identity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftstudio/craftstudio-mcp/backend"
)

type stubValidator struct {
	mu     sync.Mutex
	calls  int
	result backend.Validation
	err    error
}

func (s *stubValidator) ValidateCredential(_ context.Context, _ string) (backend.Validation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.result, s.err
}

func (s *stubValidator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestEnsureValidatesOnce(t *testing.T) {
	validator := &stubValidator{result: backend.Validation{Valid: true, Identity: "user-42"}}
	cache := NewCache(validator, "sk-test")

	for i := 0; i < 5; i++ {
		id, err := cache.Ensure(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "user-42", id)
	}

	assert.Equal(t, 1, validator.callCount())
}

func TestEnsureMissingCredential(t *testing.T) {
	validator := &stubValidator{}
	cache := NewCache(validator, "")

	_, err := cache.Ensure(context.Background())
	require.ErrorIs(t, err, ErrMissingCredential)
	assert.Zero(t, validator.callCount())
}

func TestEnsureRejectedCredential(t *testing.T) {
	validator := &stubValidator{result: backend.Validation{Valid: false, Reason: "key revoked"}}
	cache := NewCache(validator, "sk-bad")

	_, err := cache.Ensure(context.Background())
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "key revoked", authErr.Reason)
}

func TestEnsureRejectedWithoutReason(t *testing.T) {
	validator := &stubValidator{result: backend.Validation{Valid: false}}
	cache := NewCache(validator, "sk-bad")

	_, err := cache.Ensure(context.Background())
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.NotEmpty(t, authErr.Reason)
}

func TestEnsureFailureIsNotCached(t *testing.T) {
	validator := &stubValidator{err: errors.New("network down")}
	cache := NewCache(validator, "sk-test")

	_, err := cache.Ensure(context.Background())
	require.Error(t, err)

	validator.mu.Lock()
	validator.err = nil
	validator.result = backend.Validation{Valid: true, Identity: "user-42"}
	validator.mu.Unlock()

	id, err := cache.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-42", id)
	assert.Equal(t, 2, validator.callCount())
}

func TestEnsureConcurrentFirstUse(t *testing.T) {
	validator := &stubValidator{result: backend.Validation{Valid: true, Identity: "user-42"}}
	cache := NewCache(validator, "sk-test")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := cache.Ensure(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "user-42", id)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, validator.callCount())
}
