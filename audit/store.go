// Package audit provides best-effort storage for invocation records.
// The log is observational only: it never influences request outcomes,
// and holds no protocol state (in particular, no pending-payment state
// survives between invocations).
package audit

import (
	"sync"
	"time"
)

// Record captures one completed tool invocation.
type Record struct {
	ID           int64     `json:"id"`
	InvocationID string    `json:"invocation_id"`
	ToolName     string    `json:"tool_name"`
	Category     string    `json:"category"`
	Action       string    `json:"action"`
	Outcome      string    `json:"outcome"`
	DurationMS   int64     `json:"duration_ms"`
	Timestamp    time.Time `json:"timestamp"`
}

// Store defines the interface for persisting invocation records.
type Store interface {
	// Add inserts a new record and returns its assigned id.
	Add(record Record) (int64, error)

	// Recent returns up to limit records, newest first.
	Recent(limit int) ([]Record, error)

	// Close releases underlying resources.
	Close() error
}

// MemoryStore is an in-memory Store, used in tests and when no audit
// database is configured.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
	nextID  int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// Add implements Store.
func (m *MemoryStore) Add(record Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record.ID = m.nextID
	m.nextID++
	m.records = append(m.records, record)
	return record.ID, nil
}

// Recent implements Store.
func (m *MemoryStore) Recent(limit int) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 || limit > len(m.records) {
		limit = len(m.records)
	}
	out := make([]Record, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}
