// Package testutil provides store doubles and a catalog fixture for tests.
package testutil

import (
	"context"
	"sync"

	"github.com/navith/genreguide/storage"
)

// MockStore wraps a storage.Store, counting calls per operation and
// optionally failing them.
type MockStore struct {
	inner storage.Store

	mu    sync.Mutex
	calls map[string]int

	// FailWith, when set, is returned by every call whose operation name it
	// returns a non-nil error for.
	FailWith func(op string) error
}

var _ storage.Store = (*MockStore)(nil)

// NewMockStore wraps inner.
func NewMockStore(inner storage.Store) *MockStore {
	return &MockStore{inner: inner, calls: make(map[string]int)}
}

func (m *MockStore) record(op string) error {
	m.mu.Lock()
	m.calls[op]++
	fail := m.FailWith
	m.mu.Unlock()

	if fail != nil {
		return fail(op)
	}
	return nil
}

// Calls returns how many times op was invoked.
func (m *MockStore) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// TotalCalls returns the number of calls across all operations.
func (m *MockStore) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// Reset clears the counters.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make(map[string]int)
}

func (m *MockStore) GetField(ctx context.Context, key, field string) ([]byte, bool, error) {
	if err := m.record("GetField"); err != nil {
		return nil, false, err
	}
	return m.inner.GetField(ctx, key, field)
}

func (m *MockStore) IsMember(ctx context.Context, setKey, value string) (bool, error) {
	if err := m.record("IsMember"); err != nil {
		return false, err
	}
	return m.inner.IsMember(ctx, setKey, value)
}

func (m *MockStore) Members(ctx context.Context, setKey string) ([]string, error) {
	if err := m.record("Members"); err != nil {
		return nil, err
	}
	return m.inner.Members(ctx, setKey)
}

func (m *MockStore) RangeList(ctx context.Context, listKey string, start, stop int64) ([]string, error) {
	if err := m.record("RangeList"); err != nil {
		return nil, err
	}
	return m.inner.RangeList(ctx, listKey, start, stop)
}

func (m *MockStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := m.record("Exists"); err != nil {
		return false, err
	}
	return m.inner.Exists(ctx, key)
}
