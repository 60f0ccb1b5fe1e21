package uniqueness

import (
	"context"
	"sync"
)

// Memory is an in-process Store. Values are compared after Normalize.
type Memory struct {
	mu     sync.RWMutex
	values map[string]map[string]struct{}
}

var (
	_ Store = (*Memory)(nil)
	_ Adder = (*Memory)(nil)
)

// NewMemory returns a store tracking the given fields.
func NewMemory(fields ...string) *Memory {
	m := &Memory{values: make(map[string]map[string]struct{}, len(fields))}
	for _, f := range fields {
		m.values[f] = make(map[string]struct{})
	}
	return m
}

func (m *Memory) Exists(_ context.Context, field, value string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set, ok := m.values[field]
	if !ok {
		return false, ErrUnknownField
	}
	_, taken := set[Normalize(value)]
	return taken, nil
}

func (m *Memory) Add(_ context.Context, field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.values[field]
	if !ok {
		return ErrUnknownField
	}
	set[Normalize(value)] = struct{}{}
	return nil
}
