package library

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"codesnap/snap"
	"codesnap/snapfile"
)

// Memory is an in-process Store, for tests and sessions without a library
// file. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	seq     int
	policy  snapfile.Policy
	now     func() time.Time
}

type memoryEntry struct {
	data    []byte
	summary Summary
	seq     int
}

func NewMemory(p snapfile.Policy) *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		policy:  p,
		now:     time.Now,
	}
}

func (m *Memory) Save(_ context.Context, id string, s *snap.Snap) (string, error) {
	if s == nil {
		return "", fmt.Errorf("library: save: nil snap")
	}
	data, _, err := prepare(s, m.policy)
	if err != nil {
		return "", fmt.Errorf("library: save: %w", err)
	}
	if id == "" {
		id = NewID()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.entries[id] = memoryEntry{
		data:    data,
		summary: summarize(id, s, len(data), m.now()),
		seq:     m.seq,
	}
	return id, nil
}

func (m *Memory) Load(_ context.Context, id string) (*snap.Snap, error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return snapfile.Import(e.data)
}

func (m *Memory) List(_ context.Context) ([]Summary, error) {
	m.mu.RLock()
	entries := make([]memoryEntry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].seq > entries[j].seq })
	out := make([]Summary, len(entries))
	for i, e := range entries {
		out[i] = e.summary
	}
	return out, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.entries, id)
	return nil
}
