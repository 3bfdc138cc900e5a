package history

import (
	"context"
	"sync"

	"healthwatch/internal/probe"
)

// Memory keeps the last capacity results in a ring.
type Memory struct {
	mu      sync.RWMutex
	results []probe.Result
	next    int
	full    bool
}

func NewMemory(capacity int) *Memory {
	if capacity < 1 {
		capacity = 1
	}
	return &Memory{results: make([]probe.Result, capacity)}
}

func (m *Memory) Append(ctx context.Context, r probe.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[m.next] = r
	m.next++
	if m.next == len(m.results) {
		m.next = 0
		m.full = true
	}
	return nil
}

func (m *Memory) Recent(ctx context.Context, n int) ([]probe.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	size := m.next
	if m.full {
		size = len(m.results)
	}
	if n > size {
		n = size
	}
	out := make([]probe.Result, 0, n)
	for i := 1; i <= n; i++ {
		idx := (m.next - i + len(m.results)) % len(m.results)
		out = append(out, m.results[idx])
	}
	return out, nil
}
