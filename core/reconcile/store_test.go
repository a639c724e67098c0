package reconcile

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// memoryLogs is an in-memory LogStore counting opens per name.
type memoryLogs struct {
	mu     sync.Mutex
	logs   map[string]string
	fail   map[string]error
	opened map[string]int
}

func newMemoryLogs(logs map[string]string) *memoryLogs {
	return &memoryLogs{logs: logs, fail: map[string]error{}, opened: map[string]int{}}
}

func (m *memoryLogs) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened[name]++
	if err, ok := m.fail[name]; ok {
		return nil, err
	}
	body, ok := m.logs[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrLogNotFound)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (m *memoryLogs) opens(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened[name]
}
