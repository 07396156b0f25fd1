package ratings

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-memory Store for tests and offline tooling.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[int]int
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[int]int)}
}

func (m *Memory) Ratings(_ context.Context, userID string) (map[int]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int]int, len(m.data[userID]))
	for movieID, score := range m.data[userID] {
		out[movieID] = score
	}
	return out, nil
}

func (m *Memory) All(_ context.Context) (map[string]map[int]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]map[int]int, len(m.data))
	for userID, scores := range m.data {
		cp := make(map[int]int, len(scores))
		for movieID, score := range scores {
			cp[movieID] = score
		}
		out[userID] = cp
	}
	return out, nil
}

func (m *Memory) Set(_ context.Context, userID string, movieID, score int) error {
	if !validScore(score) {
		return ErrInvalidScore
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[userID] == nil {
		m.data[userID] = make(map[int]int)
	}
	m.data[userID][movieID] = score
	return nil
}

func (m *Memory) DeleteUser(_ context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[userID]; !ok {
		return false, nil
	}
	// remove the key entirely, never leave an empty map behind
	delete(m.data, userID)
	return true, nil
}

func (m *Memory) Users(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.data))
	for userID := range m.data {
		out = append(out, userID)
	}
	sort.Strings(out)
	return out, nil
}
