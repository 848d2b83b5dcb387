package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

// Memory is a process-local ViewCache for single-instance deployments and
// tests. Values are stored encoded so callers never share mutable state.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	gens    map[string]int64
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: map[string]memoryEntry{}, gens: map[string]int64{}, now: time.Now}
}

func (m *Memory) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)
}

func (m *Memory) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if m.expired(e) {
		// a Set may have replaced the entry since the read lock was released
		m.mu.Lock()
		cur, ok := m.entries[key]
		switch {
		case !ok:
		case m.expired(cur):
			delete(m.entries, key)
			ok = false
		default:
			e = cur
		}
		m.mu.Unlock()
		if !ok {
			return false, nil
		}
	}
	if err := json.Unmarshal(e.raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	e := memoryEntry{raw: raw}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	m.mu.Unlock()
	return nil
}

func (m *Memory) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	m.deletePrefixLocked(prefix)
	m.mu.Unlock()
	return nil
}

func (m *Memory) deletePrefixLocked(prefix string) {
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
}

func (m *Memory) Generations(_ context.Context, scopes ...string) ([]int64, error) {
	out := make([]int64, len(scopes))
	m.mu.RLock()
	for i, s := range scopes {
		out[i] = m.gens[s]
	}
	m.mu.RUnlock()
	return out, nil
}

// Bump advances each scope and frees the entries stored under it; versioned
// keys share their scope as prefix.
func (m *Memory) Bump(_ context.Context, scopes ...string) error {
	m.mu.Lock()
	for _, s := range scopes {
		m.gens[s]++
		m.deletePrefixLocked(s)
	}
	m.mu.Unlock()
	return nil
}
