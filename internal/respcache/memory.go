package respcache

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryEntry struct {
	body      []byte
	label     string
	storedAt  time.Time
	expiresAt time.Time
}

// Memory is an in-process Fetcher safe for concurrent use.
type Memory struct {
	opts    options
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemory creates an empty in-process cache.
func NewMemory(opts ...Option) *Memory {
	return &Memory{
		opts:    buildOptions(opts),
		entries: make(map[string]memoryEntry),
	}
}

// GetOrFetch implements Fetcher.
func (m *Memory) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) (Result, error) {
	now := m.opts.now()
	if ttl > 0 {
		m.mu.RLock()
		entry, ok := m.entries[key]
		m.mu.RUnlock()
		if ok && now.Before(entry.expiresAt) {
			return Result{Body: append([]byte(nil), entry.body...), Hit: true, StoredAt: entry.storedAt}, nil
		}
	}

	body, err := fetch(ctx)
	if err != nil {
		return Result{}, err
	}
	if ttl <= 0 {
		return Result{Body: body}, nil
	}

	storedAt := m.opts.now()
	m.mu.Lock()
	m.entries[key] = memoryEntry{
		body:      append([]byte(nil), body...),
		label:     labelFromContext(ctx),
		storedAt:  storedAt,
		expiresAt: storedAt.Add(ttl),
	}
	m.mu.Unlock()
	return Result{Body: body, StoredAt: storedAt}, nil
}

// Stats implements Maintainer.
func (m *Memory) Stats(context.Context) (Stats, error) {
	now := m.opts.now()
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{Backend: "memory", Entries: len(m.entries)}
	for _, entry := range m.entries {
		stats.Bytes += int64(len(entry.body))
		if !now.Before(entry.expiresAt) {
			stats.Expired++
		}
		if stats.Oldest.IsZero() || entry.storedAt.Before(stats.Oldest) {
			stats.Oldest = entry.storedAt
		}
		if entry.storedAt.After(stats.Newest) {
			stats.Newest = entry.storedAt
		}
	}
	return stats, nil
}

// List implements Maintainer, newest entries first.
func (m *Memory) List(_ context.Context, limit int) ([]Entry, error) {
	m.mu.RLock()
	out := make([]Entry, 0, len(m.entries))
	for key, entry := range m.entries {
		out = append(out, Entry{
			Key:       key,
			Label:     entry.label,
			Size:      len(entry.body),
			StoredAt:  entry.storedAt,
			ExpiresAt: entry.expiresAt,
		})
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StoredAt.Equal(out[j].StoredAt) {
			return out[i].Key < out[j].Key
		}
		return out[i].StoredAt.After(out[j].StoredAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Prune implements Maintainer.
func (m *Memory) Prune(context.Context) (int, error) {
	now := m.opts.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Clear implements Maintainer.
func (m *Memory) Clear(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := len(m.entries)
	m.entries = make(map[string]memoryEntry)
	return removed, nil
}
