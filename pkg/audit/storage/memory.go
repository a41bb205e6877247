package storage

import (
	"context"
	"sort"
	"sync"

	"switchboard-ai/hermes/pkg/audit"
)

// MemoryStorage implements audit.Storage in memory. Intended for tests and
// development; records are lost on restart.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*audit.Record
	closed  bool
}

// NewMemoryStorage creates an empty in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store persists an audit record.
func (m *MemoryStorage) Store(ctx context.Context, record *audit.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return audit.NewStorageError("memory", "store", context.Canceled)
	}

	// Copy so later caller mutations cannot change stored data.
	stored := *record
	m.records = append(m.records, &stored)
	return nil
}

// Query retrieves records matching the filters, newest first.
func (m *MemoryStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := []*audit.Record{}
	for _, record := range m.records {
		if matches(record, query) {
			matched = append(matched, record)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].RequestTime.After(matched[j].RequestTime)
	})

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	offset := query.Offset
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]*audit.Record, 0, end-offset)
	for _, record := range matched[offset:end] {
		copied := *record
		out = append(out, &copied)
	}
	return out, nil
}

// Count returns the number of records matching the filters.
func (m *MemoryStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, record := range m.records {
		if matches(record, query) {
			count++
		}
	}
	return count, nil
}

// Delete removes records matching the filters and returns the number removed.
func (m *MemoryStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[:0]
	var deleted int64
	for _, record := range m.records {
		if matches(record, query) {
			deleted++
			continue
		}
		kept = append(kept, record)
	}
	m.records = kept
	return deleted, nil
}

// Close marks the storage closed. Further stores fail.
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func matches(record *audit.Record, query *audit.Query) bool {
	if query.StartTime != nil && record.RequestTime.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.RequestTime.After(*query.EndTime) {
		return false
	}
	if query.Provider != "" && record.Provider != query.Provider {
		return false
	}
	if query.Model != "" && record.Model != query.Model {
		return false
	}
	if query.TokenDescription != "" && record.TokenDescription != query.TokenDescription {
		return false
	}
	if query.StatusCode != 0 && record.StatusCode != query.StatusCode {
		return false
	}
	return true
}
