package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"switchboard-ai/hermes/pkg/audit"
)

func storeRecords(t *testing.T, s audit.Storage, records ...*audit.Record) {
	t.Helper()
	for _, record := range records {
		if err := s.Store(context.Background(), record); err != nil {
			t.Fatalf("Store() error: %v", err)
		}
	}
}

func makeRecord(id, provider string, age time.Duration, status int) *audit.Record {
	return &audit.Record{
		ID:            id,
		RequestID:     "req-" + id,
		RequestTime:   time.Now().Add(-age),
		RecordedTime:  time.Now(),
		Model:         provider + "/test-model",
		Provider:      provider,
		UpstreamModel: "test-model",
		StatusCode:    status,
	}
}

func TestMemoryStorageQueryFilters(t *testing.T) {
	s := NewMemoryStorage()
	storeRecords(t, s,
		makeRecord("a", "openai", time.Hour, 200),
		makeRecord("b", "groq", 2*time.Hour, 200),
		makeRecord("c", "openai", 3*time.Hour, 502),
	)

	tests := []struct {
		name    string
		query   *audit.Query
		wantIDs []string
	}{
		{
			name:    "all newest first",
			query:   &audit.Query{},
			wantIDs: []string{"a", "b", "c"},
		},
		{
			name:    "by provider",
			query:   &audit.Query{Provider: "openai"},
			wantIDs: []string{"a", "c"},
		},
		{
			name:    "by status",
			query:   &audit.Query{StatusCode: 502},
			wantIDs: []string{"c"},
		},
		{
			name:    "limit",
			query:   &audit.Query{Limit: 2},
			wantIDs: []string{"a", "b"},
		},
		{
			name:    "offset",
			query:   &audit.Query{Limit: 2, Offset: 1},
			wantIDs: []string{"b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Query(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("Query() error: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d records, want %d", len(got), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if got[i].ID != want {
					t.Errorf("record[%d].ID = %q, want %q", i, got[i].ID, want)
				}
			}
		})
	}
}

func TestMemoryStorageTimeRange(t *testing.T) {
	s := NewMemoryStorage()
	storeRecords(t, s,
		makeRecord("old", "openai", 48*time.Hour, 200),
		makeRecord("new", "openai", time.Hour, 200),
	)

	cutoff := time.Now().Add(-24 * time.Hour)
	got, err := s.Query(context.Background(), &audit.Query{StartTime: &cutoff})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "new" {
		t.Errorf("got %v, want only the recent record", got)
	}
}

func TestMemoryStorageDelete(t *testing.T) {
	s := NewMemoryStorage()
	storeRecords(t, s,
		makeRecord("old", "openai", 48*time.Hour, 200),
		makeRecord("new", "openai", time.Hour, 200),
	)

	cutoff := time.Now().Add(-24 * time.Hour)
	deleted, err := s.Delete(context.Background(), &audit.Query{EndTime: &cutoff})
	if err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	count, err := s.Count(context.Background(), &audit.Query{})
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != 1 {
		t.Errorf("remaining count = %d, want 1", count)
	}
}

func TestMemoryStorageCopiesRecords(t *testing.T) {
	s := NewMemoryStorage()
	record := makeRecord("a", "openai", time.Hour, 200)
	storeRecords(t, s, record)

	record.Provider = "mutated"

	got, err := s.Query(context.Background(), &audit.Query{})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if got[0].Provider != "openai" {
		t.Errorf("stored record mutated: provider = %q", got[0].Provider)
	}
}

func TestMemoryStorageConcurrentStores(t *testing.T) {
	s := NewMemoryStorage()

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 20; j++ {
				id := fmt.Sprintf("r-%d-%d", n, j)
				if err := s.Store(context.Background(), makeRecord(id, "openai", time.Hour, 200)); err != nil {
					t.Errorf("Store() error: %v", err)
				}
			}
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	count, err := s.Count(context.Background(), &audit.Query{})
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != 200 {
		t.Errorf("count = %d, want 200", count)
	}
}
