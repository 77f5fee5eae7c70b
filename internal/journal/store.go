// Package journal locates and persists the most recent daily journal
// available from the companion API.
package journal

import (
	"context"
	"sync"
)

// Record is one day's journal blob. DayKey is the yyyy/MM/dd string the API
// was queried with and is unique: a record is written once per day and never
// mutated or deleted.
type Record struct {
	DayKey  string
	Content string
}

// Store is the durable record store the retriever writes into. Duplicate
// day keys must be upserted, not duplicated.
type Store interface {
	Save(ctx context.Context, record Record) error
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Save(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.DayKey] = record
	return nil
}

// Records returns a copy of everything saved so far.
func (s *MemoryStore) Records() map[string]Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Record, len(s.records))
	for k, v := range s.records {
		out[k] = v
	}
	return out
}
