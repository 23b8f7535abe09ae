package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// scoreRecord keeps the first-seen display name alongside the counters.
type scoreRecord struct {
	name  string
	total int64
	temp  int64
}

// quotaRecord mirrors the rate-limit row: operations counted in the window
// that started at windowStart (epoch seconds).
type quotaRecord struct {
	count       int
	windowStart int64
}

// MemoryStore implements Store with mutex-protected maps. It backs tests
// and deployments that run without a database DSN.
type MemoryStore struct {
	mu     sync.RWMutex
	scores map[string]*scoreRecord

	quotaMu sync.Mutex
	quotas  map[string]*quotaRecord

	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		scores: make(map[string]*scoreRecord),
		quotas: make(map[string]*quotaRecord),
	}
}

func (s *MemoryStore) Apply(_ context.Context, item string, delta int64) (Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Score{}, ErrClosed
	}

	rec := s.upsertLocked(item)
	rec.total += delta
	rec.temp += delta
	return Score{Total: rec.total, Temp: rec.temp}, nil
}

func (s *MemoryStore) Query(_ context.Context, item string) (Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Score{}, ErrClosed
	}

	rec := s.upsertLocked(item)
	return Score{Total: rec.total, Temp: rec.temp}, nil
}

// upsertLocked returns the record for item, creating a zero record under the
// case-insensitive key on first reference. Callers hold s.mu.
func (s *MemoryStore) upsertLocked(item string) *scoreRecord {
	key := strings.ToLower(item)
	rec, ok := s.scores[key]
	if !ok {
		rec = &scoreRecord{name: item}
		s.scores[key] = rec
	}
	return rec
}

func (s *MemoryStore) ResetEra(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	for _, rec := range s.scores {
		rec.temp = 0
	}
	return nil
}

func (s *MemoryStore) TopN(_ context.Context, n int) ([]Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	entries := make([]Entry, 0, len(s.scores))
	for _, rec := range s.scores {
		entries = append(entries, Entry{Item: rec.name, Total: rec.total, Temp: rec.temp})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return strings.ToLower(entries[i].Item) < strings.ToLower(entries[j].Item)
	})

	if len(entries) > n {
		entries = entries[:n]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scores)
}

func (s *MemoryStore) ConsumeQuota(_ context.Context, actor string, now time.Time, window time.Duration, maxOps int) (bool, error) {
	s.quotaMu.Lock()
	defer s.quotaMu.Unlock()

	if s.closed {
		return false, ErrClosed
	}

	key := strings.ToLower(actor)
	nowSec := now.Unix()
	windowSec := int64(window / time.Second)

	rec, ok := s.quotas[key]
	if !ok {
		s.quotas[key] = &quotaRecord{count: 1, windowStart: nowSec}
		return true, nil
	}

	switch {
	case nowSec-rec.windowStart >= windowSec:
		// New window; this evaluation is its first operation.
		rec.count = 1
		rec.windowStart = nowSec
		return true, nil
	case rec.count < maxOps:
		rec.count++
		return true, nil
	default:
		// Denial leaves the record untouched.
		return false, nil
	}
}

// Close takes both locks so the closed flag is published to the score and
// quota paths alike.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotaMu.Lock()
	defer s.quotaMu.Unlock()
	s.closed = true
	return nil
}
