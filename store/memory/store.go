package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xraph/docseq"
	"github.com/xraph/docseq/counter"
	"github.com/xraph/docseq/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store keeps counters in process memory. Increments are serialized by a
// single mutex, which stands in for the storage engine's atomic update.
type Store struct {
	mu       sync.RWMutex
	counters map[string]*counter.Counter
	closed   bool
	now      func() time.Time
}

func New() *Store {
	return &Store{
		counters: make(map[string]*counter.Counter),
		now:      time.Now,
	}
}

// Counter Store implementation
func (s *Store) NextValue(_ context.Context, key, prefix string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, docseq.ErrStoreClosed
	}

	c, ok := s.counters[key]
	if !ok {
		c = &counter.Counter{Key: key, Prefix: prefix}
		s.counters[key] = c
	}
	c.Sequence++
	c.LastUpdated = s.now().UTC()
	return c.Sequence, nil
}

func (s *Store) PeekValue(_ context.Context, key string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, docseq.ErrStoreClosed
	}
	return s.counters[key].Next(), nil
}

func (s *Store) SeedCounter(_ context.Context, key, prefix string, baseline int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, docseq.ErrStoreClosed
	}

	c, ok := s.counters[key]
	if !ok {
		c = &counter.Counter{Key: key, Prefix: prefix}
		s.counters[key] = c
	}
	if baseline > c.Sequence {
		c.Sequence = baseline
		c.LastUpdated = s.now().UTC()
	}
	return c.Sequence, nil
}

func (s *Store) GetCounter(_ context.Context, key string) (*counter.Counter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, docseq.ErrStoreClosed
	}
	c, ok := s.counters[key]
	if !ok {
		return nil, docseq.ErrCounterNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) ListCounters(_ context.Context, opts counter.ListOpts) ([]*counter.Counter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, docseq.ErrStoreClosed
	}

	result := make([]*counter.Counter, 0, len(s.counters))
	for key, c := range s.counters {
		if opts.KeyPrefix != "" && !strings.HasPrefix(key, opts.KeyPrefix) {
			continue
		}
		cp := *c
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })

	// Apply limit/offset
	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return docseq.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
