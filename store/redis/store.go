// Package redis implements store.Store on Redis.
//
// Each counter is a hash at "{namespace}counter:{key}" with the fields
// prefix, sequence and lastUpdated. Keys are also collected in the set
// "{namespace}counters" so they can be listed without SCAN.
package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xraph/docseq"
	"github.com/xraph/docseq/counter"
	seqstore "github.com/xraph/docseq/store"
)

// DefaultNamespace prefixes every key written by the store.
const DefaultNamespace = "docseq:"

const (
	fieldPrefix      = "prefix"
	fieldSequence    = "sequence"
	fieldLastUpdated = "lastUpdated"
)

// compile-time interface check
var _ seqstore.Store = (*Store)(nil)

// seedScript raises the sequence to ARGV[2] when it is lower and creates the
// hash if it does not exist. It returns the resulting sequence.
var seedScript = redis.NewScript(`
local cur = tonumber(redis.call('HGET', KEYS[1], 'sequence') or '-1')
redis.call('HSETNX', KEYS[1], 'prefix', ARGV[1])
redis.call('SADD', KEYS[2], ARGV[4])
local base = tonumber(ARGV[2])
if base > cur then
  redis.call('HSET', KEYS[1], 'sequence', base, 'lastUpdated', ARGV[3])
  return base
end
return cur
`)

// Store implements store.Store using go-redis.
//
// NextValue runs HINCRBY inside MULTI/EXEC, so the increment, prefix
// initialization and index update commit together.
type Store struct {
	client    redis.UniversalClient
	namespace string
}

// New creates a store on an existing client. An empty namespace selects
// DefaultNamespace.
func New(client redis.UniversalClient, namespace string) *Store {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Store{client: client, namespace: namespace}
}

// Client returns the underlying redis client.
func (s *Store) Client() redis.UniversalClient { return s.client }

// Migrate is a no-op; Redis needs no schema.
func (s *Store) Migrate(_ context.Context) error {
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// ==================== Counter Store ====================

func (s *Store) NextValue(ctx context.Context, key, prefix string) (int64, error) {
	hk := s.counterKey(key)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, hk, fieldPrefix, prefix)
		incr = pipe.HIncrBy(ctx, hk, fieldSequence, 1)
		pipe.HSet(ctx, hk, fieldLastUpdated, formatTime(now()))
		pipe.SAdd(ctx, s.indexKey(), key)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("docseq/redis: next value: %w", err)
	}
	return incr.Val(), nil
}

func (s *Store) PeekValue(ctx context.Context, key string) (int64, error) {
	seq, err := s.client.HGet(ctx, s.counterKey(key), fieldSequence).Int64()
	if err == redis.Nil {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("docseq/redis: peek value: %w", err)
	}
	return seq + 1, nil
}

func (s *Store) SeedCounter(ctx context.Context, key, prefix string, baseline int64) (int64, error) {
	seq, err := seedScript.Run(ctx, s.client,
		[]string{s.counterKey(key), s.indexKey()},
		prefix, baseline, formatTime(now()), key,
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("docseq/redis: seed counter: %w", err)
	}
	return seq, nil
}

func (s *Store) GetCounter(ctx context.Context, key string) (*counter.Counter, error) {
	fields, err := s.client.HGetAll(ctx, s.counterKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("docseq/redis: get counter: %w", err)
	}
	if len(fields) == 0 {
		return nil, docseq.ErrCounterNotFound
	}
	return fromHash(key, fields)
}

func (s *Store) ListCounters(ctx context.Context, opts counter.ListOpts) ([]*counter.Counter, error) {
	keys, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("docseq/redis: list counters: %w", err)
	}

	filtered := keys[:0]
	for _, k := range keys {
		if opts.KeyPrefix == "" || strings.HasPrefix(k, opts.KeyPrefix) {
			filtered = append(filtered, k)
		}
	}
	sort.Strings(filtered)

	// Apply limit/offset
	start := min(opts.Offset, len(filtered))
	end := len(filtered)
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}
	page := filtered[start:end]

	cmds := make([]*redis.MapStringStringCmd, len(page))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, k := range page {
			cmds[i] = pipe.HGetAll(ctx, s.counterKey(k))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("docseq/redis: list counters: %w", err)
	}

	result := make([]*counter.Counter, 0, len(page))
	for i, k := range page {
		fields := cmds[i].Val()
		if len(fields) == 0 {
			continue
		}
		c, err := fromHash(k, fields)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, nil
}

// ==================== Helpers ====================

func (s *Store) counterKey(key string) string {
	return s.namespace + "counter:" + key
}

func (s *Store) indexKey() string {
	return s.namespace + "counters"
}

func fromHash(key string, fields map[string]string) (*counter.Counter, error) {
	c := &counter.Counter{Key: key, Prefix: fields[fieldPrefix]}

	if v, ok := fields[fieldSequence]; ok {
		seq, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("docseq/redis: counter %q: bad sequence %q: %w", key, v, err)
		}
		c.Sequence = seq
	}
	if v, ok := fields[fieldLastUpdated]; ok {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("docseq/redis: counter %q: bad timestamp: %w", key, err)
		}
		c.LastUpdated = t
	}
	return c, nil
}

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
