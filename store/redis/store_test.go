package redis_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/docseq"
	"github.com/xraph/docseq/counter"
	"github.com/xraph/docseq/store/redis"
)

func newStore(t *testing.T) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis.New(client, ""), mr
}

func TestNextValue(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := s.NextValue(ctx, "payment", "PAY")
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("next = %d, want %d", got, want)
		}
	}

	if got := mr.HGet("docseq:counter:payment", "prefix"); got != "PAY" {
		t.Errorf("prefix field = %q", got)
	}
	if got := mr.HGet("docseq:counter:payment", "sequence"); got != "3" {
		t.Errorf("sequence field = %q", got)
	}
}

func TestNextValueKeepsFirstPrefix(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, _ = s.NextValue(ctx, "receipt", "RC")
	_, _ = s.NextValue(ctx, "receipt", "XX")

	c, err := s.GetCounter(ctx, "receipt")
	if err != nil {
		t.Fatal(err)
	}
	if c.Prefix != "RC" {
		t.Errorf("prefix = %q, want RC", c.Prefix)
	}
}

func TestNextValueConcurrent(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	const n = 100

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool, n)
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.NextValue(ctx, "receipt", "RC")
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	for i := int64(1); i <= n; i++ {
		if !seen[i] {
			t.Errorf("missing value %d", i)
		}
	}
}

func TestPeekAndSeed(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	if v, _ := s.PeekValue(ctx, "quotation"); v != 1 {
		t.Errorf("peek on missing = %d, want 1", v)
	}

	seq, err := s.SeedCounter(ctx, "quotation", "QT", 50)
	if err != nil {
		t.Fatal(err)
	}
	if seq != 50 {
		t.Errorf("seed = %d, want 50", seq)
	}

	if seq, _ := s.SeedCounter(ctx, "quotation", "QT", 20); seq != 50 {
		t.Errorf("lower seed returned %d, want 50", seq)
	}

	if v, _ := s.PeekValue(ctx, "quotation"); v != 51 {
		t.Errorf("peek = %d, want 51", v)
	}
	if v, _ := s.NextValue(ctx, "quotation", "QT"); v != 51 {
		t.Errorf("next = %d, want 51", v)
	}
	if v, _ := s.PeekValue(ctx, "quotation"); v != 52 {
		t.Errorf("peek = %d, want 52", v)
	}
}

func TestGetCounterNotFound(t *testing.T) {
	s, _ := newStore(t)

	_, err := s.GetCounter(context.Background(), "nope")
	if !errors.Is(err, docseq.ErrCounterNotFound) {
		t.Errorf("expected ErrCounterNotFound, got %v", err)
	}
}

func TestListCounters(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	for _, k := range []string{"receipt:t_2", "receipt:t_1", "payment"} {
		if _, err := s.NextValue(ctx, k, "X"); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListCounters(ctx, counter.ListOpts{KeyPrefix: "receipt:"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Key != "receipt:t_1" || got[1].Key != "receipt:t_2" {
		t.Errorf("unexpected list %+v", got)
	}

	got, _ = s.ListCounters(ctx, counter.ListOpts{Limit: 1, Offset: 1})
	if len(got) != 1 || got[0].Key != "receipt:t_1" {
		t.Errorf("unexpected page %+v", got)
	}
}

func TestStoreUnavailable(t *testing.T) {
	s, mr := newStore(t)
	mr.Close()

	if _, err := s.NextValue(context.Background(), "receipt", "RC"); err == nil {
		t.Error("expected error from closed server")
	}
	if err := s.Ping(context.Background()); err == nil {
		t.Error("expected ping error from closed server")
	}
}
