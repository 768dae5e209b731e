package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"

	"github.com/xraph/docseq"
	"github.com/xraph/docseq/backfill"
	"github.com/xraph/docseq/counter"
	"github.com/xraph/docseq/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	ctx := context.Background()

	sdb := sqlitedriver.New()
	dsn := "file:" + filepath.Join(t.TempDir(), "docseq.db") + "?_pragma=busy_timeout(5000)"
	if err := sdb.Open(ctx, dsn); err != nil {
		t.Fatal(err)
	}
	db, err := grove.Open(sdb)
	if err != nil {
		t.Fatal(err)
	}

	s := sqlite.New(db)
	t.Cleanup(func() { _ = s.Close() })

	if err := s.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestNextValueFirstUse(t *testing.T) {
	s := newStore(t)
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

	c, err := s.GetCounter(ctx, "payment")
	if err != nil {
		t.Fatal(err)
	}
	if c.Prefix != "PAY" || c.Sequence != 3 || c.LastUpdated.IsZero() {
		t.Errorf("unexpected counter %+v", c)
	}
}

func TestNextValueConcurrent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	const n = 100

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		got = make([]int64, 0, n)
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
			got = append(got, v)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(got) != n {
		t.Fatalf("got %d values, want %d", len(got), n)
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	for i, v := range got {
		if v != int64(i+1) {
			t.Fatalf("sorted[%d] = %d, want %d (duplicate or gap)", i, v, i+1)
		}
	}
}

func TestSeedOnlyRaises(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		baseline int64
		want     int64
	}{
		{"creates", 50, 50},
		{"lower is ignored", 20, 50},
		{"equal is ignored", 50, 50},
		{"higher raises", 75, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SeedCounter(ctx, "quotation", "QT", tt.baseline)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("seed(%d) = %d, want %d", tt.baseline, got, tt.want)
			}
		})
	}
}

func TestPeekDoesNotMutate(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if v, _ := s.PeekValue(ctx, "quotation"); v != 1 {
		t.Errorf("peek on missing = %d, want 1", v)
	}
	if _, err := s.GetCounter(ctx, "quotation"); !errors.Is(err, docseq.ErrCounterNotFound) {
		t.Errorf("peek created a counter: %v", err)
	}

	if _, err := s.SeedCounter(ctx, "quotation", "QT", 50); err != nil {
		t.Fatal(err)
	}
	for range 3 {
		if v, _ := s.PeekValue(ctx, "quotation"); v != 51 {
			t.Errorf("peek = %d, want 51", v)
		}
	}
	if v, _ := s.NextValue(ctx, "quotation", "QT"); v != 51 {
		t.Errorf("next = %d, want 51", v)
	}
	if v, _ := s.PeekValue(ctx, "quotation"); v != 52 {
		t.Errorf("peek = %d, want 52", v)
	}
}

func TestListCounters(t *testing.T) {
	s := newStore(t)
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

func TestNumberSourceBackfill(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	sdb := sqlitedriver.Unwrap(s.DB())

	if _, err := sdb.Exec(ctx, `CREATE TABLE receipts (number TEXT)`); err != nil {
		t.Fatal(err)
	}
	for _, n := range []any{"RC000500", "RC000042", nil, "manual-7"} {
		if _, err := sdb.Exec(ctx, `INSERT INTO receipts (number) VALUES (?)`, n); err != nil {
			t.Fatal(err)
		}
	}

	seq, err := docseq.New(s)
	if err != nil {
		t.Fatal(err)
	}
	req := docseq.Request{Series: docseq.KeyReceipt}

	for range 2 {
		report, err := seq.Backfill(ctx, req, s.NumberSource("receipts", "number"), backfill.StrategyMaxOrdinal)
		if err != nil {
			t.Fatal(err)
		}
		if report.Scanned != 4 || report.Matched != 2 || report.Sequence != 500 {
			t.Errorf("unexpected report %+v", report)
		}
	}

	num, err := seq.GenerateNextNumber(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if num != "RC000501" {
		t.Errorf("next = %q, want RC000501", num)
	}
}

func TestNumberSourceRejectsIdentifiers(t *testing.T) {
	s := newStore(t)

	src := s.NumberSource("receipts; DROP TABLE docseq_counters", "number")
	err := src.Numbers(context.Background(), func(string) error { return nil })
	if err == nil {
		t.Fatal("expected invalid identifier error")
	}
}
