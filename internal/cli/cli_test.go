package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/xraph/docseq/internal/cli"
)

func run(t *testing.T, mr *miniredis.Miniredis, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--redis-addr", mr.Addr()}, args...))
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestCommandPresence(t *testing.T) {
	cmd := cli.NewRootCommand()
	for _, name := range []string{"next", "peek", "seed", "backfill", "counters", "series"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			if err != nil {
				t.Fatal(err)
			}
			if sub.Name() != name {
				t.Errorf("found %q", sub.Name())
			}
		})
	}
}

func TestNextAndPeek(t *testing.T) {
	mr := miniredis.RunT(t)

	for _, want := range []string{"PAY000001", "PAY000002"} {
		got, err := run(t, mr, "", "next", "payment")
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("next = %q, want %q", got, want)
		}
	}

	got, err := run(t, mr, "", "peek", "payment")
	if err != nil {
		t.Fatal(err)
	}
	if got != "PAY000003" {
		t.Errorf("peek = %q", got)
	}
}

func TestSeedThenNext(t *testing.T) {
	mr := miniredis.RunT(t)

	if got, err := run(t, mr, "", "seed", "quotation", "QT", "50"); err != nil || got != "50" {
		t.Fatalf("seed = %q, %v", got, err)
	}
	if got, _ := run(t, mr, "", "seed", "quotation", "QT", "10"); got != "50" {
		t.Errorf("lower seed = %q, want 50", got)
	}
	if got, _ := run(t, mr, "", "next", "quotation", "--entity", "Acme Trading Co"); got != "QT-ATC-000051" {
		t.Errorf("next = %q", got)
	}
}

func TestBackfillFromStdin(t *testing.T) {
	mr := miniredis.RunT(t)
	input := "RC000003\n\nRC000011\nmanual\n"

	for range 2 {
		got, err := run(t, mr, input, "backfill", "receipt")
		if err != nil {
			t.Fatal(err)
		}
		if got != "receipt: scanned=3 matched=2 baseline=11 sequence=11" {
			t.Errorf("backfill = %q", got)
		}
	}

	if got, _ := run(t, mr, "", "next", "receipt"); got != "RC000012" {
		t.Errorf("next = %q", got)
	}
}

func TestSeriesFileAndTenant(t *testing.T) {
	mr := miniredis.RunT(t)
	path := filepath.Join(t.TempDir(), "series.yaml")
	yml := "series:\n  - key: receipt\n    prefix: RC\n    tenant_scoped: true\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, mr, "", "--series", path, "next", "receipt", "--tenant", "t_1"); err != nil {
		t.Fatal(err)
	}

	got, err := run(t, mr, "", "--format", "json", "counters", "--key-prefix", "receipt:")
	if err != nil {
		t.Fatal(err)
	}
	var cs []struct {
		Key      string `json:"key"`
		Sequence int64  `json:"sequence"`
	}
	if err := json.Unmarshal([]byte(got), &cs); err != nil {
		t.Fatalf("decode %q: %v", got, err)
	}
	if len(cs) != 1 || cs[0].Key != "receipt:t_1" || cs[0].Sequence != 1 {
		t.Errorf("counters = %+v", cs)
	}
}

func TestInvalidFlags(t *testing.T) {
	mr := miniredis.RunT(t)

	if _, err := run(t, mr, "", "--format", "xml", "series"); err == nil {
		t.Error("expected invalid format error")
	}
	if _, err := run(t, mr, "", "--store", "etcd", "series"); err == nil {
		t.Error("expected invalid store error")
	}
	if _, err := run(t, mr, "", "next", "creditNote"); err == nil {
		t.Error("expected unknown series error")
	}
	if _, err := run(t, mr, "", "seed", "receipt", "RC", "abc"); err == nil {
		t.Error("expected invalid baseline error")
	}
}
