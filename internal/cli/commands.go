package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xraph/docseq"
	"github.com/xraph/docseq/backfill"
	"github.com/xraph/docseq/counter"
)

// requestFlags are shared by commands that address a series.
type requestFlags struct {
	Prefix string
	Tenant string
	Entity string
}

func (f *requestFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Prefix, "prefix", "", "prefix override, required for unregistered series")
	cmd.Flags().StringVar(&f.Tenant, "tenant", "", "tenant ID for tenant-scoped series")
	cmd.Flags().StringVar(&f.Entity, "entity", "", "entity name rendered as a code by series that use one")
}

func (f *requestFlags) request(series string) docseq.Request {
	return docseq.Request{
		Series:     series,
		Prefix:     f.Prefix,
		TenantID:   f.Tenant,
		EntityName: f.Entity,
	}
}

// NewNextCommand creates the next command.
func NewNextCommand(rootOpts *RootOptions) *cobra.Command {
	var rf requestFlags
	cmd := &cobra.Command{
		Use:   "next <series>",
		Short: "Issue the next document number",
		Example: `  docseq next receipt
  docseq next receipt --tenant t_42
  docseq next quotation --entity "Acme Trading Co"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSequencer(cmd, rootOpts, func(ctx context.Context, seq *docseq.Sequencer) error {
				iss, err := seq.Issue(ctx, rf.request(args[0]))
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), rootOpts.Format, iss, iss.Number)
			})
		},
	}
	rf.bind(cmd)
	return cmd
}

// NewPeekCommand creates the peek command.
func NewPeekCommand(rootOpts *RootOptions) *cobra.Command {
	var rf requestFlags
	cmd := &cobra.Command{
		Use:   "peek <series>",
		Short: "Preview the next document number without issuing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSequencer(cmd, rootOpts, func(ctx context.Context, seq *docseq.Sequencer) error {
				p, err := seq.Peek(ctx, rf.request(args[0]))
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), rootOpts.Format, p, p.Number)
			})
		},
	}
	rf.bind(cmd)
	return cmd
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "seed <key> <prefix> <baseline>",
		Short:   "Raise a counter to at least baseline",
		Long:    "Raise a counter to at least baseline. A counter is never lowered.",
		Example: "  docseq seed quotation QT 50",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseline, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid baseline %q: %w", args[2], err)
			}
			return withSequencer(cmd, rootOpts, func(ctx context.Context, seq *docseq.Sequencer) error {
				v, err := seq.Seed(ctx, args[0], args[1], baseline)
				if err != nil {
					return err
				}
				out := map[string]any{"key": args[0], "sequence": v}
				return render(cmd.OutOrStdout(), rootOpts.Format, out, strconv.FormatInt(v, 10))
			})
		},
	}
}

// NewBackfillCommand creates the backfill command.
func NewBackfillCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		rf       requestFlags
		file     string
		strategy string
	)
	cmd := &cobra.Command{
		Use:   "backfill <series>",
		Short: "Seed a counter from existing document numbers",
		Long: `Seed a counter from existing document numbers, one per line.

The counter ends at the larger of its current value and the baseline, so
running the same backfill twice changes nothing.`,
		Example: `  docseq backfill receipt --file receipts.txt
  mongoexport ... | docseq backfill invoice --file - --strategy count`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return withSequencer(cmd, rootOpts, func(ctx context.Context, seq *docseq.Sequencer) error {
				report, err := seq.Backfill(ctx, rf.request(args[0]), lineSource(in), backfill.Strategy(strategy))
				if err != nil {
					return err
				}
				text := fmt.Sprintf("%s: scanned=%d matched=%d baseline=%d sequence=%d",
					report.Key, report.Scanned, report.Matched, report.Baseline, report.Sequence)
				return render(cmd.OutOrStdout(), rootOpts.Format, report, text)
			})
		},
	}
	rf.bind(cmd)
	cmd.Flags().StringVar(&file, "file", "-", "file of document numbers, - for stdin")
	cmd.Flags().StringVar(&strategy, "strategy", string(backfill.StrategyMaxOrdinal), "baseline strategy (max_ordinal|count)")
	return cmd
}

// NewCountersCommand creates the counters command.
func NewCountersCommand(rootOpts *RootOptions) *cobra.Command {
	var opts counter.ListOpts
	cmd := &cobra.Command{
		Use:   "counters",
		Short: "List stored counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSequencer(cmd, rootOpts, func(ctx context.Context, seq *docseq.Sequencer) error {
				cs, err := seq.ListCounters(ctx, opts)
				if err != nil {
					return err
				}
				var b strings.Builder
				for _, c := range cs {
					fmt.Fprintf(&b, "%-32s %-8s %d\n", c.Key, c.Prefix, c.Sequence)
				}
				return render(cmd.OutOrStdout(), rootOpts.Format, cs, strings.TrimSuffix(b.String(), "\n"))
			})
		},
	}
	cmd.Flags().StringVar(&opts.KeyPrefix, "key-prefix", "", "only counters whose key starts with this")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum counters to list")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "counters to skip")
	return cmd
}

// NewSeriesCommand creates the series command.
func NewSeriesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "series",
		Short: "List registered series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSequencer(cmd, rootOpts, func(_ context.Context, seq *docseq.Sequencer) error {
				list := seq.ListSeries()
				var b strings.Builder
				for _, s := range list {
					scope := "global"
					if s.TenantScoped {
						scope = "tenant"
					}
					fmt.Fprintf(&b, "%-20s %-8s %s\n", s.Key, s.Prefix, scope)
				}
				return render(cmd.OutOrStdout(), rootOpts.Format, list, strings.TrimSuffix(b.String(), "\n"))
			})
		},
	}
}

func withSequencer(cmd *cobra.Command, opts *RootOptions, fn func(context.Context, *docseq.Sequencer) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	seq, err := opts.openSequencer(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer seq.Stop()
	return fn(ctx, seq)
}

func render(w io.Writer, format string, v any, text string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

// lineSource reads one document number per line, skipping blank lines.
func lineSource(r io.Reader) backfill.Source {
	return backfill.SourceFunc(func(ctx context.Context, fn func(string) error) error {
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			if err := ctx.Err(); err != nil {
				return err
			}
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			if err := fn(line); err != nil {
				return err
			}
		}
		return sc.Err()
	})
}
