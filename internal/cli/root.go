// Package cli implements the docseq command line tool used by operators to
// inspect, seed and backfill counters outside the application.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xraph/docseq"
	"github.com/xraph/docseq/counter"
	"github.com/xraph/docseq/store"
	"github.com/xraph/docseq/store/memory"
	"github.com/xraph/docseq/store/redis"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Store      string // "redis" | "memory"
	RedisAddr  string
	Namespace  string
	SeriesFile string
	Format     string // "text" | "json"
	Verbose    bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ValidStores defines the backends the CLI can open.
var ValidStores = []string{"redis", "memory"}

// NewRootCommand creates the root command for the docseq CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "docseq",
		Short: "Sequential document number issuance",
		Long:  "Inspect, seed and backfill document number counters.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if !slices.Contains(ValidStores, opts.Store) {
				return fmt.Errorf("invalid store %q: must be one of %v", opts.Store, ValidStores)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Store, "store", "redis", "counter store (redis|memory)")
	cmd.PersistentFlags().StringVar(&opts.RedisAddr, "redis-addr", "localhost:6379", "redis address")
	cmd.PersistentFlags().StringVar(&opts.Namespace, "namespace", redis.DefaultNamespace, "redis key namespace")
	cmd.PersistentFlags().StringVar(&opts.SeriesFile, "series", "", "YAML file with extra series definitions")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewNextCommand(opts))
	cmd.AddCommand(NewPeekCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewBackfillCommand(opts))
	cmd.AddCommand(NewCountersCommand(opts))
	cmd.AddCommand(NewSeriesCommand(opts))

	return cmd
}

// openSequencer builds a started Sequencer on the configured store. The
// caller must Stop it.
func (o *RootOptions) openSequencer(ctx context.Context, errOut io.Writer) (*docseq.Sequencer, error) {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	seqOpts := []docseq.Option{docseq.WithLogger(logger)}
	if o.SeriesFile != "" {
		series, err := loadSeriesFile(o.SeriesFile)
		if err != nil {
			return nil, err
		}
		seqOpts = append(seqOpts, docseq.WithSeries(series...))
	}

	var st store.Store
	switch o.Store {
	case "memory":
		st = memory.New()
	default:
		st = redis.New(goredis.NewClient(&goredis.Options{Addr: o.RedisAddr}), o.Namespace)
	}

	seq, err := docseq.New(st, seqOpts...)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if err := seq.Start(ctx); err != nil {
		_ = seq.Stop()
		return nil, err
	}
	return seq, nil
}

// seriesFile is the YAML layout accepted by --series.
type seriesFile struct {
	Series []counter.Series `yaml:"series"`
}

func loadSeriesFile(path string) ([]counter.Series, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read series file: %w", err)
	}
	var f seriesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse series file %s: %w", path, err)
	}
	return f.Series, nil
}
