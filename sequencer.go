package docseq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/xraph/docseq/backfill"
	"github.com/xraph/docseq/counter"
	"github.com/xraph/docseq/id"
	"github.com/xraph/docseq/issuance"
	"github.com/xraph/docseq/number"
	"github.com/xraph/docseq/plugin"
	"github.com/xraph/docseq/store"
)

// Sequencer issues document numbers. It holds no counter state of its own:
// every increment is delegated to the store's atomic primitive, so any
// number of Sequencers may share one store.
type Sequencer struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger
	now     func() time.Time

	series   map[string]counter.Series
	padWidth int
	initErr  error
}

// New creates a Sequencer on s with the default series registered.
func New(s store.Store, opts ...Option) (*Sequencer, error) {
	seq := &Sequencer{
		store:    s,
		plugins:  plugin.NewRegistry(),
		logger:   slog.Default(),
		now:      time.Now,
		series:   make(map[string]counter.Series),
		padWidth: number.DefaultPadWidth,
	}
	for _, ser := range counter.DefaultSeries() {
		seq.series[ser.Key] = ser
	}

	for _, opt := range opts {
		opt(seq)
	}
	if seq.initErr != nil {
		return nil, seq.initErr
	}

	return seq, nil
}

// Option configures a Sequencer instance.
type Option func(*Sequencer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sequencer) {
		s.logger = logger
		s.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(s *Sequencer) {
		_ = s.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithSeries registers series definitions. A definition with the key of a
// default series replaces it.
func WithSeries(series ...counter.Series) Option {
	return func(s *Sequencer) {
		seen := make(map[string]bool, len(series))
		for _, ser := range series {
			if seen[ser.Key] {
				s.initErr = errors.Join(s.initErr, fmt.Errorf("%w: %q", ErrDuplicateSeries, ser.Key))
				continue
			}
			seen[ser.Key] = true
			if err := validateSeries(ser); err != nil {
				s.initErr = errors.Join(s.initErr, err)
				continue
			}
			s.series[ser.Key] = ser
		}
	}
}

// WithPadWidth sets the pad width used by series that do not set their own.
func WithPadWidth(width int) Option {
	return func(s *Sequencer) {
		if width < 0 || width > number.MaxPadWidth {
			s.initErr = errors.Join(s.initErr, ValidationError{
				Field:   "pad_width",
				Message: fmt.Sprintf("must be between 0 and %d", number.MaxPadWidth),
			})
			return
		}
		if width > 0 {
			s.padWidth = width
		}
	}
}

// WithClock sets the time source used for issuance timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Sequencer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPluginTimeout bounds each plugin hook call.
func WithPluginTimeout(d time.Duration) Option {
	return func(s *Sequencer) {
		s.plugins.WithTimeout(d)
	}
}

// Start migrates the store and initializes plugins.
func (s *Sequencer) Start(ctx context.Context) error {
	if err := s.store.Migrate(ctx); err != nil {
		return err
	}

	s.plugins.EmitInit(ctx, s)

	s.logger.Info("sequencer started",
		"series", len(s.series),
		"pad_width", s.padWidth,
		"plugins", s.plugins.Count(),
	)

	return nil
}

// Stop notifies plugins and closes the store.
func (s *Sequencer) Stop() error {
	s.plugins.EmitShutdown(context.Background())
	return s.store.Close()
}

// Health reports whether the store is reachable.
func (s *Sequencer) Health(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return storeUnavailable(err)
	}
	return nil
}

// Plugins returns the plugin registry.
func (s *Sequencer) Plugins() *plugin.Registry { return s.plugins }

// ──────────────────────────────────────────────────
// Series registry
// ──────────────────────────────────────────────────

// Series returns the registered definition for key.
func (s *Sequencer) Series(key string) (counter.Series, bool) {
	ser, ok := s.series[key]
	return ser, ok
}

// ListSeries returns every registered series sorted by key.
func (s *Sequencer) ListSeries() []counter.Series {
	out := make([]counter.Series, 0, len(s.series))
	for _, ser := range s.series {
		out = append(out, ser)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// resolve turns a request into the series it addresses and the storage key
// of its counter.
func (s *Sequencer) resolve(ctx context.Context, req Request) (counter.Series, string, string, error) {
	if !counter.ValidKey(req.Series) {
		return counter.Series{}, "", "", fmt.Errorf("%w: %q", ErrInvalidKey, req.Series)
	}

	ser, ok := s.series[req.Series]
	switch {
	case !ok && req.Prefix == "":
		return counter.Series{}, "", "", fmt.Errorf("%w: %q", ErrUnknownSeries, req.Series)
	case !ok:
		ser = counter.Series{Key: req.Series, Prefix: req.Prefix}
	case req.Prefix != "":
		ser.Prefix = req.Prefix
	}

	if !counter.ValidPrefix(ser.Prefix) {
		return counter.Series{}, "", "", fmt.Errorf("%w: %q", ErrInvalidPrefix, ser.Prefix)
	}

	tenantID := req.TenantID
	if tenantID == "" {
		tenantID = TenantFromContext(ctx)
	}

	key := ser.StorageKey(tenantID)
	if !counter.ValidKey(key) {
		return counter.Series{}, "", "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if !ser.TenantScoped {
		tenantID = ""
	}
	return ser, key, tenantID, nil
}

func (s *Sequencer) widthFor(ser counter.Series) int {
	if ser.PadWidth > 0 {
		return ser.PadWidth
	}
	return s.padWidth
}

func (s *Sequencer) render(ser counter.Series, ordinal int64, entityName string) (string, string) {
	width := s.widthFor(ser)
	if !ser.EntityCode || entityName == "" {
		return number.Format(ser.Prefix, ordinal, width), ""
	}
	code := number.EntityCode(entityName)
	return number.FormatWithCode(ser.Prefix, code, ordinal, width), code
}

// ──────────────────────────────────────────────────
// Counter operations
// ──────────────────────────────────────────────────

// NextValue atomically increments the counter for key and returns the new
// ordinal. The counter is created with prefix on first use, so the first
// value returned for a key is 1.
func (s *Sequencer) NextValue(ctx context.Context, key, prefix string) (int64, error) {
	if !counter.ValidKey(key) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if !counter.ValidPrefix(prefix) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrefix, prefix)
	}

	v, err := s.store.NextValue(ctx, key, prefix)
	if err != nil {
		return 0, storeUnavailable(err)
	}
	return v, nil
}

// PeekValue returns the ordinal the next NextValue call would return, or 1
// for a key that has never been used. Nothing is reserved: a concurrent
// caller may take the previewed value first.
func (s *Sequencer) PeekValue(ctx context.Context, key string) (int64, error) {
	if !counter.ValidKey(key) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	v, err := s.store.PeekValue(ctx, key)
	if err != nil {
		return 0, storeUnavailable(err)
	}
	return v, nil
}

// Seed raises the counter for key to at least baseline and returns the
// resulting sequence. It never lowers a counter.
func (s *Sequencer) Seed(ctx context.Context, key, prefix string, baseline int64) (int64, error) {
	if !counter.ValidKey(key) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if !counter.ValidPrefix(prefix) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrefix, prefix)
	}
	if baseline < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidBaseline, baseline)
	}

	v, err := s.store.SeedCounter(ctx, key, prefix, baseline)
	if err != nil {
		return 0, storeUnavailable(err)
	}
	return v, nil
}

// GetCounter returns the stored counter for key.
func (s *Sequencer) GetCounter(ctx context.Context, key string) (*counter.Counter, error) {
	if !counter.ValidKey(key) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	c, err := s.store.GetCounter(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCounterNotFound) {
			return nil, err
		}
		return nil, storeUnavailable(err)
	}
	return c, nil
}

// ListCounters lists stored counters, optionally filtered by key prefix.
// A KeyPrefix of "receipt:" lists the per-tenant receipt counters.
func (s *Sequencer) ListCounters(ctx context.Context, opts counter.ListOpts) ([]*counter.Counter, error) {
	if opts.Limit < 0 || opts.Offset < 0 {
		return nil, ValidationError{Field: "list_opts", Message: "limit and offset must not be negative"}
	}

	cs, err := s.store.ListCounters(ctx, opts)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	return cs, nil
}

// ──────────────────────────────────────────────────
// Document numbers
// ──────────────────────────────────────────────────

// Issue allocates the next ordinal of the requested series and renders it.
// Any failure is reported as ErrNumberGeneration wrapping the cause, and no
// number is returned.
func (s *Sequencer) Issue(ctx context.Context, req Request) (*issuance.Issuance, error) {
	ser, key, tenantID, err := s.resolve(ctx, req)
	if err != nil {
		return nil, s.issueFailed(ctx, req.Series, key, err)
	}

	ordinal, err := s.store.NextValue(ctx, key, ser.Prefix)
	if err != nil {
		return nil, s.issueFailed(ctx, req.Series, key, storeUnavailable(err))
	}

	num, code := s.render(ser, ordinal, req.EntityName)
	iss := &issuance.Issuance{
		ID:         id.NewIssuanceID(),
		Series:     ser.Key,
		TenantID:   tenantID,
		Key:        key,
		Prefix:     ser.Prefix,
		Ordinal:    ordinal,
		EntityCode: code,
		Number:     num,
		IssuedAt:   s.now().UTC(),
	}

	s.plugins.EmitNumberIssued(ctx, iss)

	s.logger.Debug("document number issued",
		"series", iss.Series,
		"key", iss.Key,
		"number", iss.Number,
	)

	return iss, nil
}

// GenerateNextNumber issues the next number of the requested series and
// returns it formatted, e.g. "RC000123".
func (s *Sequencer) GenerateNextNumber(ctx context.Context, req Request) (string, error) {
	iss, err := s.Issue(ctx, req)
	if err != nil {
		return "", err
	}
	return iss.Number, nil
}

// Peek previews the number the next Issue call for req would return.
func (s *Sequencer) Peek(ctx context.Context, req Request) (*issuance.Preview, error) {
	ser, key, tenantID, err := s.resolve(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNumberGeneration, err)
	}

	ordinal, err := s.store.PeekValue(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNumberGeneration, storeUnavailable(err))
	}

	num, _ := s.render(ser, ordinal, req.EntityName)
	p := &issuance.Preview{
		Series:   ser.Key,
		TenantID: tenantID,
		Key:      key,
		Ordinal:  ordinal,
		Number:   num,
	}

	s.plugins.EmitNumberPeeked(ctx, p)
	return p, nil
}

// PeekNextNumber returns the formatted preview for UI display. The value is
// not reserved.
func (s *Sequencer) PeekNextNumber(ctx context.Context, req Request) (string, error) {
	p, err := s.Peek(ctx, req)
	if err != nil {
		return "", err
	}
	return p.Number, nil
}

func (s *Sequencer) issueFailed(ctx context.Context, series, key string, cause error) error {
	s.logger.Error("document number generation failed",
		"series", series,
		"key", key,
		"error", cause,
	)
	s.plugins.EmitIssueFailed(ctx, series, key, cause)
	return fmt.Errorf("%w: %w", ErrNumberGeneration, cause)
}

// ──────────────────────────────────────────────────
// Backfill
// ──────────────────────────────────────────────────

// Backfill seeds the counter of the requested series from documents that
// already carry numbers. The counter ends at max(current, baseline), so
// running it again, or after numbers have been issued, changes nothing.
func (s *Sequencer) Backfill(ctx context.Context, req Request, src backfill.Source, strategy backfill.Strategy) (*backfill.Report, error) {
	ser, key, _, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	if strategy == "" {
		strategy = backfill.StrategyMaxOrdinal
	}

	started := s.now().UTC()

	scan, err := backfill.ScanSource(ctx, src, ser.Prefix)
	if err != nil {
		return nil, err
	}
	baseline, err := scan.Baseline(strategy)
	if err != nil {
		return nil, err
	}

	seq, err := s.store.SeedCounter(ctx, key, ser.Prefix, baseline)
	if err != nil {
		return nil, storeUnavailable(err)
	}

	report := &backfill.Report{
		ID:          id.NewBackfillID(),
		Key:         key,
		Prefix:      ser.Prefix,
		Strategy:    strategy,
		Scanned:     scan.Scanned,
		Matched:     scan.Matched,
		MaxOrdinal:  scan.MaxOrdinal,
		Baseline:    baseline,
		Sequence:    seq,
		StartedAt:   started,
		CompletedAt: s.now().UTC(),
	}

	s.plugins.EmitCounterSeeded(ctx, report)

	s.logger.Info("counter backfilled",
		"key", report.Key,
		"strategy", report.Strategy,
		"scanned", report.Scanned,
		"matched", report.Matched,
		"baseline", report.Baseline,
		"sequence", report.Sequence,
	)

	return report, nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func validateSeries(ser counter.Series) error {
	if !counter.ValidKey(ser.Key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, ser.Key)
	}
	if !counter.ValidPrefix(ser.Prefix) {
		return fmt.Errorf("%w: series %q prefix %q", ErrInvalidPrefix, ser.Key, ser.Prefix)
	}
	if ser.PadWidth < 0 || ser.PadWidth > number.MaxPadWidth {
		return ValidationError{
			Field:   "series." + ser.Key + ".pad_width",
			Message: fmt.Sprintf("must be between 0 and %d", number.MaxPadWidth),
		}
	}
	return nil
}

// storeUnavailable tags a store error with ErrStoreUnavailable.
func storeUnavailable(err error) error {
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
