package extension

import (
	"time"

	"github.com/xraph/docseq"
	"github.com/xraph/docseq/counter"
	"github.com/xraph/docseq/plugin"
	"github.com/xraph/docseq/store"
)

// Option configures the docseq Forge extension.
type Option func(*Extension)

// WithStore sets the store for the sequencer.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithSequencerOption passes a docseq.Option through to the underlying sequencer.
func WithSequencerOption(opt docseq.Option) Option {
	return func(e *Extension) {
		e.seqOpts = append(e.seqOpts, opt)
	}
}

// WithPlugin registers a docseq plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.seqOpts = append(e.seqOpts, docseq.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithPadWidth sets the default zero-pad width.
func WithPadWidth(width int) Option {
	return func(e *Extension) { e.config.DefaultPadWidth = width }
}

// WithSeries adds series definitions.
func WithSeries(series ...counter.Series) Option {
	return func(e *Extension) { e.config.Series = append(e.config.Series, series...) }
}

// WithPluginTimeout bounds each plugin hook call.
func WithPluginTimeout(d time.Duration) Option {
	return func(e *Extension) { e.config.PluginTimeout = d }
}
