// Package extension provides the Forge extension adapter for docseq.
//
// It implements the forge.Extension interface to integrate the sequencer
// into a Forge application with DI registration and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.docseq" or "docseq" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/docseq"
	"github.com/xraph/docseq/store"
	"github.com/xraph/docseq/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "docseq"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Sequential document number issuance"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the docseq Sequencer as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config  Config
	seq     *docseq.Sequencer
	store   store.Store
	seqOpts []docseq.Option
}

// New creates a new docseq Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sequencer returns the underlying Sequencer.
// This is nil until Register is called.
func (e *Extension) Sequencer() *docseq.Sequencer { return e.seq }

// Config returns the resolved configuration.
func (e *Extension) Config() Config { return e.config }

// Register implements [forge.Extension]. It loads configuration,
// builds the sequencer, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.Logger().Warn("docseq: no store configured, using in-memory counters")
		e.store = memory.New()
	}

	seq, err := docseq.New(e.store, e.buildSequencerOpts()...)
	if err != nil {
		return err
	}
	e.seq = seq

	return vessel.Provide(fapp.Container(), func() (*docseq.Sequencer, error) {
		return e.seq, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.seq == nil {
		return errors.New("docseq: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.seq.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.seq != nil {
		if err := e.seq.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.seq == nil {
		return errors.New("docseq: sequencer not initialized")
	}
	return e.seq.Health(ctx)
}

// buildSequencerOpts constructs docseq.Option values from the resolved config.
// Pass-through options are applied last so they win over config.
func (e *Extension) buildSequencerOpts() []docseq.Option {
	opts := make([]docseq.Option, 0, len(e.seqOpts)+3)

	if e.config.DefaultPadWidth > 0 {
		opts = append(opts, docseq.WithPadWidth(e.config.DefaultPadWidth))
	}
	if e.config.PluginTimeout > 0 {
		opts = append(opts, docseq.WithPluginTimeout(e.config.PluginTimeout))
	}
	if len(e.config.Series) > 0 {
		opts = append(opts, docseq.WithSeries(e.config.Series...))
	}

	return append(opts, e.seqOpts...)
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("docseq: configuration is required but not found in config files; " +
				"ensure 'extensions.docseq' or 'docseq' key exists in your config")
		}
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("docseq: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("default_pad_width", e.config.DefaultPadWidth),
		forge.F("series", len(e.config.Series)),
		forge.F("plugin_timeout", e.config.PluginTimeout),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()

	for _, key := range []string{"extensions.docseq", "docseq"} {
		if !cm.IsSet(key) {
			continue
		}
		var cfg Config
		if err := cm.Bind(key, &cfg); err != nil {
			e.Logger().Warn("docseq: failed to bind config",
				forge.F("key", key),
				forge.F("error", err.Error()),
			)
			continue
		}
		e.Logger().Debug("docseq: loaded config from file",
			forge.F("key", key),
		)
		return cfg, true
	}

	return Config{}, false
}
