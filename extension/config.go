package extension

import (
	"time"

	"github.com/xraph/docseq/counter"
)

// Config holds the docseq extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.docseq" or "docseq" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// DefaultPadWidth is the zero-pad width for series that do not set
	// their own (default: 6).
	DefaultPadWidth int `json:"default_pad_width" mapstructure:"default_pad_width" yaml:"default_pad_width"`

	// Series adds or overrides series definitions, e.g. to make receipts
	// tenant scoped.
	Series []counter.Series `json:"series" mapstructure:"series" yaml:"series"`

	// PluginTimeout bounds each plugin hook call (default: 5s).
	PluginTimeout time.Duration `json:"plugin_timeout" mapstructure:"plugin_timeout" yaml:"plugin_timeout"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DefaultPadWidth: 6,
		PluginTimeout:   5 * time.Second,
	}
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.DefaultPadWidth == 0 {
		cfg.DefaultPadWidth = defaults.DefaultPadWidth
	}
	if cfg.PluginTimeout == 0 {
		cfg.PluginTimeout = defaults.PluginTimeout
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic values fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	if yamlConfig.DefaultPadWidth == 0 && programmaticConfig.DefaultPadWidth != 0 {
		yamlConfig.DefaultPadWidth = programmaticConfig.DefaultPadWidth
	}
	if yamlConfig.PluginTimeout == 0 && programmaticConfig.PluginTimeout != 0 {
		yamlConfig.PluginTimeout = programmaticConfig.PluginTimeout
	}

	// Series from both sources; file entries win on key clashes.
	if len(programmaticConfig.Series) > 0 {
		fromFile := make(map[string]bool, len(yamlConfig.Series))
		for _, s := range yamlConfig.Series {
			fromFile[s.Key] = true
		}
		for _, s := range programmaticConfig.Series {
			if !fromFile[s.Key] {
				yamlConfig.Series = append(yamlConfig.Series, s)
			}
		}
	}

	return mergeWithDefaults(yamlConfig)
}
