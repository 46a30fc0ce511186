package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = "copilot.yaml"

// EnvPrefix prefixes environment overrides, e.g. COPILOT_LEDGER_PATH.
const EnvPrefix = "COPILOT"

// Config represents the top-level copilot.yaml configuration.
type Config struct {
	ReportingCurrency string        `yaml:"reporting_currency" mapstructure:"reporting_currency"`
	Ledger            LedgerConfig  `yaml:"ledger" mapstructure:"ledger"`
	Charts            ChartsConfig  `yaml:"charts" mapstructure:"charts"`
	Runway            RunwayConfig  `yaml:"runway" mapstructure:"runway"`
	Log               LogConfig     `yaml:"log" mapstructure:"log"`
	ToolLog           ToolLogConfig `yaml:"tool_log" mapstructure:"tool_log"`

	// Dir is the directory relative paths resolve against. It is the config
	// file's directory, or empty for the working directory.
	Dir string `yaml:"-" mapstructure:"-"`
}

// LedgerConfig locates the ledger source.
type LedgerConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`
	Format string `yaml:"format,omitempty" mapstructure:"format"` // "csv", "xlsx" or empty to infer
}

// ChartsConfig controls where rendered charts go.
type ChartsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// RunwayConfig sets the trailing burn window.
type RunwayConfig struct {
	DefaultMonths int `yaml:"default_months" mapstructure:"default_months"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// ToolLogConfig controls the tool call audit log.
type ToolLogConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		ReportingCurrency: "USD",
		Ledger: LedgerConfig{
			Path: "ledger",
		},
		Charts: ChartsConfig{
			Dir: "charts",
		},
		Runway: RunwayConfig{
			DefaultMonths: 3,
		},
		Log: LogConfig{
			Level: "info",
		},
		ToolLog: ToolLogConfig{
			Enabled: true,
			Path:    "logs/tool-calls.csv",
		},
	}
}

// Load reads a copilot.yaml file from disk and applies COPILOT_* environment
// overrides. Keys absent from the file keep their Default values. An empty
// path skips the file and uses defaults plus environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if path != "" {
		cfg.Dir = filepath.Dir(path)
	}
	cfg.ReportingCurrency = strings.ToUpper(strings.TrimSpace(cfg.ReportingCurrency))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("reporting_currency", d.ReportingCurrency)
	v.SetDefault("ledger.path", d.Ledger.Path)
	v.SetDefault("ledger.format", d.Ledger.Format)
	v.SetDefault("charts.dir", d.Charts.Dir)
	v.SetDefault("runway.default_months", d.Runway.DefaultMonths)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("tool_log.enabled", d.ToolLog.Enabled)
	v.SetDefault("tool_log.path", d.ToolLog.Path)
}

// Validate rejects values no command can work with.
func (c *Config) Validate() error {
	if len(c.ReportingCurrency) != 3 {
		return fmt.Errorf("invalid config: reporting_currency %q is not a 3-letter code", c.ReportingCurrency)
	}
	if c.Runway.DefaultMonths < 1 {
		return fmt.Errorf("invalid config: runway.default_months must be at least 1, got %d", c.Runway.DefaultMonths)
	}
	switch c.Ledger.Format {
	case "", "csv", "xlsx":
	default:
		return fmt.Errorf("invalid config: ledger.format %q (want csv or xlsx)", c.Ledger.Format)
	}
	return nil
}

// Resolve returns p relative to the config file's directory. Absolute paths
// are returned unchanged.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
