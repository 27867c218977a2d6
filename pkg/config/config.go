// Package config provides configuration loading and validation for revstats.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/revstats/pkg/plotpage"
	"github.com/Sumatoshi-tech/revstats/pkg/stats"
)

// Sentinel validation errors.
var (
	ErrMissingRepositoryURL = errors.New("repository url is required")
	ErrInvalidGraphSize     = errors.New("graph width, height and margin must leave a drawable area")
	ErrInvalidTopAuthors    = errors.New("top authors must be positive")
)

// Default configuration values.
const (
	DefaultStorePath   = "~/.revstats/revstats.db"
	DefaultSVNBinary   = "svn"
	DefaultOutputDir   = "revstats-report"
	DefaultTheme       = "light"
	DefaultTopAuthors  = 10
	DefaultGraphWidth  = 900
	DefaultGraphHeight = 400
	DefaultGraphMargin = 20
	DefaultLogLevel    = "info"

	envPrefix  = "REVSTATS"
	configName = "revstats"
	configType = "yaml"
	homeDir    = "~/.revstats"
)

// Config holds all configuration for revstats.
type Config struct {
	Repository RepositoryConfig `mapstructure:"repository"`
	Store      StoreConfig      `mapstructure:"store"`
	SVN        SVNConfig        `mapstructure:"svn"`
	Report     ReportConfig     `mapstructure:"report"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// RepositoryConfig identifies the repository being analyzed.
type RepositoryConfig struct {
	URL string `mapstructure:"url"`
}

// StoreConfig locates the revision database.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// SVNConfig configures the svn client.
type SVNConfig struct {
	Binary string `mapstructure:"binary"`
}

// ReportConfig holds HTML report configuration.
type ReportConfig struct {
	OutputDir       string      `mapstructure:"output_dir"`
	Theme           string      `mapstructure:"theme"`
	MetricsTextfile string      `mapstructure:"metrics_textfile"`
	Exclude         []string    `mapstructure:"exclude"`
	Windows         []string    `mapstructure:"windows"`
	Graph           GraphConfig `mapstructure:"graph"`
	TopAuthors      int         `mapstructure:"top_authors"`
	WithLinks       bool        `mapstructure:"with_links"`
	MultiPage       bool        `mapstructure:"multi_page"`
	Charts          bool        `mapstructure:"charts"`
}

// GraphConfig sizes SVG graphs in pixels.
type GraphConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
	Margin int `mapstructure:"margin"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	Environment  string  `mapstructure:"environment"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
}

// LoadOptions controls where configuration comes from.
type LoadOptions struct {
	// Path is an explicit config file. Empty searches ./revstats.yaml and
	// ~/.revstats/revstats.yaml; a missing file is not an error then.
	Path string

	// Overrides take precedence over every other source. Keys use the
	// dotted form, e.g. "report.output_dir".
	Overrides map[string]any
}

// LoadConfig loads configuration from defaults, file, environment variables
// (REVSTATS_ prefix, dots become underscores) and overrides, in increasing
// precedence.
func LoadConfig(opts LoadOptions) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if opts.Path != "" {
		path, err := homedir.Expand(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("expand config path: %w", err)
		}

		viperCfg.SetConfigFile(path)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.SetConfigType(configType)
		viperCfg.AddConfigPath(".")

		if home, err := homedir.Expand(homeDir); err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	for key, value := range opts.Overrides {
		viperCfg.Set(key, value)
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	expanded, err := homedir.Expand(config.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("expand store path: %w", err)
	}

	config.Store.Path = filepath.Clean(expanded)

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("repository.url", "")
	viperCfg.SetDefault("store.path", DefaultStorePath)
	viperCfg.SetDefault("svn.binary", DefaultSVNBinary)

	// Report defaults.
	viperCfg.SetDefault("report.output_dir", DefaultOutputDir)
	viperCfg.SetDefault("report.theme", DefaultTheme)
	viperCfg.SetDefault("report.metrics_textfile", "")
	viperCfg.SetDefault("report.exclude", []string{})
	viperCfg.SetDefault("report.windows", windowNames(stats.Windows()))
	viperCfg.SetDefault("report.top_authors", DefaultTopAuthors)
	viperCfg.SetDefault("report.with_links", true)
	viperCfg.SetDefault("report.multi_page", false)
	viperCfg.SetDefault("report.charts", true)
	viperCfg.SetDefault("report.graph.width", DefaultGraphWidth)
	viperCfg.SetDefault("report.graph.height", DefaultGraphHeight)
	viperCfg.SetDefault("report.graph.margin", DefaultGraphMargin)

	// Logging defaults.
	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.json", false)

	// Telemetry defaults.
	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.environment", "")
	viperCfg.SetDefault("telemetry.sample_ratio", 0.0)
}

func windowNames(windows []stats.Window) []string {
	names := make([]string, len(windows))
	for i, w := range windows {
		names[i] = string(w)
	}

	return names
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	graph := config.Report.Graph
	if graph.Width <= 0 || graph.Height <= 0 || graph.Margin < 0 ||
		2*graph.Margin >= graph.Width || 2*graph.Margin >= graph.Height {
		return fmt.Errorf("%w: %dx%d margin %d", ErrInvalidGraphSize, graph.Width, graph.Height, graph.Margin)
	}

	if config.Report.TopAuthors <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTopAuthors, config.Report.TopAuthors)
	}

	if _, err := config.Report.ParsedWindows(); err != nil {
		return err
	}

	if _, err := plotpage.ParseTheme(config.Report.Theme); err != nil {
		return fmt.Errorf("report.theme: %w", err)
	}

	return nil
}

// RequireRepository fails with ErrMissingRepositoryURL when no repository
// URL is configured.
func (c *Config) RequireRepository() error {
	if strings.TrimSpace(c.Repository.URL) == "" {
		return ErrMissingRepositoryURL
	}

	return nil
}

// ParsedWindows returns the configured time windows.
func (r ReportConfig) ParsedWindows() ([]stats.Window, error) {
	windows := make([]stats.Window, 0, len(r.Windows))

	for _, name := range r.Windows {
		w, err := stats.ParseWindow(name)
		if err != nil {
			return nil, fmt.Errorf("report.windows: %w", err)
		}

		windows = append(windows, w)
	}

	return windows, nil
}
