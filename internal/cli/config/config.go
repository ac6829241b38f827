package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Formats accepted for output.format
var Formats = []string{"table", "json", "yaml"}

// Config represents the filemap configuration
type Config struct {
	Output   OutputConfig   `mapstructure:"output"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Serve    ServeConfig    `mapstructure:"serve"`
	Watch    WatchConfig    `mapstructure:"watch"`
	// File is the config file that was read, empty when defaults were used
	File string `mapstructure:"-"`
}

// OutputConfig controls how results are printed
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// AnalysisConfig tunes the analyzer
type AnalysisConfig struct {
	// Concurrency bounds parallel entry analysis, 0 means one per CPU
	Concurrency int `mapstructure:"concurrency"`
	CacheSize   int `mapstructure:"cache_size"`
}

// ServeConfig represents report server configuration
type ServeConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// WatchConfig represents metafile watching configuration
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Load reads configuration from path, or from filemap.yml / filemap.yaml
// in the working directory when path is empty. A missing default file is
// not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("output.format", "table")
	v.SetDefault("analysis.concurrency", 0)
	v.SetDefault("analysis.cache_size", 16)
	v.SetDefault("serve.host", "localhost")
	v.SetDefault("serve.port", 4173)
	v.SetDefault("watch.debounce", 100*time.Millisecond)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("filemap")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("FILEMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.File = v.ConfigFileUsed()
	if _, err := os.Stat(config.File); err != nil {
		config.File = ""
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default returns the configuration used when no file or environment
// overrides are present
func Default() *Config {
	return &Config{
		Output:   OutputConfig{Format: "table"},
		Analysis: AnalysisConfig{CacheSize: 16},
		Serve:    ServeConfig{Host: "localhost", Port: 4173},
		Watch:    WatchConfig{Debounce: 100 * time.Millisecond},
	}
}

// ValidFormat reports whether format is one of Formats
func ValidFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

func validateConfig(cfg *Config) error {
	if !ValidFormat(cfg.Output.Format) {
		return fmt.Errorf("output.format must be one of %s, got: %s", strings.Join(Formats, ", "), cfg.Output.Format)
	}
	if cfg.Analysis.Concurrency < 0 {
		return fmt.Errorf("analysis.concurrency must not be negative, got: %d", cfg.Analysis.Concurrency)
	}
	if cfg.Serve.Port < 1 || cfg.Serve.Port > 65535 {
		return fmt.Errorf("serve.port must be between 1 and 65535, got: %d", cfg.Serve.Port)
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got: %s", cfg.Watch.Debounce)
	}
	return nil
}
