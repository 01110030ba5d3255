package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete pcbfuse configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Output     OutputConfig     `json:"output" mapstructure:"output"`
	Budget     BudgetConfig     `json:"budget" mapstructure:"budget"`
	Compaction CompactionConfig `json:"compaction" mapstructure:"compaction"`
	Logging    LoggingConfig    `json:"logging" mapstructure:"logging"`
}

// OutputConfig contains output document settings
type OutputConfig struct {
	// Path is the default output file when --output is not given
	Path string `json:"path" mapstructure:"path"`
	// Compress gzips the output document
	Compress bool `json:"compress" mapstructure:"compress"`
}

// BudgetConfig contains token budget settings
type BudgetConfig struct {
	// TokenLimit is the default maximum token count for the document
	TokenLimit int `json:"tokenLimit" mapstructure:"tokenLimit"`
	// Encoding names the tokenizer encoding used for counting
	Encoding string `json:"encoding" mapstructure:"encoding"`
}

// CompactionConfig contains reduction pass tuning
type CompactionConfig struct {
	// BusNetThreshold is the pin count at or above which a net is
	// treated as bus-like and may be summarized
	BusNetThreshold int `json:"busNetThreshold" mapstructure:"busNetThreshold"`

	// PinSampleCap is how many member pins a summarized net retains
	PinSampleCap int `json:"pinSampleCap" mapstructure:"pinSampleCap"`

	// MinElisionClass is the smallest (footprint, value) class size the
	// elision pass will fold into a count summary
	MinElisionClass int `json:"minElisionClass" mapstructure:"minElisionClass"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Output: OutputConfig{
			Path:     "pcb_analysis.yaml",
			Compress: false,
		},
		Budget: BudgetConfig{
			TokenLimit: 100000,
			Encoding:   "cl100k_base",
		},
		Compaction: CompactionConfig{
			BusNetThreshold: 16,
			PinSampleCap:    8,
			MinElisionClass: 2,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .pcbfuse/config.json under dir,
// returning defaults when no config file exists.
func LoadConfig(dir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(dir, ".pcbfuse"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to .pcbfuse/config.json under dir
func (c *Config) Save(dir string) error {
	configDir := filepath.Join(dir, ".pcbfuse")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(configDir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Budget.TokenLimit <= 0 {
		return &ConfigError{Field: "budget.tokenLimit", Message: "must be positive"}
	}
	if c.Compaction.BusNetThreshold < 2 {
		return &ConfigError{Field: "compaction.busNetThreshold", Message: "must be at least 2"}
	}
	if c.Compaction.PinSampleCap < 1 {
		return &ConfigError{Field: "compaction.pinSampleCap", Message: "must be at least 1"}
	}
	if c.Compaction.MinElisionClass < 2 {
		return &ConfigError{Field: "compaction.minElisionClass", Message: "must be at least 2"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
