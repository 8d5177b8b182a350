// Package config loads subtran settings from flags, environment, a YAML
// config file and built-in defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/valpere/subtran/internal/translator"
)

// EnvPrefix prefixes every environment variable read, e.g. SUBTRAN_TARGET_LANG.
const EnvPrefix = "SUBTRAN"

// Config holds the resolved settings.
type Config struct {
	TargetLang string   `mapstructure:"target_lang"`
	SourceLang string   `mapstructure:"source_lang"`
	OutputDir  string   `mapstructure:"output_dir"`
	Provider   string   `mapstructure:"provider"`
	Services   []string `mapstructure:"services"`
	DB         string   `mapstructure:"db"`
	NoCache    bool     `mapstructure:"no_cache"`
	LogLevel   string   `mapstructure:"log_level"`
	LogFormat  string   `mapstructure:"log_format"`
	Editor     string   `mapstructure:"editor"`
	Arbiter    bool     `mapstructure:"arbiter"`
	Refine     bool     `mapstructure:"refine"`

	MaxAttempts int           `mapstructure:"max_attempts"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
	Timeout     time.Duration `mapstructure:"timeout"`

	Google     translator.ServiceConfig `mapstructure:"google"`
	Ollama     translator.ServiceConfig `mapstructure:"ollama"`
	OpenRouter translator.ServiceConfig `mapstructure:"openrouter"`
	Systran    translator.ServiceConfig `mapstructure:"systran"`
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("target_lang", "")
	v.SetDefault("source_lang", "auto")
	v.SetDefault("output_dir", "")
	v.SetDefault("editor", "")
	v.SetDefault("provider", "manual")
	v.SetDefault("services", []string{"google"})
	v.SetDefault("db", filepath.Join(dataDir(), "subtran.db"))
	v.SetDefault("no_cache", false)
	v.SetDefault("arbiter", false)
	v.SetDefault("refine", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("max_attempts", 3)
	v.SetDefault("retry_delay", 2*time.Second)
	v.SetDefault("timeout", 5*time.Minute)
	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3.1:8b")

	// Secrets have empty defaults so SUBTRAN_* variables reach Unmarshal.
	v.SetDefault("google.credentials", "")
	v.SetDefault("google.api_key", "")
	v.SetDefault("google.project_id", "")
	v.SetDefault("openrouter.api_key", "")
	v.SetDefault("systran.api_key", "")
}

// Load reads the configuration into v and decodes it. file names an explicit
// config file, which must exist; without it the default location is tried
// and a missing file there is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &cfg, nil
}

// DefaultDir is $XDG_CONFIG_HOME/subtran, falling back to the user config
// directory of the platform.
func DefaultDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "subtran")
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "subtran")
	}
	return "."
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "subtran")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "subtran")
	}
	return "data"
}
