// Package config resolves runtime settings from files, environment and flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Duration parses humane interval strings ("250ms", "2s") in every config
// format; JSON also accepts raw nanoseconds for backwards compatibility.
type Duration time.Duration

// Std returns the value as a stdlib time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return d.UnmarshalText([]byte(s))
	}
	var ns int64
	if err := json.Unmarshal(b, &ns); err != nil {
		return err
	}
	*d = Duration(ns)
	return nil
}

// Config holds runtime parameters for the pipeline and CLI.
type Config struct {
	ModelsDir        string   `json:"models_dir" yaml:"models_dir" toml:"models_dir" envconfig:"CUTEMLX_MODELS_DIR"`
	Model            string   `json:"model" yaml:"model" toml:"model" envconfig:"CUTEMLX_MODEL"`
	MaxTokens        int      `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens" envconfig:"CUTEMLX_MAX_TOKENS"`
	Temperature      float64  `json:"temperature" yaml:"temperature" toml:"temperature" envconfig:"CUTEMLX_TEMPERATURE"`
	ThrottleInterval Duration `json:"throttle_interval" yaml:"throttle_interval" toml:"throttle_interval" envconfig:"CUTEMLX_THROTTLE_INTERVAL"`
	Thinking         bool     `json:"thinking" yaml:"thinking" toml:"thinking" envconfig:"CUTEMLX_THINKING"`
	ContextSize      int      `json:"context_size" yaml:"context_size" toml:"context_size" envconfig:"CUTEMLX_CONTEXT_SIZE"`
	Threads          int      `json:"threads" yaml:"threads" toml:"threads" envconfig:"CUTEMLX_THREADS"`
	Seed             int64    `json:"seed" yaml:"seed" toml:"seed" envconfig:"CUTEMLX_SEED"`
	SystemPrompt     string   `json:"system_prompt" yaml:"system_prompt" toml:"system_prompt" envconfig:"CUTEMLX_SYSTEM_PROMPT"`
	LogLevel         string   `json:"log_level" yaml:"log_level" toml:"log_level" envconfig:"CUTEMLX_LOG_LEVEL"`
	LogFormat        string   `json:"log_format" yaml:"log_format" toml:"log_format" envconfig:"CUTEMLX_LOG_FORMAT"`
	DebugAddr        string   `json:"debug_addr" yaml:"debug_addr" toml:"debug_addr" envconfig:"CUTEMLX_DEBUG_ADDR"`
}

// Default returns the configuration used when nothing else is specified.
// Threads 0 means "use every CPU"; Seed 0 means "fresh seed per run";
// DebugAddr "" keeps the debug listener off.
func Default() Config {
	return Config{
		ModelsDir:        "~/models",
		MaxTokens:        1024,
		Temperature:      0.7,
		ThrottleInterval: Duration(250 * time.Millisecond),
		ContextSize:      4096,
		LogLevel:         "info",
		LogFormat:        "console",
	}
}

// Load reads a configuration file based on its extension, overlaying it on
// the defaults so partial files work. Supports .yaml/.yml, .json, .toml.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// FromEnv overlays CUTEMLX_* environment variables onto cfg. Only variables
// that are set change anything. The struct tags carry the full variable
// names and the prefix stays empty, so nothing but the exact CUTEMLX_* names
// is ever consulted.
func FromEnv(cfg *Config) error {
	return envconfig.Process("", cfg)
}

// Validate rejects values the pipeline cannot run with.
func (c Config) Validate() error {
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be in [0, 2], got %g", c.Temperature)
	}
	if c.ThrottleInterval <= 0 {
		return fmt.Errorf("throttle_interval must be positive, got %s", c.ThrottleInterval)
	}
	if c.ContextSize <= 0 {
		return fmt.Errorf("context_size must be positive, got %d", c.ContextSize)
	}
	if c.Threads < 0 {
		return fmt.Errorf("threads must not be negative, got %d", c.Threads)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	return nil
}
