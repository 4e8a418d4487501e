// Package config loads server settings from defaults, an optional YAML file,
// a .env file and VISION_MCP_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. VISION_MCP_ENDPOINT.
const EnvPrefix = "VISION_MCP"

// ConfigFileEnv names the environment variable holding an optional YAML config path.
const ConfigFileEnv = EnvPrefix + "_CONFIG"

// DefaultEndpoint is the backend address used when neither config nor the
// tool call names one.
const DefaultEndpoint = "http://localhost:7589"

type Config struct {
	Endpoint  string        `mapstructure:"endpoint"`
	OutputDir string        `mapstructure:"output_dir"`
	Timeout   time.Duration `mapstructure:"timeout"`
	FnIndex   int           `mapstructure:"fn_index"`
	Log       LogConfig     `mapstructure:"log"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Mode  string `mapstructure:"mode"`
}

// ErrInvalidEndpoint is returned when the configured endpoint is not an http(s) URL.
var ErrInvalidEndpoint = errors.New("endpoint must be an http or https URL")

// Load reads configuration. An empty path skips the YAML file.
func Load(path string) (*Config, error) {
	// Missing .env is the normal case.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv loads configuration using the file named by VISION_MCP_CONFIG, if any.
func FromEnv() (*Config, error) {
	return Load(os.Getenv(ConfigFileEnv))
}

// Default returns the built-in configuration without consulting the environment.
func Default() *Config {
	return &Config{
		Endpoint:  DefaultEndpoint,
		OutputDir: "output",
		Log: LogConfig{
			Level: "info",
			Mode:  "production",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("endpoint", d.Endpoint)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("fn_index", d.FnIndex)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.mode", d.Log.Mode)
}

func (c *Config) validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidEndpoint, c.Endpoint)
	}
	if c.OutputDir == "" {
		return errors.New("output_dir must not be empty")
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if c.FnIndex < 0 {
		return errors.New("fn_index must not be negative")
	}
	return nil
}
