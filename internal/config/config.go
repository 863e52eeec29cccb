// Package config loads process configuration from the environment, an
// optional dotenv file and command-line flags.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

const (
	DefaultBaseURL = "https://api.siliconflow.cn/v1"
	DefaultModel   = "deepseek-ai/DeepSeek-V3.2"
	DefaultEnvFile = ".env"
)

// Config holds all configuration for the service.
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Language LanguageConfig
	LogLevel string
}

// ServerConfig holds HTTP listener configuration.
type ServerConfig struct {
	Host string
	Port int
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// UpstreamConfig describes the chat-completion provider.
type UpstreamConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	Timeout      time.Duration
	JSONMode     bool
	LenientParse bool
}

// LanguageConfig controls the target language and the optional detection steps.
type LanguageConfig struct {
	Target         language.Tag
	DetectSource   bool
	ValidateOutput bool
}

// flagKeys maps config keys to the flag names that may override them.
var flagKeys = map[string]string{
	"server_host":   "host",
	"server_port":   "port",
	"model":         "model",
	"base_url":      "base-url",
	"detect_source": "detect",
	"lenient_parse": "lenient",
}

// Load reads configuration. Values come from, in increasing precedence:
// defaults, envFile (if it exists), the process environment, and any flag in
// flags that was explicitly set. flags may be nil.
func Load(envFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("model", DefaultModel)
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", 8000)
	v.SetDefault("upstream_timeout", "60s")
	v.SetDefault("json_mode", true)
	v.SetDefault("lenient_parse", false)
	v.SetDefault("target_lang", "en")
	v.SetDefault("detect_source", false)
	v.SetDefault("validate_output", false)
	v.SetDefault("log_level", "info")

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
			}
		}
	}

	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	timeout, err := time.ParseDuration(v.GetString("upstream_timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT: %w", err)
	}

	target, err := language.Parse(v.GetString("target_lang"))
	if err != nil {
		return nil, fmt.Errorf("invalid TARGET_LANG: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("server_host"),
			Port: v.GetInt("server_port"),
		},
		Upstream: UpstreamConfig{
			APIKey:       strings.TrimSpace(v.GetString("api_key")),
			BaseURL:      strings.TrimRight(v.GetString("base_url"), "/"),
			Model:        v.GetString("model"),
			Timeout:      timeout,
			JSONMode:     v.GetBool("json_mode"),
			LenientParse: v.GetBool("lenient_parse"),
		},
		Language: LanguageConfig{
			Target:         target,
			DetectSource:   v.GetBool("detect_source"),
			ValidateOutput: v.GetBool("validate_output"),
		},
		LogLevel: v.GetString("log_level"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Upstream.APIKey == "" {
		return fmt.Errorf("API_KEY is required (set it in the environment or in %s)", DefaultEnvFile)
	}
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("BASE_URL must not be empty")
	}
	if c.Upstream.Model == "" {
		return fmt.Errorf("MODEL must not be empty")
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT %d out of range", c.Server.Port)
	}
	return nil
}
