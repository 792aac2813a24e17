// Package config handles configuration loading for finchat.
// It supports YAML config files and a .env file with environment variable
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Chat backends.
const (
	BackendOpenAI = "openai"
	BackendOllama = "ollama"
)

// Config represents the complete application configuration.
type Config struct {
	LLM      LLMConfig      `mapstructure:"llm"      yaml:"llm"`
	SimFin   SimFinConfig   `mapstructure:"simfin"   yaml:"simfin"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Chat     ChatConfig     `mapstructure:"chat"     yaml:"chat"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// LLMConfig holds chat backend configuration.
type LLMConfig struct {
	Primary       string   `mapstructure:"primary"         yaml:"primary"` // "openai" or "ollama"
	Fallbacks     []string `mapstructure:"fallbacks"       yaml:"fallbacks"`
	OpenAIKey     string   `mapstructure:"openai_key"      yaml:"openai_key"`
	OpenAIBaseURL string   `mapstructure:"openai_base_url" yaml:"openai_base_url"`
	OllamaURL     string   `mapstructure:"ollama_url"      yaml:"ollama_url"`
	ChatModel     string   `mapstructure:"chat_model"      yaml:"chat_model"`
	AnalysisModel string   `mapstructure:"analysis_model"  yaml:"analysis_model"`
	LocalModel    string   `mapstructure:"local_model"     yaml:"local_model"`
	Temperature   float64  `mapstructure:"temperature"     yaml:"temperature"`
	MaxTokens     int      `mapstructure:"max_tokens"      yaml:"max_tokens"`
	HistoryWindow int      `mapstructure:"history_window"  yaml:"history_window"` // analysis request
	MaxRetries    int      `mapstructure:"max_retries"     yaml:"max_retries"`
	RetryDelayMs  int      `mapstructure:"retry_delay_ms"  yaml:"retry_delay_ms"`
	TimeoutSec    int      `mapstructure:"timeout_sec"     yaml:"timeout_sec"`
	FunctionCall  bool     `mapstructure:"function_call"   yaml:"function_call"`
}

// Timeout returns the per-request timeout.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// RetryDelay returns the pause between retries.
func (c LLMConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// SimFinConfig holds statements provider settings.
type SimFinConfig struct {
	Token      string `mapstructure:"token"        yaml:"token"`
	BaseURL    string `mapstructure:"base_url"     yaml:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec"  yaml:"timeout_sec"`
	MaxRetries int    `mapstructure:"max_retries"  yaml:"max_retries"`
	RatePerSec int    `mapstructure:"rate_per_sec" yaml:"rate_per_sec"`

	CurrencySymbols bool `mapstructure:"currency_symbols" yaml:"currency_symbols"`
}

// Timeout returns the HTTP timeout.
func (c SimFinConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// AnalysisConfig holds analysis runner settings.
type AnalysisConfig struct {
	ConcurrentFetches int    `mapstructure:"concurrent_fetches" yaml:"concurrent_fetches"`
	NewsEnabled       bool   `mapstructure:"news_enabled"       yaml:"news_enabled"`
	NewsLimit         int    `mapstructure:"news_limit"         yaml:"news_limit"`
	NewsFeedURL       string `mapstructure:"news_feed_url"      yaml:"news_feed_url"` // %s is replaced by the ticker
}

// ChatConfig holds slot-filling dialogue settings.
type ChatConfig struct {
	MaxFailedParses int  `mapstructure:"max_failed_parses" yaml:"max_failed_parses"` // 0 = unbounded
	RepairJSON      bool `mapstructure:"repair_json"       yaml:"repair_json"`
	HistoryWindow   int  `mapstructure:"history_window"    yaml:"history_window"` // 0 = full history
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// A .env file in the working directory is loaded first, if present.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.finchat/config.yaml (home directory)
//  3. /etc/finchat/config.yaml (system)
//
// Environment variables override config file values.
// Format: FINCHAT_<SECTION>_<KEY>, e.g., FINCHAT_LLM_OPENAI_KEY
func Load() (*Config, error) {
	loadDotEnv(".env")

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".finchat"))
	v.AddConfigPath("/etc/finchat")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv(".env")

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("FINCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// loadDotEnv populates the environment from path without overriding
// variables that are already set. A missing file is not an error.
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// LLM defaults
	v.SetDefault("llm.primary", BackendOpenAI)
	v.SetDefault("llm.fallbacks", []string{})
	v.SetDefault("llm.openai_key", "")
	v.SetDefault("llm.openai_base_url", "")
	v.SetDefault("llm.ollama_url", "http://localhost:11434")
	v.SetDefault("llm.chat_model", "gpt-4o-mini")
	v.SetDefault("llm.analysis_model", "gpt-3.5-turbo")
	v.SetDefault("llm.local_model", "llama3.1")
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.max_tokens", 0)
	v.SetDefault("llm.history_window", 6)
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.retry_delay_ms", 1000)
	v.SetDefault("llm.timeout_sec", 120)
	v.SetDefault("llm.function_call", false)

	// SimFin defaults
	v.SetDefault("simfin.token", "")
	v.SetDefault("simfin.base_url", "https://backend.simfin.com/api/v3")
	v.SetDefault("simfin.timeout_sec", 30)
	v.SetDefault("simfin.max_retries", 2)
	v.SetDefault("simfin.rate_per_sec", 2) // free tier limit
	v.SetDefault("simfin.currency_symbols", false)

	// Analysis defaults
	v.SetDefault("analysis.concurrent_fetches", 4)
	v.SetDefault("analysis.news_enabled", false)
	v.SetDefault("analysis.news_limit", 5)
	v.SetDefault("analysis.news_feed_url", "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US")

	// Chat defaults
	v.SetDefault("chat.max_failed_parses", 0)
	v.SetDefault("chat.repair_json", true)
	v.SetDefault("chat.history_window", 0)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// envOverrides maps sensitive settings to the variables that may carry them,
// in increasing priority.
var envOverrides = []struct {
	envVars []string
	field   func(*Config) *string
}{
	{[]string{"OPENAI_API_KEY", "FINCHAT_LLM_OPENAI_KEY"}, func(c *Config) *string { return &c.LLM.OpenAIKey }},
	{[]string{"SIMFIN_TOKEN", "FINCHAT_SIMFIN_TOKEN"}, func(c *Config) *string { return &c.SimFin.Token }},
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	for _, o := range envOverrides {
		for _, name := range o.envVars {
			if val := os.Getenv(name); val != "" {
				*o.field(cfg) = val
			}
		}
	}
}

// Validate reports configuration errors that make the given chat backend
// unusable. An empty backend means cfg.LLM.Primary.
func (c *Config) Validate(backend string) error {
	if backend == "" {
		backend = c.LLM.Primary
	}

	var errs []error
	if c.SimFin.Token == "" {
		errs = append(errs, errors.New("SIMFIN_TOKEN is not set (simfin.token)"))
	}
	switch backend {
	case BackendOpenAI:
		if c.LLM.OpenAIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is not set (llm.openai_key)"))
		}
	case BackendOllama:
		if c.LLM.OllamaURL == "" {
			errs = append(errs, errors.New("llm.ollama_url is empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown chat backend %q (want %s or %s)", backend, BackendOpenAI, BackendOllama))
	}
	if c.Analysis.ConcurrentFetches < 1 {
		errs = append(errs, fmt.Errorf("analysis.concurrent_fetches must be at least 1, got %d", c.Analysis.ConcurrentFetches))
	}
	if c.Chat.MaxFailedParses < 0 {
		errs = append(errs, fmt.Errorf("chat.max_failed_parses must not be negative, got %d", c.Chat.MaxFailedParses))
	}
	return errors.Join(errs...)
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
