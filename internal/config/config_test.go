package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var sensitiveEnv = []string{
	"OPENAI_API_KEY", "FINCHAT_LLM_OPENAI_KEY",
	"SIMFIN_TOKEN", "FINCHAT_SIMFIN_TOKEN",
}

// clearEnv blanks every variable that could leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, e := range sensitiveEnv {
		t.Setenv(e, "")
	}
}

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// LLM defaults
	if cfg.LLM.Primary != BackendOpenAI {
		t.Errorf("LLM.Primary: got %q, want %q", cfg.LLM.Primary, BackendOpenAI)
	}
	if cfg.LLM.ChatModel != "gpt-4o-mini" {
		t.Errorf("LLM.ChatModel: got %q", cfg.LLM.ChatModel)
	}
	if cfg.LLM.AnalysisModel != "gpt-3.5-turbo" {
		t.Errorf("LLM.AnalysisModel: got %q", cfg.LLM.AnalysisModel)
	}
	if cfg.LLM.Temperature != 0 {
		t.Errorf("LLM.Temperature: got %f, want 0", cfg.LLM.Temperature)
	}
	if cfg.LLM.HistoryWindow != 6 {
		t.Errorf("LLM.HistoryWindow: got %d, want 6", cfg.LLM.HistoryWindow)
	}
	if cfg.LLM.OllamaURL != "http://localhost:11434" {
		t.Errorf("LLM.OllamaURL: got %q", cfg.LLM.OllamaURL)
	}
	if cfg.LLM.Timeout().Seconds() != 120 {
		t.Errorf("LLM.Timeout: got %v", cfg.LLM.Timeout())
	}

	// SimFin defaults
	if cfg.SimFin.BaseURL != "https://backend.simfin.com/api/v3" {
		t.Errorf("SimFin.BaseURL: got %q", cfg.SimFin.BaseURL)
	}
	if cfg.SimFin.Token != "" {
		t.Errorf("SimFin.Token should be empty, got %q", cfg.SimFin.Token)
	}

	// Analysis / chat defaults
	if cfg.Analysis.ConcurrentFetches != 4 {
		t.Errorf("Analysis.ConcurrentFetches: got %d, want 4", cfg.Analysis.ConcurrentFetches)
	}
	if cfg.Analysis.NewsEnabled {
		t.Error("Analysis.NewsEnabled should default to false")
	}
	if cfg.Chat.MaxFailedParses != 0 {
		t.Errorf("Chat.MaxFailedParses: got %d, want 0", cfg.Chat.MaxFailedParses)
	}
	if !cfg.Chat.RepairJSON {
		t.Error("Chat.RepairJSON should default to true")
	}
	if cfg.Chat.HistoryWindow != 0 {
		t.Errorf("Chat.HistoryWindow: got %d, want 0", cfg.Chat.HistoryWindow)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "text")
	}
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test_config.yaml")
	content := []byte(`
llm:
  primary: "ollama"
  local_model: "mistral"
  temperature: 0.3
  history_window: 10
simfin:
  token: "simfin_token_from_file"
  rate_per_sec: 5
analysis:
  concurrent_fetches: 1
  news_enabled: true
chat:
  max_failed_parses: 3
logging:
  level: "debug"
  format: "json"
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.LLM.Primary != BackendOllama {
		t.Errorf("LLM.Primary: got %q", cfg.LLM.Primary)
	}
	if cfg.LLM.LocalModel != "mistral" {
		t.Errorf("LLM.LocalModel: got %q", cfg.LLM.LocalModel)
	}
	if cfg.LLM.Temperature != 0.3 {
		t.Errorf("LLM.Temperature: got %f, want 0.3", cfg.LLM.Temperature)
	}
	if cfg.LLM.HistoryWindow != 10 {
		t.Errorf("LLM.HistoryWindow: got %d", cfg.LLM.HistoryWindow)
	}
	if cfg.SimFin.Token != "simfin_token_from_file" {
		t.Errorf("SimFin.Token: got %q", cfg.SimFin.Token)
	}
	if cfg.SimFin.RatePerSec != 5 {
		t.Errorf("SimFin.RatePerSec: got %d", cfg.SimFin.RatePerSec)
	}
	if cfg.Analysis.ConcurrentFetches != 1 || !cfg.Analysis.NewsEnabled {
		t.Errorf("Analysis: got %+v", cfg.Analysis)
	}
	if cfg.Chat.MaxFailedParses != 3 {
		t.Errorf("Chat.MaxFailedParses: got %d", cfg.Chat.MaxFailedParses)
	}
	// Unset keys keep their defaults.
	if cfg.LLM.ChatModel != "gpt-4o-mini" {
		t.Errorf("LLM.ChatModel: got %q", cfg.LLM.ChatModel)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging: got %+v", cfg.Logging)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

func TestPrefixedEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("FINCHAT_ANALYSIS_NEWS_LIMIT", "9")

	cfgPath := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(cfgPath, []byte("analysis:\n  news_limit: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Analysis.NewsLimit != 9 {
		t.Errorf("NewsLimit: got %d, want 9", cfg.Analysis.NewsLimit)
	}
}

// ── overrideFromEnv ──

func TestOverrideFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-plain-openai-key-123456")
	t.Setenv("SIMFIN_TOKEN", "simfin-plain")

	cfg := &Config{}
	overrideFromEnv(cfg)

	if cfg.LLM.OpenAIKey != "sk-plain-openai-key-123456" {
		t.Errorf("OpenAIKey: got %q", cfg.LLM.OpenAIKey)
	}
	if cfg.SimFin.Token != "simfin-plain" {
		t.Errorf("SimFin.Token: got %q", cfg.SimFin.Token)
	}
}

func TestOverrideFromEnvPrefixedWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIMFIN_TOKEN", "plain")
	t.Setenv("FINCHAT_SIMFIN_TOKEN", "prefixed")

	cfg := &Config{}
	overrideFromEnv(cfg)
	if cfg.SimFin.Token != "prefixed" {
		t.Errorf("SimFin.Token: got %q, want prefixed", cfg.SimFin.Token)
	}
}

func TestOverrideFromEnvNoEnvSet(t *testing.T) {
	clearEnv(t)

	cfg := &Config{
		LLM: LLMConfig{OpenAIKey: "from-config"},
	}
	overrideFromEnv(cfg)

	// Should retain the original value when env is not set
	if cfg.LLM.OpenAIKey != "from-config" {
		t.Errorf("OpenAIKey should stay as 'from-config' when env is unset, got %q", cfg.LLM.OpenAIKey)
	}
}

// ── Validate ──

func validConfig() *Config {
	return &Config{
		LLM:      LLMConfig{Primary: BackendOpenAI, OpenAIKey: "sk-x", OllamaURL: "http://localhost:11434"},
		SimFin:   SimFinConfig{Token: "tok"},
		Analysis: AnalysisConfig{ConcurrentFetches: 4},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		backend string
		wantErr string
	}{
		{"ok", func(*Config) {}, "", ""},
		{"missing simfin token", func(c *Config) { c.SimFin.Token = "" }, "", "SIMFIN_TOKEN"},
		{"missing openai key", func(c *Config) { c.LLM.OpenAIKey = "" }, BackendOpenAI, "OPENAI_API_KEY"},
		{"ollama needs no key", func(c *Config) { c.LLM.OpenAIKey = "" }, BackendOllama, ""},
		{"unknown backend", func(*Config) {}, "gemini", "unknown chat backend"},
		{"zero fetches", func(c *Config) { c.Analysis.ConcurrentFetches = 0 }, "", "concurrent_fetches"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate(tc.backend)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

// ── keys ──

func TestCheckAPIKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIMFIN_TOKEN", "simfin-token-abcdef")

	cfg := &Config{
		SimFin: SimFinConfig{Token: "simfin-token-abcdef"},
		LLM:    LLMConfig{OpenAIKey: "sk-from-config-xyz"},
	}
	keys := CheckAPIKeys(cfg)
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
	if keys[0].Source != KeySourceEnv || keys[0].Masked != "sim...def" {
		t.Errorf("simfin key status: %+v", keys[0])
	}
	if keys[1].Source != KeySourceConfig || !keys[1].IsSet {
		t.Errorf("openai key status: %+v", keys[1])
	}

	empty := CheckAPIKeys(&Config{})
	for _, k := range empty {
		if k.IsSet || k.Source != KeySourceNone || k.Masked != "" {
			t.Errorf("unset key should report none: %+v", k)
		}
	}
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "***"},
		{"12345678", "***"},
		{"123456789", "123...789"},
		{"sk-abcdefghijklmnop", "sk-...nop"},
	}
	for _, tc := range tests {
		if got := maskKey(tc.input); got != tc.want {
			t.Errorf("maskKey(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
