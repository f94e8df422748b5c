package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig documents the defaults. Changing a default should fail here.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default provider is openai with gpt-4o models", func(t *testing.T) {
		t.Parallel()
		if cfg.Provider != ProviderOpenAI {
			t.Errorf("expected provider openai, got %q", cfg.Provider)
		}
		if cfg.SmartModel != "gpt-4o" || cfg.FastModel != "gpt-4o-mini" {
			t.Errorf("unexpected models %q/%q", cfg.SmartModel, cfg.FastModel)
		}
	})

	t.Run("default report type is research_report", func(t *testing.T) {
		t.Parallel()
		if cfg.ReportType != "research_report" {
			t.Errorf("expected research_report, got %q", cfg.ReportType)
		}
	})

	t.Run("default search is tavily capped at 7 results", func(t *testing.T) {
		t.Parallel()
		if cfg.SearchProvider != SearchTavily {
			t.Errorf("expected tavily, got %q", cfg.SearchProvider)
		}
		if cfg.MaxResults != 7 {
			t.Errorf("expected 7 max results, got %d", cfg.MaxResults)
		}
	})

	t.Run("default number of queries is 3", func(t *testing.T) {
		t.Parallel()
		if cfg.NumQueries != 3 {
			t.Errorf("expected 3 queries, got %d", cfg.NumQueries)
		}
	})

	t.Run("default timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("default format is markdown", func(t *testing.T) {
		t.Parallel()
		if len(cfg.Formats) != 1 || cfg.Formats[0] != FormatMarkdown {
			t.Errorf("expected [md], got %v", cfg.Formats)
		}
	})

	t.Run("default agent is chosen automatically", func(t *testing.T) {
		t.Parallel()
		if cfg.Agent != "auto" {
			t.Errorf("expected auto agent, got %q", cfg.Agent)
		}
	})

	t.Run("default config is valid once a question is set", func(t *testing.T) {
		t.Parallel()
		c := NewConfig()
		c.Questions = []string{"What is Go?"}
		if err := c.Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}
	})
}

func TestDefaultModels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		provider  string
		wantSmart string
		wantFast  string
	}{
		{provider: ProviderOpenAI, wantSmart: "gpt-4o", wantFast: "gpt-4o-mini"},
		{provider: ProviderAnthropic, wantSmart: "claude-sonnet-4-5", wantFast: "claude-haiku-4-5"},
		{provider: ProviderGemini, wantSmart: "gemini-2.5-pro", wantFast: "gemini-2.5-flash"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			t.Parallel()
			smart, fast := DefaultModels(tt.provider)
			if smart != tt.wantSmart || fast != tt.wantFast {
				t.Errorf("DefaultModels(%q) = %q, %q", tt.provider, smart, fast)
			}
		})
	}
}

// TestConfigValidate tests one validation rule per case.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Questions = []string{"Is nuclear energy safe?"}
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "valid config returns nil", modify: func(*Config) {}},
		{name: "no questions", modify: func(c *Config) { c.Questions = nil }, wantErr: ErrNoQuestion},
		{name: "empty question", modify: func(c *Config) { c.Questions = []string{""} }, wantErr: ErrNoQuestion},
		{name: "unknown report type", modify: func(c *Config) { c.ReportType = "poem" }, wantErr: ErrUnknownReportType},
		{name: "unknown provider", modify: func(c *Config) { c.Provider = "llama" }, wantErr: ErrUnknownProvider},
		{name: "unknown search provider", modify: func(c *Config) { c.SearchProvider = "bing" }, wantErr: ErrUnknownSearchProvider},
		{name: "unknown format", modify: func(c *Config) { c.Formats = []string{"pdf"} }, wantErr: ErrUnknownFormat},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }, wantErr: ErrInvalidTimeout},
		{name: "negative report timeout", modify: func(c *Config) { c.ReportTimeout = -time.Second }, wantErr: ErrInvalidTimeout},
		{name: "zero max results", modify: func(c *Config) { c.MaxResults = 0 }, wantErr: ErrInvalidMaxResults},
		{name: "zero queries", modify: func(c *Config) { c.NumQueries = 0 }, wantErr: ErrInvalidNumQueries},
		{name: "zero concurrency", modify: func(c *Config) { c.Concurrency = 0 }, wantErr: ErrInvalidConcurrency},
		{name: "zero batch size", modify: func(c *Config) { c.BatchSize = 0 }, wantErr: ErrInvalidConcurrency},
		{name: "negative body size", modify: func(c *Config) { c.MaxBodySize = -1 }, wantErr: ErrInvalidMaxBodySize},
		{
			name: "proxy together with embedded tor",
			modify: func(c *Config) {
				c.ProxyAddress = DefaultProxyAddress
				c.UseEmbeddedTor = true
			},
			wantErr: ErrConflictingProxy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigApplyFile(t *testing.T) {
	t.Parallel()

	t.Run("nil file is ignored", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.ApplyFile(nil)
		if cfg.File != nil {
			t.Error("expected File to stay nil")
		}
	})

	t.Run("provider switch resets models", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.ApplyFile(&File{Defaults: ResearchDefaults{Provider: ProviderAnthropic}})
		if cfg.Provider != ProviderAnthropic {
			t.Errorf("expected anthropic, got %q", cfg.Provider)
		}
		if cfg.SmartModel != "claude-sonnet-4-5" {
			t.Errorf("expected anthropic smart model, got %q", cfg.SmartModel)
		}
	})

	t.Run("explicit models win over provider defaults", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.ApplyFile(&File{Defaults: ResearchDefaults{
			Provider:   ProviderGemini,
			SmartModel: "gemini-custom",
		}})
		if cfg.SmartModel != "gemini-custom" {
			t.Errorf("expected gemini-custom, got %q", cfg.SmartModel)
		}
		if cfg.FastModel != "gemini-2.5-flash" {
			t.Errorf("expected gemini fast default, got %q", cfg.FastModel)
		}
	})

	t.Run("zero values keep defaults", func(t *testing.T) {
		t.Parallel()
		temp := 0.0
		cfg := NewConfig()
		cfg.ApplyFile(&File{Defaults: ResearchDefaults{MaxResults: 3, Temperature: &temp}})
		if cfg.MaxResults != 3 {
			t.Errorf("expected 3 max results, got %d", cfg.MaxResults)
		}
		if cfg.NumQueries != DefaultNumQueries {
			t.Errorf("expected default queries, got %d", cfg.NumQueries)
		}
		if cfg.Temperature != 0 {
			t.Errorf("expected explicit zero temperature, got %v", cfg.Temperature)
		}
	})
}

func TestGetSiteConfig(t *testing.T) {
	t.Parallel()

	file := &File{
		Sites: map[string]SiteConfig{
			DefaultSiteKey: {
				Cookie:  "consent=yes",
				Headers: map[string]string{"Accept-Language": "en"},
			},
			"news.example.com": {
				Cookie:  "session=abc",
				Headers: map[string]string{"X-Api": "1"},
			},
		},
	}

	t.Run("site overrides default", func(t *testing.T) {
		t.Parallel()
		got := file.GetSiteConfig("news.example.com")
		if got.Cookie != "session=abc" {
			t.Errorf("expected site cookie, got %q", got.Cookie)
		}
		if got.Headers["Accept-Language"] != "en" || got.Headers["X-Api"] != "1" {
			t.Errorf("expected merged headers, got %v", got.Headers)
		}
	})

	t.Run("unknown host receives default", func(t *testing.T) {
		t.Parallel()
		got := file.GetSiteConfig("other.example.com")
		if got.Cookie != "consent=yes" {
			t.Errorf("expected default cookie, got %q", got.Cookie)
		}
	})

	t.Run("merging does not mutate the default entry", func(t *testing.T) {
		t.Parallel()
		_ = file.GetSiteConfig("news.example.com")
		if _, ok := file.Sites[DefaultSiteKey].Headers["X-Api"]; ok {
			t.Error("default headers were mutated")
		}
	})

	t.Run("config without file returns zero value", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		if got := cfg.SiteConfig("news.example.com"); got.Cookie != "" || got.Headers != nil {
			t.Errorf("expected zero SiteConfig, got %+v", got)
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.researcher.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), DefaultConfigFile)

		content := `defaults:
  provider: anthropic
  reportType: outline_report
  language: ja
  maxResults: 4
  formats: [md, json]
agents:
  Chef Agent: "You are a chef. Answer in %s."
sites:
  default:
    cookie: "consent=yes"
  example.com:
    headers:
      Authorization: "Bearer token"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Defaults.Provider != ProviderAnthropic {
			t.Errorf("expected anthropic, got %q", cfg.Defaults.Provider)
		}
		if cfg.Defaults.ReportType != "outline_report" {
			t.Errorf("expected outline_report, got %q", cfg.Defaults.ReportType)
		}
		if cfg.Defaults.MaxResults != 4 {
			t.Errorf("expected 4 max results, got %d", cfg.Defaults.MaxResults)
		}
		if len(cfg.Defaults.Formats) != 2 {
			t.Errorf("expected 2 formats, got %v", cfg.Defaults.Formats)
		}
		if cfg.Agents["Chef Agent"] == "" {
			t.Error("expected Chef Agent role prompt")
		}
		site := cfg.GetSiteConfig("example.com")
		if site.Cookie != "consent=yes" || site.Headers["Authorization"] != "Bearer token" {
			t.Errorf("unexpected site config %+v", site)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), DefaultConfigFile)

		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil maps", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), DefaultConfigFile)

		if err := os.WriteFile(configPath, []byte("defaults:\n  queries: 5\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Sites == nil || cfg.Agents == nil {
			t.Error("expected Sites and Agents maps to be initialized")
		}
		if cfg.Defaults.NumQueries != 5 {
			t.Errorf("expected 5 queries, got %d", cfg.Defaults.NumQueries)
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), "custom.yaml")

		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()
		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

func TestLLMCredentials(t *testing.T) {
	t.Setenv(EnvAnthropicKey, "ak")
	t.Setenv(EnvAnthropicBaseURL, "http://localhost:1234")
	t.Setenv(EnvOpenAIKey, "ok")
	t.Setenv(EnvGeminiKey, "gk")
	t.Setenv(EnvTavilyKey, "tk")

	if c := LLMCredentials(ProviderAnthropic); c.APIKey != "ak" || c.BaseURL != "http://localhost:1234" {
		t.Errorf("unexpected anthropic credentials %+v", c)
	}
	if c := LLMCredentials(ProviderOpenAI); c.APIKey != "ok" {
		t.Errorf("unexpected openai credentials %+v", c)
	}
	if c := LLMCredentials(ProviderGemini); c.APIKey != "gk" {
		t.Errorf("unexpected gemini credentials %+v", c)
	}
	if TavilyKey() != "tk" {
		t.Errorf("unexpected tavily key %q", TavilyKey())
	}
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
		"cache":  XDGCacheDir(),
	} {
		if filepath.Base(dir) != AppName {
			t.Errorf("expected %s dir to end with %q, got %q", name, AppName, dir)
		}
	}
}
