package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/researcher/internal/prompt"
)

// LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Search providers.
const (
	SearchTavily     = "tavily"
	SearchDuckDuckGo = "duckduckgo"
)

// Output formats.
const (
	FormatMarkdown = "md"
	FormatText     = "txt"
	FormatJSON     = "json"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "researcher"

	// DefaultProvider is the LLM provider used when none is configured.
	DefaultProvider = ProviderOpenAI

	// DefaultSearchProvider is tried first. DuckDuckGo is the fallback.
	DefaultSearchProvider = SearchTavily

	// DefaultReportType selects the general research report prompt.
	DefaultReportType = prompt.ResearchReport

	// DefaultMaxResults caps the URLs taken from a single search.
	DefaultMaxResults = 7

	// DefaultNumQueries is the number of search queries generated per question.
	DefaultNumQueries = prompt.DefaultNumQueries

	// DefaultConcurrency bounds the pages scraped and summarized at once.
	DefaultConcurrency = 5

	// DefaultBatchSize bounds the questions researched at once.
	DefaultBatchSize = 2

	// DefaultTimeout applies to each search and scrape HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultLLMTimeout applies to each summarize or query generation call.
	DefaultLLMTimeout = 2 * time.Minute

	// DefaultReportTimeout applies to the final report call, which is the
	// longest generation of a run.
	DefaultReportTimeout = 5 * time.Minute

	// DefaultTemperature is sent with every completion request.
	DefaultTemperature = 0.4

	// DefaultMaxTokens caps each completion.
	DefaultMaxTokens = 4096

	// DefaultMaxBodySize limits the response body read from a scraped page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultMaxTextChars limits the page text passed to the summarizer.
	DefaultMaxTextChars = 8000

	// DefaultUserAgent is sent when scraping pages.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	// DefaultOutputDir is the root of per-research output directories.
	DefaultOutputDir = "outputs"

	// DefaultTorStartupTimeout bounds the embedded Tor bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultProxyAddress is the usual local Tor SOCKS5 port.
	DefaultProxyAddress = "127.0.0.1:9050"
)

// DefaultModels returns the smart and fast model names for provider.
// The smart model writes the report and the fast model summarizes pages.
func DefaultModels(provider string) (smart, fast string) {
	switch provider {
	case ProviderAnthropic:
		return "claude-sonnet-4-5", "claude-haiku-4-5"
	case ProviderGemini:
		return "gemini-2.5-pro", "gemini-2.5-flash"
	default:
		return "gpt-4o", "gpt-4o-mini"
	}
}

// Config holds all configuration options for a research run.
// It is populated from the configuration file and CLI flags, then passed
// down explicitly rather than kept as global state.
type Config struct {
	// Questions are the research questions. Each one produces a report.
	Questions []string

	// Agent is the agent name whose role prompt frames every LLM call.
	// An empty value or "auto" lets the model choose.
	Agent string

	// ReportType selects the report prompt, e.g. research_report.
	ReportType string

	// Language is the BCP 47 tag of the report language.
	Language string

	// TotalWords is the minimum report length requested from the model.
	TotalWords int

	// Provider is the LLM backend: openai, anthropic or gemini.
	Provider string

	// SmartModel writes reports, picks agents and generates queries.
	SmartModel string

	// FastModel summarizes scraped pages.
	FastModel string

	// Temperature is the sampling temperature for all completions.
	Temperature float64

	// MaxTokens caps each completion.
	MaxTokens int

	// SearchProvider is tried first. DuckDuckGo is always the fallback.
	SearchProvider string

	// MaxResults caps the URLs taken from one search.
	MaxResults int

	// NumQueries is the number of search queries generated per question.
	NumQueries int

	// Channels expands each query with site-restricted variants.
	Channels bool

	// Concurrency bounds the pages scraped and summarized at once.
	Concurrency int

	// BatchSize bounds the questions researched at once.
	BatchSize int

	// Timeout applies to each search and scrape HTTP request.
	Timeout time.Duration

	// LLMTimeout applies to each non-report completion.
	LLMTimeout time.Duration

	// ReportTimeout applies to the final report completion.
	ReportTimeout time.Duration

	// MaxBodySize limits the bytes read from a scraped page.
	MaxBodySize int64

	// MaxTextChars limits the page text passed to the summarizer.
	MaxTextChars int

	// UserAgent is sent when scraping pages.
	UserAgent string

	// OutputDir is the root directory for per-research outputs.
	OutputDir string

	// Formats are the report file formats to write: md, txt, json.
	Formats []string

	// Stdout prints the report to stdout in addition to writing files.
	Stdout bool

	// Lessons enables concept extraction and one lesson per concept.
	Lessons bool

	// NoCache discards cached summaries for the question before running.
	NoCache bool

	// ProxyAddress routes scraping through a SOCKS5 proxy when set.
	ProxyAddress string

	// UseEmbeddedTor starts a Tor daemon and scrapes through it.
	UseEmbeddedTor bool

	// TorStartupTimeout bounds the embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat is "text" or "json".
	LogFormat string

	// ConfigFilePath is the explicit configuration file path, if any.
	ConfigFilePath string

	// File is the loaded configuration file, nil when none was found.
	File *File

	// DBDir is the directory holding the sqlite database. Empty disables
	// persistence.
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	smart, fast := DefaultModels(DefaultProvider)
	return &Config{
		Agent:             prompt.AutoAgentName,
		ReportType:        DefaultReportType,
		Language:          prompt.DefaultLanguage,
		TotalWords:        prompt.DefaultTotalWords,
		Provider:          DefaultProvider,
		SmartModel:        smart,
		FastModel:         fast,
		Temperature:       DefaultTemperature,
		MaxTokens:         DefaultMaxTokens,
		SearchProvider:    DefaultSearchProvider,
		MaxResults:        DefaultMaxResults,
		NumQueries:        DefaultNumQueries,
		Concurrency:       DefaultConcurrency,
		BatchSize:         DefaultBatchSize,
		Timeout:           DefaultTimeout,
		LLMTimeout:        DefaultLLMTimeout,
		ReportTimeout:     DefaultReportTimeout,
		MaxBodySize:       DefaultMaxBodySize,
		MaxTextChars:      DefaultMaxTextChars,
		UserAgent:         DefaultUserAgent,
		OutputDir:         DefaultOutputDir,
		Formats:           []string{FormatMarkdown},
		TorStartupTimeout: DefaultTorStartupTimeout,
		LogFormat:         "text",
	}
}

// ApplyFile copies the non-zero defaults of f into c. It is called before
// flags are applied so that explicit flags win.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.File = f
	d := f.Defaults

	if d.Provider != "" && d.Provider != c.Provider {
		c.Provider = d.Provider
		c.SmartModel, c.FastModel = DefaultModels(d.Provider)
	}
	setString(&c.SmartModel, d.SmartModel)
	setString(&c.FastModel, d.FastModel)
	setString(&c.Agent, d.Agent)
	setString(&c.ReportType, d.ReportType)
	setString(&c.Language, d.Language)
	setString(&c.SearchProvider, d.SearchProvider)
	setString(&c.OutputDir, d.OutputDir)
	setString(&c.UserAgent, d.UserAgent)
	setInt(&c.TotalWords, d.TotalWords)
	setInt(&c.MaxResults, d.MaxResults)
	setInt(&c.NumQueries, d.NumQueries)
	setInt(&c.Concurrency, d.Concurrency)
	if d.Temperature != nil {
		c.Temperature = *d.Temperature
	}
	if len(d.Formats) > 0 {
		c.Formats = d.Formats
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

// CustomAgents returns the role prompts defined in the configuration file.
func (c *Config) CustomAgents() map[string]string {
	if c.File == nil {
		return nil
	}
	return c.File.Agents
}

// SiteConfig returns the scrape settings for host, or the zero value when
// no configuration file is loaded.
func (c *Config) SiteConfig(host string) SiteConfig {
	if c.File == nil {
		return SiteConfig{}
	}
	return c.File.GetSiteConfig(host)
}

// XDGDataDir returns the XDG data directory for researcher.
// On Linux: ~/.local/share/researcher
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for researcher.
// On Linux: ~/.config/researcher
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for researcher.
// On Linux: ~/.cache/researcher
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Questions) == 0 {
		return ErrNoQuestion
	}
	for _, q := range c.Questions {
		if q == "" {
			return ErrNoQuestion
		}
	}

	if !prompt.IsReportType(c.ReportType) {
		return fmt.Errorf("%w: %q", ErrUnknownReportType, c.ReportType)
	}

	switch c.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}

	switch c.SearchProvider {
	case SearchTavily, SearchDuckDuckGo:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSearchProvider, c.SearchProvider)
	}

	for _, f := range c.Formats {
		switch f {
		case FormatMarkdown, FormatText, FormatJSON:
		default:
			return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}
	}

	if c.Timeout <= 0 || c.LLMTimeout <= 0 || c.ReportTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxResults <= 0 {
		return ErrInvalidMaxResults
	}

	if c.NumQueries <= 0 {
		return ErrInvalidNumQueries
	}

	if c.Concurrency <= 0 || c.BatchSize <= 0 {
		return ErrInvalidConcurrency
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.ProxyAddress != "" && c.UseEmbeddedTor {
		return ErrConflictingProxy
	}

	return nil
}
