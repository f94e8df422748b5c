package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/nao1215/researcher/internal/config"
	"github.com/nao1215/researcher/internal/database"
	"github.com/nao1215/researcher/internal/llm"
	"github.com/nao1215/researcher/internal/log"
	"github.com/nao1215/researcher/internal/model"
	"github.com/nao1215/researcher/internal/pipeline"
	"github.com/nao1215/researcher/internal/prompt"
	"github.com/nao1215/researcher/internal/report"
	"github.com/nao1215/researcher/internal/scraper"
	"github.com/nao1215/researcher/internal/search"
	"github.com/nao1215/researcher/internal/transport"
	"github.com/spf13/cobra"
)

// errNoReports is returned when every question ended without a report.
var errNoReports = errors.New("no report was generated")

// NewResearchCmd creates the research command.
func NewResearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "research [question...]",
		Short: "Research questions and write reports",
		Long: `Research answers each question with a report.

For every question it:
- picks a research agent (or uses --agent)
- generates search queries with the smart model
- searches the web and scrapes every new result
- summarizes each page with the fast model
- writes the report with the prompt of --report-type

Each argument is one question. Quote questions that contain spaces.
Outputs are written to <output-dir>/<research id>/.

Examples:
  # Research a single question
  researcher research "How do solid-state batteries work?"

  # Pick the agent and report type
  researcher research -a "Finance Agent" -r market_report "EV charging market in Europe"

  # Write Markdown and JSON, and print the report
  researcher research --format md,json --stdout "Rust vs Go for CLIs"

  # Research every line of a file, three at a time
  researcher research --questions-file questions.txt --batch 3

  # Scrape through an embedded Tor daemon
  researcher research --tor "Tor onion service v3 design"`,
		Args: cobra.ArbitraryArgs,
		RunE: runResearchCmd,
	}

	cmd.Flags().StringP("agent", "a", prompt.AutoAgentName,
		`Agent name, or "auto" to let the model choose`)
	cmd.Flags().StringP("report-type", "r", config.DefaultReportType,
		"Report type: "+strings.Join(prompt.ReportTypes(), ", "))
	cmd.Flags().StringP("language", "l", prompt.DefaultLanguage,
		"Report language as a BCP 47 tag")
	cmd.Flags().IntP("words", "w", prompt.DefaultTotalWords,
		"Minimum report length in words")

	cmd.Flags().StringP("provider", "P", config.DefaultProvider,
		"LLM provider: openai, anthropic or gemini")
	cmd.Flags().String("smart-model", "",
		"Model for queries and reports (default depends on provider)")
	cmd.Flags().String("fast-model", "",
		"Model for page summaries (default depends on provider)")

	cmd.Flags().StringP("search", "s", config.DefaultSearchProvider,
		"Search provider: tavily (falls back to duckduckgo) or duckduckgo")
	cmd.Flags().IntP("max-results", "n", config.DefaultMaxResults,
		"Maximum URLs taken from one search")
	cmd.Flags().IntP("queries", "q", config.DefaultNumQueries,
		"Search queries generated per question")
	cmd.Flags().Bool("channels", false,
		"Also search community and review sites for every query")

	cmd.Flags().IntP("concurrency", "C", config.DefaultConcurrency,
		"Pages scraped and summarized at once")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Questions researched at once")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each search and scrape request")

	cmd.Flags().StringP("output-dir", "o", config.DefaultOutputDir,
		"Root directory for research outputs")
	cmd.Flags().StringSliceP("format", "f", []string{config.FormatMarkdown},
		"Report formats: md, txt, json")
	cmd.Flags().Bool("stdout", false,
		"Print each report to stdout")
	cmd.Flags().Bool("lessons", false,
		"Extract key concepts and write a lesson for each")
	cmd.Flags().Bool("no-cache", false,
		"Discard cached summaries and research again")

	cmd.Flags().StringP("proxy", "x", "",
		"Scrape through a SOCKS5 proxy (e.g., "+config.DefaultProxyAddress+")")
	cmd.Flags().Bool("tor", false,
		"Scrape through an embedded Tor daemon")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .researcher.yaml in current, config or home directory)")
	cmd.Flags().StringP("questions-file", "i", "",
		"File with one question per line")

	return cmd
}

func runResearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.New(os.Stderr, log.Options{
		Verbose: cfg.Verbose,
		JSON:    cfg.LogFormat == "json",
	})
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Progress goes to stderr when reports are printed to stdout.
	progress := cmd.OutOrStdout()
	if cfg.Stdout {
		progress = cmd.ErrOrStderr()
	}

	return runResearch(ctx, cfg, logger, progress, cmd.OutOrStdout())
}

func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

func getLogFormatFlag(cmd *cobra.Command) string {
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		format, err = cmd.Root().PersistentFlags().GetString("log-format")
		if err != nil {
			return "text"
		}
	}
	return format
}

// buildConfig layers the configuration file over the defaults and the
// explicitly set flags over both.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(cf)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if flags.Changed("provider") {
		provider, err := flags.GetString("provider")
		if err != nil {
			return nil, err
		}
		if provider != cfg.Provider {
			cfg.Provider = provider
			cfg.SmartModel, cfg.FastModel = config.DefaultModels(provider)
		}
	}

	setters := []error{
		changedString(cmd, "smart-model", &cfg.SmartModel),
		changedString(cmd, "fast-model", &cfg.FastModel),
		changedString(cmd, "agent", &cfg.Agent),
		changedString(cmd, "report-type", &cfg.ReportType),
		changedString(cmd, "language", &cfg.Language),
		changedInt(cmd, "words", &cfg.TotalWords),
		changedString(cmd, "search", &cfg.SearchProvider),
		changedInt(cmd, "max-results", &cfg.MaxResults),
		changedInt(cmd, "queries", &cfg.NumQueries),
		changedBool(cmd, "channels", &cfg.Channels),
		changedInt(cmd, "concurrency", &cfg.Concurrency),
		changedInt(cmd, "batch", &cfg.BatchSize),
		changedDuration(cmd, "timeout", &cfg.Timeout),
		changedString(cmd, "output-dir", &cfg.OutputDir),
		changedStringSlice(cmd, "format", &cfg.Formats),
		changedBool(cmd, "stdout", &cfg.Stdout),
		changedBool(cmd, "lessons", &cfg.Lessons),
		changedBool(cmd, "no-cache", &cfg.NoCache),
		changedString(cmd, "proxy", &cfg.ProxyAddress),
		changedBool(cmd, "tor", &cfg.UseEmbeddedTor),
		changedDuration(cmd, "tor-timeout", &cfg.TorStartupTimeout),
	}
	if err := errors.Join(setters...); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.LogFormat = getLogFormatFlag(cmd)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("unknown log format %q: must be text or json", cfg.LogFormat)
	}

	for _, arg := range args {
		if q := strings.TrimSpace(arg); q != "" {
			cfg.Questions = append(cfg.Questions, q)
		}
	}

	questionsFile, err := flags.GetString("questions-file")
	if err != nil {
		return nil, err
	}
	if questionsFile != "" {
		questions, err := readQuestionsFile(questionsFile)
		if err != nil {
			return nil, err
		}
		cfg.Questions = append(cfg.Questions, questions...)
	}

	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

func changedString(cmd *cobra.Command, name string, dst *string) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func changedStringSlice(cmd *cobra.Command, name string, dst *[]string) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetStringSlice(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func changedInt(cmd *cobra.Command, name string, dst *int) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func changedBool(cmd *cobra.Command, name string, dst *bool) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func changedDuration(cmd *cobra.Command, name string, dst *time.Duration) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetDuration(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// readQuestionsFile returns the non-empty lines of path. Lines starting
// with # are comments.
func readQuestionsFile(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided questions file is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open questions file: %w", err)
	}
	defer f.Close()

	var questions []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		questions = append(questions, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read questions file: %w", err)
	}
	return questions, nil
}

func runResearch(ctx context.Context, cfg *config.Config, logger *slog.Logger, progress, stdout io.Writer) error {
	logger.Info("starting research",
		"questions", len(cfg.Questions),
		"provider", cfg.Provider,
		"reportType", cfg.ReportType,
		"batchSize", cfg.BatchSize,
	)

	httpClient, embeddedTor, err := newHTTPClient(ctx, cfg, logger, progress)
	if err != nil {
		return err
	}
	if embeddedTor != nil {
		defer func() {
			logger.Info("stopping embedded Tor daemon...")
			if err := embeddedTor.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}()
	}

	creds := config.LLMCredentials(cfg.Provider)
	client, err := llm.New(ctx, cfg.Provider, llm.Settings{
		APIKey:  creds.APIKey,
		BaseURL: creds.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	agent := llm.NewAgent(client,
		llm.WithModels(cfg.SmartModel, cfg.FastModel),
		llm.WithTemperature(cfg.Temperature),
		llm.WithMaxTokens(cfg.MaxTokens),
		llm.WithTimeouts(cfg.LLMTimeout, cfg.ReportTimeout),
		llm.WithAgentLogger(logger),
	)

	var db *database.ResearchDB
	if cfg.DBDir != "" {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	store := report.NewStore(cfg.OutputDir, getVersion())

	deps := pipeline.Deps{
		LLM:     agent,
		Search:  newSearchProvider(cfg, httpClient, logger),
		Scraper: newScraper(cfg, httpClient, logger),
		Roles:   prompt.NewRoles(cfg.CustomAgents()),
		Files:   store,
	}
	// A nil *ResearchDB must not become a non-nil SummaryDB.
	if db != nil {
		deps.DB = db
	}
	settings := pipeline.Settings{
		NumQueries:   cfg.NumQueries,
		MaxResults:   cfg.MaxResults,
		Concurrency:  cfg.Concurrency,
		Channels:     cfg.Channels,
		NoCache:      cfg.NoCache,
		Lessons:      cfg.Lessons,
		TotalWords:   cfg.TotalWords,
		ReportFormat: prompt.DefaultReportFormat,
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(deps, settings,
				pipeline.WithLogger(logger),
				pipeline.WithContinueOnError(true),
			)
		},
		func(question string) *model.Research {
			return model.NewResearch(question, cfg.Agent, cfg.ReportType, cfg.Language)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	sink := &resultSink{
		cfg:      cfg,
		store:    store,
		logger:   logger,
		progress: progress,
		stdout:   stdout,
	}
	if db != nil {
		sink.db = db
	}

	fmt.Fprintf(progress, "Researching %d question(s) with %s (%s)...\n\n",
		len(cfg.Questions), cfg.Provider, cfg.SmartModel)
	startTime := time.Now()

	var mu sync.Mutex
	total := len(cfg.Questions)
	err = bp.ProcessBatchWithCallback(ctx, cfg.Questions, func(r *model.Research, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintf(progress, "[%d/%d] %s\n", index+1, total, r.Question)
		sink.handle(ctx, r)
	})

	fmt.Fprintf(progress, "\nResearch completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	if err != nil {
		return err
	}
	if sink.reports == 0 {
		return errNoReports
	}
	return nil
}

// newHTTPClient returns the client used for searching and scraping. With
// --tor it also returns the started daemon, which the caller must stop.
func newHTTPClient(ctx context.Context, cfg *config.Config, logger *slog.Logger, progress io.Writer) (*http.Client, *transport.EmbeddedTor, error) {
	if cfg.UseEmbeddedTor {
		return startEmbeddedTor(ctx, cfg, logger, progress)
	}

	if cfg.ProxyAddress != "" {
		if status := transport.CheckProxy(ctx, cfg.ProxyAddress); status != transport.ProxyStatusOK {
			return nil, nil, fmt.Errorf("proxy check failed for %s: %w", cfg.ProxyAddress, status.Err())
		}
		logger.Info("SOCKS5 proxy connection verified", "address", cfg.ProxyAddress)
	}

	client, err := transport.NewHTTPClient(transport.Options{
		Timeout:      cfg.Timeout,
		ProxyAddress: cfg.ProxyAddress,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return client, nil, nil
}

func startEmbeddedTor(ctx context.Context, cfg *config.Config, logger *slog.Logger, progress io.Writer) (*http.Client, *transport.EmbeddedTor, error) {
	fmt.Fprintln(progress, "Starting embedded Tor daemon...")
	fmt.Fprintf(progress, "This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

	embeddedTor := transport.NewEmbeddedTor(
		transport.WithStartupTimeout(cfg.TorStartupTimeout),
	)
	if err := embeddedTor.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start embedded Tor: %w", err)
	}
	logger.Info("embedded Tor daemon started", "socksAddr", embeddedTor.SocksAddr())

	client, err := embeddedTor.NewHTTPClient(cfg.Timeout)
	if err != nil {
		_ = embeddedTor.Stop() //nolint:errcheck // Best effort cleanup
		return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
	}

	if status := transport.CheckProxy(ctx, embeddedTor.SocksAddr()); status != transport.ProxyStatusOK {
		_ = embeddedTor.Stop() //nolint:errcheck // Best effort cleanup
		return nil, nil, fmt.Errorf("embedded Tor proxy check failed: %w", status.Err())
	}

	fmt.Fprintf(progress, "SOCKS proxy: %s\n\n", embeddedTor.SocksAddr())
	return client, embeddedTor, nil
}

// newSearchProvider returns DuckDuckGo alone, or Tavily with DuckDuckGo as
// fallback when Tavily is selected and TAVILY_API_KEY is set.
func newSearchProvider(cfg *config.Config, client *http.Client, logger *slog.Logger) search.Provider {
	ddg := search.NewDuckDuckGo(
		search.WithDuckDuckGoHTTPClient(client),
		search.WithDuckDuckGoUserAgent(cfg.UserAgent),
	)
	if cfg.SearchProvider == config.SearchDuckDuckGo {
		return ddg
	}

	key := config.TavilyKey()
	if key == "" {
		logger.Warn("TAVILY_API_KEY is not set, searching with duckduckgo only")
		return ddg
	}

	tavily := search.NewTavily(key,
		search.WithTavilyHTTPClient(client),
		search.WithTavilyLogger(logger),
	)
	return search.NewFallback(tavily, ddg, search.WithFallbackLogger(logger))
}

// newScraper returns a scraper that sends the configured per-host cookies
// and headers.
func newScraper(cfg *config.Config, client *http.Client, logger *slog.Logger) *scraper.Scraper {
	withHeaders := transport.WithSiteHeaders(client, func(host string) transport.SiteHeaders {
		sc := cfg.SiteConfig(host)
		return transport.SiteHeaders{Cookie: sc.Cookie, Headers: sc.Headers}
	})
	return scraper.New(withHeaders,
		scraper.WithUserAgent(cfg.UserAgent),
		scraper.WithMaxBodySize(cfg.MaxBodySize),
		scraper.WithMaxTextChars(cfg.MaxTextChars),
		scraper.WithLogger(logger),
	)
}

// reportSaver persists finished research. *database.ResearchDB implements it.
type reportSaver interface {
	SaveReport(ctx context.Context, r *model.Research) (string, error)
}

// resultSink writes the outputs of each finished research. Calls must be
// serialized by the caller.
type resultSink struct {
	cfg      *config.Config
	store    *report.Store
	db       reportSaver
	logger   *slog.Logger
	progress io.Writer
	stdout   io.Writer

	// reports counts the research runs that produced a report.
	reports int
}

// handle writes the report files and lessons of r, stores it in the
// database and prints it when requested. Failures are logged so one
// question never stops the others.
func (s *resultSink) handle(ctx context.Context, r *model.Research) {
	if r.Report != "" {
		s.reports++
	}
	if r.TimedOut {
		fmt.Fprintln(s.progress, "  cancelled before completion")
	}
	for _, e := range r.Errors {
		s.logger.Debug("degraded stage", "research", r.ID, "error", e)
	}

	paths, err := s.store.WriteReport(r, s.cfg.Formats)
	if err != nil {
		s.logger.Error("failed to write report", "research", r.ID, "error", err)
	}
	lessons, err := s.store.WriteLessons(r)
	if err != nil {
		s.logger.Error("failed to write lessons", "research", r.ID, "error", err)
	}
	for _, p := range append(paths, lessons...) {
		fmt.Fprintf(s.progress, "  wrote %s\n", p)
	}

	if s.db != nil {
		id, err := s.db.SaveReport(context.WithoutCancel(ctx), r)
		if err != nil {
			s.logger.Error("failed to save report", "research", r.ID, "error", err)
		} else {
			fmt.Fprintf(s.progress, "  saved as %s\n", id)
		}
	}

	if s.cfg.Stdout {
		if _, err := report.NewMarkdownWriter(s.stdout).Write(r); err != nil {
			s.logger.Error("failed to print report", "research", r.ID, "error", err)
		}
	}
}
