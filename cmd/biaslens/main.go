package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/biaslens/internal/analysis"
	"github.com/hyperifyio/biaslens/internal/api"
	"github.com/hyperifyio/biaslens/internal/app"
	"github.com/hyperifyio/biaslens/internal/extract"
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	closer := app.SetupLogging(cfg.Verbose, cfg.LogFile)
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, os.Stdout)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		closer.Close()
		os.Exit(exitCode(err))
	}
}

// loadConfig resolves configuration with precedence flags > env > config
// file > defaults. Dotenv files are loaded into the environment first.
func loadConfig(args []string) (app.Config, error) {
	fs := flag.NewFlagSet("biaslens", flag.ContinueOnError)
	var (
		configPath      = fs.String("config", "", "Path to YAML or JSON config file")
		envFiles        = fs.String("env", ".env", "Comma-separated dotenv files to load")
		showVersion     = fs.Bool("version", false, "Print version and exit")
		pageURL         = fs.String("url", "", "URL of the page to fetch and analyze")
		htmlPath        = fs.String("html", "", "Path to a saved HTML page to analyze (requires -page.url)")
		htmlURL         = fs.String("page.url", "", "Original URL of the page given with -html")
		serveAddr       = fs.String("serve", "", "Run the HTTP API on this address, e.g. :8080")
		llmKey          = fs.String("llm.key", "", "Analysis service API key (default from ANTHROPIC_API_KEY)")
		llmBase         = fs.String("llm.base", "", "Analysis service base URL")
		llmModel        = fs.String("llm.model", "", "Model name")
		llmMaxTokens    = fs.Int("llm.maxTokens", 0, "Maximum reply tokens")
		systemPrompt    = fs.String("llm.systemPrompt", "", "Override the analysis system prompt")
		systemFile      = fs.String("llm.systemPromptFile", "", "Read the analysis system prompt from a file")
		analysisTimeout = fs.Duration("analysis.timeout", 0, "Timeout for one analysis call")
		minChars        = fs.Int("extract.minChars", 0, "Minimum characters of extracted text")
		extractMode     = fs.String("extract.mode", "", "Extraction mode: cascade or readability")
		fetchTimeout    = fs.Duration("fetch.timeout", 0, "Timeout for fetching a page")
		userAgent       = fs.String("fetch.ua", "", "User-Agent for page fetches")
		cacheEntries    = fs.Int("cache.maxEntries", 0, "Maximum cached analyses")
		cacheAge        = fs.Duration("cache.maxAge", 0, "Maximum age of a cached analysis")
		format          = fs.String("format", "", "Output format: markdown or json")
		output          = fs.String("output", "", "Write the report to this file instead of stdout")
		outputPDF       = fs.String("output.pdf", "", "Also render the Markdown report to this PDF file")
		logFile         = fs.String("log.file", "", "Also write JSON logs to this rotated file")
		verbose         = fs.Bool("v", false, "Verbose logging")
	)
	if err := fs.Parse(args); err != nil {
		return app.Config{}, err
	}
	if *showVersion {
		b := app.Build()
		fmt.Printf("biaslens %s (%s, %s)\n", b.Version, b.Commit, b.Date)
		return app.Config{}, flag.ErrHelp
	}

	if err := app.LoadEnvFiles(splitList(*envFiles)...); err != nil {
		return app.Config{}, fmt.Errorf("load env files: %w", err)
	}
	cfg := app.DefaultConfig()
	if *configPath != "" {
		fc, err := app.LoadConfigFile(*configPath)
		if err != nil {
			return app.Config{}, fmt.Errorf("load config: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["url"] {
		cfg.URL = *pageURL
	}
	if set["html"] {
		cfg.HTMLPath = *htmlPath
	}
	if set["page.url"] {
		cfg.PageURL = *htmlURL
	}
	if set["serve"] {
		cfg.ServeAddr = *serveAddr
	}
	if set["llm.key"] {
		cfg.LLMAPIKey = *llmKey
	}
	if set["llm.base"] {
		cfg.LLMBaseURL = *llmBase
	}
	if set["llm.model"] {
		cfg.LLMModel = *llmModel
	}
	if set["llm.maxTokens"] {
		cfg.LLMMaxTokens = *llmMaxTokens
	}
	if set["llm.systemPrompt"] {
		cfg.SystemPrompt = *systemPrompt
	}
	// A prompt file takes precedence over an inline prompt.
	if strings.TrimSpace(*systemFile) != "" {
		b, err := os.ReadFile(*systemFile)
		if err != nil {
			return app.Config{}, fmt.Errorf("read system prompt: %w", err)
		}
		cfg.SystemPrompt = string(b)
	}
	if set["analysis.timeout"] {
		cfg.AnalysisTimeout = *analysisTimeout
	}
	if set["extract.minChars"] {
		cfg.ExtractMinChars = *minChars
	}
	if set["extract.mode"] {
		cfg.ExtractMode = *extractMode
	}
	if set["fetch.timeout"] {
		cfg.FetchTimeout = *fetchTimeout
	}
	if set["fetch.ua"] {
		cfg.UserAgent = *userAgent
	}
	if set["cache.maxEntries"] {
		cfg.CacheMaxEntries = *cacheEntries
	}
	if set["cache.maxAge"] {
		cfg.CacheMaxAge = *cacheAge
	}
	if set["format"] {
		cfg.Format = *format
	}
	if set["output"] {
		cfg.OutputPath = *output
	}
	if set["output.pdf"] {
		cfg.OutputPDFPath = *outputPDF
	}
	if set["log.file"] {
		cfg.LogFile = *logFile
	}
	if set["v"] {
		cfg.Verbose = *verbose
	}

	if cfg.URL == "" && cfg.HTMLPath == "" && cfg.ServeAddr == "" {
		return app.Config{}, errors.New("nothing to do: pass -url, -html with -page.url, or -serve")
	}
	if err := app.ValidateConfig(cfg); err != nil {
		return app.Config{}, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg app.Config, stdout io.Writer) error {
	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	if cfg.ServeAddr != "" {
		return api.Serve(ctx, cfg.ServeAddr, api.NewRouter(a))
	}

	var res app.Result
	if cfg.HTMLPath != "" {
		f, err := os.Open(cfg.HTMLPath)
		if err != nil {
			return fmt.Errorf("open html: %w", err)
		}
		defer f.Close()
		res, err = a.AnalyzeHTML(ctx, cfg.PageURL, f)
		if err != nil {
			return err
		}
	} else {
		res, err = a.AnalyzeURL(ctx, cfg.URL)
		if err != nil {
			return err
		}
	}
	log.Info().Str("url", res.Page.URL).Int("score", res.Report.PolarizationScore).Str("level", res.Level.Name).Msg("analysis complete")
	return writeOutputs(cfg, res, stdout)
}

func writeOutputs(cfg app.Config, res app.Result, stdout io.Writer) error {
	md := app.RenderMarkdown(res)
	out := []byte(md)
	if strings.EqualFold(cfg.Format, app.FormatJSON) {
		b, err := app.RenderJSON(res)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		out = append(b, '\n')
	}
	if cfg.OutputPath != "" {
		if err := os.WriteFile(cfg.OutputPath, out, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		log.Info().Str("path", cfg.OutputPath).Msg("report written")
	} else if _, err := stdout.Write(out); err != nil {
		return err
	}
	if cfg.OutputPDFPath != "" {
		if err := app.WriteReportPDF(md, cfg.OutputPDFPath); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("path", cfg.OutputPDFPath).Msg("pdf written")
	}
	return nil
}

// exitCode maps failures the user can fix by changing input or credentials
// to 2, everything else to 1.
func exitCode(err error) int {
	switch {
	case errors.Is(err, extract.ErrInsufficientContent),
		errors.Is(err, analysis.ErrNotConfigured),
		errors.Is(err, analysis.ErrUnauthorized):
		return 2
	default:
		return 1
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
