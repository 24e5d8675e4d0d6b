package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/pagelens"
	"github.com/fwojciec/pagelens/gemini"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Config   pagelens.Config
	Scraper  pagelens.Scraper
	Analyzer pagelens.Analyzer
	Exporter pagelens.Exporter
	Store    pagelens.PageStore

	// Now returns the current time. Used to name export files.
	Now func() time.Time
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Globals

	Scrape  ScrapeCmd  `cmd:"" help:"Scrape one or more URLs"`
	Analyze AnalyzeCmd `cmd:"" help:"Scrape a URL and analyze its content"`
	History HistoryCmd `cmd:"" help:"List stored pages and their analyses"`
}

// Globals are flags shared by every command.
type Globals struct {
	Timeout     float64 `default:"30" env:"SCRAPING_TIMEOUT" help:"Per-request timeout in seconds"`
	MaxRetries  int     `default:"3" env:"MAX_RETRIES" help:"Fetch attempts per URL"`
	Delay       float64 `default:"1" env:"DELAY_BETWEEN_REQUESTS" help:"Seconds between batch requests"`
	Provider    string  `default:"openai" enum:"openai,gemini" env:"PAGELENS_PROVIDER" help:"Completion provider (openai, gemini)"`
	Model       string  `env:"OPENAI_MODEL" help:"Completion model (default depends on provider)"`
	APIKey      string  `name:"api-key" env:"OPENAI_API_KEY,GEMINI_API_KEY" help:"Completion provider API key"`
	MaxTokens   int     `default:"2000" help:"Maximum completion tokens"`
	Temperature float64 `default:"0.7" help:"Completion temperature"`
	OutputDir   string  `default:"data/processed" env:"OUTPUT_DIR" help:"Export directory"`
	UserAgent   string  `env:"USER_AGENT" help:"User-Agent header for fetches"`
	Proxy       string  `env:"HTTPS_PROXY" help:"Proxy URL for fetches"`
	DB          string  `name:"db" env:"PAGELENS_DB" help:"History database path"`
	Verbose     bool    `short:"v" help:"Enable debug logging"`
}

// Config converts the flags into a validated pagelens.Config.
func (g Globals) Config() (pagelens.Config, error) {
	cfg := pagelens.DefaultConfig()
	cfg.Timeout = seconds(g.Timeout)
	cfg.MaxRetries = g.MaxRetries
	cfg.Delay = seconds(g.Delay)
	cfg.Provider = pagelens.Provider(g.Provider)
	cfg.APIKey = g.APIKey
	cfg.MaxTokens = g.MaxTokens
	cfg.Temperature = g.Temperature
	if g.Model != "" {
		cfg.Model = g.Model
	} else if cfg.Provider == pagelens.ProviderGemini {
		cfg.Model = gemini.DefaultModel
	}
	if g.OutputDir != "" {
		cfg.OutputDir = g.OutputDir
	}
	if g.UserAgent != "" {
		cfg.UserAgent = g.UserAgent
	}
	cfg.Proxy = g.Proxy
	if err := cfg.Validate(); err != nil {
		return pagelens.Config{}, err
	}
	return cfg, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	URLs      []string          `arg:"" name:"url" help:"URLs to scrape"`
	Selectors map[string]string `short:"s" name:"selector" help:"Custom selector as name=css (repeatable)"`
	Markdown  bool              `short:"m" help:"Convert the main content to markdown"`
	Content   string            `default:"trafilatura" enum:"trafilatura,readability" help:"Main content extractor (trafilatura, readability)"`
	Format    []string          `short:"f" help:"Export format: json, csv, excel, markdown (repeatable)"`
	Name      string            `short:"o" help:"Export file name (default scrape_results_<timestamp>)"`
	Save      bool              `help:"Save records to history"`
	NoExport  bool              `help:"Print records without writing export files"`
}

// AnalyzeCmd is the "analyze" subcommand.
type AnalyzeCmd struct {
	URL      string   `arg:"" help:"URL to analyze"`
	Kind     string   `short:"k" required:"" help:"Analysis kind: summarize, entities, sentiment, classify, keywords, full, custom"`
	Prompt   string   `short:"p" help:"Prompt for the custom analysis kind"`
	Format   []string `short:"f" help:"Export format: json, csv, excel (repeatable)"`
	Name     string   `short:"o" help:"Export file name (default analysis_results_<timestamp>)"`
	Save     bool     `help:"Save the page and analysis to history"`
	NoExport bool     `help:"Print the analysis without writing export files"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	URL      string `help:"Only show pages scraped from this URL"`
	Failed   bool   `help:"Only show failed scrapes"`
	Limit    int    `short:"n" default:"20" help:"Maximum number of pages"`
	Analyses bool   `short:"a" help:"Show stored analyses for each page"`
}

// parseFormats converts format flag values, deduplicating in order.
func parseFormats(values []string) ([]pagelens.ExportFormat, error) {
	formats := make([]pagelens.ExportFormat, 0, len(values))
	for _, v := range values {
		f, err := pagelens.ParseExportFormat(v)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// exportName returns name, or prefix with a timestamp when name is empty.
func exportName(name, prefix string, now time.Time) string {
	if name != "" {
		return name
	}
	return prefix + "_" + now.Format("20060102_150405")
}
