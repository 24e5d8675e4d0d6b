package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/pagelens"
	"github.com/fwojciec/pagelens/analyze"
	"github.com/fwojciec/pagelens/fs"
	"github.com/fwojciec/pagelens/gemini"
	"github.com/fwojciec/pagelens/goquery"
	"github.com/fwojciec/pagelens/htmltomarkdown"
	pagehttp "github.com/fwojciec/pagelens/http"
	"github.com/fwojciec/pagelens/openai"
	"github.com/fwojciec/pagelens/readability"
	"github.com/fwojciec/pagelens/scrape"
	pageslog "github.com/fwojciec/pagelens/slog"
	"github.com/fwojciec/pagelens/sqlite"
	"github.com/fwojciec/pagelens/trafilatura"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", pagelens.ErrorMessage(err))
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database backing the history store. Opened only by commands
	// that need it.
	DB *sqlite.DB

	// ExportRoot is the directory exports must lie within. Defaults to the
	// working directory.
	ExportRoot string

	// OpenAIBaseURL and GeminiBaseURL override the provider endpoints.
	OpenAIBaseURL string
	GeminiBaseURL string
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Now:    time.Now,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pagelens"),
		kong.Description("Scrape web pages and analyze their content with a language model."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return pagelens.Errorf(pagelens.EINVALID, "no command specified. Run 'pagelens --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return pagelens.Errorf(pagelens.EINVALID, "%s", err.Error())
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	cfg, err := cli.Globals.Config()
	if err != nil {
		return err
	}
	deps.Config = cfg
	deps.Logger = newLogger(stderr, cli.Verbose)

	switch cmd {
	case "scrape":
		scraper, closeFn, err := m.newScraper(cfg, deps.Logger, cli.Scrape.Markdown, cli.Scrape.Content, stderr)
		if err != nil {
			return err
		}
		defer closeFn()
		deps.Scraper = scraper
		deps.Exporter = m.newExporter(cfg)
		if cli.Scrape.Save {
			if err := m.openStore(cli.DB, deps); err != nil {
				return err
			}
		}
	case "analyze":
		scraper, closeFn, err := m.newScraper(cfg, deps.Logger, false, "", stderr)
		if err != nil {
			return err
		}
		defer closeFn()
		deps.Scraper = scraper
		deps.Exporter = m.newExporter(cfg)
		if cli.Analyze.Save {
			if err := m.openStore(cli.DB, deps); err != nil {
				return err
			}
		}
	case "history":
		if err := m.openStore(cli.DB, deps); err != nil {
			return err
		}
	}
	defer m.Close()

	if cmd == "analyze" {
		analyzer, err := m.newAnalyzer(ctx, cfg, deps.Logger, cli.Analyze.Kind)
		if err != nil {
			return err
		}
		deps.Analyzer = analyzer
	}

	return kongCtx.Run(deps)
}

func (m *Main) newExporter(cfg pagelens.Config) *fs.Exporter {
	var opts []fs.Option
	if m.ExportRoot != "" {
		opts = append(opts, fs.WithRoot(m.ExportRoot))
	}
	return fs.NewExporter(cfg.OutputDir, opts...)
}

// newLogger builds a text logger on w at info level, or debug when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newScraper wires the fetch and extraction pipeline. The returned function
// releases the fetcher's connections.
func (m *Main) newScraper(cfg pagelens.Config, logger *slog.Logger, markdown bool, content string, stderr io.Writer) (*scrape.Scraper, func(), error) {
	fetcher, err := pagehttp.NewFetcherFromConfig(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	s := &scrape.Scraper{
		Fetcher:   fetcher,
		Extractor: pageslog.NewLoggingExtractor(goquery.NewExtractor(), logger),
		Logger:    logger,
		Progress:  progressPrinter(stderr),
	}
	if markdown {
		var ce pagelens.ContentExtractor
		switch content {
		case "readability":
			ce = readability.NewContentExtractor()
		default:
			ce = trafilatura.NewContentExtractor()
		}
		s.ContentExtractor = pageslog.NewLoggingContentExtractor(ce, logger)
		s.Converter = htmltomarkdown.NewConverter()
	}
	return s, func() { _ = fetcher.Close() }, nil
}

// newAnalyzer wires the completion provider selected in cfg.
func (m *Main) newAnalyzer(ctx context.Context, cfg pagelens.Config, logger *slog.Logger, kind string) (*analyze.Analyzer, error) {
	if _, err := pagelens.ParseAnalysisKind(kind); err != nil {
		return nil, err
	}

	var completer pagelens.Completer
	var counter pagelens.TokenCounter
	switch cfg.Provider {
	case pagelens.ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg.APIKey, m.GeminiBaseURL)
		if err != nil {
			return nil, err
		}
		completer = gemini.NewCompleter(client, cfg.Model)
		counter = gemini.NewTokenCounter(cfg.Model)
	default:
		var opts []openai.Option
		if m.OpenAIBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(m.OpenAIBaseURL))
		}
		c, err := openai.NewCompleter(cfg.APIKey, cfg.Model, opts...)
		if err != nil {
			return nil, err
		}
		completer = c
		counter = openai.NewTokenCounter(cfg.Model)
	}

	a := analyze.NewAnalyzer(pageslog.NewLoggingCompleter(completer, logger), cfg, logger)
	a.TokenCounter = counter
	return a, nil
}

// openStore opens the history database at path, or the default location.
func (m *Main) openStore(path string, deps *Dependencies) error {
	if path == "" {
		path = defaultDBPath()
	}
	m.DB = sqlite.NewDB(path)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(deps.Stderr, "Hint: Set PAGELENS_DB to use a different database path\n")
		return pagelens.WrapError(pagelens.EINTERNAL, err, "failed to open database at %q", path)
	}
	deps.Store = pageslog.NewLoggingPageStore(sqlite.NewPageStore(m.DB), deps.Logger)
	return nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "pagelens.db"
	}
	dir := filepath.Join(home, ".pagelens")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "pagelens.db")
}

// progressPrinter reports batch progress on w.
func progressPrinter(w io.Writer) scrape.ProgressFunc {
	return func(e scrape.ProgressEvent) {
		switch e.Type {
		case scrape.ProgressCompleted:
			fmt.Fprintf(w, "[%d/%d] %s\n", e.Completed, e.Total, e.URL)
		case scrape.ProgressFailed:
			fmt.Fprintf(w, "[%d/%d] %s failed: %s\n", e.Completed, e.Total, e.URL, pagelens.ErrorMessage(e.Error))
		}
	}
}
