package mock

import (
	"context"
	"time"

	"github.com/fwojciec/pagelens"
)

var (
	_ pagelens.Scraper  = (*Scraper)(nil)
	_ pagelens.Analyzer = (*Analyzer)(nil)
)

// Scraper is a mock implementation of pagelens.Scraper.
type Scraper struct {
	ScrapeFn     func(ctx context.Context, url string, selectors map[string]string) pagelens.PageRecord
	ScrapeManyFn func(ctx context.Context, urls []string, delay time.Duration, selectors map[string]string) []pagelens.PageRecord
}

func (s *Scraper) Scrape(ctx context.Context, url string, selectors map[string]string) pagelens.PageRecord {
	return s.ScrapeFn(ctx, url, selectors)
}

func (s *Scraper) ScrapeMany(ctx context.Context, urls []string, delay time.Duration, selectors map[string]string) []pagelens.PageRecord {
	return s.ScrapeManyFn(ctx, urls, delay, selectors)
}

// Analyzer is a mock implementation of pagelens.Analyzer.
type Analyzer struct {
	AnalyzeFn func(ctx context.Context, page pagelens.PageRecord, kind pagelens.AnalysisKind, customPrompt string) (*pagelens.AnalysisRecord, error)
}

func (a *Analyzer) Analyze(ctx context.Context, page pagelens.PageRecord, kind pagelens.AnalysisKind, customPrompt string) (*pagelens.AnalysisRecord, error) {
	return a.AnalyzeFn(ctx, page, kind, customPrompt)
}
