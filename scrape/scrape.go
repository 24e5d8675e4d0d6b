// Package scrape turns URLs into page records. It coordinates fetching,
// structured extraction and optional main content conversion, and drives
// sequential batches with a fixed delay between requests.
package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/pagelens"
)

// Ensure Scraper implements pagelens.Scraper at compile time.
var _ pagelens.Scraper = (*Scraper)(nil)

// Scraper assembles PageRecords. Fetcher and Extractor are required.
// Markdown is produced only when both ContentExtractor and Converter are set.
type Scraper struct {
	Fetcher          pagelens.Fetcher
	Extractor        pagelens.Extractor
	ContentExtractor pagelens.ContentExtractor
	Converter        pagelens.Converter
	Logger           *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Sleep pauses between batch requests. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error

	// Progress, if set, receives events as ScrapeMany proceeds.
	Progress ProgressFunc
}

// ProgressEvent reports progress during a batch.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting batch progress.
type ProgressFunc func(event ProgressEvent)

// Scrape fetches and extracts a single URL. Failures are returned as failure
// records stamped with the time the failure was observed.
func (s *Scraper) Scrape(ctx context.Context, url string, selectors map[string]string) pagelens.PageRecord {
	rec, _ := s.scrape(ctx, url, selectors)
	return rec
}

// ScrapeMany scrapes urls one at a time in input order. delay is applied
// between completions, never before the first request or after the last.
// The result always has one record per input URL.
func (s *Scraper) ScrapeMany(ctx context.Context, urls []string, delay time.Duration, selectors map[string]string) []pagelens.PageRecord {
	total := len(urls)
	records := make([]pagelens.PageRecord, 0, total)
	s.notify(ProgressEvent{Type: ProgressStarted, Total: total})

	var failed int
	for i, url := range urls {
		if i > 0 && delay > 0 {
			// An interrupted sleep leaves ctx done, which the next check reports.
			_ = s.sleep(ctx, delay)
		}

		var (
			rec pagelens.PageRecord
			err error
		)
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = pagelens.WrapError(pagelens.EFETCH, ctxErr, "scrape %s: canceled", url)
			rec = pagelens.NewFailureRecord(url, err, s.now())
		} else {
			rec, err = s.scrape(ctx, url, selectors)
		}
		records = append(records, rec)

		event := ProgressEvent{Type: ProgressCompleted, Completed: i + 1, Total: total, URL: url}
		if err != nil {
			failed++
			event.Type = ProgressFailed
			event.Error = err
		}
		s.notify(event)
	}

	s.notify(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	s.logger().Info("batch finished", "total", total, "failed", failed)
	return records
}

func (s *Scraper) scrape(ctx context.Context, url string, selectors map[string]string) (pagelens.PageRecord, error) {
	start := time.Now()
	ex, err := s.extract(ctx, url, selectors)
	if err != nil {
		s.logger().Error("scrape failed", "url", url, "err", err, "duration", time.Since(start))
		return pagelens.NewFailureRecord(url, err, s.now()), err
	}

	rec := pagelens.NewPageRecord(url, *ex, s.now(), computeHash(ex.Text))
	s.logger().Info("scraped",
		"url", url,
		"title", rec.Title,
		"links", len(rec.Links),
		"images", len(rec.Images),
		"duration", time.Since(start),
	)
	return rec, nil
}

func (s *Scraper) extract(ctx context.Context, url string, selectors map[string]string) (*pagelens.Extraction, error) {
	markup, err := s.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	ex, err := s.Extractor.Extract(markup, url, selectors)
	if err != nil {
		return nil, err
	}

	if s.ContentExtractor != nil && s.Converter != nil {
		content, err := s.ContentExtractor.ExtractContent(markup, url)
		if err != nil {
			return nil, err
		}
		md, err := s.Converter.Convert(content.ContentHTML, url)
		if err != nil {
			return nil, err
		}
		ex.Markdown = md
		if ex.Title == "" {
			ex.Title = content.Title
		}
	}

	return ex, nil
}

func (s *Scraper) notify(event ProgressEvent) {
	if s.Progress != nil {
		s.Progress(event)
	}
}

func (s *Scraper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Scraper) sleep(ctx context.Context, d time.Duration) error {
	if s.Sleep != nil {
		return s.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Scraper) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// computeHash computes a hash of the content using xxhash.
func computeHash(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}
