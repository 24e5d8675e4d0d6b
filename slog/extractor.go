package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/pagelens"
)

var (
	_ pagelens.Extractor        = (*LoggingExtractor)(nil)
	_ pagelens.ContentExtractor = (*LoggingContentExtractor)(nil)
)

// LoggingExtractor wraps an Extractor with debug logging.
type LoggingExtractor struct {
	next   pagelens.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next pagelens.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the result counts.
func (e *LoggingExtractor) Extract(markup, baseURL string, selectors map[string]string) (ex *pagelens.Extraction, err error) {
	defer func(begin time.Time) {
		var links, images int
		if ex != nil {
			links, images = len(ex.Links), len(ex.Images)
		}
		e.logger.Debug("extract",
			"url", baseURL,
			"bytes", len(markup),
			"selectors", len(selectors),
			"links", links,
			"images", images,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(markup, baseURL, selectors)
}

// LoggingContentExtractor wraps a ContentExtractor with debug logging.
type LoggingContentExtractor struct {
	next   pagelens.ContentExtractor
	logger *slog.Logger
}

// NewLoggingContentExtractor creates a new LoggingContentExtractor.
func NewLoggingContentExtractor(next pagelens.ContentExtractor, logger *slog.Logger) *LoggingContentExtractor {
	return &LoggingContentExtractor{next: next, logger: logger}
}

// ExtractContent delegates to the wrapped extractor and logs the content size.
func (e *LoggingContentExtractor) ExtractContent(markup, pageURL string) (mc *pagelens.MainContent, err error) {
	defer func(begin time.Time) {
		var size int
		if mc != nil {
			size = len(mc.ContentHTML)
		}
		e.logger.Debug("main content",
			"url", pageURL,
			"content_bytes", size,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.ExtractContent(markup, pageURL)
}
