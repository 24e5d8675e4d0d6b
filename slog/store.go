package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pagelens"
)

// Ensure LoggingPageStore implements pagelens.PageStore.
var _ pagelens.PageStore = (*LoggingPageStore)(nil)

// LoggingPageStore wraps a PageStore with logging.
type LoggingPageStore struct {
	next   pagelens.PageStore
	logger *slog.Logger
}

// NewLoggingPageStore creates a new LoggingPageStore.
func NewLoggingPageStore(next pagelens.PageStore, logger *slog.Logger) *LoggingPageStore {
	return &LoggingPageStore{next: next, logger: logger}
}

// SavePage delegates to the wrapped store and logs the operation.
func (s *LoggingPageStore) SavePage(ctx context.Context, rec pagelens.PageRecord) (stored *pagelens.StoredPage, err error) {
	defer func(begin time.Time) {
		var id string
		if stored != nil {
			id = stored.ID
		}
		s.logger.Info("save page",
			"url", rec.URL,
			"id", id,
			"failed", rec.Failed(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SavePage(ctx, rec)
}

// SaveAnalysis delegates to the wrapped store and logs the operation.
func (s *LoggingPageStore) SaveAnalysis(ctx context.Context, pageID string, rec pagelens.AnalysisRecord) (stored *pagelens.StoredAnalysis, err error) {
	defer func(begin time.Time) {
		s.logger.Info("save analysis",
			"page_id", pageID,
			"kind", rec.AnalysisType,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SaveAnalysis(ctx, pageID, rec)
}

// FindPages delegates to the wrapped store and logs at debug level.
func (s *LoggingPageStore) FindPages(ctx context.Context, filter pagelens.PageFilter) (pages []*pagelens.StoredPage, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find pages",
			"count", len(pages),
			"limit", filter.Limit,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindPages(ctx, filter)
}

// FindAnalyses delegates to the wrapped store and logs at debug level.
func (s *LoggingPageStore) FindAnalyses(ctx context.Context, pageID string) (analyses []*pagelens.StoredAnalysis, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find analyses",
			"page_id", pageID,
			"count", len(analyses),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindAnalyses(ctx, pageID)
}
