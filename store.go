package pagelens

import (
	"context"
	"time"
)

// StoredPage is a PageRecord persisted to history.
type StoredPage struct {
	ID      string     `json:"id"`
	SavedAt time.Time  `json:"savedAt"`
	Record  PageRecord `json:"record"`
}

// StoredAnalysis is an AnalysisRecord persisted to history.
type StoredAnalysis struct {
	ID      string         `json:"id"`
	PageID  string         `json:"pageId"`
	SavedAt time.Time      `json:"savedAt"`
	Record  AnalysisRecord `json:"record"`
}

// PageFilter represents a filter for FindPages.
type PageFilter struct {
	ID     *string `json:"id"`
	URL    *string `json:"url"`
	Failed *bool   `json:"failed"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// PageStore keeps a history of scraped pages and their analyses.
type PageStore interface {
	// SavePage persists a page record, success or failure.
	SavePage(ctx context.Context, rec PageRecord) (*StoredPage, error)

	// SaveAnalysis persists an analysis of a stored page.
	// Returns ENOTFOUND if the page does not exist.
	SaveAnalysis(ctx context.Context, pageID string, rec AnalysisRecord) (*StoredAnalysis, error)

	// FindPages retrieves stored pages matching the filter, newest first.
	FindPages(ctx context.Context, filter PageFilter) ([]*StoredPage, error)

	// FindAnalyses retrieves the analyses stored for a page, oldest first.
	FindAnalyses(ctx context.Context, pageID string) ([]*StoredAnalysis, error)
}
