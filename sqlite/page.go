package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/pagelens"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ pagelens.PageStore = (*PageStore)(nil)

// PageStore implements pagelens.PageStore using SQLite. Records are stored
// as JSON alongside the columns used for filtering.
type PageStore struct {
	db *DB
}

// NewPageStore creates a new PageStore.
func NewPageStore(db *DB) *PageStore {
	return &PageStore{db: db}
}

// SavePage persists a page record, success or failure.
func (s *PageStore) SavePage(ctx context.Context, rec pagelens.PageRecord) (*pagelens.StoredPage, error) {
	if strings.TrimSpace(rec.URL) == "" {
		return nil, pagelens.Errorf(pagelens.EINVALID, "page URL required")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode page record: %w", err)
	}

	stored := &pagelens.StoredPage{
		ID:      uuid.New().String(),
		SavedAt: time.Now().UTC().Truncate(time.Second),
		Record:  rec,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pages (id, url, title, content_hash, failed, record, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, stored.ID, rec.URL, rec.Title, rec.Metadata.ContentHash, boolInt(rec.Failed()), string(data),
		stored.SavedAt.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}

	return stored, nil
}

// SaveAnalysis persists an analysis of a stored page.
func (s *PageStore) SaveAnalysis(ctx context.Context, pageID string, rec pagelens.AnalysisRecord) (*pagelens.StoredAnalysis, error) {
	if rec.AnalysisType == "" {
		return nil, pagelens.Errorf(pagelens.EINVALID, "analysis type required")
	}

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM pages WHERE id = ?", pageID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, pagelens.Errorf(pagelens.ENOTFOUND, "page not found")
	}
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis record: %w", err)
	}

	stored := &pagelens.StoredAnalysis{
		ID:      uuid.New().String(),
		PageID:  pageID,
		SavedAt: time.Now().UTC().Truncate(time.Second),
		Record:  rec,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (id, page_id, analysis_type, record, saved_at)
		VALUES (?, ?, ?, ?, ?)
	`, stored.ID, pageID, rec.AnalysisType, string(data), stored.SavedAt.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}

	return stored, nil
}

// FindPages retrieves stored pages matching the filter, newest first.
func (s *PageStore) FindPages(ctx context.Context, filter pagelens.PageFilter) ([]*pagelens.StoredPage, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, record, saved_at FROM pages WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.Failed != nil {
		query.WriteString(" AND failed = ?")
		args = append(args, boolInt(*filter.Failed))
	}

	query.WriteString(" ORDER BY saved_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*pagelens.StoredPage
	for rows.Next() {
		var page pagelens.StoredPage
		var record, savedAt string

		if err := rows.Scan(&page.ID, &record, &savedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(record), &page.Record); err != nil {
			return nil, fmt.Errorf("failed to decode page record: %w", err)
		}
		if page.SavedAt, err = parseRFC3339(savedAt, "saved_at"); err != nil {
			return nil, err
		}

		pages = append(pages, &page)
	}

	return pages, rows.Err()
}

// FindAnalyses retrieves the analyses stored for a page, oldest first.
func (s *PageStore) FindAnalyses(ctx context.Context, pageID string) ([]*pagelens.StoredAnalysis, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, page_id, record, saved_at
		FROM analyses
		WHERE page_id = ?
		ORDER BY saved_at ASC, rowid ASC
	`, pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []*pagelens.StoredAnalysis
	for rows.Next() {
		var a pagelens.StoredAnalysis
		var record, savedAt string

		if err := rows.Scan(&a.ID, &a.PageID, &record, &savedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(record), &a.Record); err != nil {
			return nil, fmt.Errorf("failed to decode analysis record: %w", err)
		}
		if a.SavedAt, err = parseRFC3339(savedAt, "saved_at"); err != nil {
			return nil, err
		}

		analyses = append(analyses, &a)
	}

	return analyses, rows.Err()
}
