package mock

import (
	"context"

	"github.com/fwojciec/pagelens"
)

var (
	_ pagelens.PageStore = (*PageStore)(nil)
	_ pagelens.Exporter  = (*Exporter)(nil)
)

// PageStore is a mock implementation of pagelens.PageStore.
type PageStore struct {
	SavePageFn     func(ctx context.Context, rec pagelens.PageRecord) (*pagelens.StoredPage, error)
	SaveAnalysisFn func(ctx context.Context, pageID string, rec pagelens.AnalysisRecord) (*pagelens.StoredAnalysis, error)
	FindPagesFn    func(ctx context.Context, filter pagelens.PageFilter) ([]*pagelens.StoredPage, error)
	FindAnalysesFn func(ctx context.Context, pageID string) ([]*pagelens.StoredAnalysis, error)
}

func (s *PageStore) SavePage(ctx context.Context, rec pagelens.PageRecord) (*pagelens.StoredPage, error) {
	return s.SavePageFn(ctx, rec)
}

func (s *PageStore) SaveAnalysis(ctx context.Context, pageID string, rec pagelens.AnalysisRecord) (*pagelens.StoredAnalysis, error) {
	return s.SaveAnalysisFn(ctx, pageID, rec)
}

func (s *PageStore) FindPages(ctx context.Context, filter pagelens.PageFilter) ([]*pagelens.StoredPage, error) {
	return s.FindPagesFn(ctx, filter)
}

func (s *PageStore) FindAnalyses(ctx context.Context, pageID string) ([]*pagelens.StoredAnalysis, error) {
	return s.FindAnalysesFn(ctx, pageID)
}

// Exporter is a mock implementation of pagelens.Exporter.
type Exporter struct {
	ExportPagesFn    func(ctx context.Context, name string, pages []pagelens.PageRecord, formats ...pagelens.ExportFormat) ([]string, error)
	ExportAnalysesFn func(ctx context.Context, name string, recs []pagelens.AnalysisRecord, formats ...pagelens.ExportFormat) ([]string, error)
}

func (e *Exporter) ExportPages(ctx context.Context, name string, pages []pagelens.PageRecord, formats ...pagelens.ExportFormat) ([]string, error) {
	return e.ExportPagesFn(ctx, name, pages, formats...)
}

func (e *Exporter) ExportAnalyses(ctx context.Context, name string, recs []pagelens.AnalysisRecord, formats ...pagelens.ExportFormat) ([]string, error) {
	return e.ExportAnalysesFn(ctx, name, recs, formats...)
}
