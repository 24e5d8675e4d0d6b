package pagelens

import (
	"context"
	"strings"
)

// ExportFormat names an output file format.
type ExportFormat string

// Supported export formats.
const (
	FormatJSON  ExportFormat = "json"
	FormatCSV   ExportFormat = "csv"
	FormatExcel ExportFormat = "excel"

	// FormatMarkdown writes one markdown file per successful page. It
	// applies to pages only.
	FormatMarkdown ExportFormat = "markdown"
)

// ParseExportFormat returns the format named s. Unrecognized names return EINVALID.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatExcel, FormatMarkdown:
		return f, nil
	}
	return "", Errorf(EINVALID, "unsupported export format %q", s)
}

// Exporter writes records to files. Implementations return the paths written,
// in the order the formats were given. No format means JSON.
type Exporter interface {
	ExportPages(ctx context.Context, name string, pages []PageRecord, formats ...ExportFormat) ([]string, error)
	ExportAnalyses(ctx context.Context, name string, recs []AnalysisRecord, formats ...ExportFormat) ([]string, error)
}
