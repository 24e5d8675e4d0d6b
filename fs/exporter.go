// Package fs writes page and analysis records to the local filesystem.
package fs

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fwojciec/pagelens"
	"golang.org/x/sync/errgroup"
)

// Ensure Exporter implements pagelens.Exporter at compile time.
var _ pagelens.Exporter = (*Exporter)(nil)

// Exporter writes records below an output directory. The output directory
// must lie within the root directory, which defaults to the working
// directory. Output names are reduced to their base name.
type Exporter struct {
	dir  string
	root string
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithRoot sets the directory the output directory must lie within.
func WithRoot(root string) Option {
	return func(e *Exporter) {
		e.root = root
	}
}

// NewExporter creates an Exporter writing to dir.
func NewExporter(dir string, opts ...Option) *Exporter {
	e := &Exporter{dir: dir}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExportPages writes pages in each of formats and returns the written paths.
func (e *Exporter) ExportPages(ctx context.Context, name string, pages []pagelens.PageRecord, formats ...pagelens.ExportFormat) ([]string, error) {
	return e.export(ctx, name, formats, func(f pagelens.ExportFormat, base string) (string, error) {
		switch f {
		case pagelens.FormatJSON:
			return writeJSON(base+".json", pages)
		case pagelens.FormatCSV:
			return writeCSV(base+".csv", pageTable(pages))
		case pagelens.FormatExcel:
			return writeExcel(base+".xml", "pages", pageTable(pages))
		case pagelens.FormatMarkdown:
			return writeMarkdown(base, pages)
		}
		return "", pagelens.Errorf(pagelens.EINVALID, "unsupported export format %q", f)
	})
}

// ExportAnalyses writes analysis records in each of formats and returns the
// written paths. The markdown format is not supported for analyses.
func (e *Exporter) ExportAnalyses(ctx context.Context, name string, recs []pagelens.AnalysisRecord, formats ...pagelens.ExportFormat) ([]string, error) {
	return e.export(ctx, name, formats, func(f pagelens.ExportFormat, base string) (string, error) {
		switch f {
		case pagelens.FormatJSON:
			return writeJSON(base+".json", recs)
		case pagelens.FormatCSV:
			return writeCSV(base+".csv", analysisTable(recs))
		case pagelens.FormatExcel:
			return writeExcel(base+".xml", "analyses", analysisTable(recs))
		case pagelens.FormatMarkdown:
		}
		return "", pagelens.Errorf(pagelens.EINVALID, "unsupported export format %q for analyses", f)
	})
}

// export resolves the output location and runs write once per distinct
// format, concurrently.
func (e *Exporter) export(ctx context.Context, name string, formats []pagelens.ExportFormat, write func(f pagelens.ExportFormat, base string) (string, error)) ([]string, error) {
	dir, err := e.outputDir()
	if err != nil {
		return nil, err
	}
	stem, err := fileStem(name)
	if err != nil {
		return nil, err
	}

	formats = uniqueFormats(formats)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pagelens.WrapError(pagelens.EINTERNAL, err, "create output directory")
	}

	base := filepath.Join(dir, stem)
	paths := make([]string, len(formats))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range formats {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path, err := write(f, base)
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// outputDir returns the absolute output directory after checking that it
// does not escape the root.
func (e *Exporter) outputDir() (string, error) {
	root := e.root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", pagelens.WrapError(pagelens.EINTERNAL, err, "resolve working directory")
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return "", pagelens.WrapError(pagelens.EINTERNAL, err, "resolve root directory")
	}

	dir := e.dir
	if dir == "" {
		dir = pagelens.DefaultOutputDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	dir = filepath.Clean(dir)

	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", pagelens.Errorf(pagelens.EINVALID, "output directory must be within %s: %s", root, e.dir)
	}
	return dir, nil
}

// fileStem strips directory components and the extension from name.
func fileStem(name string) (string, error) {
	base := filepath.Base(strings.TrimSpace(name))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == ".." || base == string(filepath.Separator) {
		return "", pagelens.Errorf(pagelens.EINVALID, "invalid output name %q", name)
	}
	return stem, nil
}

func uniqueFormats(formats []pagelens.ExportFormat) []pagelens.ExportFormat {
	if len(formats) == 0 {
		return []pagelens.ExportFormat{pagelens.FormatJSON}
	}
	out := make([]pagelens.ExportFormat, 0, len(formats))
	for _, f := range formats {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

func writeJSON(path string, v any) (string, error) {
	return path, writeFileAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// writeFileAtomic writes to a temporary file in the target directory and
// renames it into place.
func writeFileAtomic(path string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return pagelens.WrapError(pagelens.EINTERNAL, err, "create %s", path)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return pagelens.WrapError(pagelens.EINTERNAL, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return pagelens.WrapError(pagelens.EINTERNAL, err, "write %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return pagelens.WrapError(pagelens.EINTERNAL, err, "write %s", path)
	}
	return nil
}
