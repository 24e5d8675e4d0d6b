package fs

import (
	"encoding/csv"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/fwojciec/pagelens"
)

// listSeparator joins list fields into a single cell.
const listSeparator = "|"

// table is a flattened view of records shared by the CSV and Excel writers.
type table struct {
	header  []string
	rows    [][]string
	numeric map[int]bool
}

// pageTable flattens pages. Each custom selector becomes a "custom:<name>"
// column; the union of names across pages is used, sorted.
func pageTable(pages []pagelens.PageRecord) table {
	var customNames []string
	for _, p := range pages {
		for name := range p.Custom {
			if !slices.Contains(customNames, name) {
				customNames = append(customNames, name)
			}
		}
	}
	slices.Sort(customNames)

	header := []string{"url", "title", "text", "links", "images", "markdown", "scraped_at", "content_hash", "error"}
	for _, name := range customNames {
		header = append(header, "custom:"+name)
	}

	t := table{header: header, numeric: map[int]bool{6: true}}
	for _, p := range pages {
		srcs := make([]string, len(p.Images))
		for i, img := range p.Images {
			srcs[i] = img.Src
		}
		row := []string{
			p.URL,
			p.Title,
			p.Text,
			strings.Join(p.Links, listSeparator),
			strings.Join(srcs, listSeparator),
			p.Markdown,
			strconv.FormatInt(p.Metadata.ScrapedAt, 10),
			p.Metadata.ContentHash,
			p.Error,
		}
		for _, name := range customNames {
			row = append(row, strings.Join(p.Custom[name], listSeparator))
		}
		t.rows = append(t.rows, row)
	}
	return t
}

func analysisTable(recs []pagelens.AnalysisRecord) table {
	t := table{
		header:  []string{"analysis_type", "url", "summary", "entities", "sentiment", "confidence", "category", "keywords", "result"},
		numeric: map[int]bool{5: true},
	}
	for _, r := range recs {
		var confidence string
		if r.Confidence != nil {
			confidence = strconv.FormatFloat(*r.Confidence, 'f', -1, 64)
		}
		t.rows = append(t.rows, []string{
			r.AnalysisType,
			r.URL,
			r.Summary,
			strings.Join(r.Entities, listSeparator),
			r.Sentiment,
			confidence,
			r.Category,
			strings.Join(r.Keywords, listSeparator),
			r.Result,
		})
	}
	return t
}

func writeCSV(path string, t table) (string, error) {
	return path, writeFileAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(t.header); err != nil {
			return err
		}
		if err := cw.WriteAll(t.rows); err != nil {
			return err
		}
		return cw.Error()
	})
}
