package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/pagelens"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := pagelens.PageFilter{Limit: c.Limit}
	if c.URL != "" {
		filter.URL = &c.URL
	}
	if c.Failed {
		filter.Failed = &c.Failed
	}

	pages, err := deps.Store.FindPages(deps.Ctx, filter)
	if err != nil {
		return err
	}

	if len(pages) == 0 {
		fmt.Fprintln(deps.Stdout, "No pages found. Use 'pagelens scrape --save' to record some.")
		return nil
	}

	for _, p := range pages {
		status := "OK"
		detail := p.Record.Title
		if p.Record.Failed() {
			status = "FAIL"
			detail = p.Record.Error
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %-4s  %s  %s\n", p.ID, p.SavedAt.Format(time.DateTime), status, p.Record.URL, detail)

		if !c.Analyses {
			continue
		}
		analyses, err := deps.Store.FindAnalyses(deps.Ctx, p.ID)
		if err != nil {
			return err
		}
		for _, a := range analyses {
			fmt.Fprintf(deps.Stdout, "    %s  %s\n", a.Record.AnalysisType, analysisSummary(a.Record))
		}
	}

	return nil
}

// analysisSummary returns a one-line description of rec.
func analysisSummary(rec pagelens.AnalysisRecord) string {
	switch {
	case rec.Summary != "":
		return truncate(rec.Summary, 80)
	case rec.Sentiment != "":
		if rec.Confidence != nil {
			return fmt.Sprintf("%s (%.2f)", rec.Sentiment, *rec.Confidence)
		}
		return rec.Sentiment
	case rec.Category != "":
		return rec.Category
	case len(rec.Entities) > 0:
		return fmt.Sprintf("%d entities", len(rec.Entities))
	case len(rec.Keywords) > 0:
		return fmt.Sprintf("%d keywords", len(rec.Keywords))
	}
	return truncate(rec.Result, 80)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
