package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/pagelens"
)

// Run executes the analyze command.
func (c *AnalyzeCmd) Run(deps *Dependencies) error {
	kind, err := pagelens.ParseAnalysisKind(c.Kind)
	if err != nil {
		return err
	}
	if kind == pagelens.AnalysisCustom && strings.TrimSpace(c.Prompt) == "" {
		return pagelens.Errorf(pagelens.EINVALID, "custom analysis requires --prompt")
	}
	formats, err := parseFormats(c.Format)
	if err != nil {
		return err
	}
	if _, err := pagelens.ValidateURL(c.URL); err != nil {
		return err
	}

	page := deps.Scraper.Scrape(deps.Ctx, c.URL, nil)
	if page.Failed() {
		return pagelens.Errorf(pagelens.EFETCH, "%s", page.Error)
	}

	rec, err := deps.Analyzer.Analyze(deps.Ctx, page, kind, c.Prompt)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return err
	}

	if c.Save {
		stored, err := deps.Store.SavePage(deps.Ctx, page)
		if err != nil {
			return err
		}
		if _, err := deps.Store.SaveAnalysis(deps.Ctx, stored.ID, *rec); err != nil {
			return err
		}
		fmt.Fprintf(deps.Stdout, "Saved page %s to history\n", stored.ID)
	}

	if c.NoExport {
		return nil
	}
	name := exportName(c.Name, "analysis_results", deps.Now())
	paths, err := deps.Exporter.ExportAnalyses(deps.Ctx, name, []pagelens.AnalysisRecord{*rec}, formats...)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(deps.Stdout, "Exported %s\n", p)
	}
	return nil
}
