package main

import "fmt"

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	formats, err := parseFormats(c.Format)
	if err != nil {
		return err
	}

	records := deps.Scraper.ScrapeMany(deps.Ctx, c.URLs, deps.Config.Delay, c.Selectors)

	var failed int
	for _, rec := range records {
		if rec.Failed() {
			failed++
			fmt.Fprintf(deps.Stdout, "FAIL  %s  %s\n", rec.URL, rec.Error)
			continue
		}
		fmt.Fprintf(deps.Stdout, "OK    %s  %s  (%d links, %d images)\n", rec.URL, rec.Title, len(rec.Links), len(rec.Images))
	}
	fmt.Fprintf(deps.Stdout, "Scraped %d of %d URLs\n", len(records)-failed, len(records))

	if c.Save {
		for _, rec := range records {
			if _, err := deps.Store.SavePage(deps.Ctx, rec); err != nil {
				return err
			}
		}
		fmt.Fprintf(deps.Stdout, "Saved %d records to history\n", len(records))
	}

	if c.NoExport {
		return nil
	}
	name := exportName(c.Name, "scrape_results", deps.Now())
	paths, err := deps.Exporter.ExportPages(deps.Ctx, name, records, formats...)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(deps.Stdout, "Exported %s\n", p)
	}
	return nil
}
