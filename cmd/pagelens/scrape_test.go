package main_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/pagelens"
	main "github.com/fwojciec/pagelens/cmd/pagelens"
	"github.com/fwojciec/pagelens/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func scrapeRecords() []pagelens.PageRecord {
	return []pagelens.PageRecord{
		pagelens.NewPageRecord("https://example.com/a", pagelens.Extraction{Title: "A", Text: "a"}, fixedNow, "1"),
		pagelens.NewFailureRecord("https://example.com/b", errors.New("HTTP 404"), fixedNow),
	}
}

func TestScrapeCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("scrapes, prints a summary and exports", func(t *testing.T) {
		t.Parallel()

		var gotDelay time.Duration
		var gotSelectors map[string]string
		scraper := &mock.Scraper{
			ScrapeManyFn: func(_ context.Context, urls []string, delay time.Duration, selectors map[string]string) []pagelens.PageRecord {
				gotDelay = delay
				gotSelectors = selectors
				return scrapeRecords()
			},
		}
		var gotName string
		var gotFormats []pagelens.ExportFormat
		exporter := &mock.Exporter{
			ExportPagesFn: func(_ context.Context, name string, pages []pagelens.PageRecord, formats ...pagelens.ExportFormat) ([]string, error) {
				gotName = name
				gotFormats = formats
				return []string{"out/" + name + ".csv"}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   &bytes.Buffer{},
			Config:   pagelens.Config{Delay: 2 * time.Second},
			Scraper:  scraper,
			Exporter: exporter,
			Now:      func() time.Time { return fixedNow },
		}

		cmd := &main.ScrapeCmd{
			URLs:      []string{"https://example.com/a", "https://example.com/b"},
			Selectors: map[string]string{"price": ".price"},
			Format:    []string{"csv"},
		}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, gotDelay)
		assert.Equal(t, map[string]string{"price": ".price"}, gotSelectors)
		assert.Equal(t, "scrape_results_20260102_030405", gotName)
		assert.Equal(t, []pagelens.ExportFormat{pagelens.FormatCSV}, gotFormats)
		assert.Contains(t, stdout.String(), "OK    https://example.com/a  A")
		assert.Contains(t, stdout.String(), "FAIL  https://example.com/b  HTTP 404")
		assert.Contains(t, stdout.String(), "Scraped 1 of 2 URLs")
		assert.Contains(t, stdout.String(), "Exported out/scrape_results_20260102_030405.csv")
	})

	t.Run("saves every record including failures", func(t *testing.T) {
		t.Parallel()

		var saved []string
		store := &mock.PageStore{
			SavePageFn: func(_ context.Context, rec pagelens.PageRecord) (*pagelens.StoredPage, error) {
				saved = append(saved, rec.URL)
				return &pagelens.StoredPage{ID: "id", Record: rec}, nil
			},
		}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
			Scraper: &mock.Scraper{
				ScrapeManyFn: func(context.Context, []string, time.Duration, map[string]string) []pagelens.PageRecord {
					return scrapeRecords()
				},
			},
			Store: store,
		}

		cmd := &main.ScrapeCmd{URLs: []string{"https://example.com/a", "https://example.com/b"}, Save: true, NoExport: true}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, saved)
	})

	t.Run("rejects unknown format before scraping", func(t *testing.T) {
		t.Parallel()

		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  &bytes.Buffer{},
			Stderr:  &bytes.Buffer{},
			Scraper: &mock.Scraper{},
		}

		cmd := &main.ScrapeCmd{URLs: []string{"https://example.com"}, Format: []string{"pdf"}}
		err := cmd.Run(deps)

		assert.Equal(t, pagelens.EINVALID, pagelens.ErrorCode(err))
	})

	t.Run("uses the given export name", func(t *testing.T) {
		t.Parallel()

		var gotName string
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
			Scraper: &mock.Scraper{
				ScrapeManyFn: func(context.Context, []string, time.Duration, map[string]string) []pagelens.PageRecord {
					return scrapeRecords()
				},
			},
			Exporter: &mock.Exporter{
				ExportPagesFn: func(_ context.Context, name string, _ []pagelens.PageRecord, _ ...pagelens.ExportFormat) ([]string, error) {
					gotName = name
					return nil, nil
				},
			},
			Now: func() time.Time { return fixedNow },
		}

		cmd := &main.ScrapeCmd{URLs: []string{"https://example.com/a"}, Name: "products"}
		require.NoError(t, cmd.Run(deps))

		assert.Equal(t, "products", gotName)
	})
}
