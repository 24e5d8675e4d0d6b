package pagelens

import (
	"context"
	"net/url"
	"slices"
	"strings"
	"time"
)

// Image is an image reference found on a page.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Metadata describes when and what a PageRecord captured.
type Metadata struct {
	// ScrapedAt is the epoch second at which the record became valid
	// (completion time on success, failure time on failure).
	ScrapedAt int64 `json:"scraped_at"`

	// ContentHash is the hex xxhash64 of Text. Empty on failure records.
	ContentHash string `json:"content_hash,omitempty"`
}

// PageRecord is the structured result of one scrape attempt.
//
// A record is either a success record (Error empty) or a failure record
// (Error set and every content field empty). Records are built with
// NewPageRecord or NewFailureRecord and must not be modified afterwards.
type PageRecord struct {
	URL      string              `json:"url"`
	Title    string              `json:"title"`
	Text     string              `json:"text"`
	Links    []string            `json:"links"`
	Images   []Image             `json:"images"`
	Custom   map[string][]string `json:"custom,omitempty"`
	Markdown string              `json:"markdown,omitempty"`
	Metadata Metadata            `json:"metadata"`
	Error    string              `json:"error,omitempty"`
}

// Failed reports whether the record is a failure record.
func (r PageRecord) Failed() bool {
	return r.Error != ""
}

// ScrapedTime returns Metadata.ScrapedAt as a time.Time.
func (r PageRecord) ScrapedTime() time.Time {
	return time.Unix(r.Metadata.ScrapedAt, 0)
}

// Extraction holds the structured fields an Extractor derives from markup.
type Extraction struct {
	Title  string
	Text   string
	Links  []string
	Images []Image

	// Custom holds one entry per caller-supplied selector, nil when none were given.
	Custom map[string][]string

	// Markdown is the main content rendered as markdown, when requested.
	Markdown string
}

// NewPageRecord builds a success record. Slices and maps are copied so the
// record does not share memory with ex.
func NewPageRecord(rawURL string, ex Extraction, scrapedAt time.Time, contentHash string) PageRecord {
	rec := PageRecord{
		URL:      rawURL,
		Title:    ex.Title,
		Text:     ex.Text,
		Links:    slices.Clone(ex.Links),
		Images:   slices.Clone(ex.Images),
		Markdown: ex.Markdown,
		Metadata: Metadata{
			ScrapedAt:   scrapedAt.Unix(),
			ContentHash: contentHash,
		},
	}
	if rec.Links == nil {
		rec.Links = []string{}
	}
	if rec.Images == nil {
		rec.Images = []Image{}
	}
	if ex.Custom != nil {
		rec.Custom = make(map[string][]string, len(ex.Custom))
		for name, values := range ex.Custom {
			if values == nil {
				values = []string{}
			}
			rec.Custom[name] = slices.Clone(values)
		}
	}
	return rec
}

// NewFailureRecord builds a failure record for rawURL carrying err as its cause.
func NewFailureRecord(rawURL string, err error, failedAt time.Time) PageRecord {
	msg := "unknown error"
	if err != nil {
		msg = ErrorMessage(err)
	}
	return PageRecord{
		URL:      rawURL,
		Links:    []string{},
		Images:   []Image{},
		Metadata: Metadata{ScrapedAt: failedAt.Unix()},
		Error:    msg,
	}
}

// ValidateURL checks that rawURL is a non-empty http or https URL with a host.
// It returns the parsed URL or an EINVALID error.
func ValidateURL(rawURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, Errorf(EINVALID, "URL cannot be empty")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, Errorf(EINVALID, "invalid URL format: %s", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, Errorf(EINVALID, "invalid URL format: %s (scheme must be http or https)", rawURL)
	}
	if u.Host == "" || u.Hostname() == "" {
		return nil, Errorf(EINVALID, "invalid URL format: %s (missing host)", rawURL)
	}
	return u, nil
}

// Fetcher retrieves raw markup from URLs.
type Fetcher interface {
	// Fetch returns the body of the page at url.
	// Returns EINVALID for malformed URLs before any network call and
	// EFETCH once the retry policy is exhausted.
	Fetch(ctx context.Context, url string) (markup string, err error)

	// Close releases pooled connections.
	Close() error
}

// Extractor derives structured fields from markup.
type Extractor interface {
	// Extract parses markup and resolves links and images against baseURL.
	// It tolerates malformed markup. selectors maps a result name to a CSS
	// selector; an invalid selector fails the call with EPARSE.
	Extract(markup string, baseURL string, selectors map[string]string) (*Extraction, error)
}

// Scraper turns URLs into PageRecords. It never returns an error: failures
// are reported as failure records.
type Scraper interface {
	// Scrape fetches and extracts a single URL.
	Scrape(ctx context.Context, url string, selectors map[string]string) PageRecord

	// ScrapeMany scrapes urls sequentially, pausing delay between
	// completions. The result has one record per input URL, in input order.
	ScrapeMany(ctx context.Context, urls []string, delay time.Duration, selectors map[string]string) []PageRecord
}
