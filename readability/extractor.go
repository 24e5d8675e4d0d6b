// Package readability implements pagelens.ContentExtractor with go-readability.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/pagelens"
	"github.com/go-shiori/go-readability"
)

// Ensure ContentExtractor implements pagelens.ContentExtractor at compile time.
var _ pagelens.ContentExtractor = (*ContentExtractor)(nil)

// ContentExtractor runs the Mozilla Readability algorithm on a page.
type ContentExtractor struct{}

// NewContentExtractor creates a new ContentExtractor.
func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

// ExtractContent returns the main content of markup. Relative links in the
// content are made absolute when pageURL is a valid absolute URL.
func (e *ContentExtractor) ExtractContent(markup string, pageURL string) (*pagelens.MainContent, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, pagelens.Errorf(pagelens.EPARSE, "no content: empty markup")
	}

	var base *url.URL
	if u, err := url.Parse(pageURL); err == nil && u.IsAbs() {
		base = u
	}

	article, err := readability.FromReader(strings.NewReader(markup), base)
	if err != nil {
		return nil, pagelens.WrapError(pagelens.EPARSE, err, "extract main content")
	}
	if strings.TrimSpace(article.TextContent) == "" {
		return nil, pagelens.Errorf(pagelens.EPARSE, "no main content found")
	}

	return &pagelens.MainContent{
		Title:       strings.TrimSpace(article.Title),
		ContentHTML: article.Content,
	}, nil
}
