// Package trafilatura implements pagelens.ContentExtractor with go-trafilatura.
package trafilatura

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/fwojciec/pagelens"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure ContentExtractor implements pagelens.ContentExtractor at compile time.
var _ pagelens.ContentExtractor = (*ContentExtractor)(nil)

// ContentExtractor locates the main content of a page with trafilatura,
// falling back to its readability and dom-distiller heuristics.
type ContentExtractor struct {
	includeImages bool
}

// Option configures a ContentExtractor.
type Option func(*ContentExtractor)

// WithImages keeps image elements in the extracted content.
func WithImages(include bool) Option {
	return func(e *ContentExtractor) {
		e.includeImages = include
	}
}

// NewContentExtractor creates a new ContentExtractor.
func NewContentExtractor(opts ...Option) *ContentExtractor {
	e := &ContentExtractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractContent returns the main content of markup.
func (e *ContentExtractor) ExtractContent(markup string, pageURL string) (*pagelens.MainContent, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, pagelens.Errorf(pagelens.EPARSE, "no content: empty markup")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
		IncludeLinks:   true,
		IncludeImages:  e.includeImages,
	}
	if u, err := url.Parse(pageURL); err == nil && u.IsAbs() {
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(markup), opts)
	if err != nil {
		return nil, pagelens.WrapError(pagelens.EPARSE, err, "extract main content")
	}
	if result.ContentNode == nil {
		return nil, pagelens.Errorf(pagelens.EPARSE, "no main content found")
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, result.ContentNode); err != nil {
		return nil, pagelens.WrapError(pagelens.EPARSE, err, "render main content")
	}

	return &pagelens.MainContent{
		Title:       strings.TrimSpace(result.Metadata.Title),
		ContentHTML: buf.String(),
	}, nil
}
