package mock

import "github.com/fwojciec/pagelens"

var (
	_ pagelens.ContentExtractor = (*ContentExtractor)(nil)
	_ pagelens.Converter        = (*Converter)(nil)
)

// ContentExtractor is a mock implementation of pagelens.ContentExtractor.
type ContentExtractor struct {
	ExtractContentFn func(markup, pageURL string) (*pagelens.MainContent, error)
}

func (e *ContentExtractor) ExtractContent(markup, pageURL string) (*pagelens.MainContent, error) {
	return e.ExtractContentFn(markup, pageURL)
}

// Converter is a mock implementation of pagelens.Converter.
type Converter struct {
	ConvertFn func(html, pageURL string) (string, error)
}

func (c *Converter) Convert(html, pageURL string) (string, error) {
	return c.ConvertFn(html, pageURL)
}
