package mock

import "github.com/fwojciec/pagelens"

var _ pagelens.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of pagelens.Extractor.
type Extractor struct {
	ExtractFn func(markup, baseURL string, selectors map[string]string) (*pagelens.Extraction, error)
}

func (e *Extractor) Extract(markup, baseURL string, selectors map[string]string) (*pagelens.Extraction, error) {
	return e.ExtractFn(markup, baseURL, selectors)
}
