package mock

import (
	"context"

	"github.com/fwojciec/pagelens"
)

var _ pagelens.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of pagelens.Fetcher. FetchFn is required;
// a nil CloseFn makes Close a no-op, as scrape never closes its fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (markup string, err error)
	CloseFn func() error
}

// Fetch delegates to FetchFn.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

// Close delegates to CloseFn when set.
func (f *Fetcher) Close() error {
	if f.CloseFn != nil {
		return f.CloseFn()
	}
	return nil
}
