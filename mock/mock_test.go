package mock_test

import (
	"context"
	"testing"

	"github.com/fwojciec/pagelens"
	"github.com/fwojciec/pagelens/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageStore_SavePage(t *testing.T) {
	t.Parallel()

	t.Run("delegates to SavePageFn", func(t *testing.T) {
		t.Parallel()

		var calledWith pagelens.PageRecord
		s := &mock.PageStore{
			SavePageFn: func(_ context.Context, rec pagelens.PageRecord) (*pagelens.StoredPage, error) {
				calledWith = rec
				return &pagelens.StoredPage{ID: "page-1", Record: rec}, nil
			},
		}

		rec := pagelens.PageRecord{URL: "https://example.com"}
		stored, err := s.SavePage(context.Background(), rec)

		require.NoError(t, err)
		assert.Equal(t, "page-1", stored.ID)
		assert.Equal(t, "https://example.com", calledWith.URL)
	})
}

func TestFetcher_Close(t *testing.T) {
	t.Parallel()

	t.Run("returns nil when CloseFn is unset", func(t *testing.T) {
		t.Parallel()

		f := &mock.Fetcher{}
		assert.NoError(t, f.Close())
	})
}
