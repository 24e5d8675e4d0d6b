package gemini_test

import (
	"context"
	"testing"

	"github.com/fwojciec/pagelens/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCounter_CountTokens(t *testing.T) {
	t.Parallel()

	if testing.Short() {
		t.Skip("tokenizer model download")
	}

	t.Run("longer text returns more tokens", func(t *testing.T) {
		t.Parallel()

		tc := gemini.NewTokenCounter("")

		shortCount, err := tc.CountTokens(context.Background(), "Hello")
		require.NoError(t, err)
		assert.Positive(t, shortCount)

		longCount, err := tc.CountTokens(context.Background(), "Hello, this is a much longer page of scraped text that should have more tokens than a single word.")
		require.NoError(t, err)

		assert.Greater(t, longCount, shortCount)
	})

	t.Run("counts unknown models with the default vocabulary", func(t *testing.T) {
		t.Parallel()

		count, err := gemini.NewTokenCounter("gemini-unreleased-model").CountTokens(context.Background(), "Hello, world!")

		require.NoError(t, err)
		assert.Positive(t, count)
	})
}
