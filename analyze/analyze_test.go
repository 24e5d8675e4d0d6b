package analyze_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/pagelens"
	"github.com/fwojciec/pagelens/analyze"
	"github.com/fwojciec/pagelens/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(text string) pagelens.PageRecord {
	return pagelens.PageRecord{
		URL:    "https://example.com/article",
		Title:  "Article",
		Text:   text,
		Links:  []string{},
		Images: []pagelens.Image{},
	}
}

// recordingCompleter returns replies in order and records every request.
type recordingCompleter struct {
	replies  []string
	requests []pagelens.CompletionRequest
}

func (r *recordingCompleter) Complete(_ context.Context, req pagelens.CompletionRequest) (string, error) {
	r.requests = append(r.requests, req)
	if len(r.replies) == 0 {
		return "", nil
	}
	reply := r.replies[0]
	r.replies = r.replies[1:]
	return reply, nil
}

func TestAnalyzer_Analyze(t *testing.T) {
	t.Parallel()

	t.Run("rejects unrecognized kinds before calling the completer", func(t *testing.T) {
		t.Parallel()

		var calls int
		a := &analyze.Analyzer{
			Completer: &mock.Completer{
				CompleteFn: func(context.Context, pagelens.CompletionRequest) (string, error) {
					calls++
					return "", nil
				},
			},
		}

		for _, kind := range []pagelens.AnalysisKind{pagelens.AnalysisUnknown, pagelens.AnalysisKind(42), pagelens.AnalysisKind(-1)} {
			rec, err := a.Analyze(context.Background(), page("some text"), kind, "")
			require.Error(t, err)
			assert.Nil(t, rec)
			assert.Equal(t, pagelens.EINVALID, pagelens.ErrorCode(err))
		}
		assert.Zero(t, calls)
	})

	t.Run("rejects failure records and empty text before calling the completer", func(t *testing.T) {
		t.Parallel()

		var calls int
		a := &analyze.Analyzer{
			Completer: &mock.Completer{
				CompleteFn: func(context.Context, pagelens.CompletionRequest) (string, error) {
					calls++
					return "", nil
				},
			},
		}

		failed := pagelens.NewFailureRecord("https://example.com", errors.New("boom"), time.Now())
		_, err := a.Analyze(context.Background(), failed, pagelens.AnalysisSummarize, "")
		require.Error(t, err)
		assert.Equal(t, pagelens.EINVALID, pagelens.ErrorCode(err))

		_, err = a.Analyze(context.Background(), page("  \n "), pagelens.AnalysisSummarize, "")
		require.Error(t, err)
		assert.Equal(t, pagelens.EINVALID, pagelens.ErrorCode(err))

		assert.Zero(t, calls)
	})

	t.Run("custom requires a prompt", func(t *testing.T) {
		t.Parallel()

		var calls int
		a := &analyze.Analyzer{
			Completer: &mock.Completer{
				CompleteFn: func(context.Context, pagelens.CompletionRequest) (string, error) {
					calls++
					return "", nil
				},
			},
		}

		_, err := a.Analyze(context.Background(), page("text"), pagelens.AnalysisCustom, "   ")

		require.Error(t, err)
		assert.Equal(t, pagelens.EINVALID, pagelens.ErrorCode(err))
		assert.Zero(t, calls)
	})

	t.Run("truncates text from the head before building the prompt", func(t *testing.T) {
		t.Parallel()

		c := &recordingCompleter{replies: []string{"short"}}
		a := &analyze.Analyzer{Completer: c, MaxTokens: 100}

		text := strings.Repeat("x", 10000)
		_, err := a.Analyze(context.Background(), page(text), pagelens.AnalysisSummarize, "")

		require.NoError(t, err)
		require.Len(t, c.requests, 1)
		prompt := c.requests[0].Prompt
		assert.Contains(t, prompt, strings.Repeat("x", 500))
		assert.NotContains(t, prompt, strings.Repeat("x", 501))
		assert.Equal(t, 100, c.requests[0].MaxTokens)
	})

	t.Run("keeps the start of the text", func(t *testing.T) {
		t.Parallel()

		c := &recordingCompleter{replies: []string{"ok"}}
		a := &analyze.Analyzer{Completer: c, MaxTokens: 2, TruncationMultiplier: 3}

		_, err := a.Analyze(context.Background(), page("héllo wörld"), pagelens.AnalysisCustom, "Echo")

		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(c.requests[0].Prompt, "Text: héllo "), c.requests[0].Prompt)
	})

	t.Run("summarize returns trimmed completion", func(t *testing.T) {
		t.Parallel()

		c := &recordingCompleter{replies: []string{"\n  A short summary.  \n"}}
		a := &analyze.Analyzer{Completer: c, Temperature: 0.3}

		rec, err := a.Analyze(context.Background(), page("Long article text."), pagelens.AnalysisSummarize, "")

		require.NoError(t, err)
		assert.Equal(t, "summarize", rec.AnalysisType)
		assert.Equal(t, "https://example.com/article", rec.URL)
		assert.Equal(t, "A short summary.", rec.Summary)
		assert.InDelta(t, 0.3, c.requests[0].Temperature, 1e-9)
		assert.NotEmpty(t, c.requests[0].System)
		assert.Contains(t, c.requests[0].Prompt, "Long article text.")
	})

	t.Run("entities splits lines and commas", func(t *testing.T) {
		t.Parallel()

		c := &recordingCompleter{replies: []string{"- Acme Corp\n2. Jane Doe, Berlin\n\n* 2024-05-01\n"}}
		a := &analyze.Analyzer{Completer: c}

		rec, err := a.Analyze(context.Background(), page("text"), pagelens.AnalysisEntities, "")

		require.NoError(t, err)
		assert.Equal(t, []string{"Acme Corp", "Jane Doe", "Berlin", "2024-05-01"}, rec.Entities)
	})

	t.Run("sentiment parses JSON", func(t *testing.T) {
		t.Parallel()

		c := &recordingCompleter{replies: []string{"```json\n{\"sentiment\": \"Positive\", \"confidence\": 0.92}\n```"}}
		a := &analyze.Analyzer{Completer: c}

		rec, err := a.Analyze(context.Background(), page("I love it"), pagelens.AnalysisSentiment, "")

		require.NoError(t, err)
		assert.Equal(t, "positive", rec.Sentiment)
		require.NotNil(t, rec.Confidence)
		assert.InDelta(t, 0.92, *rec.Confidence, 1e-9)
	})

	t.Run("sentiment falls back to raw text", func(t *testing.T) {
		t.Parallel()

		c := &recordingCompleter{replies: []string{"  hard to say  "}}
		a := &analyze.Analyzer{Completer: c}

		rec, err := a.Analyze(context.Background(), page("meh"), pagelens.AnalysisSentiment, "")

		require.NoError(t, err)
		assert.Equal(t, "hard to say", rec.Sentiment)
		require.NotNil(t, rec.Confidence)
		assert.Zero(t, *rec.Confidence)
	})

	t.Run("classify offers candidate categories", func(t *testing.T) {
		t.Parallel()

		c := &recordingCompleter{replies: []string{"Category: Technology\nBecause it talks about chips."}}
		a := &analyze.Analyzer{Completer: c, Categories: []string{"technology", "sports"}}

		rec, err := a.Analyze(context.Background(), page("New chips released"), pagelens.AnalysisClassify, "")

		require.NoError(t, err)
		assert.Equal(t, "Technology", rec.Category)
		assert.Contains(t, c.requests[0].Prompt, "technology, sports")
	})

	t.Run("keywords are capped", func(t *testing.T) {
		t.Parallel()

		c := &recordingCompleter{replies: []string{"go, testing, http, , slog"}}
		a := &analyze.Analyzer{Completer: c, KeywordCount: 3}

		rec, err := a.Analyze(context.Background(), page("text"), pagelens.AnalysisKeywords, "")

		require.NoError(t, err)
		assert.Equal(t, []string{"go", "testing", "http"}, rec.Keywords)
		assert.Contains(t, c.requests[0].Prompt, "3 most important")
	})

	t.Run("custom returns raw completion", func(t *testing.T) {
		t.Parallel()

		c := &recordingCompleter{replies: []string{"  raw output\n"}}
		a := &analyze.Analyzer{Completer: c}

		rec, err := a.Analyze(context.Background(), page("body text"), pagelens.AnalysisCustom, "List the prices")

		require.NoError(t, err)
		assert.Equal(t, "custom", rec.AnalysisType)
		assert.Equal(t, "  raw output\n", rec.Result)
		assert.True(t, strings.HasPrefix(c.requests[0].Prompt, "List the prices"))
		assert.Contains(t, c.requests[0].Prompt, "body text")
	})

	t.Run("full merges every sub-analysis in order", func(t *testing.T) {
		t.Parallel()

		c := &recordingCompleter{replies: []string{
			"Summary.",
			"Acme",
			`{"sentiment": "neutral", "confidence": 0.5}`,
			"business",
			"acme, widgets",
		}}
		a := &analyze.Analyzer{Completer: c}

		rec, err := a.Analyze(context.Background(), page("Acme sells widgets."), pagelens.AnalysisFull, "")

		require.NoError(t, err)
		require.Len(t, c.requests, 5)
		assert.Equal(t, "full", rec.AnalysisType)
		assert.Equal(t, "Summary.", rec.Summary)
		assert.Equal(t, []string{"Acme"}, rec.Entities)
		assert.Equal(t, "neutral", rec.Sentiment)
		assert.InDelta(t, 0.5, *rec.Confidence, 1e-9)
		assert.Equal(t, "business", rec.Category)
		assert.Equal(t, []string{"acme", "widgets"}, rec.Keywords)
		assert.Empty(t, rec.Result)
	})

	t.Run("full aborts on the first failing sub-analysis", func(t *testing.T) {
		t.Parallel()

		var calls int
		a := &analyze.Analyzer{
			Completer: &mock.Completer{
				CompleteFn: func(context.Context, pagelens.CompletionRequest) (string, error) {
					calls++
					if calls == 3 {
						return "", pagelens.Errorf(pagelens.EANALYSIS, "rate limit exceeded")
					}
					return "ok", nil
				},
			},
		}

		rec, err := a.Analyze(context.Background(), page("text"), pagelens.AnalysisFull, "")

		require.Error(t, err)
		assert.Nil(t, rec)
		assert.Equal(t, 3, calls)
		assert.Equal(t, pagelens.EANALYSIS, pagelens.ErrorCode(err))
		assert.Equal(t, "rate limit exceeded", pagelens.ErrorMessage(err))
	})

	t.Run("wraps provider failures as analysis errors without retrying", func(t *testing.T) {
		t.Parallel()

		var calls int
		a := &analyze.Analyzer{
			Completer: &mock.Completer{
				CompleteFn: func(context.Context, pagelens.CompletionRequest) (string, error) {
					calls++
					return "", errors.New("401 invalid api key")
				},
			},
		}

		_, err := a.Analyze(context.Background(), page("text"), pagelens.AnalysisSummarize, "")

		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, pagelens.EANALYSIS, pagelens.ErrorCode(err))
		assert.Contains(t, err.Error(), "401 invalid api key")
	})

	t.Run("counts prompt tokens when a counter is set", func(t *testing.T) {
		t.Parallel()

		var counted []string
		a := &analyze.Analyzer{
			Completer: &recordingCompleter{replies: []string{"ok"}},
			TokenCounter: &mock.TokenCounter{
				CountTokensFn: func(_ context.Context, text string) (int, error) {
					counted = append(counted, text)
					return len(text) / 4, nil
				},
			},
		}

		_, err := a.Analyze(context.Background(), page("count me"), pagelens.AnalysisSummarize, "")

		require.NoError(t, err)
		require.Len(t, counted, 1)
		assert.Contains(t, counted[0], "count me")
	})
}

func TestNewAnalyzer(t *testing.T) {
	t.Parallel()

	cfg := pagelens.DefaultConfig()
	cfg.MaxTokens = 300
	cfg.Temperature = 0.2

	a := analyze.NewAnalyzer(&mock.Completer{}, cfg, nil)

	assert.Equal(t, 300, a.MaxTokens)
	assert.InDelta(t, 0.2, a.Temperature, 1e-9)
}

func TestAnalyzer_BlankCompletionKeepsKindFields(t *testing.T) {
	t.Parallel()

	want := map[pagelens.AnalysisKind][]string{
		pagelens.AnalysisSummarize: {"summary"},
		pagelens.AnalysisEntities:  {"entities"},
		pagelens.AnalysisSentiment: {"sentiment", "confidence"},
		pagelens.AnalysisClassify:  {"category"},
		pagelens.AnalysisKeywords:  {"keywords"},
		pagelens.AnalysisCustom:    {"result"},
		pagelens.AnalysisFull:      {"summary", "entities", "sentiment", "confidence", "category", "keywords"},
	}
	for kind, fields := range want {
		t.Run(kind.String(), func(t *testing.T) {
			t.Parallel()

			a := &analyze.Analyzer{Completer: &recordingCompleter{}}
			rec, err := a.Analyze(context.Background(), page("some text"), kind, "Describe it.")
			require.NoError(t, err)

			data, err := json.Marshal(rec)
			require.NoError(t, err)
			var got map[string]any
			require.NoError(t, json.Unmarshal(data, &got))

			assert.Len(t, got, len(fields)+2)
			for _, f := range fields {
				assert.Contains(t, got, f)
			}
			if _, ok := got["entities"]; ok {
				assert.Equal(t, []any{}, got["entities"])
			}
			if _, ok := got["keywords"]; ok {
				assert.Equal(t, []any{}, got["keywords"])
			}
		})
	}
}
