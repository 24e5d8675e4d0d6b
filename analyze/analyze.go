// Package analyze dispatches page records to a completion service and parses
// the responses into typed analysis records.
package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/pagelens"
)

// Ensure Analyzer implements pagelens.Analyzer at compile time.
var _ pagelens.Analyzer = (*Analyzer)(nil)

const (
	// DefaultTruncationMultiplier approximates characters per token.
	DefaultTruncationMultiplier = 5

	// DefaultSummaryWords is the requested summary length.
	DefaultSummaryWords = 150

	// DefaultKeywordCount caps the number of keywords kept.
	DefaultKeywordCount = 10
)

// DefaultCategories are the candidate categories offered to classify.
var DefaultCategories = []string{
	"news",
	"technology",
	"business",
	"science",
	"health",
	"entertainment",
	"sports",
	"politics",
	"education",
	"other",
}

// fullKinds are run in order by AnalysisFull.
var fullKinds = []pagelens.AnalysisKind{
	pagelens.AnalysisSummarize,
	pagelens.AnalysisEntities,
	pagelens.AnalysisSentiment,
	pagelens.AnalysisClassify,
	pagelens.AnalysisKeywords,
}

// Analyzer runs analyses against a Completer. Completer is required; zero
// values of the remaining fields fall back to package defaults.
type Analyzer struct {
	Completer pagelens.Completer

	// TokenCounter, if set, is used to log the size of each prompt.
	TokenCounter pagelens.TokenCounter
	Logger       *slog.Logger

	MaxTokens            int
	Temperature          float64
	TruncationMultiplier int
	Categories           []string
	SummaryWords         int
	KeywordCount         int
}

// NewAnalyzer creates an Analyzer from process configuration.
func NewAnalyzer(completer pagelens.Completer, cfg pagelens.Config, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		Completer:   completer,
		Logger:      logger,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}
}

// handlerFunc fills the kind-specific fields of rec from text.
type handlerFunc func(ctx context.Context, text, customPrompt string, rec *pagelens.AnalysisRecord) error

// handler returns the handler for kind, or nil for an unrecognized kind.
func (a *Analyzer) handler(kind pagelens.AnalysisKind) handlerFunc {
	switch kind {
	case pagelens.AnalysisSummarize:
		return a.summarize
	case pagelens.AnalysisEntities:
		return a.entities
	case pagelens.AnalysisSentiment:
		return a.sentiment
	case pagelens.AnalysisClassify:
		return a.classify
	case pagelens.AnalysisKeywords:
		return a.keywords
	case pagelens.AnalysisFull:
		return a.full
	case pagelens.AnalysisCustom:
		return a.custom
	case pagelens.AnalysisUnknown:
	}
	return nil
}

// Analyze runs one analysis of page. Validation failures are reported as
// EINVALID before the completion service is called.
func (a *Analyzer) Analyze(ctx context.Context, page pagelens.PageRecord, kind pagelens.AnalysisKind, customPrompt string) (*pagelens.AnalysisRecord, error) {
	handle := a.handler(kind)
	if handle == nil {
		_, err := pagelens.ParseAnalysisKind(kind.String())
		return nil, err
	}
	if page.Failed() {
		return nil, pagelens.Errorf(pagelens.EINVALID, "cannot analyze failed page %s: %s", page.URL, page.Error)
	}
	if strings.TrimSpace(page.Text) == "" {
		return nil, pagelens.Errorf(pagelens.EINVALID, "no text content to analyze for %s", page.URL)
	}
	if kind == pagelens.AnalysisCustom && strings.TrimSpace(customPrompt) == "" {
		return nil, pagelens.Errorf(pagelens.EINVALID, "custom analysis requires a prompt")
	}

	text := truncateHead(page.Text, a.truncationBound())
	if len(text) < len(page.Text) {
		a.logger().Debug("truncated text", "url", page.URL, "from", len(page.Text), "to", len(text))
	}

	start := time.Now()
	rec := &pagelens.AnalysisRecord{
		AnalysisType: kind.String(),
		URL:          page.URL,
	}
	if err := handle(ctx, text, customPrompt, rec); err != nil {
		a.logger().Error("analysis failed", "url", page.URL, "kind", kind.String(), "err", err)
		return nil, err
	}

	a.logger().Info("analysis completed", "url", page.URL, "kind", kind.String(), "duration", time.Since(start))
	return rec, nil
}

func (a *Analyzer) summarize(ctx context.Context, text, _ string, rec *pagelens.AnalysisRecord) error {
	out, err := a.complete(ctx,
		"You are a helpful assistant that creates concise and accurate summaries.",
		fmt.Sprintf("Summarize the following text in approximately %d words:\n\n%s", a.summaryWords(), text),
	)
	if err != nil {
		return err
	}
	rec.Summary = strings.TrimSpace(out)
	return nil
}

func (a *Analyzer) entities(ctx context.Context, text, _ string, rec *pagelens.AnalysisRecord) error {
	out, err := a.complete(ctx,
		"You are an expert in named entity recognition. Extract entities accurately.",
		"Extract the named entities (people, organizations, locations, dates and products) "+
			"from the following text. Return one entity per line with no commentary.\n\nText: "+text,
	)
	if err != nil {
		return err
	}
	rec.Entities = parseList(out)
	return nil
}

func (a *Analyzer) sentiment(ctx context.Context, text, _ string, rec *pagelens.AnalysisRecord) error {
	out, err := a.complete(ctx,
		"You are an expert in sentiment analysis. Provide accurate analysis.",
		"Analyze the overall sentiment of the following text. Respond with JSON only, in the form "+
			`{"sentiment": "positive|negative|neutral|mixed", "confidence": <number between 0 and 1>}`+
			".\n\nText: "+text,
	)
	if err != nil {
		return err
	}
	label, confidence := parseSentiment(out)
	rec.Sentiment = label
	rec.Confidence = &confidence
	return nil
}

func (a *Analyzer) classify(ctx context.Context, text, _ string, rec *pagelens.AnalysisRecord) error {
	out, err := a.complete(ctx,
		"You are an expert content classifier. Provide accurate classifications.",
		fmt.Sprintf("Classify the following text into exactly one of these categories: %s.\n"+
			"Respond with the category name only.\n\nText: %s", strings.Join(a.categories(), ", "), text),
	)
	if err != nil {
		return err
	}
	rec.Category = parseCategory(out)
	return nil
}

func (a *Analyzer) keywords(ctx context.Context, text, _ string, rec *pagelens.AnalysisRecord) error {
	n := a.keywordCount()
	out, err := a.complete(ctx,
		"You are an expert in keyword extraction. Identify the most relevant terms.",
		fmt.Sprintf("Extract the %d most important keywords or key phrases from the following text.\n"+
			"Return them as a comma-separated list.\n\nText: %s", n, text),
	)
	if err != nil {
		return err
	}
	keywords := parseList(out)
	if len(keywords) > n {
		keywords = keywords[:n]
	}
	rec.Keywords = keywords
	return nil
}

func (a *Analyzer) custom(ctx context.Context, text, customPrompt string, rec *pagelens.AnalysisRecord) error {
	out, err := a.complete(ctx,
		"You are a helpful assistant that analyzes web page content.",
		strings.TrimSpace(customPrompt)+"\n\nText: "+text,
	)
	if err != nil {
		return err
	}
	rec.Result = out
	return nil
}

// full merges every sub-analysis into rec. The first failure aborts the run.
func (a *Analyzer) full(ctx context.Context, text, customPrompt string, rec *pagelens.AnalysisRecord) error {
	for _, kind := range fullKinds {
		if err := a.handler(kind)(ctx, text, customPrompt, rec); err != nil {
			return err
		}
	}
	return nil
}

// complete sends one prompt. Errors are reported as EANALYSIS.
func (a *Analyzer) complete(ctx context.Context, system, prompt string) (string, error) {
	if a.TokenCounter != nil {
		if n, err := a.TokenCounter.CountTokens(ctx, system+"\n"+prompt); err == nil {
			a.logger().Debug("prompt size", "tokens", n)
		} else {
			a.logger().Warn("count tokens", "err", err)
		}
	}

	out, err := a.Completer.Complete(ctx, pagelens.CompletionRequest{
		System:      system,
		Prompt:      prompt,
		MaxTokens:   a.maxTokens(),
		Temperature: a.Temperature,
	})
	if err != nil {
		if pagelens.ErrorCode(err) == pagelens.EANALYSIS {
			return "", err
		}
		return "", pagelens.WrapError(pagelens.EANALYSIS, err, "completion failed")
	}
	return out, nil
}

func (a *Analyzer) truncationBound() int {
	m := a.TruncationMultiplier
	if m <= 0 {
		m = DefaultTruncationMultiplier
	}
	return a.maxTokens() * m
}

func (a *Analyzer) maxTokens() int {
	if a.MaxTokens > 0 {
		return a.MaxTokens
	}
	return pagelens.DefaultMaxTokens
}

func (a *Analyzer) summaryWords() int {
	if a.SummaryWords > 0 {
		return a.SummaryWords
	}
	return DefaultSummaryWords
}

func (a *Analyzer) keywordCount() int {
	if a.KeywordCount > 0 {
		return a.KeywordCount
	}
	return DefaultKeywordCount
}

func (a *Analyzer) categories() []string {
	if len(a.Categories) > 0 {
		return a.Categories
	}
	return DefaultCategories
}

func (a *Analyzer) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// truncateHead keeps at most limit runes from the start of s.
func truncateHead(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
