package pagelens

import (
	"context"
	"encoding/json"
	"strings"
)

// AnalysisKind identifies one kind of analysis. It is a closed enumeration:
// the zero value is not a valid kind.
type AnalysisKind int

// Recognized analysis kinds.
const (
	AnalysisUnknown AnalysisKind = iota
	AnalysisSummarize
	AnalysisEntities
	AnalysisSentiment
	AnalysisClassify
	AnalysisKeywords
	AnalysisFull
	AnalysisCustom
)

var analysisKindNames = map[AnalysisKind]string{
	AnalysisSummarize: "summarize",
	AnalysisEntities:  "entities",
	AnalysisSentiment: "sentiment",
	AnalysisClassify:  "classify",
	AnalysisKeywords:  "keywords",
	AnalysisFull:      "full",
	AnalysisCustom:    "custom",
}

// AnalysisKinds returns every recognized kind in declaration order.
func AnalysisKinds() []AnalysisKind {
	return []AnalysisKind{
		AnalysisSummarize,
		AnalysisEntities,
		AnalysisSentiment,
		AnalysisClassify,
		AnalysisKeywords,
		AnalysisFull,
		AnalysisCustom,
	}
}

// String returns the wire name of the kind.
func (k AnalysisKind) String() string {
	if name, ok := analysisKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether k is a recognized kind.
func (k AnalysisKind) Valid() bool {
	_, ok := analysisKindNames[k]
	return ok
}

// ParseAnalysisKind returns the kind named s. Unrecognized names return EINVALID.
func ParseAnalysisKind(s string) (AnalysisKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, k := range AnalysisKinds() {
		if analysisKindNames[k] == name {
			return k, nil
		}
	}
	names := make([]string, 0, len(analysisKindNames))
	for _, k := range AnalysisKinds() {
		names = append(names, k.String())
	}
	return AnalysisUnknown, Errorf(EINVALID, "invalid analysis type %q, must be one of: %s", s, strings.Join(names, ", "))
}

// AnalysisRecord is the structured result of one analysis call for one page.
// Only the fields belonging to AnalysisType are populated; a "full" record
// carries the fields of every sub-analysis.
type AnalysisRecord struct {
	AnalysisType string `json:"analysis_type"`
	URL          string `json:"url,omitempty"`

	Summary    string   `json:"summary,omitempty"`
	Entities   []string `json:"entities,omitempty"`
	Sentiment  string   `json:"sentiment,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Category   string   `json:"category,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
	Result     string   `json:"result,omitempty"`
}

// analysisFields lists the JSON fields each kind always carries.
var analysisFields = map[string][]string{
	"summarize": {"summary"},
	"entities":  {"entities"},
	"sentiment": {"sentiment", "confidence"},
	"classify":  {"category"},
	"keywords":  {"keywords"},
	"custom":    {"result"},
	"full":      {"summary", "entities", "sentiment", "confidence", "category", "keywords"},
}

// analysisJSON is the wire shape of an AnalysisRecord. A nil field is omitted.
type analysisJSON struct {
	AnalysisType string    `json:"analysis_type"`
	URL          string    `json:"url,omitempty"`
	Summary      *string   `json:"summary,omitempty"`
	Entities     *[]string `json:"entities,omitempty"`
	Sentiment    *string   `json:"sentiment,omitempty"`
	Confidence   *float64  `json:"confidence,omitempty"`
	Category     *string   `json:"category,omitempty"`
	Keywords     *[]string `json:"keywords,omitempty"`
	Result       *string   `json:"result,omitempty"`
}

// MarshalJSON always emits the fields of the record's kind, empty or not,
// with lists as arrays. Fields of other kinds are emitted only when set.
func (r AnalysisRecord) MarshalJSON() ([]byte, error) {
	out := analysisJSON{AnalysisType: r.AnalysisType, URL: r.URL}
	keep := make(map[string]bool)
	for _, f := range analysisFields[r.AnalysisType] {
		keep[f] = true
	}

	if keep["summary"] || r.Summary != "" {
		out.Summary = &r.Summary
	}
	if keep["entities"] || len(r.Entities) > 0 {
		entities := nonNil(r.Entities)
		out.Entities = &entities
	}
	if keep["sentiment"] || r.Sentiment != "" {
		out.Sentiment = &r.Sentiment
	}
	if r.Confidence != nil {
		out.Confidence = r.Confidence
	} else if keep["confidence"] {
		var zero float64
		out.Confidence = &zero
	}
	if keep["category"] || r.Category != "" {
		out.Category = &r.Category
	}
	if keep["keywords"] || len(r.Keywords) > 0 {
		keywords := nonNil(r.Keywords)
		out.Keywords = &keywords
	}
	if keep["result"] || r.Result != "" {
		out.Result = &r.Result
	}
	return json.Marshal(out)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// CompletionRequest is a single prompt sent to a completion service.
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Completer sends prompts to a language-model completion service.
type Completer interface {
	// Complete returns the completion text for req.
	// Provider failures are returned as EANALYSIS errors carrying the
	// provider's message.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// TokenCounter counts tokens in text for a specific model.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

// Analyzer runs analyses over page records.
type Analyzer interface {
	// Analyze validates kind, truncates the page text and dispatches to the
	// completion service. customPrompt is required for AnalysisCustom.
	Analyze(ctx context.Context, page PageRecord, kind AnalysisKind, customPrompt string) (*AnalysisRecord, error)
}
