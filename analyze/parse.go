package analyze

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var (
	listMarker     = regexp.MustCompile(`^(?:[-*•+]\s*|\d+[.)]\s+)`)
	sentimentLabel = regexp.MustCompile(`(?i)\b(positive|negative|neutral|mixed)\b`)
	decimalNumber  = regexp.MustCompile(`\d*\.\d+|\d+`)
	percentNumber  = regexp.MustCompile(`(\d{1,3}(?:\.\d+)?)\s*%`)
	categoryPrefix = regexp.MustCompile(`(?i)^category\s*:[\s*]*`)
)

// parseList splits a completion on newlines and commas. List markers,
// surrounding quotes and empty fragments are dropped.
func parseList(s string) []string {
	items := []string{}
	for _, line := range strings.Split(stripCodeFence(s), "\n") {
		line = listMarker.ReplaceAllString(strings.TrimSpace(line), "")
		for _, part := range strings.Split(line, ",") {
			part = strings.Trim(strings.TrimSpace(part), `"'`+"`")
			part = strings.TrimSpace(listMarker.ReplaceAllString(part, ""))
			if part != "" {
				items = append(items, part)
			}
		}
	}
	return items
}

// parseSentiment reads a label and confidence from a completion.
//
// JSON of the form {"sentiment": ..., "confidence": ...} is preferred. Free
// text is accepted when it names a label; the first number in [0,1] with a
// decimal point (or a percentage) becomes the confidence, 0 if none. Anything
// else yields the raw text with confidence 0.
func parseSentiment(s string) (string, float64) {
	raw := strings.TrimSpace(s)
	body := stripCodeFence(raw)

	var v struct {
		Sentiment  string   `json:"sentiment"`
		Label      string   `json:"label"`
		Confidence *float64 `json:"confidence"`
		Score      *float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(body), &v); err == nil {
		label := v.Sentiment
		if label == "" {
			label = v.Label
		}
		if label != "" {
			conf := v.Confidence
			if conf == nil {
				conf = v.Score
			}
			var c float64
			if conf != nil {
				c = clampUnit(*conf)
			}
			return strings.ToLower(strings.TrimSpace(label)), c
		}
	}

	if m := sentimentLabel.FindStringSubmatch(body); m != nil {
		return strings.ToLower(m[1]), findConfidence(body)
	}

	return raw, 0
}

func findConfidence(s string) float64 {
	if m := percentNumber.FindStringSubmatch(s); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil && f <= 100 {
			return f / 100
		}
	}
	for _, tok := range decimalNumber.FindAllString(s, -1) {
		if !strings.Contains(tok, ".") {
			continue
		}
		if f, err := strconv.ParseFloat(tok, 64); err == nil && f >= 0 && f <= 1 {
			return f
		}
	}
	return 0
}

// parseCategory returns the first non-empty line, without a "Category:" label.
func parseCategory(s string) string {
	for _, line := range strings.Split(stripCodeFence(s), "\n") {
		line = strings.Trim(line, "\"'*. \t\r")
		line = categoryPrefix.ReplaceAllString(line, "")
		line = strings.Trim(line, "\"'*. \t\r")
		if line != "" {
			return line
		}
	}
	return ""
}

// stripCodeFence removes a surrounding markdown code fence, if any.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func clampUnit(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
