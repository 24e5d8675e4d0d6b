package pagelens_test

import (
	"encoding/json"
	"testing"

	"github.com/fwojciec/pagelens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysisKind(t *testing.T) {
	t.Parallel()

	t.Run("parses every recognized kind", func(t *testing.T) {
		t.Parallel()

		for _, k := range pagelens.AnalysisKinds() {
			parsed, err := pagelens.ParseAnalysisKind(k.String())
			require.NoError(t, err)
			assert.Equal(t, k, parsed)
		}
	})

	t.Run("is case insensitive", func(t *testing.T) {
		t.Parallel()

		k, err := pagelens.ParseAnalysisKind(" Summarize ")
		require.NoError(t, err)
		assert.Equal(t, pagelens.AnalysisSummarize, k)
	})

	t.Run("rejects unknown kinds", func(t *testing.T) {
		t.Parallel()

		for _, s := range []string{"", "summary", "translate", "unknown"} {
			_, err := pagelens.ParseAnalysisKind(s)
			require.Error(t, err, s)
			assert.Equal(t, pagelens.EINVALID, pagelens.ErrorCode(err))
		}
	})
}

func TestAnalysisKind_Valid(t *testing.T) {
	t.Parallel()

	assert.False(t, pagelens.AnalysisUnknown.Valid())
	assert.False(t, pagelens.AnalysisKind(99).Valid())
	assert.True(t, pagelens.AnalysisFull.Valid())
	assert.Len(t, pagelens.AnalysisKinds(), 7)
}

func TestParseExportFormat(t *testing.T) {
	t.Parallel()

	f, err := pagelens.ParseExportFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, pagelens.FormatCSV, f)

	_, err = pagelens.ParseExportFormat("xml")
	require.Error(t, err)
	assert.Equal(t, pagelens.EINVALID, pagelens.ErrorCode(err))
}

func TestAnalysisRecord_MarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind string
		want string
	}{
		{"summarize", `{"analysis_type":"summarize","url":"https://x.test/","summary":""}`},
		{"entities", `{"analysis_type":"entities","url":"https://x.test/","entities":[]}`},
		{"sentiment", `{"analysis_type":"sentiment","url":"https://x.test/","sentiment":"","confidence":0}`},
		{"classify", `{"analysis_type":"classify","url":"https://x.test/","category":""}`},
		{"keywords", `{"analysis_type":"keywords","url":"https://x.test/","keywords":[]}`},
		{"custom", `{"analysis_type":"custom","url":"https://x.test/","result":""}`},
		{"full", `{"analysis_type":"full","url":"https://x.test/","summary":"","entities":[],"sentiment":"","confidence":0,"category":"","keywords":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.kind+" keeps its empty fields", func(t *testing.T) {
			t.Parallel()

			data, err := json.Marshal(pagelens.AnalysisRecord{AnalysisType: tt.kind, URL: "https://x.test/"})

			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}

	t.Run("omits fields of other kinds", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(&pagelens.AnalysisRecord{AnalysisType: "keywords", Keywords: []string{"go"}})

		require.NoError(t, err)
		assert.JSONEq(t, `{"analysis_type":"keywords","keywords":["go"]}`, string(data))
	})

	t.Run("round trips set fields", func(t *testing.T) {
		t.Parallel()

		confidence := 0.8
		rec := pagelens.AnalysisRecord{AnalysisType: "sentiment", URL: "https://x.test/", Sentiment: "positive", Confidence: &confidence}

		data, err := json.Marshal(rec)
		require.NoError(t, err)
		var got pagelens.AnalysisRecord
		require.NoError(t, json.Unmarshal(data, &got))

		assert.Equal(t, rec, got)
	})
}
