package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSuggestionType_Valid tests the closed type set
func TestSuggestionType_Valid(t *testing.T) {
	valid := []SuggestionType{
		SuggestionSupport,
		SuggestionContradiction,
		SuggestionQuestion,
		SuggestionElaborate,
	}
	for _, st := range valid {
		assert.True(t, st.Valid(), "expected %q to be valid", st)
	}

	invalid := []SuggestionType{"", "unknown", "Support", "contradicts"}
	for _, st := range invalid {
		assert.False(t, st.Valid(), "expected %q to be invalid", st)
	}
}

// TestSuggestion_JSONShape tests the wire shape of a suggestion
func TestSuggestion_JSONShape(t *testing.T) {
	s := Suggestion{
		Type:     SuggestionContradiction,
		Text:     "This conflicts with the rescheduling note.",
		FileID:   "F1",
		Location: "Page 2",
		Quote:    "meeting was rescheduled to March 10th",
	}

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "contradiction",
		"text": "This conflicts with the rescheduling note.",
		"file_id": "F1",
		"location": "Page 2",
		"quote": "meeting was rescheduled to March 10th"
	}`, string(raw))
}

// TestSuggestion_JSONShape_OmitsEmptyCitation tests omitempty on citation fields
func TestSuggestion_JSONShape_OmitsEmptyCitation(t *testing.T) {
	s := Suggestion{Type: SuggestionQuestion, Text: "What is the source for this date?"}

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"question","text":"What is the source for this date?"}`, string(raw))
}

// TestEmptyResult tests that degraded results keep the response shape
func TestEmptyResult(t *testing.T) {
	res := EmptyResult(CauseRetrieval)

	require.NotNil(t, res.Suggestions)
	assert.Empty(t, res.Suggestions)
	assert.Equal(t, CauseRetrieval, res.Cause)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"suggestions":[]}`, string(raw))
}
