package domain

// SuggestionType is the closed set of suggestion categories the model is
// instructed to produce. Any other value fails validation.
type SuggestionType string

const (
	// SuggestionSupport cites evidence that supports a claim in the text.
	SuggestionSupport SuggestionType = "support"

	// SuggestionContradiction cites evidence that contradicts or weakens
	// a claim in the text.
	SuggestionContradiction SuggestionType = "contradiction"

	// SuggestionQuestion poses a probing question about the text.
	SuggestionQuestion SuggestionType = "question"

	// SuggestionElaborate flags a point that needs more development.
	SuggestionElaborate SuggestionType = "elaborate"
)

// Valid reports whether t is a member of the closed type set.
func (t SuggestionType) Valid() bool {
	switch t {
	case SuggestionSupport, SuggestionContradiction, SuggestionQuestion, SuggestionElaborate:
		return true
	default:
		return false
	}
}

// Suggestion is one validated item of model output. When FileID is set the
// suggestion should also carry a Location and Quote traceable to a specific
// evidence snippet; that linkage is advisory and not enforced.
type Suggestion struct {
	// Type is the suggestion category.
	Type SuggestionType `json:"type"`

	// Text is the suggestion body shown to the user.
	Text string `json:"text"`

	// FileID links the suggestion to a cited source file, if any.
	FileID string `json:"file_id,omitempty"`

	// Location is the citation location label, if any.
	Location string `json:"location,omitempty"`

	// Quote is the cited evidence text, if any.
	Quote string `json:"quote,omitempty"`
}

// SuggestionRequest is the unit of work for one orchestration call.
type SuggestionRequest struct {
	// UserID identifies the caller for the project membership check.
	UserID string

	// ProjectID scopes retrieval and authorization.
	ProjectID string

	// CurrentText is the user's in-progress document text.
	CurrentText string
}

// FailureCause is the machine-readable reason a pipeline degraded.
// It accompanies the uniform empty-result response; the response body
// shape never changes because of it.
type FailureCause string

const (
	// CauseNone means the pipeline completed (possibly with zero findings).
	CauseNone FailureCause = ""

	// CauseAuth means minting a service credential failed.
	CauseAuth FailureCause = "auth"

	// CauseAuthorization means the caller lacks project access.
	CauseAuthorization FailureCause = "authorization"

	// CauseEmbedding means the embedding call failed.
	CauseEmbedding FailureCause = "embedding"

	// CauseRetrieval means the vector store or metadata store was unreachable.
	CauseRetrieval FailureCause = "retrieval"

	// CauseGeneration means the generative model call failed.
	CauseGeneration FailureCause = "generation"

	// CauseTimeout means the caller's deadline expired mid-pipeline.
	CauseTimeout FailureCause = "timeout"
)

// SuggestionResult is the orchestrator's response shape. Suggestions is
// always non-nil so the serialized form is a JSON array, never null.
type SuggestionResult struct {
	// Suggestions is the validated suggestion list, empty on any failure.
	Suggestions []Suggestion `json:"suggestions"`

	// Cause records why an empty result was degraded rather than earned.
	// Not serialized into the response body.
	Cause FailureCause `json:"-"`
}

// EmptyResult returns a well-formed degraded result for the given cause.
func EmptyResult(cause FailureCause) SuggestionResult {
	return SuggestionResult{Suggestions: []Suggestion{}, Cause: cause}
}
