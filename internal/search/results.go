/*
Package search implements hybrid capability discovery: lexical and dense
scoring fused with Reciprocal Rank Fusion, domain-cluster and usage
co-occurrence boosting, a TTL result cache, and a BM25 keyword fallback
for degraded deployments.
*/
package search

// MatchType tags which signals contributed non-zero score to a result.
type MatchType string

const (
	MatchLexical MatchType = "lexical"
	MatchDense   MatchType = "dense"
	MatchHybrid  MatchType = "hybrid"
)

// Query is one search request.
type Query struct {
	// Text is the raw natural-language input.
	Text string `json:"text"`

	// Category optionally restricts results to one category.
	Category string `json:"category,omitempty"`

	// Limit is the requested result count K (default 10).
	Limit int `json:"limit,omitempty"`

	// SessionUsed lists capabilities already invoked in the current
	// session; it drives the trace-edge boost.
	SessionUsed []string `json:"session_used,omitempty"`

	// Ablation disables individual signals for offline evaluation.
	// Non-default flags bypass the result cache.
	Ablation Ablation `json:"-"`
}

// Ablation holds the named signal-disable toggles. The zero value means
// all signals enabled.
type Ablation struct {
	DisablePrefix       bool
	DisableExact        bool
	DisableSynonyms     bool
	DisableFuzzy        bool
	DisablePhrase       bool
	DisableTagWeight    bool
	DisableDense        bool
	DisableClusterBoost bool
	DisableTraceBoost   bool
}

// enabled reports whether every signal is on (the cacheable default).
func (a Ablation) enabled() bool {
	return a == Ablation{}
}

// ScoredResult is one ranked search hit. Scores are comparable within a
// single query only, never across queries.
type ScoredResult struct {
	Name      string    `json:"name"`
	Score     float64   `json:"score"`
	Rank      int       `json:"rank"`
	MatchType MatchType `json:"matchType"`
}
