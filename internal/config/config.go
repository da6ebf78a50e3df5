/*
Package config holds the tuning parameters and static tables for the search
engine.

Two kinds of configuration live here:

 1. Numeric tuning (signal weights, RRF constant, fuzzy thresholds, BM25
    parameters, boost constants, cache sizing). The defaults are published
    values, not corpus-derived ones; the eval harness shows that which
    signals are present matters far more than the exact constants.
 2. Static tables: the synonym groups and the capability-name -> domain
    cluster map. Both are hand-authored inputs, shipped with defaults and
    overridable from a YAML file at ~/.capsearch/config.yaml.
*/
package config

import "time"

// Weights are the fixed combination weights of the lexical sub-signals.
type Weights struct {
	Prefix      float64 `yaml:"prefix"`
	Exact       float64 `yaml:"exact"`
	Fuzzy       float64 `yaml:"fuzzy"`
	Bigram      float64 `yaml:"bigram"`
	Trigram     float64 `yaml:"trigram"`
	TagCoverage float64 `yaml:"tagCoverage"`
}

// Config is the full engine configuration.
type Config struct {
	Weights Weights `yaml:"weights"`

	// RRFK is the reciprocal-rank-fusion constant (Cormack et al. 2009).
	RRFK float64 `yaml:"rrfK"`

	// ClusterSeedN is how many top lexical hits seed the domain-cluster
	// boost; ClusterBoost is the fixed additive bonus for cluster mates.
	ClusterSeedN int     `yaml:"clusterSeedN"`
	ClusterBoost float64 `yaml:"clusterBoost"`

	// TraceBoost scales the co-occurrence bonus. The edge weight is
	// passed through log1p so heavily-used pairs saturate instead of
	// drowning the RRF signal.
	TraceBoost float64 `yaml:"traceBoost"`

	// BM25 parameters for the fallback keyword path.
	BM25K1 float64 `yaml:"bm25K1"`
	BM25B  float64 `yaml:"bm25B"`

	// Field weights for the fallback keyword path: name matches count
	// most, tags next, description body last.
	FieldWeightName float64 `yaml:"fieldWeightName"`
	FieldWeightTags float64 `yaml:"fieldWeightTags"`
	FieldWeightDesc float64 `yaml:"fieldWeightDesc"`

	// ShortTokenLen splits the fuzzy edit-distance budget: tokens up to
	// this length allow distance FuzzyDistShort, longer ones FuzzyDistLong.
	ShortTokenLen  int `yaml:"shortTokenLen"`
	FuzzyDistShort int `yaml:"fuzzyDistShort"`
	FuzzyDistLong  int `yaml:"fuzzyDistLong"`

	// CandidateFactor multiplies the requested limit when asking the
	// full-text index for candidates.
	CandidateFactor int `yaml:"candidateFactor"`

	// Result cache sizing.
	CacheTTL  time.Duration `yaml:"cacheTTL"`
	CacheSize int           `yaml:"cacheSize"`

	// EmbedTimeout bounds the embedding backend call per query.
	EmbedTimeout time.Duration `yaml:"embedTimeout"`

	// Synonyms are symmetric groups; every token in a group expands to
	// the whole group.
	Synonyms [][]string `yaml:"synonyms"`

	// Clusters maps capability name -> domain cluster identifier.
	Clusters map[string]string `yaml:"clusters"`
}

// Default returns the shipped configuration.
func Default() *Config {
	return &Config{
		Weights: Weights{
			Prefix:      0.5,
			Exact:       1.0,
			Fuzzy:       0.6,
			Bigram:      1.5,
			Trigram:     2.0,
			TagCoverage: 2.0,
		},
		RRFK:            60,
		ClusterSeedN:    3,
		ClusterBoost:    0.004,
		TraceBoost:      0.003,
		BM25K1:          1.2,
		BM25B:           0.75,
		FieldWeightName: 3.0,
		FieldWeightTags: 2.0,
		FieldWeightDesc: 1.0,
		ShortTokenLen:   4,
		FuzzyDistShort:  1,
		FuzzyDistLong:   2,
		CandidateFactor: 8,
		CacheTTL:        5 * time.Minute,
		CacheSize:       512,
		EmbedTimeout:    3 * time.Second,
		Synonyms:        defaultSynonyms(),
		Clusters:        map[string]string{},
	}
}

// defaultSynonyms is the hand-authored synonym table. Groups are
// symmetric; matching happens on stemmed tokens, so inflected forms fold
// together before lookup.
func defaultSynonyms() [][]string {
	return [][]string{
		{"url", "webpage", "page", "link", "web", "site"},
		{"performance", "speed", "fast", "latency", "slow"},
		{"lighthouse", "vitals", "pagespeed"},
		{"search", "find", "lookup", "query", "discover"},
		{"create", "add", "new", "register"},
		{"delete", "remove", "drop"},
		{"update", "edit", "modify", "change"},
		{"fetch", "get", "retrieve", "download", "pull"},
		{"email", "mail", "inbox", "message"},
		{"document", "doc", "file", "note"},
		{"task", "todo", "reminder"},
		{"security", "vulnerability", "cve", "exploit"},
		{"finance", "stock", "market", "ticker", "equity"},
		{"image", "picture", "photo", "screenshot"},
		{"calendar", "schedule", "event", "meeting"},
		{"summarize", "summary", "digest", "tldr"},
	}
}
