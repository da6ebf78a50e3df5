package search

import (
	"math"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/khanglvm/capsearch/internal/config"
	"github.com/khanglvm/capsearch/internal/registry"
)

// Signal names a lexical sub-signal that contributed to a score.
type Signal string

const (
	SignalPrefix  Signal = "prefix"
	SignalExact   Signal = "exact"
	SignalSynonym Signal = "synonym"
	SignalFuzzy   Signal = "fuzzy"
	SignalPhrase  Signal = "phrase"
	SignalTags    Signal = "tags"
)

// Doc is the precomputed lexical view of one candidate. Building it once
// per candidate keeps per-query scoring cheap and allocation-light.
type Doc struct {
	Name string

	tokens   []string
	tokenSet map[string]struct{}
	bigrams  map[string]struct{}
	trigrams map[string]struct{}

	// tags maps the original (case-folded) tag string to its stemmed
	// token forms; tagCount normalizes the coverage score.
	tags     map[string][]string
	tagCount int
}

// Lexical scores candidates against a normalized query. It is pure: each
// candidate is scored independently of all others, so scoring can run
// concurrently across the whole corpus.
type Lexical struct {
	cfg *config.Config

	// synonyms maps a stemmed token to the stemmed members of its group.
	synonyms map[string][]string

	// idf weights each tag by inverse frequency across the corpus
	// (Lucene smoothing: log((N+1)/(df+1)) + 1).
	idf map[string]float64
}

// NewLexical builds a scorer for the given corpus snapshot. The corpus is
// only used to derive tag document frequencies; it is not retained.
func NewLexical(cfg *config.Config, corpus []registry.Capability) *Lexical {
	df := make(map[string]int)
	for _, cap := range corpus {
		seen := make(map[string]struct{}, len(cap.Tags))
		for _, tag := range cap.Tags {
			key := strings.ToLower(strings.TrimSpace(tag))
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			df[key]++
		}
	}

	n := float64(len(corpus))
	idf := make(map[string]float64, len(df))
	for tag, count := range df {
		idf[tag] = math.Log((n+1)/float64(count+1)) + 1
	}

	synonyms := make(map[string][]string)
	for _, group := range cfg.Synonyms {
		stemmed := make([]string, 0, len(group))
		for _, word := range group {
			stemmed = append(stemmed, stem(strings.ToLower(word)))
		}
		for i, word := range stemmed {
			for j, other := range stemmed {
				if i != j {
					synonyms[word] = append(synonyms[word], other)
				}
			}
		}
	}

	return &Lexical{cfg: cfg, synonyms: synonyms, idf: idf}
}

// BuildDoc precomputes the lexical view of a candidate from its name,
// description and tags.
func (l *Lexical) BuildDoc(cap *registry.Capability) *Doc {
	text := cap.Name + " " + cap.Description + " " + strings.Join(cap.Tags, " ")
	norm := Normalize(text)

	doc := &Doc{
		Name:     cap.Name,
		tokens:   norm.Tokens,
		tokenSet: toSet(norm.Tokens),
		bigrams:  toSet(norm.Bigrams),
		trigrams: toSet(norm.Trigrams),
		tags:     make(map[string][]string, len(cap.Tags)),
		tagCount: len(cap.Tags),
	}
	for _, tag := range cap.Tags {
		key := strings.ToLower(strings.TrimSpace(tag))
		if key == "" {
			continue
		}
		doc.tags[key] = tokenize(tag)
	}
	return doc
}

// ExpandQuery returns the query tokens plus their synonym expansions,
// deduplicated and in deterministic order. Used both for scoring and for
// the full-text index lookup.
func (l *Lexical) ExpandQuery(q Normalized, ab Ablation) []string {
	seen := make(map[string]struct{}, len(q.Tokens)*2)
	expanded := make([]string, 0, len(q.Tokens)*2)
	add := func(tok string) {
		if _, dup := seen[tok]; !dup {
			seen[tok] = struct{}{}
			expanded = append(expanded, tok)
		}
	}

	for _, tok := range q.Tokens {
		add(tok)
	}
	if !ab.DisableSynonyms {
		for _, tok := range q.Tokens {
			for _, syn := range l.synonyms[tok] {
				add(syn)
			}
		}
	}
	return expanded
}

// Score computes the composite lexical score of one candidate and the set
// of sub-signals that contributed. Disabled signals contribute zero.
func (l *Lexical) Score(q Normalized, doc *Doc, ab Ablation) (float64, []Signal) {
	if len(q.Tokens) == 0 || doc == nil {
		return 0, nil
	}

	w := l.cfg.Weights
	var score float64
	var signals []Signal

	queryTokens := dedup(q.Tokens)
	querySet := toSet(queryTokens)

	// Synonym expansions, kept separate from original tokens so the
	// exact and synonym signals stay independently togglable.
	var synTokens []string
	if !ab.DisableSynonyms {
		seen := make(map[string]struct{})
		for _, tok := range queryTokens {
			for _, syn := range l.synonyms[tok] {
				if _, inQuery := querySet[syn]; inQuery {
					continue
				}
				if _, dup := seen[syn]; dup {
					continue
				}
				seen[syn] = struct{}{}
				synTokens = append(synTokens, syn)
			}
		}
	}

	// Exact token overlap.
	matched := make(map[string]struct{})
	if !ab.DisableExact {
		exact := 0
		for _, tok := range queryTokens {
			if _, ok := doc.tokenSet[tok]; ok {
				matched[tok] = struct{}{}
				exact++
			}
		}
		if exact > 0 {
			score += w.Exact * float64(exact)
			signals = append(signals, SignalExact)
		}
	}

	// Synonym matches contribute as if the expanded terms were present
	// in the original query.
	if len(synTokens) > 0 {
		syn := 0
		for _, tok := range synTokens {
			if _, ok := doc.tokenSet[tok]; ok {
				matched[tok] = struct{}{}
				syn++
			}
		}
		if syn > 0 {
			score += w.Exact * float64(syn)
			signals = append(signals, SignalSynonym)
		}
	}

	// Prefix bonus: any candidate token starting with any query token.
	if !ab.DisablePrefix {
		if prefixHit(append(queryTokens, synTokens...), doc.tokens) {
			score += w.Prefix
			signals = append(signals, SignalPrefix)
		}
	}

	// Fuzzy matching for query tokens with no exact match.
	if !ab.DisableFuzzy {
		fuzzy := 0
		for _, tok := range queryTokens {
			if _, ok := matched[tok]; ok {
				continue
			}
			if len(tok) < 3 {
				continue
			}
			if l.fuzzyHit(tok, doc.tokens) {
				fuzzy++
			}
		}
		if fuzzy > 0 {
			score += w.Fuzzy * float64(fuzzy)
			signals = append(signals, SignalFuzzy)
		}
	}

	// Phrase alignment via n-gram overlap.
	if !ab.DisablePhrase {
		phrase := w.Bigram*jaccard(q.Bigrams, doc.bigrams) +
			w.Trigram*jaccard(q.Trigrams, doc.trigrams)
		if phrase > 0 {
			score += phrase
			signals = append(signals, SignalPhrase)
		}
	}

	// TF-IDF weighted tag coverage, normalized by tag-set size so a
	// sprawling tag list is not an advantage.
	if !ab.DisableTagWeight && doc.tagCount > 0 {
		all := append(append([]string{}, queryTokens...), synTokens...)
		allSet := toSet(all)
		var sum float64
		for tag, tagTokens := range doc.tags {
			for _, tt := range tagTokens {
				if _, ok := allSet[tt]; ok {
					sum += l.idf[tag]
					break
				}
			}
		}
		if sum > 0 {
			score += w.TagCoverage * sum / float64(doc.tagCount)
			signals = append(signals, SignalTags)
		}
	}

	return score, signals
}

// fuzzyHit reports whether any doc token is within the length-proportional
// edit-distance budget of tok.
func (l *Lexical) fuzzyHit(tok string, docTokens []string) bool {
	budget := l.cfg.FuzzyDistLong
	if len(tok) <= l.cfg.ShortTokenLen {
		budget = l.cfg.FuzzyDistShort
	}
	for _, dt := range docTokens {
		if len(dt) < 3 {
			continue
		}
		// Cheap length screen before computing the distance.
		if abs(len(dt)-len(tok)) > budget {
			continue
		}
		if edlib.LevenshteinDistance(tok, dt) <= budget {
			return true
		}
	}
	return false
}

func prefixHit(queryTokens, docTokens []string) bool {
	for _, qt := range queryTokens {
		if len(qt) < 2 {
			continue
		}
		for _, dt := range docTokens {
			if len(dt) > len(qt) && strings.HasPrefix(dt, qt) {
				return true
			}
		}
	}
	return false
}

// jaccard computes Jaccard similarity between a gram slice and a gram set.
func jaccard(grams []string, docGrams map[string]struct{}) float64 {
	if len(grams) == 0 || len(docGrams) == 0 {
		return 0
	}
	inter := 0
	seen := make(map[string]struct{}, len(grams))
	for _, g := range grams {
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		if _, ok := docGrams[g]; ok {
			inter++
		}
	}
	union := len(seen) + len(docGrams) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func dedup(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
