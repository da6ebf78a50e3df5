package search

import (
	"sort"
	"strings"

	"github.com/khanglvm/capsearch/internal/config"
	"github.com/khanglvm/capsearch/internal/registry"
)

// fallbackSearch is the keyword-scan ranking strategy used when the
// full-text index is unavailable or returned no rows. It bypasses the
// lexical/dense/fusion pipeline entirely:
//
//  1. Candidates are kept if any query token appears as a substring of
//     the tokenized name, tags or description. Both sides pass through
//     the same tokenizer, so stemmed query tokens ("query" -> "queri")
//     meet equally stemmed field text.
//  2. Each kept candidate is scored with field-weighted BM25 computed in
//     application code: term frequency counts a name hit at
//     FieldWeightName, a tag hit at FieldWeightTags and a description hit
//     at FieldWeightDesc, saturated with the standard
//     tf*(k1+1) / (tf + k1*(1 - b + b*docLen/avgDocLen)) curve.
//
// The ordering is strict and deterministic: descending score, ties broken
// by name. This is a documented second ranking strategy, not an
// approximation of the primary pipeline.
func fallbackSearch(q Normalized, candidates []registry.Capability, cfg *config.Config, limit int) []ScoredResult {
	if len(q.Tokens) == 0 || len(candidates) == 0 {
		return []ScoredResult{}
	}

	terms := dedup(q.Tokens)

	type fallbackDoc struct {
		name   string
		fields [3]string // name, tags, description (tokenized)
		length int
	}

	docs := make([]fallbackDoc, 0, len(candidates))
	totalLen := 0
	for _, cap := range candidates {
		nameTokens := tokenize(cap.Name)
		tagTokens := tokenize(strings.Join(cap.Tags, " "))
		descTokens := tokenize(cap.Description)

		doc := fallbackDoc{
			name: cap.Name,
			fields: [3]string{
				strings.Join(nameTokens, " "),
				strings.Join(tagTokens, " "),
				strings.Join(descTokens, " "),
			},
			length: len(nameTokens) + len(tagTokens) + len(descTokens),
		}
		if doc.length == 0 {
			doc.length = 1
		}
		totalLen += doc.length
		docs = append(docs, doc)
	}
	avgLen := float64(totalLen) / float64(len(docs))

	fieldWeights := [3]float64{cfg.FieldWeightName, cfg.FieldWeightTags, cfg.FieldWeightDesc}

	results := make([]ScoredResult, 0, limit)
	for _, doc := range docs {
		var score float64
		for _, term := range terms {
			// Field-weighted term frequency over substring hits.
			var tf float64
			for f, text := range doc.fields {
				if text == "" {
					continue
				}
				count := strings.Count(text, term)
				if count > 0 {
					tf += fieldWeights[f] * float64(count)
				}
			}
			if tf == 0 {
				continue
			}
			norm := 1 - cfg.BM25B + cfg.BM25B*float64(doc.length)/avgLen
			score += tf * (cfg.BM25K1 + 1) / (tf + cfg.BM25K1*norm)
		}
		if score > 0 {
			results = append(results, ScoredResult{
				Name:      doc.name,
				Score:     score,
				MatchType: MatchLexical,
			})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Name < results[j].Name
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}
