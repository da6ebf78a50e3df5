package search

import (
	"math"
	"sort"

	"github.com/khanglvm/capsearch/internal/config"
)

// rankedItem is one entry of a single-signal ranking.
type rankedItem struct {
	Name  string
	Score float64
}

// fusionContext carries the corpus-level inputs of the boost stages.
type fusionContext struct {
	// clusters maps capability name -> domain cluster identifier.
	clusters map[string]string

	// candidates is every active capability name, so cluster mates that
	// scored zero can still be recovered.
	candidates []string

	// traceWeights maps candidate name -> summed edge weight with the
	// session's already-used capabilities.
	traceWeights map[string]int64

	ablation Ablation
}

// fuse merges the lexical and dense rankings with Reciprocal Rank Fusion
// and applies the domain-cluster and trace-edge boosts.
//
// RRF: score(c) = Σ 1/(κ+rank) over the lists containing c. When one list
// is empty every candidate draws from a single list, so the fused order
// equals that list's own order; the boosts are the only thing that can
// reorder it afterwards.
//
// Ties are broken by candidate name so the output is deterministic for a
// fixed corpus snapshot.
func fuse(lexical, dense []rankedItem, cfg *config.Config, fctx fusionContext) []ScoredResult {
	lexRank := make(map[string]int, len(lexical))
	lexScore := make(map[string]float64, len(lexical))
	for i, item := range lexical {
		lexRank[item.Name] = i + 1
		lexScore[item.Name] = item.Score
	}
	denseRank := make(map[string]int, len(dense))
	denseScore := make(map[string]float64, len(dense))
	for i, item := range dense {
		denseRank[item.Name] = i + 1
		denseScore[item.Name] = item.Score
	}

	fused := make(map[string]float64)
	for name, rank := range lexRank {
		fused[name] += 1.0 / (cfg.RRFK + float64(rank))
	}
	for name, rank := range denseRank {
		fused[name] += 1.0 / (cfg.RRFK + float64(rank))
	}

	// Domain-cluster boost: clusters of the top-N lexical hits pull in
	// topically-related candidates, including ones with zero score so
	// far. This recovers tools that share no vocabulary with the query.
	if !fctx.ablation.DisableClusterBoost && len(fctx.clusters) > 0 {
		seedClusters := make(map[string]struct{})
		for i, item := range lexical {
			if i >= cfg.ClusterSeedN {
				break
			}
			if cluster, ok := fctx.clusters[item.Name]; ok && cluster != "" {
				seedClusters[cluster] = struct{}{}
			}
		}
		if len(seedClusters) > 0 {
			for _, name := range fctx.candidates {
				cluster, ok := fctx.clusters[name]
				if !ok {
					continue
				}
				if _, seeded := seedClusters[cluster]; seeded {
					fused[name] += cfg.ClusterBoost
				}
			}
		}
	}

	// Trace-edge boost: capabilities commonly used together with what
	// the session has already invoked. log1p saturates heavy edges.
	if !fctx.ablation.DisableTraceBoost {
		for name, weight := range fctx.traceWeights {
			if weight <= 0 {
				continue
			}
			if _, known := fused[name]; !known {
				// Boosts recover candidates absent from both
				// rankings only via clusters; a trace edge alone
				// does not introduce a candidate.
				continue
			}
			fused[name] += cfg.TraceBoost * math.Log1p(float64(weight))
		}
	}

	results := make([]ScoredResult, 0, len(fused))
	for name, score := range fused {
		results = append(results, ScoredResult{
			Name:      name,
			Score:     score,
			MatchType: matchTypeFor(lexScore[name], denseScore[name]),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Name < results[j].Name
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

// matchTypeFor derives the match tag from the pre-fusion sub-scores.
// Candidates recovered purely by the cluster boost carry "lexical": the
// boost is seeded by the lexical neighbourhood of the query.
func matchTypeFor(lexScore, denseScore float64) MatchType {
	switch {
	case lexScore > 0 && denseScore > 0:
		return MatchHybrid
	case denseScore > 0:
		return MatchDense
	default:
		return MatchLexical
	}
}
