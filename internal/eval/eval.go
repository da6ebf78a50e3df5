/*
Package eval is the offline ablation harness for the search engine.

It replays a labeled query corpus, split into novice/familiar/expert
segments, against the engine with individual signals disabled, and
reports recall@5 and mean reciprocal rank per segment and variant. The
harness is how the signal weights earn their keep: the numbers show that
which signals are present matters far more than their exact constants.
*/
package eval

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/khanglvm/capsearch/internal/search"
)

// Case is one labeled eval query.
type Case struct {
	// Query is the natural-language input.
	Query string `yaml:"query"`

	// Expected lists capability names counted as relevant; the first
	// entry is the primary target for MRR.
	Expected []string `yaml:"expected"`

	// Segment is one of "novice", "familiar", "expert".
	Segment string `yaml:"segment"`
}

// Corpus is a set of eval cases.
type Corpus struct {
	Cases []Case `yaml:"cases"`
}

// LoadCorpus reads an eval corpus from a YAML file.
func LoadCorpus(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read eval corpus: %w", err)
	}
	var corpus Corpus
	if err := yaml.Unmarshal(data, &corpus); err != nil {
		return nil, fmt.Errorf("failed to parse eval corpus %s: %w", path, err)
	}
	return &corpus, nil
}

// Searcher is the engine surface the harness needs.
type Searcher interface {
	Search(ctx context.Context, q search.Query) ([]search.ScoredResult, error)
}

// Variant names one ablation configuration.
type Variant struct {
	Name     string
	Ablation search.Ablation
}

// Variants returns the baseline plus one variant per disabled signal.
func Variants() []Variant {
	return []Variant{
		{Name: "baseline"},
		{Name: "no-prefix", Ablation: search.Ablation{DisablePrefix: true}},
		{Name: "no-exact", Ablation: search.Ablation{DisableExact: true}},
		{Name: "no-synonyms", Ablation: search.Ablation{DisableSynonyms: true}},
		{Name: "no-fuzzy", Ablation: search.Ablation{DisableFuzzy: true}},
		{Name: "no-phrase", Ablation: search.Ablation{DisablePhrase: true}},
		{Name: "no-tag-weight", Ablation: search.Ablation{DisableTagWeight: true}},
		{Name: "no-dense", Ablation: search.Ablation{DisableDense: true}},
		{Name: "no-cluster-boost", Ablation: search.Ablation{DisableClusterBoost: true}},
		{Name: "no-trace-boost", Ablation: search.Ablation{DisableTraceBoost: true}},
	}
}

// Report is the measured quality of one variant on one segment.
type Report struct {
	Variant   string  `json:"variant"`
	Segment   string  `json:"segment"`
	Queries   int     `json:"queries"`
	RecallAt5 float64 `json:"recall_at_5"`
	MRR       float64 `json:"mrr"`
}

// Run replays the corpus for every variant and returns one report per
// (variant, segment) pair, in variant order then segment name order.
func Run(ctx context.Context, engine Searcher, corpus *Corpus, variants []Variant) ([]Report, error) {
	segments := segmentNames(corpus)

	var reports []Report
	for _, variant := range variants {
		bySegment := make(map[string]*Report)
		for _, segment := range segments {
			bySegment[segment] = &Report{Variant: variant.Name, Segment: segment}
		}

		for _, c := range corpus.Cases {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			report, ok := bySegment[c.Segment]
			if !ok {
				continue
			}

			results, err := engine.Search(ctx, search.Query{
				Text:     c.Query,
				Limit:    10,
				Ablation: variant.Ablation,
			})
			if err != nil {
				return nil, fmt.Errorf("eval query %q failed: %w", c.Query, err)
			}

			report.Queries++
			report.RecallAt5 += recallAtK(results, c.Expected, 5)
			report.MRR += reciprocalRank(results, c.Expected)
		}

		for _, segment := range segments {
			report := bySegment[segment]
			if report.Queries > 0 {
				report.RecallAt5 /= float64(report.Queries)
				report.MRR /= float64(report.Queries)
			}
			reports = append(reports, *report)
		}
	}
	return reports, nil
}

// recallAtK is the fraction of expected names found in the top k results.
func recallAtK(results []search.ScoredResult, expected []string, k int) float64 {
	if len(expected) == 0 {
		return 0
	}
	top := make(map[string]struct{}, k)
	for i, r := range results {
		if i >= k {
			break
		}
		top[r.Name] = struct{}{}
	}
	found := 0
	for _, name := range expected {
		if _, ok := top[name]; ok {
			found++
		}
	}
	return float64(found) / float64(len(expected))
}

// reciprocalRank is 1/rank of the first expected name, or 0 if absent.
func reciprocalRank(results []search.ScoredResult, expected []string) float64 {
	want := make(map[string]struct{}, len(expected))
	for _, name := range expected {
		want[name] = struct{}{}
	}
	for _, r := range results {
		if _, ok := want[r.Name]; ok {
			return 1.0 / float64(r.Rank)
		}
	}
	return 0
}

func segmentNames(corpus *Corpus) []string {
	seen := make(map[string]struct{})
	var segments []string
	for _, c := range corpus.Cases {
		if _, dup := seen[c.Segment]; !dup {
			seen[c.Segment] = struct{}{}
			segments = append(segments, c.Segment)
		}
	}
	return segments
}
