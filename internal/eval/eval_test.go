package eval

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/khanglvm/capsearch/internal/search"
)

// fixedSearcher replays canned rankings per query text.
type fixedSearcher struct {
	rankings map[string][]string
}

func (f *fixedSearcher) Search(_ context.Context, q search.Query) ([]search.ScoredResult, error) {
	names := f.rankings[q.Text]
	results := make([]search.ScoredResult, len(names))
	for i, name := range names {
		results[i] = search.ScoredResult{Name: name, Rank: i + 1, Score: 1.0 / float64(i+1)}
	}
	return results, nil
}

func TestLoadCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	content := `cases:
  - query: resize an image
    expected: [image_resize]
    segment: novice
  - query: seo audit
    expected: [seo_audit_url, seo_keyword_rank]
    segment: expert
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	corpus, err := LoadCorpus(path)
	if err != nil {
		t.Fatalf("failed to load corpus: %v", err)
	}
	if len(corpus.Cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(corpus.Cases))
	}
	if corpus.Cases[1].Segment != "expert" || len(corpus.Cases[1].Expected) != 2 {
		t.Errorf("unexpected case: %+v", corpus.Cases[1])
	}
}

func TestLoadCorpus_Missing(t *testing.T) {
	if _, err := LoadCorpus(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing corpus file")
	}
}

func TestRun_ComputesMetricsPerSegment(t *testing.T) {
	corpus := &Corpus{Cases: []Case{
		{Query: "q1", Expected: []string{"hit"}, Segment: "novice"},
		{Query: "q2", Expected: []string{"hit"}, Segment: "novice"},
		{Query: "q3", Expected: []string{"hit"}, Segment: "expert"},
	}}

	engine := &fixedSearcher{rankings: map[string][]string{
		"q1": {"hit"},         // rank 1: recall 1, rr 1
		"q2": {"miss", "hit"}, // rank 2: recall 1, rr 0.5
		"q3": {"a", "b", "c"}, // absent: recall 0, rr 0
	}}

	reports, err := Run(context.Background(), engine, corpus, []Variant{{Name: "baseline"}})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected one report per segment, got %d", len(reports))
	}

	novice := reports[0]
	if novice.Segment != "novice" || novice.Queries != 2 {
		t.Fatalf("unexpected novice report: %+v", novice)
	}
	if novice.RecallAt5 != 1.0 {
		t.Errorf("expected novice recall@5 of 1.0, got %f", novice.RecallAt5)
	}
	if novice.MRR != 0.75 {
		t.Errorf("expected novice MRR of 0.75, got %f", novice.MRR)
	}

	expert := reports[1]
	if expert.Segment != "expert" || expert.RecallAt5 != 0 || expert.MRR != 0 {
		t.Errorf("unexpected expert report: %+v", expert)
	}
}

func TestRun_VariantsCarryAblations(t *testing.T) {
	variants := Variants()
	if variants[0].Name != "baseline" || !(variants[0].Ablation == search.Ablation{}) {
		t.Fatalf("first variant must be the baseline: %+v", variants[0])
	}

	seen := make(map[search.Ablation]struct{})
	for _, v := range variants[1:] {
		if (v.Ablation == search.Ablation{}) {
			t.Errorf("variant %s disables nothing", v.Name)
		}
		if _, dup := seen[v.Ablation]; dup {
			t.Errorf("variant %s duplicates an ablation", v.Name)
		}
		seen[v.Ablation] = struct{}{}
	}
}

func TestRecallAtK_TopKOnly(t *testing.T) {
	results := []search.ScoredResult{
		{Name: "a", Rank: 1}, {Name: "b", Rank: 2}, {Name: "c", Rank: 3},
		{Name: "d", Rank: 4}, {Name: "e", Rank: 5}, {Name: "target", Rank: 6},
	}
	if got := recallAtK(results, []string{"target"}, 5); got != 0 {
		t.Errorf("a hit below rank 5 must not count, got %f", got)
	}
	if got := recallAtK(results, []string{"c"}, 5); got != 1 {
		t.Errorf("a hit within rank 5 must count, got %f", got)
	}
}
