package search

import (
	"testing"

	"github.com/khanglvm/capsearch/internal/config"
	"github.com/khanglvm/capsearch/internal/registry"
)

func TestFallback_SubstringRequired(t *testing.T) {
	corpus := testCorpus()

	results := fallbackSearch(Normalize("crop"), corpus, config.Default(), 10)

	if len(results) != 1 || results[0].Name != "image_crop" {
		t.Fatalf("expected only image_crop, got %v", results)
	}
	if results[0].Rank != 1 || results[0].MatchType != MatchLexical {
		t.Errorf("unexpected rank or match type: %+v", results[0])
	}
}

func TestFallback_NameOutweighsDescription(t *testing.T) {
	// The term appears once in a's name and once in b's description.
	// Field weighting must rank a first.
	corpus := []registry.Capability{
		{Name: "deploy", Description: "ship a build", Active: true},
		{Name: "shipper", Description: "deploy a build", Active: true},
	}

	results := fallbackSearch(Normalize("deploy"), corpus, config.Default(), 10)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %v", results)
	}
	if results[0].Name != "deploy" {
		t.Errorf("name hit should outrank description hit, got %v", results)
	}
}

func TestFallback_TagsOutweighDescription(t *testing.T) {
	corpus := []registry.Capability{
		{Name: "tool_a", Description: "does things", Tags: []string{"deploy"}, Active: true},
		{Name: "tool_b", Description: "deploy things", Active: true},
	}

	results := fallbackSearch(Normalize("deploy"), corpus, config.Default(), 10)

	if len(results) != 2 || results[0].Name != "tool_a" {
		t.Errorf("tag hit should outrank description hit, got %v", results)
	}
}

func TestFallback_LimitAndRanks(t *testing.T) {
	corpus := []registry.Capability{
		{Name: "log_view", Description: "view logs", Active: true},
		{Name: "log_tail", Description: "tail logs", Active: true},
		{Name: "log_grep", Description: "grep logs", Active: true},
	}

	results := fallbackSearch(Normalize("logs"), corpus, config.Default(), 2)

	if len(results) != 2 {
		t.Fatalf("expected limit to cap results, got %d", len(results))
	}
	for i, r := range results {
		if r.Rank != i+1 {
			t.Errorf("expected contiguous ranks, got %+v", r)
		}
	}
}

func TestFallback_NoMatchesEmpty(t *testing.T) {
	results := fallbackSearch(Normalize("nonexistent"), testCorpus(), config.Default(), 10)
	if len(results) != 0 {
		t.Errorf("expected no results, got %v", results)
	}

	results = fallbackSearch(Normalize(""), testCorpus(), config.Default(), 10)
	if len(results) != 0 {
		t.Errorf("empty query should yield no results, got %v", results)
	}
}

func TestFallback_MatchesStemmedWordForms(t *testing.T) {
	// Words whose stem is not a prefix of the surface form ("copy" ->
	// "copi", "query" -> "queri") must still match records that carry
	// the surface form.
	corpus := []registry.Capability{
		{Name: "file_copy", Description: "Copy a file to a destination", Tags: []string{"copy"}, Active: true},
		{Name: "db_query", Description: "Run a database query", Tags: []string{"query"}, Active: true},
	}

	results := fallbackSearch(Normalize("copy"), corpus, config.Default(), 10)
	if len(results) != 1 || results[0].Name != "file_copy" {
		t.Errorf("expected file_copy for query copy, got %v", results)
	}

	results = fallbackSearch(Normalize("query"), corpus, config.Default(), 10)
	if len(results) != 1 || results[0].Name != "db_query" {
		t.Errorf("expected db_query for query query, got %v", results)
	}
}

func TestFallback_Deterministic(t *testing.T) {
	corpus := []registry.Capability{
		{Name: "b_tool", Description: "shared term", Active: true},
		{Name: "a_tool", Description: "shared term", Active: true},
	}

	for i := 0; i < 10; i++ {
		results := fallbackSearch(Normalize("shared"), corpus, config.Default(), 10)
		if len(results) != 2 || results[0].Name != "a_tool" {
			t.Fatalf("equal scores must tie-break by name, got %v", results)
		}
	}
}
