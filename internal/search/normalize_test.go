package search

import (
	"reflect"
	"testing"
)

func TestNormalize_UnderscoreSeparates(t *testing.T) {
	norm := Normalize("seo_audit_url")

	if len(norm.Tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d: %v", len(norm.Tokens), norm.Tokens)
	}
	if norm.Tokens[0] != "seo" || norm.Tokens[2] != "url" {
		t.Errorf("unexpected tokens: %v", norm.Tokens)
	}
}

func TestNormalize_HyphenSeparates(t *testing.T) {
	norm := Normalize("full-text")
	if len(norm.Tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %v", norm.Tokens)
	}
}

func TestNormalize_StripsPunctuationAndCase(t *testing.T) {
	a := Normalize("Crop, the IMAGE!")
	b := Normalize("crop the image")

	if !reflect.DeepEqual(a.Tokens, b.Tokens) {
		t.Errorf("punctuation and case should not change tokens: %v vs %v", a.Tokens, b.Tokens)
	}
}

func TestNormalize_StemsInflectedForms(t *testing.T) {
	a := Normalize("auditing")
	b := Normalize("audits")

	if a.Tokens[0] != b.Tokens[0] {
		t.Errorf("inflected forms should share a stem: %q vs %q", a.Tokens[0], b.Tokens[0])
	}
}

func TestNormalize_ShortAndDigitTokensPassThrough(t *testing.T) {
	norm := Normalize("go mp4")
	want := []string{"go", "mp4"}
	if !reflect.DeepEqual(norm.Tokens, want) {
		t.Errorf("expected %v, got %v", want, norm.Tokens)
	}
}

func TestNormalize_NGrams(t *testing.T) {
	norm := Normalize("one two three")

	if len(norm.Bigrams) != 2 {
		t.Errorf("expected 2 bigrams, got %v", norm.Bigrams)
	}
	if len(norm.Trigrams) != 1 {
		t.Errorf("expected 1 trigram, got %v", norm.Trigrams)
	}

	short := Normalize("one")
	if len(short.Bigrams) != 0 || len(short.Trigrams) != 0 {
		t.Errorf("single token should yield no n-grams: %v %v", short.Bigrams, short.Trigrams)
	}
}

func TestNormalize_Empty(t *testing.T) {
	norm := Normalize("  ... !!! ")
	if len(norm.Tokens) != 0 {
		t.Errorf("expected no tokens, got %v", norm.Tokens)
	}
}

func TestCacheKeyText(t *testing.T) {
	a := CacheKeyText("  Resize   IMAGE ")
	b := CacheKeyText("resize image")

	if a != b {
		t.Errorf("equivalent queries should share a key: %q vs %q", a, b)
	}

	if CacheKeyText("resize image") == CacheKeyText("resize video") {
		t.Error("different queries must not collide")
	}
}
