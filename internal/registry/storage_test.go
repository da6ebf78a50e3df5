package registry

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "registry.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_UpsertAndList(t *testing.T) {
	store := newTestDB(t)

	caps := []Capability{
		{Name: "image_resize", Description: "Resize an image", Tags: []string{"image", "resize"}, Category: "image", Active: true},
		{Name: "email_send", Description: "Send an email", Tags: []string{"email"}, Category: "comms", Active: true},
	}
	for _, cap := range caps {
		if err := store.Upsert(cap); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	got, err := store.ListActive("")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 capabilities, got %d", len(got))
	}
	// ListActive orders by name.
	if got[0].Name != "email_send" || got[1].Name != "image_resize" {
		t.Errorf("unexpected order: %v, %v", got[0].Name, got[1].Name)
	}
	if len(got[1].Tags) != 2 || got[1].Tags[0] != "image" {
		t.Errorf("tags did not round-trip: %v", got[1].Tags)
	}
}

func TestSQLiteStore_CategoryFilter(t *testing.T) {
	store := newTestDB(t)

	store.Upsert(Capability{Name: "a", Category: "x", Active: true})
	store.Upsert(Capability{Name: "b", Category: "y", Active: true})

	got, err := store.ListActive("x")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "a" {
		t.Errorf("expected only category x, got %v", got)
	}

	empty, err := store.ListActive("unknown")
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Errorf("unknown category should yield empty slice, got %v", empty)
	}
}

func TestSQLiteStore_UpsertPreservesUsage(t *testing.T) {
	store := newTestDB(t)

	store.Upsert(Capability{Name: "tool", Description: "v1", Active: true})
	if err := store.RecordInvocation("tool", "s1", time.Now().UTC(), true); err != nil {
		t.Fatal(err)
	}

	// Re-registering must not reset the usage statistics.
	store.Upsert(Capability{Name: "tool", Description: "v2", Active: true})

	got, err := store.GetByName("tool")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("expected the capability to exist")
	}
	if got.Description != "v2" {
		t.Errorf("expected updated description, got %q", got.Description)
	}
	if got.UsageCount != 1 {
		t.Errorf("expected usage count preserved at 1, got %d", got.UsageCount)
	}
	if got.LastUsedAt == nil {
		t.Error("expected last_used_at preserved")
	}
}

func TestSQLiteStore_Deactivate(t *testing.T) {
	store := newTestDB(t)

	store.Upsert(Capability{Name: "tool", Active: true})
	if err := store.Deactivate("tool"); err != nil {
		t.Fatal(err)
	}

	got, err := store.ListActive("")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("deactivated capability must not be listed, got %v", got)
	}

	// Still reachable by name for inspection.
	cap, err := store.GetByName("tool")
	if err != nil || cap == nil {
		t.Fatalf("expected the record to survive deactivation: %v %v", cap, err)
	}
	if cap.Active {
		t.Error("expected the record to report inactive")
	}
}

func TestSQLiteStore_EmbeddingRoundTrip(t *testing.T) {
	store := newTestDB(t)

	store.Upsert(Capability{Name: "tool", Active: true})
	if err := store.SaveEmbedding("tool", []float32{0.1, 0.2, 0.3}); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetByName("tool")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Embedding) != 3 {
		t.Fatalf("expected 3-dim embedding, got %v", got.Embedding)
	}

	// An upsert without an embedding keeps the stored one.
	store.Upsert(Capability{Name: "tool", Description: "updated", Active: true})
	got, err = store.GetByName("tool")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Embedding) != 3 {
		t.Errorf("upsert without embedding must keep the stored vector, got %v", got.Embedding)
	}
}

func TestSQLiteStore_ListCategories(t *testing.T) {
	store := newTestDB(t)

	store.Upsert(Capability{Name: "a", Category: "image", Active: true})
	store.Upsert(Capability{Name: "b", Category: "image", Active: true})
	store.Upsert(Capability{Name: "c", Category: "seo", Active: true})
	store.Upsert(Capability{Name: "d", Category: "seo", Active: false})

	counts, err := store.ListCategories()
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 2 {
		t.Fatalf("expected 2 categories, got %v", counts)
	}
	if counts[0].Category != "image" || counts[0].Count != 2 {
		t.Errorf("unexpected first category: %+v", counts[0])
	}
	if counts[1].Category != "seo" || counts[1].Count != 1 {
		t.Errorf("inactive capabilities must not be counted: %+v", counts[1])
	}
}

func TestSQLiteStore_RecordInvocationBuildsEdges(t *testing.T) {
	store := newTestDB(t)

	store.Upsert(Capability{Name: "a", Active: true})
	store.Upsert(Capability{Name: "b", Active: true})
	store.Upsert(Capability{Name: "c", Active: true})

	ts := time.Now().UTC()
	// a and b succeed in the same session, c fails.
	if err := store.RecordInvocation("a", "s1", ts, true); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordInvocation("b", "s1", ts, true); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordInvocation("c", "s1", ts, false); err != nil {
		t.Fatal(err)
	}

	weights, err := store.EdgeWeights("a")
	if err != nil {
		t.Fatal(err)
	}
	if weights["b"] != 1 {
		t.Errorf("expected edge a-b weight 1, got %v", weights)
	}
	if _, ok := weights["c"]; ok {
		t.Error("failed invocations must not create edges")
	}

	// The edge is undirected: visible from both endpoints.
	weights, err = store.EdgeWeights("b")
	if err != nil {
		t.Fatal(err)
	}
	if weights["a"] != 1 {
		t.Errorf("expected edge b-a weight 1, got %v", weights)
	}

	// A second co-occurrence in another session bumps the weight.
	if err := store.RecordInvocation("a", "s2", ts, true); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordInvocation("b", "s2", ts, true); err != nil {
		t.Fatal(err)
	}
	weights, _ = store.EdgeWeights("a")
	if weights["b"] != 2 {
		t.Errorf("expected edge weight 2 after second session, got %v", weights)
	}
}

func TestSQLiteStore_DisabledIsNoOp(t *testing.T) {
	store := &SQLiteStore{enabled: false}

	if err := store.Upsert(Capability{Name: "x", Active: true}); err != nil {
		t.Errorf("disabled store writes must be no-ops: %v", err)
	}
	caps, err := store.ListActive("")
	if err != nil || len(caps) != 0 {
		t.Errorf("disabled store reads must be empty: %v %v", caps, err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("disabled store close must be a no-op: %v", err)
	}
}

func TestMemoryStore_MirrorsRecorderSemantics(t *testing.T) {
	store := NewMemoryStore()

	store.Upsert(Capability{Name: "a", Active: true})
	store.Upsert(Capability{Name: "b", Active: true})

	ts := time.Now().UTC()
	store.RecordInvocation("a", "s1", ts, true)
	store.RecordInvocation("b", "s1", ts, true)
	store.RecordInvocation("b", "s1", ts, true)

	weights, err := store.EdgeWeights("a")
	if err != nil {
		t.Fatal(err)
	}
	// Two successful b invocations paired with one a.
	if weights["b"] != 2 {
		t.Errorf("expected edge weight 2, got %v", weights)
	}

	got, err := store.GetByName("b")
	if err != nil {
		t.Fatal(err)
	}
	if got.UsageCount != 2 {
		t.Errorf("expected usage count 2, got %d", got.UsageCount)
	}

	store.Deactivate("a")
	actives, err := store.ListActive("")
	if err != nil {
		t.Fatal(err)
	}
	if len(actives) != 1 || actives[0].Name != "b" {
		t.Errorf("expected only b active, got %v", actives)
	}
}
