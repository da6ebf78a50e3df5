package registry

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store, TraceReader and Recorder. It backs
// tests and the eval harness with a fixed fixture corpus.
type MemoryStore struct {
	mu       sync.RWMutex
	caps     map[string]Capability
	edges    map[[2]string]int64
	sessions map[string][]string // sessionID -> successful capability names
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		caps:     make(map[string]Capability),
		edges:    make(map[[2]string]int64),
		sessions: make(map[string][]string),
	}
}

// Init is a no-op for the in-memory store.
func (m *MemoryStore) Init() error { return nil }

// Upsert creates or replaces a capability record.
func (m *MemoryStore) Upsert(cap Capability) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.caps[cap.Name]; ok {
		cap.UsageCount = prev.UsageCount
		cap.LastUsedAt = prev.LastUsedAt
		if cap.Embedding == nil {
			cap.Embedding = prev.Embedding
		}
	}
	m.caps[cap.Name] = cap
	return nil
}

// Deactivate marks a capability inactive.
func (m *MemoryStore) Deactivate(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cap, ok := m.caps[name]; ok {
		cap.Active = false
		m.caps[name] = cap
	}
	return nil
}

// ListActive returns active capabilities sorted by name.
func (m *MemoryStore) ListActive(category string) ([]Capability, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	caps := []Capability{}
	for _, cap := range m.caps {
		if !cap.Active {
			continue
		}
		if category != "" && cap.Category != category {
			continue
		}
		caps = append(caps, cap)
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i].Name < caps[j].Name })
	return caps, nil
}

// GetByName returns a capability by name, or nil.
func (m *MemoryStore) GetByName(name string) (*Capability, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if cap, ok := m.caps[name]; ok {
		c := cap
		return &c, nil
	}
	return nil, nil
}

// ListCategories enumerates categories of active capabilities.
func (m *MemoryStore) ListCategories() ([]CategoryCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byCategory := make(map[string]int)
	for _, cap := range m.caps {
		if cap.Active && cap.Category != "" {
			byCategory[cap.Category]++
		}
	}

	counts := []CategoryCount{}
	for category, n := range byCategory {
		counts = append(counts, CategoryCount{Category: category, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Category < counts[j].Category })
	return counts, nil
}

// SaveEmbedding stores an embedding for a capability.
func (m *MemoryStore) SaveEmbedding(name string, vector []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cap, ok := m.caps[name]; ok {
		cap.Embedding = vector
		m.caps[name] = cap
	}
	return nil
}

// EdgeWeights returns trace-edge weights incident to name.
func (m *MemoryStore) EdgeWeights(name string) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	weights := make(map[string]int64)
	for pair, w := range m.edges {
		if pair[0] == name {
			weights[pair[1]] = w
		} else if pair[1] == name {
			weights[pair[0]] = w
		}
	}
	return weights, nil
}

// SetEdge sets a trace-edge weight directly. Test fixture helper.
func (m *MemoryStore) SetEdge(a, b string, weight int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	x, y := sortedPair(a, b)
	m.edges[[2]string{x, y}] = weight
}

// RecordInvocation mirrors the SQLite recorder semantics in memory.
func (m *MemoryStore) RecordInvocation(capability, sessionID string, ts time.Time, success bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !success {
		return nil
	}

	if cap, ok := m.caps[capability]; ok {
		cap.UsageCount++
		t := ts
		cap.LastUsedAt = &t
		m.caps[capability] = cap
	}

	for _, partner := range m.sessions[sessionID] {
		if partner == capability {
			continue
		}
		a, b := sortedPair(capability, partner)
		m.edges[[2]string{a, b}]++
	}

	seen := false
	for _, name := range m.sessions[sessionID] {
		if name == capability {
			seen = true
			break
		}
	}
	if !seen {
		m.sessions[sessionID] = append(m.sessions[sessionID], capability)
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }
