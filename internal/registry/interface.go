package registry

import "time"

// Store is the read/write surface of the capability registry.
//
// The search engine uses only the read half (ListActive, GetByName,
// ListCategories); writes come from registration tooling and the
// invocation recorder.
type Store interface {
	// Init initializes the backing storage and runs migrations.
	Init() error

	// Upsert creates or replaces a capability record.
	Upsert(cap Capability) error

	// Deactivate marks a capability as inactive. The record is retained
	// for historical trace-edge computation.
	Deactivate(name string) error

	// ListActive returns all active capabilities, optionally restricted
	// to one category. An unknown category yields an empty slice, not an
	// error.
	ListActive(category string) ([]Capability, error)

	// GetByName returns a capability by name, or nil if absent.
	GetByName(name string) (*Capability, error)

	// ListCategories enumerates categories of active capabilities with
	// their record counts, sorted by category name.
	ListCategories() ([]CategoryCount, error)

	// SaveEmbedding stores a computed embedding vector for a capability.
	SaveEmbedding(name string, vector []float32) error

	// Close releases the underlying storage.
	Close() error
}

// TraceReader exposes co-occurrence edge weights, read-only.
type TraceReader interface {
	// EdgeWeights returns the weights of all trace edges incident to the
	// named capability, keyed by the neighbour's name.
	EdgeWeights(name string) (map[string]int64, error)
}

// Recorder receives invocation events after each actual capability use.
// It owns all mutation of usage counts and trace edges.
type Recorder interface {
	RecordInvocation(capability, sessionID string, ts time.Time, success bool) error
}
