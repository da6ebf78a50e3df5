/*
Package registry provides the capability registry: the searchable corpus of
tools and skills an agent can invoke, plus the usage history that feeds
co-occurrence boosting.

The registry is externally owned from the search engine's perspective. The
engine only reads capabilities and trace edges; the invocation recorder is
the single writer of usage counts and edge weights.
*/
package registry

import "time"

// Capability is one entry in the searchable corpus.
type Capability struct {
	// Name is the unique, stable identifier of the capability.
	Name string `json:"name"`

	// Description is free text shown to the agent and searched lexically.
	Description string `json:"description"`

	// Tags are short keywords; order is irrelevant.
	Tags []string `json:"tags,omitempty"`

	// Category is a single classification label (e.g. "web", "finance").
	Category string `json:"category,omitempty"`

	// Embedding is the precomputed dense vector, or nil until the
	// embedding job has run for this capability.
	Embedding []float32 `json:"-"`

	// UsageCount is the number of successful invocations recorded.
	UsageCount int64 `json:"usage_count,omitempty"`

	// LastUsedAt is the time of the most recent successful invocation,
	// or nil if the capability has never been used.
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`

	// Active is false once the capability has been deactivated.
	// Deactivated records are invisible to new searches but retained
	// for historical trace-edge computation.
	Active bool `json:"active"`
}

// TraceEdge is an undirected co-occurrence relation between two
// capabilities observed in the same invocation session. Weight is
// non-negative and only grows on the write path.
type TraceEdge struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Weight int64  `json:"weight"`
}

// CategoryCount is one row of the category enumeration.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Invocation is a single recorded capability use.
type Invocation struct {
	Capability string    `json:"capability"`
	SessionID  string    `json:"session_id"`
	Timestamp  time.Time `json:"timestamp"`
	Success    bool      `json:"success"`
}
