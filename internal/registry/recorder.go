package registry

import (
	"fmt"
	"log"
	"time"
)

// RecordInvocation records one capability use. On success it bumps the
// capability's usage count, stamps last_used_at, and increments the trace
// edge between the capability and every other capability already seen in
// the same session. The search path never calls this; it is the write half
// of the usage graph.
func (s *SQLiteStore) RecordInvocation(capability, sessionID string, ts time.Time, success bool) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	succ := 0
	if success {
		succ = 1
	}

	// Session partners are read before inserting so the new event does
	// not pair with itself.
	partners, err := s.sessionPartners(capability, sessionID)
	if err != nil {
		log.Printf("Warning: failed to read session partners: %v", err)
		partners = nil
	}

	if _, err := s.db.Exec(`
		INSERT INTO invocations (capability, session_id, timestamp, success)
		VALUES (?, ?, ?, ?)
	`, capability, sessionID, ts.Format(time.RFC3339), succ); err != nil {
		return fmt.Errorf("failed to record invocation: %w", err)
	}

	if !success {
		return nil
	}

	if _, err := s.db.Exec(`
		UPDATE capabilities
		SET usage_count = usage_count + 1, last_used_at = ?
		WHERE name = ?
	`, ts.Format(time.RFC3339), capability); err != nil {
		log.Printf("Warning: failed to update usage count for %q: %v", capability, err)
	}

	for _, partner := range partners {
		a, b := sortedPair(capability, partner)
		if _, err := s.db.Exec(`
			INSERT INTO trace_edges (a, b, weight) VALUES (?, ?, 1)
			ON CONFLICT(a, b) DO UPDATE SET weight = weight + 1
		`, a, b); err != nil {
			log.Printf("Warning: failed to bump trace edge %s-%s: %v", a, b, err)
		}
	}

	return nil
}

// sessionPartners returns the distinct other capabilities successfully
// invoked in the given session. Caller holds s.mu.
func (s *SQLiteStore) sessionPartners(capability, sessionID string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT capability FROM invocations
		WHERE session_id = ? AND success = 1 AND capability != ?
	`, sessionID, capability)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partners []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		partners = append(partners, name)
	}
	return partners, rows.Err()
}
