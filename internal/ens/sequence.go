package ens

import "sync"

// SequenceSource issues monotonically increasing sequence numbers per input
// field. Rapid re-typing triggers a fresh resolution on every change with no
// cancellation of in-flight calls, so a stale response can arrive after a
// newer one; callers tag each request with Next and drop any response whose
// sequence is no longer current.
type SequenceSource struct {
	mu     sync.Mutex
	latest map[string]uint64
}

// NewSequenceSource creates an empty sequence source
func NewSequenceSource() *SequenceSource {
	return &SequenceSource{
		latest: make(map[string]uint64),
	}
}

// Next issues the next sequence number for a field and records it as the
// latest outstanding request for that field.
func (s *SequenceSource) Next(field string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest[field]++
	return s.latest[field]
}

// Latest returns the most recently issued sequence number for a field
func (s *SequenceSource) Latest(field string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.latest[field]
}

// IsCurrent reports whether seq is still the latest issued for a field.
// Responses carrying a stale sequence must be discarded by the caller.
func (s *SequenceSource) IsCurrent(field string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.latest[field] == seq
}
