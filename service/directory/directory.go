// Package directory resolves the signer roster of an obligation.
package directory

import (
	"context"
	"sync"
)

// Directory returns who signs an obligation at the director stage.
type Directory interface {
	Signers(ctx context.Context, obligationID string) ([]string, error)
}

// Service is an in-memory directory: a default roster plus per-obligation
// overrides.
type Service struct {
	mu           sync.RWMutex
	defaults     []string
	byObligation map[string][]string
}

var _ Directory = (*Service)(nil)

// Signers returns the roster for obligationID.
func (s *Service) Signers(_ context.Context, obligationID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if signers, ok := s.byObligation[obligationID]; ok {
		return append([]string(nil), signers...), nil
	}
	return append([]string(nil), s.defaults...), nil
}

// Assign overrides the roster of one obligation.
func (s *Service) Assign(obligationID string, signers ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byObligation[obligationID] = append([]string(nil), signers...)
}

// New creates a directory with a default roster.
func New(defaults []string, byObligation map[string][]string) *Service {
	ret := &Service{
		defaults:     append([]string(nil), defaults...),
		byObligation: map[string][]string{},
	}
	for id, signers := range byObligation {
		ret.byObligation[id] = append([]string(nil), signers...)
	}
	return ret
}
