package screening

import (
	"strings"

	"github.com/rotisserie/eris"
)

// terms returns default then custom terms. Caller holds s.mu.
func (s *Store) terms() []string {
	out := make([]string, 0, len(s.cfg.DefaultTerms)+len(s.customTerms))
	out = append(out, s.cfg.DefaultTerms...)
	return append(out, s.customTerms...)
}

// Terms returns the terms the next run will search.
func (s *Store) Terms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terms()
}

// CustomTerms returns only the analyst-added terms.
func (s *Store) CustomTerms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.customTerms...)
}

// LastRunTerms returns the terms of the most recent run start.
func (s *Store) LastRunTerms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.lastRunTerms...)
}

// AddTerm adds a custom search term. Duplicates of an existing default or
// custom term, ignoring case, are a no-op.
func (s *Store) AddTerm(term string) ([]string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, eris.Wrap(ErrValidation, "empty search term")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	for _, t := range s.terms() {
		if strings.EqualFold(t, term) {
			return s.terms(), nil
		}
	}
	s.customTerms = append(s.customTerms, term)
	return s.terms(), nil
}

// RemoveTerm removes a custom term. Default terms cannot be removed.
func (s *Store) RemoveTerm(term string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	for i, t := range s.customTerms {
		if t == term {
			s.customTerms = append(s.customTerms[:i:i], s.customTerms[i+1:]...)
			return s.terms(), nil
		}
	}
	return nil, eris.Wrapf(ErrNotFound, "custom term %q", term)
}
