// Package persona holds the configured persona profiles used for
// interest-based scoring boosts and mode gating.
package persona

import (
	"github.com/fathom-search/fathom/internal/config"
	"github.com/fathom-search/fathom/internal/text"
)

// DefaultID is the persona assumed when a request does not name one.
const DefaultID = "default"

// Profile is one persona with its interest token set.
type Profile struct {
	ID        string
	Interests []string

	tokens map[string]struct{}
}

// Matches reports whether any interest token appears in the given token set.
func (p *Profile) Matches(tokens map[string]struct{}) bool {
	for tok := range p.tokens {
		if _, ok := tokens[tok]; ok {
			return true
		}
	}
	return false
}

// Store looks up persona profiles by ID.
type Store struct {
	profiles map[string]*Profile
}

// NewStore builds a store from configuration. Interests are tokenized
// once so per-result matching is a map lookup.
func NewStore(cfg *config.Config) *Store {
	profiles := make(map[string]*Profile, len(cfg.Personas))
	for _, p := range cfg.Personas {
		tokens := make(map[string]struct{})
		for _, interest := range p.Interests {
			for _, tok := range text.Tokenize(interest) {
				tokens[tok] = struct{}{}
			}
		}
		profiles[p.ID] = &Profile{ID: p.ID, Interests: p.Interests, tokens: tokens}
	}
	return &Store{profiles: profiles}
}

// Get returns the profile for id, falling back to the default profile
// for unknown IDs. Unknown personas still search; they just get no
// interest boost.
func (s *Store) Get(id string) *Profile {
	if id == "" {
		id = DefaultID
	}
	if p, ok := s.profiles[id]; ok {
		return p
	}
	if p, ok := s.profiles[DefaultID]; ok {
		return p
	}
	return &Profile{ID: id}
}
