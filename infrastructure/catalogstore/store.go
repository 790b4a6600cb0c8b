// Package catalogstore provides hot-swappable catalog storage so long
// running services can pick up revised catalogs without restarting.
package catalogstore

import (
	"fmt"
	"sync/atomic"

	"github.com/personakit/go-persona/internal/domain"
)

// Store holds the currently active catalog behind an atomic pointer.
// Readers always see a complete catalog; Replace swaps the whole
// catalog at once so no reader observes a partial update.
// The zero value is not usable; construct with NewStore.
type Store struct {
	current atomic.Pointer[domain.Catalog]
}

// NewStore creates a store seeded with the given catalog.
func NewStore(catalog *domain.Catalog) (*Store, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog must not be nil")
	}

	s := &Store{}
	s.current.Store(catalog)
	return s, nil
}

// Current returns the active catalog. The returned catalog is
// immutable and safe to use for any number of classification runs,
// even after a concurrent Replace.
func (s *Store) Current() *domain.Catalog {
	return s.current.Load()
}

// Replace atomically swaps in a new catalog. In-flight runs keep the
// catalog they started with; only new runs see the replacement.
func (s *Store) Replace(catalog *domain.Catalog) error {
	if catalog == nil {
		return fmt.Errorf("catalog must not be nil")
	}

	s.current.Store(catalog)
	return nil
}
