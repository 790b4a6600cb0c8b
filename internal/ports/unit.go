// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"

	"github.com/personakit/go-persona/internal/domain"
)

// Unit represents one stage of the classification pipeline.
// Each Unit performs a specific transformation on the pipeline State,
// enabling composable and reusable scoring logic.
// Units must be stateless and thread-safe for concurrent execution.
type Unit interface {
	// Name returns a unique identifier for this unit.
	// The name is used for logging, debugging, and observability labels.
	Name() string

	// Execute performs the unit's transformation on the provided State.
	// It returns a new State containing the results of the transformation.
	// The original State must not be modified (immutability principle).
	// Any errors during execution should be returned rather than panicking.
	//
	// The context parameter carries cancellation and tracing metadata.
	// Classification stages have no suspension points, so they complete
	// promptly regardless; the context exists for span propagation and
	// interface symmetry with heavier units.
	Execute(ctx context.Context, state domain.State) (domain.State, error)

	// Validate checks if the unit is properly configured and ready for
	// execution. It is typically called during pipeline construction.
	// Return nil if validation passes, or an error describing what is
	// invalid.
	Validate() error
}

// UnitFactory creates a Unit from an identifier and a flat configuration
// map, typically decoded from YAML. Factories let callers extend the
// engine with custom pipeline stages.
type UnitFactory func(id string, config map[string]any) (Unit, error)
