// Package units provides the stateless pipeline stages of the persona
// classification engine, each implementing the ports.Unit interface.
package units

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// UnknownQuestionPolicy controls how the normalizer treats responses
// that reference questions absent from the catalog.
type UnknownQuestionPolicy string

// Supported policies for responses to unknown questions.
const (
	// UnknownIgnore silently drops such responses. This is the default:
	// a stale client may still hold questions removed from the catalog,
	// and dropping them keeps partial previews working.
	UnknownIgnore UnknownQuestionPolicy = "ignore"

	// UnknownError fails the computation when such a response appears.
	// Useful in pipelines where the response set is produced from the
	// same catalog and a mismatch indicates a bug.
	UnknownError UnknownQuestionPolicy = "error"
)

// Common errors returned by pipeline units.
var (
	// ErrEmptyUnitName is returned when attempting to create a unit with
	// an empty name.
	ErrEmptyUnitName = errors.New("unit name cannot be empty")

	// ErrNilCatalog is returned when a unit is created without a catalog.
	ErrNilCatalog = errors.New("catalog cannot be nil")
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()
