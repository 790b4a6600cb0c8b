package domain

import (
	"errors"
	"fmt"
)

// Common domain errors surfaced by the classification engine.
// All of them indicate programmer or content errors, not transient
// failures: none should be retried, and all should propagate to the
// caller unchanged so the orchestrating layer can show a specific
// message.
var (
	// ErrOutOfRangeScore indicates a raw score outside the declared
	// response scale. The normalizer never clamps or repairs such input.
	ErrOutOfRangeScore = errors.New("raw score outside response scale")

	// ErrInsufficientCatalog indicates a catalog with fewer than two
	// personas, which makes "secondary persona" undefined. This is a
	// caller configuration error, not a recoverable runtime state.
	ErrInsufficientCatalog = errors.New("catalog must declare at least two personas")

	// ErrInvalidCatalog indicates structurally corrupt catalog content
	// such as empty or duplicate identifiers.
	ErrInvalidCatalog = errors.New("invalid catalog")

	// ErrInvalidScale indicates response scale bounds that do not
	// describe a non-empty range.
	ErrInvalidScale = errors.New("invalid response scale")

	// ErrUnknownQuestion indicates a response referencing a question
	// absent from the catalog, in contexts configured to reject those.
	ErrUnknownQuestion = errors.New("response references unknown question")
)

// UnknownAssociationError reports a question whose associated key does
// not resolve against the persona catalog or the fixed axis set. It is
// a data-integrity error detected at catalog construction, not a
// per-response runtime error: it indicates corrupt authored content.
type UnknownAssociationError struct {
	// QuestionID is the question carrying the dangling reference.
	QuestionID QuestionID

	// Category tells which catalog the key failed to resolve against.
	Category QuestionCategory

	// Key is the unresolvable associated key.
	Key string

	// Suggestion optionally names the closest known identifier, filled
	// in by loaders that compute one.
	Suggestion string
}

// Error implements the error interface for UnknownAssociationError.
func (e *UnknownAssociationError) Error() string {
	msg := fmt.Sprintf("question %q references unknown %s key %q", e.QuestionID, e.Category, e.Key)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// IncompleteTestError reports a final classification requested before
// every catalog question received a response. It is raised only by the
// completeness guard, never by the aggregator, which stays lenient so
// partial previews keep working.
type IncompleteTestError struct {
	// Missing lists the unanswered question IDs in catalog order.
	Missing []QuestionID
}

// Error implements the error interface for IncompleteTestError.
func (e *IncompleteTestError) Error() string {
	return fmt.Sprintf("test incomplete: %d unanswered question(s): %v", len(e.Missing), e.Missing)
}

// IsIncomplete reports whether err is (or wraps) an IncompleteTestError,
// returning it when so.
func IsIncomplete(err error) (*IncompleteTestError, bool) {
	var ite *IncompleteTestError
	if errors.As(err, &ite) {
		return ite, true
	}
	return nil, false
}
