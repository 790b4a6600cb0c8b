package domain

import (
	"fmt"
	"maps"
	"reflect"
	"time"
)

// Key represents a type-safe generic key for accessing values in State.
// The type parameter T ensures compile-time type safety when getting and
// setting values, eliminating runtime type assertions in pipeline code.
type Key[T any] struct{ name string }

// NewKey creates a new Key with the specified name and type.
// This function is provided for creating keys outside of the domain package.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Predefined state keys used throughout the classification pipeline.
// Each key is strongly typed to ensure type safety at compile time.
var (
	// KeyResponses stores the respondent's answer set keyed by question.
	KeyResponses = Key[ResponseSet]{"responses"}

	// KeyNormalizedScores stores direction-corrected per-question scores
	// produced by the normalizer stage.
	KeyNormalizedScores = Key[map[QuestionID]int]{"normalized_scores"}

	// KeyPersonaScores stores the per-persona totals produced by the
	// aggregator stage.
	KeyPersonaScores = Key[PersonaScores]{"persona_scores"}

	// KeyAxisScores stores the per-axis totals produced by the
	// aggregator stage.
	KeyAxisScores = Key[ValueAxisScores]{"axis_scores"}

	// KeyPrimaryPersona stores the classifier's top-ranked persona.
	KeyPrimaryPersona = Key[PersonaID]{"primary_persona"}

	// KeySecondaryPersona stores the classifier's second-ranked persona.
	KeySecondaryPersona = Key[PersonaID]{"secondary_persona"}

	// KeyResult stores the assembled final result.
	KeyResult = Key[*TestResult]{"result"}

	// Execution context keys for tracking metadata across pipeline runs.

	// KeyCatalogName stores the name of the catalog being classified
	// against, used for observability labels.
	KeyCatalogName = Key[string]{"execution.catalog_name"}

	// KeySessionID stores the identifier of the respondent session that
	// produced the answers, useful for tracing and correlation.
	KeySessionID = Key[string]{"execution.session_id"}

	// KeyRunID stores a unique identifier for this specific pipeline
	// run instance.
	KeyRunID = Key[string]{"execution.run_id"}
)

// deepCopyValue creates a deep copy of a value so State stays truly
// immutable. Slices, maps, and pointers are the reference types that
// would otherwise leak mutable views of stored data.
func deepCopyValue(value any) any {
	if value == nil {
		return nil
	}

	// time.Time is immutable and can be returned directly.
	if val, ok := value.(time.Time); ok {
		return val
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Slice:
		newSlice := reflect.MakeSlice(v.Type(), v.Len(), v.Cap())
		for i := 0; i < v.Len(); i++ {
			newSlice.Index(i).Set(reflect.ValueOf(deepCopyValue(v.Index(i).Interface())))
		}
		return newSlice.Interface()

	case reflect.Map:
		newMap := reflect.MakeMap(v.Type())
		for _, key := range v.MapKeys() {
			copiedKey := deepCopyValue(key.Interface())
			copiedValue := deepCopyValue(v.MapIndex(key).Interface())
			newMap.SetMapIndex(reflect.ValueOf(copiedKey), reflect.ValueOf(copiedValue))
		}
		return newMap.Interface()

	case reflect.Ptr:
		if v.IsNil() {
			return v.Interface()
		}
		newPtr := reflect.New(v.Elem().Type())
		newPtr.Elem().Set(reflect.ValueOf(deepCopyValue(v.Elem().Interface())))
		return newPtr.Interface()

	case reflect.Struct:
		// Shallow copy for unexported fields, deep copy for exported ones.
		newStruct := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			if newStruct.Field(i).CanSet() {
				newStruct.Field(i).Set(reflect.ValueOf(deepCopyValue(v.Field(i).Interface())))
			}
		}
		return newStruct.Interface()

	default:
		// Primitive types are returned as-is since they are copied by value.
		return value
	}
}

// State represents an immutable collection of classification data that
// flows through the pipeline. It uses copy-on-write semantics to ensure
// thread-safety and prevent unintended mutations. State is the primary
// data structure for passing information between Units.
type State struct {
	// data holds the key-value pairs that make up the state.
	// It is unexported to maintain immutability guarantees.
	data map[string]any
}

// NewState creates a new empty State.
// The returned State is ready to use and can be safely shared across
// goroutines.
func NewState() State {
	return State{
		data: make(map[string]any),
	}
}

// Get retrieves a value from the State with compile-time type safety.
// It returns the value and a boolean indicating whether the key exists
// and contains a value of the correct type. The returned value is a
// deep copy to maintain immutability.
//
// Example:
//
//	responses, ok := Get(state, KeyResponses)
//	if !ok {
//	    // handle missing value
//	}
//	// responses is typed as ResponseSet, no type assertion needed
func Get[T any](s State, key Key[T]) (T, bool) {
	var zero T
	value, exists := s.data[key.name]
	if !exists {
		return zero, false
	}

	copied := deepCopyValue(value)
	val, ok := copied.(T)
	return val, ok
}

// With creates a new State with the specified key-value pair added or
// updated. It implements copy-on-write semantics, returning a new State
// instance while leaving the original unchanged.
//
// Example:
//
//	newState := With(state, KeyResponses, set)
func With[T any](s State, key Key[T], value T) State {
	newData := maps.Clone(s.data)
	newData[key.name] = deepCopyValue(value)
	return State{data: newData}
}

// WithMultiple creates a new State with multiple key-value pairs added
// or updated. It is more efficient than chaining multiple With calls as
// it performs a single clone operation.
func (s State) WithMultiple(updates map[string]any) State {
	newData := maps.Clone(s.data)
	for k, v := range updates {
		newData[k] = deepCopyValue(v)
	}
	return State{data: newData}
}

// Keys returns all keys present in the State.
// The returned slice is safe to modify without affecting the State.
func (s State) Keys() []string {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// String returns a string representation of the State for debugging purposes.
func (s State) String() string {
	return fmt.Sprintf("State%v", s.data)
}

// ExecutionContext contains metadata about the current classification
// run that flows through the State during pipeline traversal. It gives
// middleware and observability consistent access to run metadata.
type ExecutionContext struct {
	// CatalogName names the catalog being classified against.
	CatalogName string

	// SessionID identifies the respondent session, when known.
	SessionID string

	// RunID uniquely identifies this pipeline run instance.
	RunID string
}

// WithExecutionContext creates a new State with execution context
// metadata included. It should be called at the beginning of a run.
func (s State) WithExecutionContext(ctx ExecutionContext) State {
	updates := map[string]any{
		KeyCatalogName.name: ctx.CatalogName,
		KeySessionID.name:   ctx.SessionID,
		KeyRunID.name:       ctx.RunID,
	}
	return s.WithMultiple(updates)
}

// GetExecutionContext extracts execution context metadata from the
// State. It returns the context and a boolean indicating whether all
// required fields are present.
func (s State) GetExecutionContext() (ExecutionContext, bool) {
	catalogName, ok1 := Get(s, KeyCatalogName)
	sessionID, ok2 := Get(s, KeySessionID)
	runID, ok3 := Get(s, KeyRunID)

	if !ok1 || !ok2 || !ok3 {
		return ExecutionContext{}, false
	}

	return ExecutionContext{
		CatalogName: catalogName,
		SessionID:   sessionID,
		RunID:       runID,
	}, true
}
