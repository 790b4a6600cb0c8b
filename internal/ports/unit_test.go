package ports

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personakit/go-persona/internal/domain"
)

// mockUnit is a test implementation of the Unit interface.
type mockUnit struct {
	name        string
	executeFunc func(context.Context, domain.State) (domain.State, error)
	validateErr error
}

func (m *mockUnit) Name() string { return m.name }

func (m *mockUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	if m.executeFunc != nil {
		return m.executeFunc(ctx, state)
	}
	return state, nil
}

func (m *mockUnit) Validate() error { return m.validateErr }

func TestUnit_Interface(t *testing.T) {
	var _ Unit = (*mockUnit)(nil)

	unit := &mockUnit{
		name: "test-unit",
		executeFunc: func(ctx context.Context, state domain.State) (domain.State, error) {
			return domain.With(state, domain.KeyPrimaryPersona, domain.PersonaID("idealist")), nil
		},
	}

	assert.Equal(t, "test-unit", unit.Name())
	assert.NoError(t, unit.Validate())

	newState, err := unit.Execute(context.Background(), domain.NewState())
	require.NoError(t, err)

	primary, ok := domain.Get(newState, domain.KeyPrimaryPersona)
	require.True(t, ok)
	assert.Equal(t, domain.PersonaID("idealist"), primary)
}

func TestUnit_ValidateError(t *testing.T) {
	unit := &mockUnit{
		name:        "broken-unit",
		validateErr: errors.New("missing configuration"),
	}

	err := unit.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing configuration")
}

func TestUnitFactory(t *testing.T) {
	factory := UnitFactory(func(id string, config map[string]any) (Unit, error) {
		if id == "" {
			return nil, errors.New("empty id")
		}
		return &mockUnit{name: id}, nil
	})

	unit, err := factory("normalizer", nil)
	require.NoError(t, err)
	assert.Equal(t, "normalizer", unit.Name())

	_, err = factory("", nil)
	assert.Error(t, err)
}
