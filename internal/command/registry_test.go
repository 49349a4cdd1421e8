package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryResolvesFreshInstances(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("noop", "does nothing", func() Command { return NewInstant("noop", nil) }))

	first, err := reg.Resolve("noop")
	require.NoError(t, err)
	second, err := reg.Resolve("noop")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestRegistryRejectsDuplicatesAndUnknown(t *testing.T) {
	reg := NewRegistry()
	factory := func() Command { return NewInstant("x", nil) }
	require.NoError(t, reg.Register("x", "", factory))
	assert.Error(t, reg.Register("x", "", factory))
	assert.Error(t, reg.Register("", "", factory))
	assert.Error(t, reg.Register("y", "", nil))

	_, err := reg.Resolve("missing")
	assert.True(t, errors.Is(err, ErrUnknownCommand))
}

func TestRegistryEntriesSorted(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"rezero", "climb", "setup"} {
		reg.MustRegister(name, "", func() Command { return NewInstant("x", nil) })
	}
	var names []string
	for _, e := range reg.Entries() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"climb", "rezero", "setup"}, names)
}

func TestBaseDeduplicatesRequirements(t *testing.T) {
	r := NewResource("elevator")
	b := NewBase("x", r, nil, r)
	assert.Len(t, b.Requirements(), 1)
	assert.NotEmpty(t, b.ID())
}
