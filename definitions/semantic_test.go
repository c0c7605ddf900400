package definitions_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libyal/dtfabric-go/definitions"
)

func TestEnumerationNameFor(t *testing.T) {
	e := definitions.NewEnumeration(definitions.NewBase("color", nil, "", nil))
	e.AddValue(definitions.EnumerationValue{Name: "RED", Number: 0})
	e.AddValue(definitions.EnumerationValue{Name: "GREEN", Number: 1})

	name, ok := e.NameFor(1)
	require.True(t, ok)
	require.Equal(t, "GREEN", name)

	_, ok = e.NameFor(99)
	require.False(t, ok)
}

func TestConstantIsInert(t *testing.T) {
	c := definitions.NewConstant(definitions.NewBase("max_value", nil, "", nil), 255)
	require.False(t, c.IsComposite())
	_, ok := c.ByteSize()
	require.False(t, ok)
	require.Equal(t, int64(255), c.Value)
}
