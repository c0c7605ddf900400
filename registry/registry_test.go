package registry_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libyal/dtfabric-go/definitions"
	"github.com/libyal/dtfabric-go/registry"
)

func intDef(name string) *definitions.IntegerDefinition {
	return definitions.NewInteger(definitions.NewBase(name, nil, "", nil), 4, definitions.IntegerFormatUnsigned)
}

func TestRegisterRejectsCaseInsensitiveCollision(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Register(intDef("Header")))

	err := r.Register(intDef("header"))
	require.Error(t, err)
}

func TestGetByNameIsCaseInsensitive(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Register(intDef("Header")))

	def, ok := r.GetByName("HEADER")
	require.True(t, ok)
	require.Equal(t, "Header", def.Name())
}

func TestDeregisterRemovesDefinition(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Register(intDef("header")))
	r.Deregister("HEADER")

	_, ok := r.GetByName("header")
	require.False(t, ok)
}

func TestRegisterAllStopsAtFirstCollision(t *testing.T) {
	tree := definitions.NewTree()
	require.NoError(t, tree.Add(intDef("a")))
	require.NoError(t, tree.Add(intDef("b")))

	r := registry.New()
	require.NoError(t, r.Register(intDef("a")))

	err := r.RegisterAll(tree)
	require.Error(t, err)

	_, ok := r.GetByName("b")
	require.False(t, ok)
}

func TestAllDefinitionsIsASnapshot(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Register(intDef("a")))

	snapshot := r.AllDefinitions()
	require.Len(t, snapshot, 1)

	require.NoError(t, r.Register(intDef("b")))
	require.Len(t, snapshot, 1)
	require.Len(t, r.AllDefinitions(), 2)
}
