// Package fabric is the top-level facade tying the definition reader,
// registry, and map compiler together into a single entry point,
// mirroring dtfabric.runtime.fabric.DataTypeFabric in the original
// implementation.
package fabric

import (
	"io"

	"github.com/libyal/dtfabric-go/compiler"
	"github.com/libyal/dtfabric-go/definitions"
	"github.com/libyal/dtfabric-go/dmap"
	"github.com/libyal/dtfabric-go/reader"
	"github.com/libyal/dtfabric-go/registry"
)

// Fabric loads one definitions document and compiles named data type
// Maps from it on demand, caching the result.
type Fabric struct {
	tree     *definitions.Tree
	registry *registry.Registry
	compiler *compiler.Compiler
}

// New constructs an empty Fabric with no definitions loaded yet.
func New() *Fabric {
	tree := definitions.NewTree()
	return &Fabric{tree: tree, registry: registry.New(), compiler: compiler.New(tree)}
}

// NewFromFile loads and compiles the definitions document at path.
func NewFromFile(path string) (*Fabric, error) {
	tree, err := reader.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return newFromTree(tree)
}

// NewFromReader loads a definitions document from r.
func NewFromReader(r io.Reader) (*Fabric, error) {
	tree, err := reader.Read(r)
	if err != nil {
		return nil, err
	}
	return newFromTree(tree)
}

func newFromTree(tree *definitions.Tree) (*Fabric, error) {
	reg := registry.New()
	if err := reg.RegisterAll(tree); err != nil {
		return nil, err
	}
	return &Fabric{tree: tree, registry: reg, compiler: compiler.New(tree)}, nil
}

// CreateDataTypeMap compiles (or returns the cached compile of) the
// named top-level definition's Map, mirroring
// DataTypeMapFactory.CreateDataTypeMap.
func (f *Fabric) CreateDataTypeMap(name string) (dmap.Map, error) {
	return f.compiler.Compile(name)
}

// DefinitionsRegistry exposes the fabric's backing registry.
func (f *Fabric) DefinitionsRegistry() *registry.Registry {
	return f.registry
}

// Tree exposes the fabric's backing definition tree.
func (f *Fabric) Tree() *definitions.Tree {
	return f.tree
}
