package definitions

import (
	"sort"
	"strings"

	"github.com/libyal/dtfabric-go/errors"
)

// Tree is an ordered collection of top-level definitions, as produced
// by a reader (package reader) from one definitions document. It is
// the in-memory handoff point between the reader and the compiler
// (or a registry).
type Tree struct {
	definitions []Definition
	byName      map[string]Definition
}

// NewTree constructs an empty Tree.
func NewTree() *Tree {
	return &Tree{byName: map[string]Definition{}}
}

// Add appends a definition to the tree. Name collisions are rejected
// with a FormatError, case-sensitively -- the case-insensitive rule
// belongs to the registry (§6.3), not the tree itself.
func (t *Tree) Add(d Definition) error {
	if _, exists := t.byName[d.Name()]; exists {
		return errors.NewFormatError(d.Name(), "duplicate definition name")
	}
	t.definitions = append(t.definitions, d)
	t.byName[d.Name()] = d
	return nil
}

// All returns every top-level definition, in insertion order.
func (t *Tree) All() []Definition {
	out := make([]Definition, len(t.definitions))
	copy(out, t.definitions)
	return out
}

// ByName looks up a definition by its exact name.
func (t *Tree) ByName(name string) (Definition, bool) {
	d, ok := t.byName[name]
	return d, ok
}

// Names returns every definition name, sorted, for stable iteration
// in tests and CLI output.
func (t *Tree) Names() []string {
	names := make([]string, 0, len(t.definitions))
	for name := range t.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortedByDependency is unused by the core compiler (which resolves
// references as it walks a single definition's own member tree, not
// across the whole Tree) but is offered for callers such as the CLI
// that want to compile every top-level definition in a file and
// report errors in a deterministic order. It returns the definitions
// in name order; dependencies between definitions do not affect the
// order.
func (t *Tree) SortedByDependency() []Definition {
	names := t.Names()
	out := make([]Definition, 0, len(names))
	for _, name := range names {
		out = append(out, t.byName[name])
	}
	return out
}

// FormatName renders a qualified name for error messages, joining a
// parent format name and a member name the way the original runtime's
// CLI tools report validation failures.
func FormatName(formatName, memberName string) string {
	if formatName == "" {
		return memberName
	}
	var b strings.Builder
	b.WriteString(formatName)
	b.WriteByte('.')
	b.WriteString(memberName)
	return b.String()
}
