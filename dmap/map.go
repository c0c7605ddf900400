// Package dmap implements the compiled Map: a reusable transformer
// between a byte stream and a structured value for one definition
// node (§4.F–§4.I). Maps are produced by package compiler and are
// shared-immutable once built; only the runtime.Context passed to
// each call carries mutable state.
package dmap

import (
	"github.com/libyal/dtfabric-go/definitions"
	"github.com/libyal/dtfabric-go/runtime"
)

// Map is the public operation set every compiled node exposes (§6.1).
type Map interface {
	// MapByteStream decodes a value starting at byteOffset within
	// buffer. ctx may be nil, in which case a fresh one-shot Context
	// is used internally and discarded.
	MapByteStream(buffer []byte, byteOffset int64, ctx *runtime.Context) (any, error)

	// FoldByteStream encodes value to bytes.
	FoldByteStream(value any, ctx *runtime.Context) ([]byte, error)

	// ByteSize returns the definition's fixed byte size, if knowable
	// independent of any runtime value or context.
	ByteSize() (int, bool)

	// GetSizeHint estimates the number of bytes the next
	// MapByteStream call against ctx needs from the caller.
	GetSizeHint(ctx *runtime.Context) int64

	// Definition returns the definition node this Map was compiled
	// from.
	Definition() definitions.Definition
}

// StructureValue is the generic structured-value representation
// (SPEC_FULL.md §3 representation decision): an ordered name→value
// record rather than a generated Go type, so that a structure's shape
// can be entirely determined by its compiled Map.
type StructureValue struct {
	TypeName string
	names    []string
	values   map[string]any
}

// NewStructureValue constructs an empty StructureValue for typeName.
func NewStructureValue(typeName string) *StructureValue {
	return &StructureValue{TypeName: typeName, values: map[string]any{}}
}

// Set assigns value to name, appending name to the iteration order the
// first time it is set.
func (v *StructureValue) Set(name string, value any) {
	if _, exists := v.values[name]; !exists {
		v.names = append(v.names, name)
	}
	v.values[name] = value
}

// Get returns the value assigned to name.
func (v *StructureValue) Get(name string) (any, bool) {
	value, ok := v.values[name]
	return value, ok
}

// Attribute implements expr.AttributeGetter, so a condition or size
// expression can refer to `this_struct.earlier_member`.
func (v *StructureValue) Attribute(name string) (any, bool) {
	return v.Get(name)
}

// Names returns the member names that have been set, in the order
// they were first assigned.
func (v *StructureValue) Names() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

// Flatten copies every member so far decoded directly into dst, so a
// sibling member's size/count/condition expression can refer to an
// earlier member by its bare name (e.g. "size - 4") and not only
// through the qualified "typename.member" attribute-access form.
func (v *StructureValue) Flatten(dst map[string]any) {
	for name, value := range v.values {
		dst[name] = value
	}
}

// UnionValue is the result of decoding a union (§9 Open Question
// resolution): every member that decoded successfully from the
// union's shared starting offset, plus the errors from members that
// did not.
type UnionValue struct {
	TypeName string
	Variants map[string]any
	Errors   map[string]error
}
