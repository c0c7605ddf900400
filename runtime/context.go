// Package runtime implements the Context (§4.D): per-decode state
// carrying the externally visible values namespace, byte accounting,
// and the resumable-decode state machine (§5, §9 "coroutine-style
// resumption").
package runtime

// MaxRecursionDepth bounds how many nested composite decodes (a
// sequence of sequences of ..., or a structure containing itself
// indirectly through a long member chain) a single top-level
// MapByteStream call may descend through before it is treated as
// a MappingError, resolving the Open Question in spec.md §9.
const MaxRecursionDepth = 32

// Context is per-call (or per streaming-session) state. It is owned
// by exactly one decode or encode at a time; concurrent decodes use
// independent Contexts.
type Context struct {
	// Values is the externally visible namespace used by size/count/
	// condition expressions.
	Values map[string]any

	// ByteSize is the number of bytes consumed by the most recent
	// successful decode.
	ByteSize int64

	// RequestedSize is the number of bytes the most recent attempt
	// needed, set even when that attempt failed with
	// ByteStreamTooSmall.
	RequestedSize int64

	// MembersDataSize is the running offset within an in-progress
	// structure.
	MembersDataSize int64

	// PaddingSize is the number of bytes a PaddingMap should consume on
	// this call, computed by the enclosing StructureMap from its
	// running offset immediately before the call (§4.H step 2). It is
	// per-call state on the subordinate Context, not on the shared,
	// cached PaddingMap, since two concurrent decodes of the same
	// structure would otherwise race on a size stored on the Map.
	PaddingSize int64

	// State holds resumable-decode progress; see State.
	State *State

	depth int
}

// New constructs a root Context with an empty values namespace.
func New() *Context {
	return &Context{Values: map[string]any{}, State: &State{}}
}

// NewWithValues constructs a root Context seeded with the given
// namespace. The map is used directly, not copied; callers that need
// isolation should pass a copy.
func NewWithValues(values map[string]any) *Context {
	if values == nil {
		values = map[string]any{}
	}
	return &Context{Values: values, State: &State{}}
}

// Child constructs a subordinate Context for a composite Map's
// recursive call into a member or element Map, inheriting this
// Context's recursion depth plus one and its Values by reference (a
// child's expression evaluations can see everything the parent sees,
// per §4.C: "the caller's context values").
//
// It returns ok=false when MaxRecursionDepth would be exceeded; the
// caller is responsible for turning that into a MappingError.
func (c *Context) Child() (*Context, bool) {
	if c.depth+1 > MaxRecursionDepth {
		return nil, false
	}
	child := &Context{Values: c.Values, State: &State{}, depth: c.depth + 1}
	return child, true
}

// Reset replaces State with an empty one and zeroes RequestedSize, so
// a caller that re-invokes this same Context starts with no resume
// state. The Maps themselves clear State through State.Clear instead.
func (c *Context) Reset() {
	c.State = &State{}
	c.RequestedSize = 0
}

// Namespace builds an expr.Namespace-compatible view combining this
// Context's Values with one extra (name, value) binding, used when
// evaluating a member condition or size expression against the
// partially-built structure (§4.C: "a single entry under the
// partially-built structure's type name").
func (c *Context) Namespace(extraName string, extraValue any) map[string]any {
	ns := make(map[string]any, len(c.Values)+1)
	for k, v := range c.Values {
		ns[k] = v
	}
	if extraName != "" {
		ns[extraName] = extraValue
	}
	return ns
}
