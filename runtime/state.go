package runtime

// SizeHint records a previous size estimate for a definition, keyed
// by the definition's name in State.SizeHints. Terminator-driven
// sequences that need another round-trip use IsComplete=false to
// signal that the recorded ByteSize should grow by one more element
// on the next get_size_hint call (§4.G).
type SizeHint struct {
	ByteSize   int64
	IsComplete bool
}

// State is the resumable-decode state machine a composite Map
// snapshots into and restores from when a child decode raises
// ByteStreamTooSmall (§5, §9). Every field is optional: a Map only
// reads the fields relevant to its own kind.
type State struct {
	// AttributeIndex is the structure resume point: the index of the
	// member a resumed structure decode should continue from.
	AttributeIndex int

	// MemberNames and MemberValues hold the partially-built structure
	// value (in member order) when a resumed structure decode needs to
	// pick back up at AttributeIndex without losing what was already
	// mapped.
	MemberNames  []string
	MemberValues map[string]any

	// ElementIndex, ElementsDataOffset, MappedValues, and Context are
	// the sequence-decode resume point (§4.G).
	ElementIndex       int
	ElementsDataOffset int64
	MappedValues       []any
	Context            *Context

	// SizeHints is keyed by definition name.
	SizeHints map[string]SizeHint

	// MemberIdentifier is the structure-group discriminator cache
	// (§4.I): once the base structure has been decoded to read the
	// discriminator, this holds its value so a resumed group decode
	// does not re-run the base decode.
	MemberIdentifier any
}

// Clear resets every field to its zero value, called after a
// successful decode so a Context can be reused for a subsequent
// independent call without carrying stale resume state.
func (s *State) Clear() {
	*s = State{}
}

// RecordSizeHint stores or updates the size-hint entry for name.
func (s *State) RecordSizeHint(name string, byteSize int64, complete bool) {
	if s.SizeHints == nil {
		s.SizeHints = map[string]SizeHint{}
	}
	s.SizeHints[name] = SizeHint{ByteSize: byteSize, IsComplete: complete}
}
