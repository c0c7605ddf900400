package definitions

// Member is a named reference to a type within a Structure or Union,
// with an optional condition expression and an optional allow-list of
// values. It mirrors MemberDataTypeDefinition in the Python runtime.
type Member struct {
	MemberName string
	DataType   Definition
	Condition  string
	Values     []any
}

// Name satisfies the part of Definition used when a Member stands in
// for its referenced type in expression namespaces and error
// messages.
func (m *Member) Name() string { return m.MemberName }

// IsComposite is true if the member has a condition (since evaluating
// it requires the composite decode path) or if the referenced type
// itself is composite, mirroring MemberDataTypeDefinition.IsComposite.
func (m *Member) IsComposite() bool {
	if m.Condition != "" {
		return true
	}
	return m.DataType != nil && m.DataType.IsComposite()
}

// ByteSize is unknown whenever the member is conditional (its
// presence, and therefore its contribution to the running offset,
// depends on runtime state) -- otherwise it defers to the referenced
// type.
func (m *Member) ByteSize() (int, bool) {
	if m.Condition != "" || m.DataType == nil {
		return 0, false
	}
	return m.DataType.ByteSize()
}

// ByteOrder reports the member's effective byte order, which is the
// referenced type's byte order if it is a Storage type, or
// ByteOrderNative otherwise.
func (m *Member) ByteOrder() ByteOrder {
	if s, ok := m.DataType.(interface{ ByteOrder() ByteOrder }); ok {
		return s.ByteOrder()
	}
	return ByteOrderNative
}

// membersWithSize is embedded by Structure and Union: both own an
// ordered, name-keyed member list and cache their computed byte
// size, invalidated whenever a member is added.
type membersWithSize struct {
	Storage
	members   []*Member
	byName    map[string]*Member
	byteSize  int
	sizeKnown bool
	sizeCached bool
}

func newMembersWithSize(base Base) membersWithSize {
	return membersWithSize{Storage: NewStorage(base), byName: map[string]*Member{}}
}

func (m *membersWithSize) AddMember(member *Member) error {
	if _, exists := m.byName[member.MemberName]; exists {
		return errNameAlreadyExists(member.MemberName)
	}
	m.members = append(m.members, member)
	m.byName[member.MemberName] = member
	m.sizeCached = false
	return nil
}

func (m *membersWithSize) Members() []*Member { return m.members }

func (m *membersWithSize) MemberByName(name string) (*Member, bool) {
	member, ok := m.byName[name]
	return member, ok
}

// IsComposite is transitive: true iff any member is composite
// (invariant 4).
func (m *membersWithSize) IsComposite() bool {
	for _, member := range m.members {
		if member.IsComposite() {
			return true
		}
	}
	return false
}

// StructureDefinition owns an ordered set of members whose byte sizes
// sum to the structure's size, with padding members aligning the
// running offset to a declared alignment.
type StructureDefinition struct {
	membersWithSize
}

func NewStructure(base Base) *StructureDefinition {
	return &StructureDefinition{membersWithSize: newMembersWithSize(base)}
}

func (d *StructureDefinition) TypeIndicator() TypeIndicator { return TypeStructure }

// ByteSize sums member sizes, caching the result; adding a member
// invalidates the cache (mirrors StructureDefinition.GetByteSize).
func (d *StructureDefinition) ByteSize() (int, bool) {
	if d.sizeCached {
		return d.byteSize, d.sizeKnown
	}
	if len(d.members) == 0 {
		d.sizeCached, d.sizeKnown, d.byteSize = true, false, 0
		return 0, false
	}
	total := 0
	for _, member := range d.members {
		padding, isPadding := member.DataType.(*PaddingDefinition)
		if isPadding && padding.AlignmentSize > 0 {
			remainder := total % padding.AlignmentSize
			if remainder > 0 {
				total += padding.AlignmentSize - remainder
			}
			continue
		}
		size, ok := member.ByteSize()
		if !ok {
			d.sizeCached, d.sizeKnown = true, false
			return 0, false
		}
		total += size
	}
	d.sizeCached, d.sizeKnown, d.byteSize = true, true, total
	return total, true
}

// UnionDefinition's size is the maximum of its members' sizes.
type UnionDefinition struct {
	membersWithSize
}

func NewUnion(base Base) *UnionDefinition {
	return &UnionDefinition{membersWithSize: newMembersWithSize(base)}
}

func (d *UnionDefinition) TypeIndicator() TypeIndicator { return TypeUnion }

func (d *UnionDefinition) ByteSize() (int, bool) {
	if d.sizeCached {
		return d.byteSize, d.sizeKnown
	}
	if len(d.members) == 0 {
		d.sizeCached, d.sizeKnown, d.byteSize = true, false, 0
		return 0, false
	}
	max := 0
	for _, member := range d.members {
		size, ok := member.ByteSize()
		if !ok {
			d.sizeCached, d.sizeKnown = true, false
			return 0, false
		}
		if size > max {
			max = size
		}
	}
	d.sizeCached, d.sizeKnown, d.byteSize = true, true, max
	return max, true
}

func errNameAlreadyExists(name string) error {
	return &memberExistsError{name: name}
}

type memberExistsError struct{ name string }

func (e *memberExistsError) Error() string {
	return "member " + e.name + " already set"
}
