// Package definitions holds the definition tree: the passive,
// validated in-memory description of binary record layouts that the
// map compiler (package compiler) consumes to build Maps (package
// dmap).
//
// Definitions are built once, by a reader (package reader) or by hand
// via the constructors in this package, and are immutable afterwards.
package definitions

import "github.com/libyal/dtfabric-go/errors"

// TypeIndicator names one of the closed set of data type kinds a
// Definition can be.
type TypeIndicator string

const (
	TypeBoolean         TypeIndicator = "boolean"
	TypeCharacter       TypeIndicator = "character"
	TypeInteger         TypeIndicator = "integer"
	TypeFloatingPoint   TypeIndicator = "floating-point"
	TypeUUID            TypeIndicator = "uuid"
	TypePadding         TypeIndicator = "padding"
	TypeSequence        TypeIndicator = "sequence"
	TypeStream          TypeIndicator = "stream"
	TypeString          TypeIndicator = "string"
	TypeStructure       TypeIndicator = "structure"
	TypeUnion           TypeIndicator = "union"
	TypeConstant        TypeIndicator = "constant"
	TypeEnumeration     TypeIndicator = "enumeration"
	TypeFormat          TypeIndicator = "format"
	TypeStructureFamily TypeIndicator = "structure-family"
	TypeStructureGroup  TypeIndicator = "structure-group"
)

// ByteOrder is the byte order of a storage data type.
type ByteOrder string

const (
	ByteOrderNative       ByteOrder = "native"
	ByteOrderLittleEndian ByteOrder = "little-endian"
	ByteOrderBigEndian    ByteOrder = "big-endian"
)

// SizeNative marks a FixedSize definition whose size is determined by
// the platform rather than declared explicitly.
const SizeNative = -1

// Definition is the interface implemented by every node in the tree.
type Definition interface {
	// Name returns the definition's unique (within its registry) name.
	Name() string
	Aliases() []string
	Description() string
	URLs() []string

	// TypeIndicator returns the node's closed-set type kind.
	TypeIndicator() TypeIndicator

	// IsComposite reports whether decoding this definition requires
	// iterating sub-decodes rather than a single packed read.
	IsComposite() bool

	// ByteSize returns the definition's byte size and true, or
	// (0, false) when the size depends on runtime-evaluated
	// quantities or on context.
	ByteSize() (int, bool)
}

// Base provides the common bookkeeping fields shared by every
// definition: name, aliases, description, and reference URLs.
type Base struct {
	name        string
	aliases     []string
	description string
	urls        []string
}

// NewBase constructs a Base. name must be a non-empty valid
// identifier; callers (constructors in this package) are expected to
// validate it via ValidateIdentifier before calling this.
func NewBase(name string, aliases []string, description string, urls []string) Base {
	return Base{name: name, aliases: aliases, description: description, urls: urls}
}

func (b Base) Name() string        { return b.name }
func (b Base) Aliases() []string   { return b.aliases }
func (b Base) Description() string { return b.description }
func (b Base) URLs() []string      { return b.urls }

// Storage is embedded by definitions that occupy bytes directly and
// therefore carry a byte order. Semantic and layout definitions do
// not embed this type.
type Storage struct {
	Base
	byteOrder ByteOrder
}

// NewStorage constructs a Storage base with ByteOrderNative as the
// default, matching the Python runtime's StorageDataTypeDefinition.
func NewStorage(base Base) Storage {
	return Storage{Base: base, byteOrder: ByteOrderNative}
}

func (s Storage) ByteOrder() ByteOrder { return s.byteOrder }

// SetByteOrder is used by the map compiler when propagating a
// structure's declared byte order down onto a "native"-ordered
// member (invariant 3); it never mutates a shared definition in
// place -- callers must make a shallow copy first (see
// compiler.cloneWithByteOrder).
func (s *Storage) SetByteOrder(order ByteOrder) { s.byteOrder = order }

// SizeUnits is the unit a FixedSize definition's Size is expressed
// in. Only SizeUnitsBytes produces a usable byte size; any other
// value (e.g. "bits") makes ByteSize report unknown, mirroring
// FixedSizeDataTypeDefinition.GetByteSize in the Python runtime.
type SizeUnits string

const SizeUnitsBytes SizeUnits = "bytes"

// FixedSize is embedded by storage definitions with a declared size:
// Boolean, Character, Integer, FloatingPoint, UUID.
type FixedSize struct {
	Storage
	size  int
	units SizeUnits
}

// NewFixedSize constructs a FixedSize storage base. size is
// SizeNative when the node relies on platform-native sizing.
func NewFixedSize(storage Storage, size int, units SizeUnits) FixedSize {
	if units == "" {
		units = SizeUnitsBytes
	}
	return FixedSize{Storage: storage, size: size, units: units}
}

func (f FixedSize) Size() int        { return f.size }
func (f FixedSize) Units() SizeUnits { return f.units }

func (f FixedSize) ByteSize() (int, bool) {
	if f.size == SizeNative || f.units != SizeUnitsBytes {
		return 0, false
	}
	return f.size, true
}

func (f FixedSize) IsComposite() bool { return false }

// ValidateIdentifier enforces invariant 1: member/definition names are
// valid identifiers (alphanumerics plus underscore, not leading with
// a digit), do not start with an underscore, and are not a reserved
// word.
func ValidateIdentifier(name string) error {
	if name == "" {
		return errors.NewFormatError(name, "name must not be empty")
	}
	if name[0] == '_' {
		return errors.NewFormatError(name, "name must not start with an underscore")
	}
	c := name[0]
	if c >= '0' && c <= '9' {
		return errors.NewFormatError(name, "name must not start with a digit")
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		ok := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
		if !ok {
			return errors.NewFormatError(name, "name must contain only alphanumerics and underscores")
		}
	}
	if reservedWords[name] {
		return errors.NewFormatError(name, "name is a reserved word")
	}
	return nil
}

// reservedWords are the expression-language keywords (§4.C) that
// cannot be used as member or definition names, since a bare name in
// a condition or size expression would otherwise be ambiguous with
// them.
var reservedWords = map[string]bool{
	"not": true, "and": true, "or": true, "true": true, "false": true,
}
