package definitions

import "github.com/libyal/dtfabric-go/errors"

// IntegerFormat is the signedness of an Integer definition.
type IntegerFormat string

const (
	IntegerFormatSigned   IntegerFormat = "signed"
	IntegerFormatUnsigned IntegerFormat = "unsigned"
)

// BooleanDefinition maps a single byte-range storage slot to a Go
// bool via one or both of TrueValue/FalseValue.
type BooleanDefinition struct {
	FixedSize
	TrueValue  *int64
	FalseValue *int64
}

// NewBoolean constructs a BooleanDefinition. At least one of
// trueValue/falseValue must be non-nil, or construction fails with
// FormatError -- this is enforced by the compiler (§4.F), not here,
// since the reader may populate the other side in a later pass.
func NewBoolean(base Base, size int) *BooleanDefinition {
	storage := NewStorage(base)
	return &BooleanDefinition{FixedSize: NewFixedSize(storage, size, SizeUnitsBytes)}
}

func (d *BooleanDefinition) TypeIndicator() TypeIndicator { return TypeBoolean }

// CharacterDefinition decodes the integer at the current byte range
// into a Unicode scalar value (rune).
type CharacterDefinition struct {
	FixedSize
}

func NewCharacter(base Base, size int) *CharacterDefinition {
	return &CharacterDefinition{FixedSize: NewFixedSize(NewStorage(base), size, SizeUnitsBytes)}
}

func (d *CharacterDefinition) TypeIndicator() TypeIndicator { return TypeCharacter }

// IntegerDefinition is a signed or unsigned integer of 1, 2, 4, or 8
// bytes. Values, when non-empty, is the allow-list enforced at decode
// time.
type IntegerDefinition struct {
	FixedSize
	Format       IntegerFormat
	MinimumValue *int64
	MaximumValue *int64
	Values       []int64
}

func NewInteger(base Base, size int, format IntegerFormat) *IntegerDefinition {
	if format == "" {
		format = IntegerFormatSigned
	}
	return &IntegerDefinition{
		FixedSize: NewFixedSize(NewStorage(base), size, SizeUnitsBytes),
		Format:    format,
	}
}

func (d *IntegerDefinition) TypeIndicator() TypeIndicator { return TypeInteger }

// Validate enforces that Size is one of the widths the bytestream
// codec understands.
func (d *IntegerDefinition) Validate() error {
	switch d.Size() {
	case 1, 2, 4, 8:
		return nil
	default:
		return errors.NewFormatError(d.Name(), "integer size must be one of 1, 2, 4, 8 bytes")
	}
}

// FloatingPointDefinition is a 4- or 8-byte IEEE 754 value.
type FloatingPointDefinition struct {
	FixedSize
}

func NewFloatingPoint(base Base, size int) *FloatingPointDefinition {
	return &FloatingPointDefinition{FixedSize: NewFixedSize(NewStorage(base), size, SizeUnitsBytes)}
}

func (d *FloatingPointDefinition) TypeIndicator() TypeIndicator { return TypeFloatingPoint }

func (d *FloatingPointDefinition) Validate() error {
	switch d.Size() {
	case 4, 8:
		return nil
	default:
		return errors.NewFormatError(d.Name(), "floating-point size must be 4 or 8 bytes")
	}
}

// UUIDDefinition is a 16-byte UUID. Unlike the other fixed-size
// primitives it is composite: byte order determines whether the
// first three groups are byte-swapped (little-endian, Microsoft GUID
// convention) or consumed in document order (big-endian).
type UUIDDefinition struct {
	FixedSize
}

func NewUUID(base Base) *UUIDDefinition {
	return &UUIDDefinition{FixedSize: NewFixedSize(NewStorage(base), 16, SizeUnitsBytes)}
}

func (d *UUIDDefinition) TypeIndicator() TypeIndicator { return TypeUUID }

// IsComposite overrides FixedSize.IsComposite: UUID decode is always
// composite (it is never a candidate for a linear packed read since
// its byte order affects which bytes are swapped, not merely the
// endianness of a scalar load).
func (d *UUIDDefinition) IsComposite() bool { return true }

// PaddingDefinition consumes the minimum number of bytes such that
// the running structure offset becomes a multiple of AlignmentSize.
// It has no fixed Size of its own -- its runtime byte size depends on
// the structure's running offset, so ByteSize always reports
// unknown.
type PaddingDefinition struct {
	Storage
	AlignmentSize int
}

func NewPadding(base Base, alignmentSize int) *PaddingDefinition {
	return &PaddingDefinition{Storage: NewStorage(base), AlignmentSize: alignmentSize}
}

func (d *PaddingDefinition) TypeIndicator() TypeIndicator { return TypePadding }
func (d *PaddingDefinition) IsComposite() bool            { return false }
func (d *PaddingDefinition) ByteSize() (int, bool)        { return 0, false }
