package definitions

// LengthMode is the closed set of ways an element-sequence node may
// specify how many bytes or elements it spans (invariant 2: exactly
// one mode, though the literal and expression variants of the same
// mode are additive).
type LengthMode int

const (
	// LengthModeUnknown means neither a size, a count, nor a
	// terminator has been set yet; compiling such a node fails.
	LengthModeUnknown LengthMode = iota
	LengthModeDataSize
	LengthModeElementCount
	LengthModeTerminator
)

// ElementSequence is embedded by Sequence, Stream, and String
// definitions. Exactly one of (ElementsDataSize /
// ElementsDataSizeExpression), (NumberOfElements /
// NumberOfElementsExpression), or ElementsTerminator may be set; the
// literal and expression forms of the same mode may both be set
// (additive), matching invariant 2.
type ElementSequence struct {
	Storage

	ElementDataType Definition

	ElementsDataSize           int
	ElementsDataSizeExpression string

	NumberOfElements           int
	NumberOfElementsExpression string

	// ElementsTerminator, when non-nil, is a value equal to the
	// element type that ends the sequence. Its dynamic type matches
	// the element type's decoded Go value (e.g. int64 for an integer
	// element, rune for a character sequence).
	ElementsTerminator any
}

func newElementSequence(base Base, element Definition) ElementSequence {
	storage := NewStorage(base)
	if sd, ok := element.(interface{ ByteOrder() ByteOrder }); ok {
		storage.SetByteOrder(sd.ByteOrder())
	}
	return ElementSequence{Storage: storage, ElementDataType: element}
}

func (e ElementSequence) IsComposite() bool { return true }

// Mode reports which length mode this node uses, per invariant 2.
func (e ElementSequence) Mode() LengthMode {
	switch {
	case e.ElementsDataSize != 0 || e.ElementsDataSizeExpression != "":
		return LengthModeDataSize
	case e.NumberOfElements != 0 || e.NumberOfElementsExpression != "":
		return LengthModeElementCount
	case e.ElementsTerminator != nil:
		return LengthModeTerminator
	default:
		return LengthModeUnknown
	}
}

// ByteSize mirrors ElementSequenceDataTypeDefinition.GetByteSize: it
// is knowable only when a literal data size is given, or when a
// literal element count is given and the element type itself has a
// fixed size.
func (e ElementSequence) ByteSize() (int, bool) {
	if e.ElementDataType == nil {
		return 0, false
	}
	if e.ElementsDataSize > 0 {
		return e.ElementsDataSize, true
	}
	if e.NumberOfElements <= 0 {
		return 0, false
	}
	elementSize, ok := e.ElementDataType.ByteSize()
	if !ok {
		return 0, false
	}
	return elementSize * e.NumberOfElements, true
}

// SequenceDefinition decodes to an ordered tuple of element values.
type SequenceDefinition struct {
	ElementSequence
}

func NewSequence(base Base, element Definition) *SequenceDefinition {
	return &SequenceDefinition{ElementSequence: newElementSequence(base, element)}
}

func (d *SequenceDefinition) TypeIndicator() TypeIndicator { return TypeSequence }

// StreamDefinition decodes to the underlying byte slice; it
// specialises for non-composite element types.
type StreamDefinition struct {
	ElementSequence
}

func NewStream(base Base, element Definition) *StreamDefinition {
	return &StreamDefinition{ElementSequence: newElementSequence(base, element)}
}

func (d *StreamDefinition) TypeIndicator() TypeIndicator { return TypeStream }

// StringEncoding is the closed set of text encodings a String
// definition's bytes may be interpreted with.
type StringEncoding string

const (
	EncodingASCII    StringEncoding = "ascii"
	EncodingUTF8     StringEncoding = "utf-8"
	EncodingUTF16LE  StringEncoding = "utf-16-le"
	EncodingUTF16BE  StringEncoding = "utf-16-be"
)

// StringDefinition wraps a Stream: after decode, if a terminator is
// defined the stream is truncated at its first occurrence, then the
// remaining bytes are decoded using Encoding.
type StringDefinition struct {
	ElementSequence
	Encoding StringEncoding
}

func NewString(base Base, element Definition, encoding StringEncoding) *StringDefinition {
	if encoding == "" {
		encoding = EncodingUTF8
	}
	return &StringDefinition{ElementSequence: newElementSequence(base, element), Encoding: encoding}
}

func (d *StringDefinition) TypeIndicator() TypeIndicator { return TypeString }
