package dmap

import (
	"github.com/libyal/dtfabric-go/bytestream"
	"github.com/libyal/dtfabric-go/definitions"
	"github.com/libyal/dtfabric-go/errors"
	"github.com/libyal/dtfabric-go/runtime"
)

// codeFor picks the bytestream.Code for a fixed-size scalar
// primitive, given its declared width and signedness.
func codeFor(size int, signed bool) (bytestream.Code, error) {
	switch size {
	case 1:
		if signed {
			return bytestream.CodeInt8, nil
		}
		return bytestream.CodeUint8, nil
	case 2:
		if signed {
			return bytestream.CodeInt16, nil
		}
		return bytestream.CodeUint16, nil
	case 4:
		if signed {
			return bytestream.CodeInt32, nil
		}
		return bytestream.CodeUint32, nil
	case 8:
		if signed {
			return bytestream.CodeInt64, nil
		}
		return bytestream.CodeUint64, nil
	default:
		return 0, errors.NewFormatError("", "unsupported scalar size")
	}
}

func orderPrefix(order definitions.ByteOrder) bytestream.Order {
	switch order {
	case definitions.ByteOrderLittleEndian:
		return bytestream.OrderLittleEndian
	case definitions.ByteOrderBigEndian:
		return bytestream.OrderBigEndian
	default:
		return bytestream.OrderNative
	}
}

// BooleanMap decodes one storage slot to a Go bool, per one or both
// of the definition's TrueValue/FalseValue.
type BooleanMap struct {
	def *definitions.BooleanDefinition
	op  *bytestream.Operation
}

// NewBooleanMap constructs a BooleanMap. Construction fails with
// FormatError if neither TrueValue nor FalseValue is set (§4.F).
func NewBooleanMap(def *definitions.BooleanDefinition) (*BooleanMap, error) {
	if def.TrueValue == nil && def.FalseValue == nil {
		return nil, errors.NewFormatError(def.Name(), "boolean definition must set true_value or false_value")
	}
	code, err := codeFor(def.Size(), false)
	if err != nil {
		return nil, errors.WrapFormatError(def.Name(), "unable to build byte operation", err)
	}
	op, err := bytestream.New(orderPrefix(def.ByteOrder()), []bytestream.Code{code})
	if err != nil {
		return nil, errors.WrapFormatError(def.Name(), "unable to build byte operation", err)
	}
	return &BooleanMap{def: def, op: op}, nil
}

func (m *BooleanMap) Definition() definitions.Definition { return m.def }
func (m *BooleanMap) ByteSize() (int, bool)              { return m.def.ByteSize() }

func (m *BooleanMap) GetSizeHint(*runtime.Context) int64 {
	size, _ := m.def.ByteSize()
	return int64(size)
}

func (m *BooleanMap) MapByteStream(buffer []byte, byteOffset int64, ctx *runtime.Context) (any, error) {
	ctx = ensureContext(ctx)
	available := int64(len(buffer)) - byteOffset
	needed := int64(m.op.Size())
	ctx.RequestedSize = needed
	if available < needed {
		return nil, errors.NewByteStreamTooSmall(m.def.Name(), available, needed)
	}
	values, err := m.op.ReadFrom(buffer[byteOffset:])
	if err != nil {
		return nil, errors.WrapMappingError(m.def.Name(), byteOffset, "unable to decode boolean", err)
	}
	raw, err := asInt64(values[0])
	if err != nil {
		return nil, errors.WrapMappingError(m.def.Name(), byteOffset, "unexpected decoded type", err)
	}

	var result bool
	switch {
	case m.def.TrueValue != nil && raw == *m.def.TrueValue:
		result = true
	case m.def.FalseValue != nil && raw == *m.def.FalseValue:
		result = false
	case m.def.TrueValue == nil:
		// Only FalseValue is defined: anything else is true.
		result = true
	case m.def.FalseValue == nil:
		// Only TrueValue is defined: anything else is false.
		result = false
	default:
		return nil, errors.NewMappingError(m.def.Name(), byteOffset, "value matches neither true_value nor false_value")
	}

	ctx.ByteSize = needed
	return result, nil
}

func (m *BooleanMap) FoldByteStream(value any, ctx *runtime.Context) ([]byte, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, errors.NewEncodeError(m.def.Name(), "value is not a bool")
	}

	var raw int64
	switch {
	case b && m.def.TrueValue != nil:
		raw = *m.def.TrueValue
	case !b && m.def.FalseValue != nil:
		raw = *m.def.FalseValue
	case b && m.def.TrueValue == nil:
		return nil, errors.NewEncodeError(m.def.Name(), "cannot encode true: no true_value defined")
	case !b && m.def.FalseValue == nil:
		return nil, errors.NewEncodeError(m.def.Name(), "cannot encode false: no false_value defined")
	}

	out, err := m.op.WriteTo([]any{raw})
	if err != nil {
		return nil, errors.WrapEncodeError(m.def.Name(), "unable to encode boolean", err)
	}
	return out, nil
}

// CharacterMap decodes the integer at the current byte range into a
// Unicode scalar value (rune).
type CharacterMap struct {
	def *definitions.CharacterDefinition
	op  *bytestream.Operation
}

func NewCharacterMap(def *definitions.CharacterDefinition) (*CharacterMap, error) {
	code, err := codeFor(def.Size(), false)
	if err != nil {
		return nil, errors.WrapFormatError(def.Name(), "unable to build byte operation", err)
	}
	op, err := bytestream.New(orderPrefix(def.ByteOrder()), []bytestream.Code{code})
	if err != nil {
		return nil, errors.WrapFormatError(def.Name(), "unable to build byte operation", err)
	}
	return &CharacterMap{def: def, op: op}, nil
}

func (m *CharacterMap) Definition() definitions.Definition { return m.def }
func (m *CharacterMap) ByteSize() (int, bool)              { return m.def.ByteSize() }

func (m *CharacterMap) GetSizeHint(*runtime.Context) int64 {
	size, _ := m.def.ByteSize()
	return int64(size)
}

func (m *CharacterMap) MapByteStream(buffer []byte, byteOffset int64, ctx *runtime.Context) (any, error) {
	ctx = ensureContext(ctx)
	available := int64(len(buffer)) - byteOffset
	needed := int64(m.op.Size())
	ctx.RequestedSize = needed
	if available < needed {
		return nil, errors.NewByteStreamTooSmall(m.def.Name(), available, needed)
	}
	values, err := m.op.ReadFrom(buffer[byteOffset:])
	if err != nil {
		return nil, errors.WrapMappingError(m.def.Name(), byteOffset, "unable to decode character", err)
	}
	raw, _ := asInt64(values[0])
	ctx.ByteSize = needed
	return rune(raw), nil
}

func (m *CharacterMap) FoldByteStream(value any, ctx *runtime.Context) ([]byte, error) {
	r, ok := value.(rune)
	if !ok {
		if i, ok2 := value.(int32); ok2 {
			r = rune(i)
		} else {
			return nil, errors.NewEncodeError(m.def.Name(), "value is not a rune")
		}
	}
	out, err := m.op.WriteTo([]any{int64(r)})
	if err != nil {
		return nil, errors.WrapEncodeError(m.def.Name(), "unable to encode character", err)
	}
	return out, nil
}

// IntegerMap decodes a signed or unsigned integer of 1/2/4/8 bytes,
// enforcing an optional Values allow-list.
type IntegerMap struct {
	def *definitions.IntegerDefinition
	op  *bytestream.Operation
}

func NewIntegerMap(def *definitions.IntegerDefinition) (*IntegerMap, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	code, err := codeFor(def.Size(), def.Format == definitions.IntegerFormatSigned)
	if err != nil {
		return nil, errors.WrapFormatError(def.Name(), "unable to build byte operation", err)
	}
	op, err := bytestream.New(orderPrefix(def.ByteOrder()), []bytestream.Code{code})
	if err != nil {
		return nil, errors.WrapFormatError(def.Name(), "unable to build byte operation", err)
	}
	return &IntegerMap{def: def, op: op}, nil
}

func (m *IntegerMap) Definition() definitions.Definition { return m.def }
func (m *IntegerMap) ByteSize() (int, bool)              { return m.def.ByteSize() }

func (m *IntegerMap) GetSizeHint(*runtime.Context) int64 {
	size, _ := m.def.ByteSize()
	return int64(size)
}

func (m *IntegerMap) MapByteStream(buffer []byte, byteOffset int64, ctx *runtime.Context) (any, error) {
	ctx = ensureContext(ctx)
	available := int64(len(buffer)) - byteOffset
	needed := int64(m.op.Size())
	ctx.RequestedSize = needed
	if available < needed {
		return nil, errors.NewByteStreamTooSmall(m.def.Name(), available, needed)
	}
	values, err := m.op.ReadFrom(buffer[byteOffset:])
	if err != nil {
		return nil, errors.WrapMappingError(m.def.Name(), byteOffset, "unable to decode integer", err)
	}
	raw, _ := asInt64(values[0])

	if len(m.def.Values) > 0 {
		found := false
		for _, allowed := range m.def.Values {
			if allowed == raw {
				found = true
				break
			}
		}
		if !found {
			return nil, errors.NewMappingError(m.def.Name(), byteOffset, "decoded value is not in the allowed values list")
		}
	}

	ctx.ByteSize = needed
	return raw, nil
}

func (m *IntegerMap) FoldByteStream(value any, ctx *runtime.Context) ([]byte, error) {
	raw, err := asInt64(value)
	if err != nil {
		return nil, errors.WrapEncodeError(m.def.Name(), "value is not an integer", err)
	}
	out, err := m.op.WriteTo([]any{raw})
	if err != nil {
		return nil, errors.WrapEncodeError(m.def.Name(), "unable to encode integer", err)
	}
	return out, nil
}

// FloatMap decodes a 4- or 8-byte IEEE 754 value.
type FloatMap struct {
	def *definitions.FloatingPointDefinition
	op  *bytestream.Operation
}

func NewFloatMap(def *definitions.FloatingPointDefinition) (*FloatMap, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	var code bytestream.Code
	if def.Size() == 4 {
		code = bytestream.CodeFloat32
	} else {
		code = bytestream.CodeFloat64
	}
	op, err := bytestream.New(orderPrefix(def.ByteOrder()), []bytestream.Code{code})
	if err != nil {
		return nil, errors.WrapFormatError(def.Name(), "unable to build byte operation", err)
	}
	return &FloatMap{def: def, op: op}, nil
}

func (m *FloatMap) Definition() definitions.Definition { return m.def }
func (m *FloatMap) ByteSize() (int, bool)              { return m.def.ByteSize() }

func (m *FloatMap) GetSizeHint(*runtime.Context) int64 {
	size, _ := m.def.ByteSize()
	return int64(size)
}

func (m *FloatMap) MapByteStream(buffer []byte, byteOffset int64, ctx *runtime.Context) (any, error) {
	ctx = ensureContext(ctx)
	available := int64(len(buffer)) - byteOffset
	needed := int64(m.op.Size())
	ctx.RequestedSize = needed
	if available < needed {
		return nil, errors.NewByteStreamTooSmall(m.def.Name(), available, needed)
	}
	values, err := m.op.ReadFrom(buffer[byteOffset:])
	if err != nil {
		return nil, errors.WrapMappingError(m.def.Name(), byteOffset, "unable to decode floating-point value", err)
	}
	ctx.ByteSize = needed
	switch v := values[0].(type) {
	case float32:
		return float64(v), nil
	default:
		return v, nil
	}
}

func (m *FloatMap) FoldByteStream(value any, ctx *runtime.Context) ([]byte, error) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	default:
		return nil, errors.NewEncodeError(m.def.Name(), "value is not a float")
	}
	var encodeValue any = f
	if m.def.Size() == 4 {
		encodeValue = float32(f)
	}
	out, err := m.op.WriteTo([]any{encodeValue})
	if err != nil {
		return nil, errors.WrapEncodeError(m.def.Name(), "unable to encode floating-point value", err)
	}
	return out, nil
}

// PaddingMap consumes the minimum number of bytes such that the
// running structure offset becomes a multiple of AlignmentSize. It
// contributes no decoded value of its own; decode returns the skipped
// bytes.
//
// Padding's size depends on the enclosing structure's running offset,
// not on the definition alone (§4.H step 2), so the enclosing
// StructureMap passes it in via ctx.PaddingSize on the subordinate
// Context for each call rather than storing it on the Map: PaddingMap
// is shared and cached across decodes like every other Map, and a
// size stored on the Map itself would race across concurrent decodes.
type PaddingMap struct {
	def *definitions.PaddingDefinition
}

func NewPaddingMap(def *definitions.PaddingDefinition) *PaddingMap {
	return &PaddingMap{def: def}
}

func (m *PaddingMap) Definition() definitions.Definition { return m.def }
func (m *PaddingMap) ByteSize() (int, bool)              { return 0, false }
func (m *PaddingMap) GetSizeHint(ctx *runtime.Context) int64 {
	return ensureContext(ctx).PaddingSize
}

func (m *PaddingMap) MapByteStream(buffer []byte, byteOffset int64, ctx *runtime.Context) (any, error) {
	ctx = ensureContext(ctx)
	needed := ctx.PaddingSize
	available := int64(len(buffer)) - byteOffset
	ctx.RequestedSize = needed
	if available < needed {
		return nil, errors.NewByteStreamTooSmall(m.def.Name(), available, needed)
	}
	skipped := append([]byte(nil), buffer[byteOffset:byteOffset+needed]...)
	ctx.ByteSize = needed
	return skipped, nil
}

func (m *PaddingMap) FoldByteStream(value any, ctx *runtime.Context) ([]byte, error) {
	return make([]byte, ensureContext(ctx).PaddingSize), nil
}

func ensureContext(ctx *runtime.Context) *runtime.Context {
	if ctx == nil {
		return runtime.New()
	}
	return ctx
}

func asInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int8:
		return int64(t), nil
	case uint8:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case uint16:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case int64:
		return t, nil
	case uint64:
		return int64(t), nil
	case int:
		return int64(t), nil
	default:
		return 0, errors.NewMappingError("", 0, "value is not an integer")
	}
}
