package dmap

import (
	"github.com/libyal/dtfabric-go/definitions"
	"github.com/libyal/dtfabric-go/errors"
	"github.com/libyal/dtfabric-go/runtime"
)

// EnumerationMap decodes the underlying integer through valueMap and
// resolves it to the enumeration member's name via
// EnumerationDefinition.NameFor, raising MappingError for a number
// with no matching name.
type EnumerationMap struct {
	def      *definitions.EnumerationDefinition
	valueMap Map
}

func NewEnumerationMap(def *definitions.EnumerationDefinition, valueMap Map) *EnumerationMap {
	return &EnumerationMap{def: def, valueMap: valueMap}
}

func (m *EnumerationMap) Definition() definitions.Definition { return m.def }
func (m *EnumerationMap) ByteSize() (int, bool)              { return m.valueMap.ByteSize() }
func (m *EnumerationMap) GetSizeHint(ctx *runtime.Context) int64 {
	return m.valueMap.GetSizeHint(ctx)
}

func (m *EnumerationMap) MapByteStream(buffer []byte, byteOffset int64, ctx *runtime.Context) (any, error) {
	ctx = ensureContext(ctx)
	raw, err := m.valueMap.MapByteStream(buffer, byteOffset, ctx)
	if err != nil {
		return nil, err
	}
	number, err := asInt64(raw)
	if err != nil {
		return nil, errors.WrapMappingError(m.def.Name(), byteOffset, "enumeration value is not an integer", err)
	}
	name, ok := m.def.NameFor(number)
	if !ok {
		return nil, errors.NewMappingError(m.def.Name(), byteOffset, "no enumeration member matches the decoded value")
	}
	return name, nil
}

func (m *EnumerationMap) FoldByteStream(value any, ctx *runtime.Context) ([]byte, error) {
	name, ok := value.(string)
	if !ok {
		return nil, errors.NewEncodeError(m.def.Name(), "value is not an enumeration member name")
	}
	for _, v := range m.def.Values {
		if v.Name == name {
			return m.valueMap.FoldByteStream(v.Number, ctx)
		}
	}
	return nil, errors.NewEncodeError(m.def.Name(), "unknown enumeration member name")
}

// ConstantMap never appears on a byte stream: a constant is a named
// value for expressions to reference, not something that occupies
// bytes of its own.
type ConstantMap struct {
	def *definitions.ConstantDefinition
}

func NewConstantMap(def *definitions.ConstantDefinition) *ConstantMap {
	return &ConstantMap{def: def}
}

func (m *ConstantMap) Definition() definitions.Definition { return m.def }
func (m *ConstantMap) ByteSize() (int, bool)              { return 0, false }
func (m *ConstantMap) GetSizeHint(*runtime.Context) int64 { return 0 }

func (m *ConstantMap) MapByteStream(buffer []byte, byteOffset int64, ctx *runtime.Context) (any, error) {
	return nil, errors.NewMappingError(m.def.Name(), byteOffset, "constant definitions do not occupy a byte stream")
}

func (m *ConstantMap) FoldByteStream(value any, ctx *runtime.Context) ([]byte, error) {
	return nil, errors.NewEncodeError(m.def.Name(), "constant definitions cannot be folded")
}

// InertMap serves definitions that anchor documentation or grouping
// but have no byte-stream shape of their own: FormatDefinition and
// StructureFamilyDefinition (SPEC_FULL.md §3 Open Question
// resolution).
type InertMap struct {
	def definitions.Definition
}

func NewInertMap(def definitions.Definition) *InertMap {
	return &InertMap{def: def}
}

func (m *InertMap) Definition() definitions.Definition { return m.def }
func (m *InertMap) ByteSize() (int, bool)              { return 0, false }
func (m *InertMap) GetSizeHint(*runtime.Context) int64 { return 0 }

func (m *InertMap) MapByteStream(buffer []byte, byteOffset int64, ctx *runtime.Context) (any, error) {
	return nil, errors.NewMappingError(m.def.Name(), byteOffset, "this definition has no byte-stream representation")
}

func (m *InertMap) FoldByteStream(value any, ctx *runtime.Context) ([]byte, error) {
	return nil, errors.NewEncodeError(m.def.Name(), "this definition cannot be folded")
}
