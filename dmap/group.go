package dmap

import (
	"github.com/libyal/dtfabric-go/definitions"
	"github.com/libyal/dtfabric-go/errors"
	"github.com/libyal/dtfabric-go/runtime"
)

// GroupMap dispatches to one of several variant StructureMaps by the
// value of a discriminator member read from the base structure (§4.I).
// It decodes the base structure once to read the discriminator, then
// re-decodes the chosen variant from the same starting offset (the
// base structure's members are a prefix of every variant's members).
type GroupMap struct {
	def        *definitions.StructureGroupDefinition
	baseMap    *StructureMap
	identifier string
	variants   map[any]*StructureMap
}

func NewGroupMap(def *definitions.StructureGroupDefinition, baseMap *StructureMap, variants map[any]*StructureMap) *GroupMap {
	return &GroupMap{def: def, baseMap: baseMap, identifier: def.Identifier, variants: variants}
}

func (m *GroupMap) Definition() definitions.Definition { return m.def }
func (m *GroupMap) ByteSize() (int, bool)              { return 0, false }

func (m *GroupMap) GetSizeHint(ctx *runtime.Context) int64 {
	return m.baseMap.GetSizeHint(ctx)
}

func (m *GroupMap) MapByteStream(buffer []byte, byteOffset int64, ctx *runtime.Context) (any, error) {
	ctx = ensureContext(ctx)

	var discriminator any
	if ctx.State.MemberIdentifier != nil {
		discriminator = ctx.State.MemberIdentifier
	} else {
		baseCtx, ok := ctx.Child()
		if !ok {
			return nil, errors.NewMappingError(m.def.Name(), byteOffset, "maximum recursion depth exceeded")
		}
		baseValue, err := m.baseMap.MapByteStream(buffer, byteOffset, baseCtx)
		if err != nil {
			var tooSmall *errors.ByteStreamTooSmall
			if errors.As(err, &tooSmall) {
				ctx.RequestedSize = tooSmall.Requested
				return nil, errors.NewByteStreamTooSmall(m.def.Name(), tooSmall.Available, tooSmall.Requested)
			}
			return nil, err
		}
		sv := baseValue.(*StructureValue)
		discriminator, _ = sv.Get(m.identifier)
		ctx.State.MemberIdentifier = discriminator
	}

	variant, ok := m.lookupVariant(discriminator)
	if !ok {
		return nil, errors.NewMappingError(m.def.Name(), byteOffset, "no structure-group variant matches the discriminator value")
	}

	variantCtx, ok := ctx.Child()
	if !ok {
		return nil, errors.NewMappingError(m.def.Name(), byteOffset, "maximum recursion depth exceeded")
	}
	value, err := variant.MapByteStream(buffer, byteOffset, variantCtx)
	if err != nil {
		var tooSmall *errors.ByteStreamTooSmall
		if errors.As(err, &tooSmall) {
			ctx.RequestedSize = tooSmall.Requested
			return nil, errors.NewByteStreamTooSmall(m.def.Name(), tooSmall.Available, tooSmall.Requested)
		}
		return nil, err
	}

	ctx.State.Clear()
	ctx.ByteSize = variantCtx.ByteSize
	return value, nil
}

func (m *GroupMap) lookupVariant(discriminator any) (*StructureMap, bool) {
	for key, variant := range m.variants {
		if valuesEqual(key, discriminator) {
			return variant, true
		}
	}
	return nil, false
}

func (m *GroupMap) FoldByteStream(value any, ctx *runtime.Context) ([]byte, error) {
	sv, ok := value.(*StructureValue)
	if !ok {
		return nil, errors.NewEncodeError(m.def.Name(), "value is not a structure value")
	}
	for _, variant := range m.variants {
		if variant.def.Name() == sv.TypeName {
			return variant.FoldByteStream(value, ctx)
		}
	}
	return nil, errors.NewEncodeError(m.def.Name(), "structure value's type does not match any known variant")
}
