package dmap

import (
	"github.com/libyal/dtfabric-go/definitions"
	"github.com/libyal/dtfabric-go/errors"
	"github.com/libyal/dtfabric-go/expr"
	"github.com/libyal/dtfabric-go/runtime"
)

// MemberPlan binds one structure or union member to its compiled
// child Map and, when the member is conditional, its parsed condition
// expression.
type MemberPlan struct {
	member    *definitions.Member
	dataMap   Map
	condition *expr.Expr
}

func NewMemberPlan(member *definitions.Member, dataMap Map, condition *expr.Expr) MemberPlan {
	return MemberPlan{member: member, dataMap: dataMap, condition: condition}
}

// StructureMap decodes an ordered set of members into a
// StructureValue, evaluating each member's condition (if any) against
// the partially-built value and recomputing padding members' runtime
// size from the running offset (§4.H).
//
// Every member is decoded through its own compiled Map rather than
// through one packed byte operation spanning the whole structure; a
// structure with no conditional or padding members still decodes
// member-by-member, trading the packed-read optimisation for a single
// decode path that is resumable at member granularity regardless of
// shape.
type StructureMap struct {
	def   *definitions.StructureDefinition
	plans []MemberPlan
}

func NewStructureMap(def *definitions.StructureDefinition, plans []MemberPlan) *StructureMap {
	return &StructureMap{def: def, plans: plans}
}

func (m *StructureMap) Definition() definitions.Definition { return m.def }
func (m *StructureMap) ByteSize() (int, bool)              { return m.def.ByteSize() }

func (m *StructureMap) GetSizeHint(ctx *runtime.Context) int64 {
	ctx = ensureContext(ctx)
	if size, ok := m.def.ByteSize(); ok {
		return int64(size)
	}
	var total int64
	startIndex := ctx.State.AttributeIndex
	for i := startIndex; i < len(m.plans); i++ {
		size, ok := m.plans[i].dataMap.ByteSize()
		if !ok {
			return total
		}
		total += int64(size)
	}
	return total
}

func (m *StructureMap) MapByteStream(buffer []byte, byteOffset int64, ctx *runtime.Context) (any, error) {
	ctx = ensureContext(ctx)

	sv := NewStructureValue(m.def.Name())
	startIndex := ctx.State.AttributeIndex
	if ctx.State.MemberValues != nil {
		for _, name := range ctx.State.MemberNames {
			sv.Set(name, ctx.State.MemberValues[name])
		}
	}

	offset := byteOffset + ctx.MembersDataSize

	for i := startIndex; i < len(m.plans); i++ {
		plan := m.plans[i]

		memberNS := ctx.Namespace(m.def.Name(), sv)
		sv.Flatten(memberNS)

		if plan.condition != nil {
			ns := expr.MapNamespace(memberNS)
			include, err := plan.condition.EvalBool(ns)
			if err != nil {
				return nil, err
			}
			if !include {
				continue
			}
		}

		var paddingSize int64
		pm, isPadding := plan.dataMap.(*PaddingMap)
		if isPadding {
			consumedSoFar := int(offset - byteOffset)
			alignment := pm.def.AlignmentSize
			if alignment > 0 {
				if remainder := consumedSoFar % alignment; remainder > 0 {
					paddingSize = int64(alignment - remainder)
				}
			}
		}

		childCtx, ok := ctx.Child()
		if !ok {
			return nil, errors.NewMappingError(m.def.Name(), offset, "maximum recursion depth exceeded")
		}
		if isPadding {
			childCtx.PaddingSize = paddingSize
		}
		// A member's own size/count expression (e.g. a sequence's
		// elements_data_size_expression) is evaluated against this same
		// namespace: both under the structure's name ("record.size") and
		// by bare sibling name ("size"), matching the two reference forms
		// the expression grammar accepts.
		childCtx.Values = memberNS

		value, err := plan.dataMap.MapByteStream(buffer, offset, childCtx)
		if err != nil {
			var tooSmall *errors.ByteStreamTooSmall
			if errors.As(err, &tooSmall) {
				ctx.State.AttributeIndex = i
				ctx.State.MemberNames = sv.Names()
				ctx.State.MemberValues = memberValueMap(sv)
				ctx.MembersDataSize = offset - byteOffset
				requested := (offset - byteOffset) + tooSmall.Requested
				ctx.RequestedSize = requested
				return nil, errors.NewByteStreamTooSmall(m.def.Name(), int64(len(buffer))-byteOffset, requested)
			}
			return nil, err
		}

		if len(plan.member.Values) > 0 && !valueAllowed(value, plan.member.Values) {
			return nil, errors.NewMappingError(plan.member.MemberName, offset, "decoded value is not in the member's allowed values list")
		}

		sv.Set(plan.member.MemberName, value)
		offset += childCtx.ByteSize
	}

	ctx.State.Clear()
	ctx.MembersDataSize = 0
	ctx.ByteSize = offset - byteOffset
	return sv, nil
}

func memberValueMap(sv *StructureValue) map[string]any {
	out := make(map[string]any, len(sv.Names()))
	for _, name := range sv.Names() {
		out[name], _ = sv.Get(name)
	}
	return out
}

func valueAllowed(value any, allowed []any) bool {
	for _, v := range allowed {
		if valuesEqual(value, v) {
			return true
		}
	}
	return false
}

func (m *StructureMap) FoldByteStream(value any, ctx *runtime.Context) ([]byte, error) {
	ctx = ensureContext(ctx)
	sv, ok := value.(*StructureValue)
	if !ok {
		return nil, errors.NewEncodeError(m.def.Name(), "value is not a structure value")
	}

	var out []byte
	for _, plan := range m.plans {
		if plan.condition != nil {
			memberNS := ctx.Namespace(m.def.Name(), sv)
			sv.Flatten(memberNS)
			ns := expr.MapNamespace(memberNS)
			include, err := plan.condition.EvalBool(ns)
			if err != nil {
				return nil, errors.WrapEncodeError(m.def.Name(), "unable to evaluate member condition", err)
			}
			if !include {
				continue
			}
		}

		if pm, ok := plan.dataMap.(*PaddingMap); ok {
			alignment := pm.def.AlignmentSize
			need := 0
			if alignment > 0 {
				if remainder := len(out) % alignment; remainder > 0 {
					need = alignment - remainder
				}
			}
			out = append(out, make([]byte, need)...)
			continue
		}

		memberValue, _ := sv.Get(plan.member.MemberName)
		b, err := plan.dataMap.FoldByteStream(memberValue, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// UnionMap decodes every member from the union's shared starting
// offset, returning a UnionValue carrying both the members that
// decoded successfully and the errors from those that did not
// (resolving the union decode Open Question).
type UnionMap struct {
	def   *definitions.UnionDefinition
	plans []MemberPlan
}

func NewUnionMap(def *definitions.UnionDefinition, plans []MemberPlan) *UnionMap {
	return &UnionMap{def: def, plans: plans}
}

func (m *UnionMap) Definition() definitions.Definition { return m.def }
func (m *UnionMap) ByteSize() (int, bool)              { return m.def.ByteSize() }

func (m *UnionMap) GetSizeHint(ctx *runtime.Context) int64 {
	size, _ := m.def.ByteSize()
	return int64(size)
}

func (m *UnionMap) MapByteStream(buffer []byte, byteOffset int64, ctx *runtime.Context) (any, error) {
	ctx = ensureContext(ctx)
	uv := &UnionValue{TypeName: m.def.Name(), Variants: map[string]any{}, Errors: map[string]error{}}

	var maxConsumed int64
	for _, plan := range m.plans {
		childCtx, ok := ctx.Child()
		if !ok {
			uv.Errors[plan.member.MemberName] = errors.NewMappingError(m.def.Name(), byteOffset, "maximum recursion depth exceeded")
			continue
		}
		value, err := plan.dataMap.MapByteStream(buffer, byteOffset, childCtx)
		if err != nil {
			uv.Errors[plan.member.MemberName] = err
			continue
		}
		uv.Variants[plan.member.MemberName] = value
		if childCtx.ByteSize > maxConsumed {
			maxConsumed = childCtx.ByteSize
		}
	}

	ctx.ByteSize = maxConsumed
	return uv, nil
}

func (m *UnionMap) FoldByteStream(value any, ctx *runtime.Context) ([]byte, error) {
	ctx = ensureContext(ctx)
	uv, ok := value.(*UnionValue)
	if !ok {
		return nil, errors.NewEncodeError(m.def.Name(), "value is not a union value")
	}

	for _, plan := range m.plans {
		variantValue, present := uv.Variants[plan.member.MemberName]
		if !present {
			continue
		}
		b, err := plan.dataMap.FoldByteStream(variantValue, ctx)
		if err != nil {
			return nil, err
		}
		if maxSize, ok := m.def.ByteSize(); ok && len(b) < maxSize {
			b = append(b, make([]byte, maxSize-len(b))...)
		}
		return b, nil
	}
	return nil, errors.NewEncodeError(m.def.Name(), "union value names no known member variant")
}
