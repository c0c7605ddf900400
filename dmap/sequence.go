package dmap

import (
	"bytes"

	"github.com/libyal/dtfabric-go/definitions"
	"github.com/libyal/dtfabric-go/errors"
	"github.com/libyal/dtfabric-go/expr"
	"github.com/libyal/dtfabric-go/runtime"
)

// sequenceCore is the shared decode/fold engine behind Sequence,
// Stream, and String Maps (§4.G): one element type plus one length
// mode (data size, element count, or terminator).
type sequenceCore struct {
	name         string
	elementMap   Map
	mode         definitions.LengthMode
	literalSize  int64
	sizeExpr     *expr.Expr
	literalCount int64
	countExpr    *expr.Expr
	terminator   any
}

func NewSequenceCore(name string, elementMap Map, es definitions.ElementSequence, sizeExpr, countExpr *expr.Expr) *sequenceCore {
	return &sequenceCore{
		name:         name,
		elementMap:   elementMap,
		mode:         es.Mode(),
		literalSize:  int64(es.ElementsDataSize),
		sizeExpr:     sizeExpr,
		literalCount: int64(es.NumberOfElements),
		countExpr:    countExpr,
		terminator:   es.ElementsTerminator,
	}
}

// resolvedDataSize evaluates the (possibly additive, per invariant 2)
// literal + expression data-size bound against ns. A bound that
// resolves negative (e.g. elements_data_size_expression "size - 4"
// when size is too small) is a MappingError, not merely "unset" --
// only the complete absence of both a literal and an expression means
// the bound is unset.
func (c *sequenceCore) resolvedDataSize(ns expr.Namespace) (int64, bool, error) {
	if c.literalSize == 0 && c.sizeExpr == nil {
		return 0, false, nil
	}
	total := c.literalSize
	if c.sizeExpr != nil {
		v, err := c.sizeExpr.EvalInt(ns)
		if err != nil {
			return 0, false, err
		}
		total += v
	}
	if total < 0 {
		return 0, false, errors.NewMappingError(c.name, 0, "invalid elements data size")
	}
	return total, true, nil
}

// resolvedCount is resolvedDataSize's counterpart for
// number_of_elements/number_of_elements_expression.
func (c *sequenceCore) resolvedCount(ns expr.Namespace) (int64, bool, error) {
	if c.literalCount == 0 && c.countExpr == nil {
		return 0, false, nil
	}
	total := c.literalCount
	if c.countExpr != nil {
		v, err := c.countExpr.EvalInt(ns)
		if err != nil {
			return 0, false, err
		}
		total += v
	}
	if total < 0 {
		return 0, false, errors.NewMappingError(c.name, 0, "invalid number of elements")
	}
	return total, true, nil
}

// decode runs the element loop described in §4.G's length-mode table,
// threading resumable progress through ctx.State.
func (c *sequenceCore) decode(buffer []byte, startOffset int64, ctx *runtime.Context) ([]any, int64, error) {
	ns := expr.MapNamespace(ctx.Namespace("", nil))

	dataSize, haveDataSize, err := c.resolvedDataSize(ns)
	if err != nil {
		return nil, 0, err
	}
	count, haveCount, err := c.resolvedCount(ns)
	if err != nil {
		return nil, 0, err
	}

	elementSize, haveElementSize := c.elementMap.ByteSize()
	if haveDataSize && haveElementSize && elementSize > 0 {
		count = dataSize / int64(elementSize)
		haveCount = true
	}

	var elements []any
	offset := startOffset
	startIndex := 0

	if ctx.State.MappedValues != nil {
		elements = append([]any(nil), ctx.State.MappedValues...)
		startIndex = ctx.State.ElementIndex
		offset = startOffset + ctx.State.ElementsDataOffset
	}

	i := startIndex
	for {
		if haveCount && int64(i) >= count {
			break
		}
		if haveDataSize && !haveElementSize && c.terminator == nil {
			return nil, 0, errors.NewFormatError(c.name, "elements_data_size with a non-fixed element type requires a terminator")
		}
		if haveDataSize && haveElementSize && (offset-startOffset) >= dataSize {
			break
		}

		var childCtx *runtime.Context
		if i == startIndex && ctx.State.Context != nil {
			childCtx = ctx.State.Context
		} else {
			var ok bool
			childCtx, ok = ctx.Child()
			if !ok {
				return nil, 0, errors.NewMappingError(c.name, offset, "maximum recursion depth exceeded")
			}
		}

		value, elemErr := c.elementMap.MapByteStream(buffer, offset, childCtx)
		if elemErr != nil {
			var tooSmall *errors.ByteStreamTooSmall
			if errors.As(elemErr, &tooSmall) {
				ctx.State.ElementIndex = i
				ctx.State.ElementsDataOffset = offset - startOffset
				ctx.State.MappedValues = elements
				ctx.State.Context = childCtx
				requested := (offset - startOffset) + tooSmall.Requested
				ctx.RequestedSize = requested
				if c.terminator != nil && !haveDataSize && !haveCount {
					ctx.State.RecordSizeHint(c.name, int64(len(buffer))-startOffset, false)
				}
				return nil, 0, errors.NewByteStreamTooSmall(c.name, int64(len(buffer))-startOffset, requested)
			}
			return nil, 0, elemErr
		}

		elements = append(elements, value)
		offset += childCtx.ByteSize
		i++

		if c.terminator != nil && valuesEqual(value, c.terminator) {
			break
		}
		if haveDataSize && (offset-startOffset) >= dataSize {
			break
		}
		if haveCount && int64(i) >= count {
			break
		}
		if !haveDataSize && !haveCount && c.terminator == nil {
			return nil, 0, errors.NewFormatError(c.name, "element sequence defines no size, count, or terminator")
		}
	}

	ctx.State.Clear()
	consumed := offset - startOffset
	ctx.ByteSize = consumed
	return elements, consumed, nil
}

func valuesEqual(a, b any) bool {
	if ab, ok := a.([]byte); ok {
		if bb, ok2 := b.([]byte); ok2 {
			return bytes.Equal(ab, bb)
		}
	}
	return a == b
}

// fold concatenates the element Map's FoldByteStream output for each
// value in values, in order.
func (c *sequenceCore) fold(values []any, ctx *runtime.Context) ([]byte, error) {
	var out []byte
	for _, v := range values {
		b, err := c.elementMap.FoldByteStream(v, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// getSizeHint implements §4.G's three-tier estimate.
func (c *sequenceCore) getSizeHint(def definitions.Definition, ctx *runtime.Context) int64 {
	if size, ok := def.ByteSize(); ok {
		return int64(size)
	}

	ns := expr.MapNamespace(ctx.Namespace("", nil))
	if dataSize, ok, err := c.resolvedDataSize(ns); ok && err == nil {
		return dataSize
	}
	if count, ok, err := c.resolvedCount(ns); ok && err == nil {
		if elementSize, haveSize := c.elementMap.ByteSize(); haveSize {
			return count * int64(elementSize)
		}
	}

	if ctx.State.SizeHints != nil {
		if hint, ok := ctx.State.SizeHints[c.name]; ok {
			elementSize, _ := c.elementMap.ByteSize()
			if elementSize == 0 {
				elementSize = 1
			}
			return hint.ByteSize + int64(elementSize)
		}
	}
	return 0
}

// SequenceMap decodes an element sequence to an ordered tuple of
// values.
type SequenceMap struct {
	def  *definitions.SequenceDefinition
	core *sequenceCore
}

func NewSequenceMap(def *definitions.SequenceDefinition, core *sequenceCore) *SequenceMap {
	return &SequenceMap{def: def, core: core}
}

func (m *SequenceMap) Definition() definitions.Definition { return m.def }
func (m *SequenceMap) ByteSize() (int, bool)              { return m.def.ByteSize() }
func (m *SequenceMap) GetSizeHint(ctx *runtime.Context) int64 {
	return m.core.getSizeHint(m.def, ensureContext(ctx))
}

func (m *SequenceMap) MapByteStream(buffer []byte, byteOffset int64, ctx *runtime.Context) (any, error) {
	ctx = ensureContext(ctx)
	elements, _, err := m.core.decode(buffer, byteOffset, ctx)
	if err != nil {
		return nil, err
	}
	return elements, nil
}

func (m *SequenceMap) FoldByteStream(value any, ctx *runtime.Context) ([]byte, error) {
	ctx = ensureContext(ctx)
	values, ok := value.([]any)
	if !ok {
		return nil, errors.NewEncodeError(m.def.Name(), "value is not a sequence of values")
	}
	return m.core.fold(values, ctx)
}

// StreamMap decodes to the underlying byte slice, specialising for
// non-composite element types by slicing directly where the bound is
// known and falling back to the shared element loop only for
// terminator-driven streams.
type StreamMap struct {
	def         definitions.Definition
	core        *sequenceCore
	elementSize int
	haveSize    bool
}

func NewStreamMap(def *definitions.StreamDefinition, core *sequenceCore) (*StreamMap, error) {
	return newStreamMap(def, def.ElementDataType, core)
}

// newStreamMap is the shared constructor behind NewStreamMap and
// NewStringMap, since a String decodes its raw bytes exactly the way
// a Stream does before applying its text encoding.
func newStreamMap(def definitions.Definition, elementDataType definitions.Definition, core *sequenceCore) (*StreamMap, error) {
	if elementDataType.IsComposite() {
		return nil, errors.NewFormatError(def.Name(), "stream element type must not be composite")
	}
	size, have := core.elementMap.ByteSize()
	return &StreamMap{def: def, core: core, elementSize: size, haveSize: have}, nil
}

func (m *StreamMap) Definition() definitions.Definition { return m.def }
func (m *StreamMap) ByteSize() (int, bool)              { return m.def.ByteSize() }
func (m *StreamMap) GetSizeHint(ctx *runtime.Context) int64 {
	return m.core.getSizeHint(m.def, ensureContext(ctx))
}

func (m *StreamMap) MapByteStream(buffer []byte, byteOffset int64, ctx *runtime.Context) (any, error) {
	ctx = ensureContext(ctx)
	ns := expr.MapNamespace(ctx.Namespace("", nil))

	if dataSize, ok, err := m.core.resolvedDataSize(ns); ok {
		if err != nil {
			return nil, err
		}
		return m.sliceExactly(buffer, byteOffset, dataSize, ctx)
	} else if err != nil {
		return nil, err
	}

	if count, ok, err := m.core.resolvedCount(ns); ok && m.haveSize {
		if err != nil {
			return nil, err
		}
		return m.sliceExactly(buffer, byteOffset, count*int64(m.elementSize), ctx)
	} else if err != nil {
		return nil, err
	}

	elements, consumed, err := m.core.decode(buffer, byteOffset, ctx)
	if err != nil {
		return nil, err
	}
	return elementsToBytes(elements, consumed), nil
}

func (m *StreamMap) sliceExactly(buffer []byte, byteOffset, size int64, ctx *runtime.Context) (any, error) {
	available := int64(len(buffer)) - byteOffset
	ctx.RequestedSize = size
	if available < size {
		return nil, errors.NewByteStreamTooSmall(m.def.Name(), available, size)
	}
	ctx.State.Clear()
	ctx.ByteSize = size
	return append([]byte(nil), buffer[byteOffset:byteOffset+size]...), nil
}

func elementsToBytes(elements []any, consumed int64) []byte {
	out := make([]byte, 0, consumed)
	for _, e := range elements {
		switch v := e.(type) {
		case byte:
			out = append(out, v)
		case int8:
			out = append(out, byte(v))
		case int64:
			out = append(out, byte(v))
		case rune:
			out = append(out, byte(v))
		}
	}
	return out
}

func (m *StreamMap) FoldByteStream(value any, ctx *runtime.Context) ([]byte, error) {
	b, ok := value.([]byte)
	if !ok {
		return nil, errors.NewEncodeError(m.def.Name(), "value is not a byte slice")
	}
	return append([]byte(nil), b...), nil
}

// StringMap wraps StreamMap: after decode, if a terminator is
// defined it truncates at its first occurrence, then decodes the
// remaining bytes with the declared encoding.
type StringMap struct {
	def    *definitions.StringDefinition
	stream *StreamMap
	codec  StringCodec
}

// StringCodec converts between a Go string and its encoded bytes for
// one declared StringEncoding; see dmap/encoding.go.
type StringCodec interface {
	Decode(b []byte) (string, error)
	Encode(s string) ([]byte, error)
	// TerminatorWidth is the byte width of one encoded unit, used to
	// find the terminator in already-decoded bytes (1 for ASCII/UTF-8,
	// 2 for UTF-16).
	TerminatorWidth() int
}

func NewStringMap(def *definitions.StringDefinition, core *sequenceCore, codec StringCodec) (*StringMap, error) {
	stream, err := newStreamMap(def, def.ElementDataType, core)
	if err != nil {
		return nil, err
	}
	return &StringMap{def: def, stream: stream, codec: codec}, nil
}

func (m *StringMap) Definition() definitions.Definition { return m.def }
func (m *StringMap) ByteSize() (int, bool)              { return m.def.ByteSize() }
func (m *StringMap) GetSizeHint(ctx *runtime.Context) int64 {
	return m.stream.GetSizeHint(ctx)
}

func (m *StringMap) MapByteStream(buffer []byte, byteOffset int64, ctx *runtime.Context) (any, error) {
	raw, err := m.stream.MapByteStream(buffer, byteOffset, ctx)
	if err != nil {
		return nil, err
	}
	b := raw.([]byte)

	if m.def.ElementsTerminator != nil {
		b = truncateAtTerminator(b, m.def.ElementsTerminator, m.codec.TerminatorWidth())
	}

	s, err := m.codec.Decode(b)
	if err != nil {
		return nil, errors.WrapMappingError(m.def.Name(), byteOffset, "unable to decode string", err)
	}
	return s, nil
}

func truncateAtTerminator(b []byte, terminator any, width int) []byte {
	if width <= 0 {
		return b
	}
	termBytes := terminatorBytes(terminator, width)
	if termBytes == nil {
		return b
	}
	for i := 0; i+width <= len(b); i += width {
		if bytes.Equal(b[i:i+width], termBytes) {
			return b[:i]
		}
	}
	return b
}

// terminatorBytes renders a declared terminator value (a raw byte
// slice, or the integer value the element type decodes to, e.g. 0 for
// a null terminator) as width bytes for comparison against an
// already-decoded byte run.
func terminatorBytes(terminator any, width int) []byte {
	switch t := terminator.(type) {
	case []byte:
		return t
	case int64:
		return bigEndianBytes(t, width)
	case int:
		return bigEndianBytes(int64(t), width)
	case rune:
		return bigEndianBytes(int64(t), width)
	default:
		return nil
	}
}

func bigEndianBytes(v int64, width int) []byte {
	out := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

func (m *StringMap) FoldByteStream(value any, ctx *runtime.Context) ([]byte, error) {
	s, ok := value.(string)
	if !ok {
		return nil, errors.NewEncodeError(m.def.Name(), "value is not a string")
	}
	b, err := m.codec.Encode(s)
	if err != nil {
		return nil, errors.WrapEncodeError(m.def.Name(), "unable to encode string", err)
	}
	return b, nil
}
