package dmap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libyal/dtfabric-go/definitions"
	"github.com/libyal/dtfabric-go/dmap"
	"github.com/libyal/dtfabric-go/runtime"
)

func TestSequenceMapDecodesFixedCount(t *testing.T) {
	elementDef := definitions.NewInteger(definitions.NewBase("byte", nil, "", nil), 1, definitions.IntegerFormatUnsigned)
	elementMap, err := dmap.NewIntegerMap(elementDef)
	require.NoError(t, err)

	seqDef := definitions.NewSequence(definitions.NewBase("bytes", nil, "", nil), elementDef)
	seqDef.NumberOfElements = 3

	core := dmap.NewSequenceCore("bytes", elementMap, seqDef.ElementSequence, nil, nil)
	m := dmap.NewSequenceMap(seqDef, core)

	v, err := m.MapByteStream([]byte{1, 2, 3, 4}, 0, nil)
	require.NoError(t, err)
	require.Equal(t, []any{int64(1), int64(2), int64(3)}, v)
}

func TestSequenceMapFoldRoundTrips(t *testing.T) {
	elementDef := definitions.NewInteger(definitions.NewBase("byte", nil, "", nil), 1, definitions.IntegerFormatUnsigned)
	elementMap, err := dmap.NewIntegerMap(elementDef)
	require.NoError(t, err)

	seqDef := definitions.NewSequence(definitions.NewBase("bytes", nil, "", nil), elementDef)
	seqDef.NumberOfElements = 2
	core := dmap.NewSequenceCore("bytes", elementMap, seqDef.ElementSequence, nil, nil)
	m := dmap.NewSequenceMap(seqDef, core)

	buf, err := m.FoldByteStream([]any{int64(9), int64(8)}, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{9, 8}, buf)
}

func TestSequenceMapResumesAcrossByteStreamTooSmall(t *testing.T) {
	elementDef := definitions.NewInteger(definitions.NewBase("word", nil, "", nil), 4, definitions.IntegerFormatUnsigned)
	elementDef.SetByteOrder(definitions.ByteOrderBigEndian)
	elementMap, err := dmap.NewIntegerMap(elementDef)
	require.NoError(t, err)

	seqDef := definitions.NewSequence(definitions.NewBase("words", nil, "", nil), elementDef)
	seqDef.NumberOfElements = 2
	core := dmap.NewSequenceCore("words", elementMap, seqDef.ElementSequence, nil, nil)
	m := dmap.NewSequenceMap(seqDef, core)

	ctx := runtime.New()
	_, err = m.MapByteStream([]byte{0, 0, 0, 1}, 0, ctx)
	require.Error(t, err)

	full := []byte{0, 0, 0, 1, 0, 0, 0, 2}
	v, err := m.MapByteStream(full, 0, ctx)
	require.NoError(t, err)
	require.Equal(t, []any{int64(1), int64(2)}, v)
}

func TestStreamMapSlicesExactDataSize(t *testing.T) {
	elementDef := definitions.NewInteger(definitions.NewBase("byte", nil, "", nil), 1, definitions.IntegerFormatUnsigned)
	elementMap, err := dmap.NewIntegerMap(elementDef)
	require.NoError(t, err)

	streamDef := definitions.NewStream(definitions.NewBase("payload", nil, "", nil), elementDef)
	streamDef.ElementsDataSize = 3
	core := dmap.NewSequenceCore("payload", elementMap, streamDef.ElementSequence, nil, nil)
	m, err := dmap.NewStreamMap(streamDef, core)
	require.NoError(t, err)

	v, err := m.MapByteStream([]byte{1, 2, 3, 4, 5}, 0, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, v)
}

func TestStreamMapRejectsCompositeElementType(t *testing.T) {
	innerElement := definitions.NewInteger(definitions.NewBase("byte", nil, "", nil), 1, definitions.IntegerFormatUnsigned)
	element := definitions.NewSequence(definitions.NewBase("nested", nil, "", nil), innerElement)
	streamDef := definitions.NewStream(definitions.NewBase("payload", nil, "", nil), element)

	innerElementMap, err := dmap.NewIntegerMap(innerElement)
	require.NoError(t, err)
	innerCore := dmap.NewSequenceCore("nested", innerElementMap, element.ElementSequence, nil, nil)
	nestedMap := dmap.NewSequenceMap(element, innerCore)

	core := dmap.NewSequenceCore("payload", nestedMap, streamDef.ElementSequence, nil, nil)
	_, err = dmap.NewStreamMap(streamDef, core)
	require.Error(t, err)
}

func TestStringMapDecodesASCIIWithNullTerminator(t *testing.T) {
	elementDef := definitions.NewCharacter(definitions.NewBase("char", nil, "", nil), 1)
	elementMap, err := dmap.NewCharacterMap(elementDef)
	require.NoError(t, err)

	strDef := definitions.NewString(definitions.NewBase("name", nil, "", nil), elementDef, definitions.EncodingASCII)
	strDef.ElementsDataSize = 8
	strDef.ElementsTerminator = int64(0)

	core := dmap.NewSequenceCore("name", elementMap, strDef.ElementSequence, nil, nil)
	codec, err := dmap.CodecFor(definitions.EncodingASCII)
	require.NoError(t, err)
	m, err := dmap.NewStringMap(strDef, core, codec)
	require.NoError(t, err)

	v, err := m.MapByteStream([]byte("hi\x00\x00\x00\x00\x00\x00"), 0, nil)
	require.NoError(t, err)
	require.Equal(t, "hi", v)
}

func TestStringMapFoldEncodesWithCodec(t *testing.T) {
	elementDef := definitions.NewCharacter(definitions.NewBase("char", nil, "", nil), 1)
	elementMap, err := dmap.NewCharacterMap(elementDef)
	require.NoError(t, err)

	strDef := definitions.NewString(definitions.NewBase("name", nil, "", nil), elementDef, definitions.EncodingUTF8)
	core := dmap.NewSequenceCore("name", elementMap, strDef.ElementSequence, nil, nil)
	codec, err := dmap.CodecFor(definitions.EncodingUTF8)
	require.NoError(t, err)
	m, err := dmap.NewStringMap(strDef, core, codec)
	require.NoError(t, err)

	buf, err := m.FoldByteStream("hi", nil)
	require.NoError(t, err)
	require.Equal(t, []byte("hi"), buf)
}
