package dmap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libyal/dtfabric-go/definitions"
	"github.com/libyal/dtfabric-go/dmap"
)

func TestEnumerationMapResolvesName(t *testing.T) {
	enumDef := definitions.NewEnumeration(definitions.NewBase("color", nil, "", nil))
	enumDef.AddValue(definitions.EnumerationValue{Name: "RED", Number: 0})
	enumDef.AddValue(definitions.EnumerationValue{Name: "GREEN", Number: 1})

	intDef := definitions.NewInteger(definitions.NewBase("color_value", nil, "", nil), 1, definitions.IntegerFormatUnsigned)
	valueMap, err := dmap.NewIntegerMap(intDef)
	require.NoError(t, err)

	m := dmap.NewEnumerationMap(enumDef, valueMap)

	v, err := m.MapByteStream([]byte{1}, 0, nil)
	require.NoError(t, err)
	require.Equal(t, "GREEN", v)

	_, err = m.MapByteStream([]byte{9}, 0, nil)
	require.Error(t, err)
}

func TestEnumerationMapFoldRoundTrips(t *testing.T) {
	enumDef := definitions.NewEnumeration(definitions.NewBase("color", nil, "", nil))
	enumDef.AddValue(definitions.EnumerationValue{Name: "RED", Number: 0})
	intDef := definitions.NewInteger(definitions.NewBase("color_value", nil, "", nil), 1, definitions.IntegerFormatUnsigned)
	valueMap, err := dmap.NewIntegerMap(intDef)
	require.NoError(t, err)
	m := dmap.NewEnumerationMap(enumDef, valueMap)

	buf, err := m.FoldByteStream("RED", nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0}, buf)

	_, err = m.FoldByteStream("UNKNOWN", nil)
	require.Error(t, err)
}

func TestConstantMapNeverOccupiesBytes(t *testing.T) {
	def := definitions.NewConstant(definitions.NewBase("max", nil, "", nil), 100)
	m := dmap.NewConstantMap(def)

	_, err := m.MapByteStream(nil, 0, nil)
	require.Error(t, err)
	_, err = m.FoldByteStream(nil, nil)
	require.Error(t, err)
}

func TestInertMapAlwaysFails(t *testing.T) {
	def := definitions.NewFormat(definitions.NewBase("my_format", nil, "", nil))
	m := dmap.NewInertMap(def)

	_, err := m.MapByteStream(nil, 0, nil)
	require.Error(t, err)
	_, err = m.FoldByteStream(nil, nil)
	require.Error(t, err)
}

func TestCodecForASCIIRejectsHighBytes(t *testing.T) {
	codec, err := dmap.CodecFor(definitions.EncodingASCII)
	require.NoError(t, err)

	_, err = codec.Decode([]byte{0xFF})
	require.Error(t, err)

	s, err := codec.Decode([]byte("abc"))
	require.NoError(t, err)
	require.Equal(t, "abc", s)
}

func TestCodecForUTF16RoundTrips(t *testing.T) {
	codec, err := dmap.CodecFor(definitions.EncodingUTF16LE)
	require.NoError(t, err)
	require.Equal(t, 2, codec.TerminatorWidth())

	encoded, err := codec.Encode("hi")
	require.NoError(t, err)
	decoded, err := codec.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, "hi", decoded)
}

func TestCodecForUnknownEncodingFails(t *testing.T) {
	_, err := dmap.CodecFor("latin-1")
	require.Error(t, err)
}
