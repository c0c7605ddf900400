package dmap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libyal/dtfabric-go/definitions"
	"github.com/libyal/dtfabric-go/dmap"
	"github.com/libyal/dtfabric-go/runtime"
)

func boolDef(name string, trueVal, falseVal *int64) *definitions.BooleanDefinition {
	d := definitions.NewBoolean(definitions.NewBase(name, nil, "", nil), 1)
	d.TrueValue = trueVal
	d.FalseValue = falseVal
	return d
}

func int64p(v int64) *int64 { return &v }

func TestBooleanMapDecodesTrueAndFalse(t *testing.T) {
	def := boolDef("flag", int64p(1), int64p(0))
	m, err := dmap.NewBooleanMap(def)
	require.NoError(t, err)

	v, err := m.MapByteStream([]byte{1}, 0, nil)
	require.NoError(t, err)
	require.Equal(t, true, v)

	v, err = m.MapByteStream([]byte{0}, 0, nil)
	require.NoError(t, err)
	require.Equal(t, false, v)
}

func TestBooleanMapRejectsNeitherValueSet(t *testing.T) {
	def := definitions.NewBoolean(definitions.NewBase("flag", nil, "", nil), 1)
	_, err := dmap.NewBooleanMap(def)
	require.Error(t, err)
}

func TestBooleanMapFoldRoundTrips(t *testing.T) {
	def := boolDef("flag", int64p(1), int64p(0))
	m, err := dmap.NewBooleanMap(def)
	require.NoError(t, err)

	buf, err := m.FoldByteStream(true, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{1}, buf)
}

func TestIntegerMapEnforcesAllowList(t *testing.T) {
	def := definitions.NewInteger(definitions.NewBase("code", nil, "", nil), 1, definitions.IntegerFormatUnsigned)
	def.Values = []int64{1, 2, 3}
	m, err := dmap.NewIntegerMap(def)
	require.NoError(t, err)

	_, err = m.MapByteStream([]byte{2}, 0, nil)
	require.NoError(t, err)

	_, err = m.MapByteStream([]byte{9}, 0, nil)
	require.Error(t, err)
}

func TestIntegerMapRejectsInvalidSize(t *testing.T) {
	def := definitions.NewInteger(definitions.NewBase("odd", nil, "", nil), 3, definitions.IntegerFormatUnsigned)
	_, err := dmap.NewIntegerMap(def)
	require.Error(t, err)
}

func TestIntegerMapDecodesBigEndian(t *testing.T) {
	def := definitions.NewInteger(definitions.NewBase("word", nil, "", nil), 4, definitions.IntegerFormatUnsigned)
	def.SetByteOrder(definitions.ByteOrderBigEndian)
	m, err := dmap.NewIntegerMap(def)
	require.NoError(t, err)

	v, err := m.MapByteStream([]byte{0x00, 0x00, 0x01, 0x00}, 0, nil)
	require.NoError(t, err)
	require.Equal(t, int64(256), v)
}

func TestIntegerMapByteStreamTooSmall(t *testing.T) {
	def := definitions.NewInteger(definitions.NewBase("word", nil, "", nil), 4, definitions.IntegerFormatUnsigned)
	m, err := dmap.NewIntegerMap(def)
	require.NoError(t, err)

	_, err = m.MapByteStream([]byte{0x01, 0x02}, 0, nil)
	require.Error(t, err)
}

func TestFloatMapNarrowsOnEncode(t *testing.T) {
	def := definitions.NewFloatingPoint(definitions.NewBase("ratio", nil, "", nil), 4)
	m, err := dmap.NewFloatMap(def)
	require.NoError(t, err)

	buf, err := m.FoldByteStream(1.5, nil)
	require.NoError(t, err)

	v, err := m.MapByteStream(buf, 0, nil)
	require.NoError(t, err)
	require.Equal(t, 1.5, v)
}

func TestFloatMapRejectsInvalidSize(t *testing.T) {
	def := definitions.NewFloatingPoint(definitions.NewBase("odd", nil, "", nil), 2)
	_, err := dmap.NewFloatMap(def)
	require.Error(t, err)
}

func TestCharacterMapDecodesRune(t *testing.T) {
	def := definitions.NewCharacter(definitions.NewBase("letter", nil, "", nil), 1)
	m, err := dmap.NewCharacterMap(def)
	require.NoError(t, err)

	v, err := m.MapByteStream([]byte{'A'}, 0, nil)
	require.NoError(t, err)
	require.Equal(t, rune('A'), v)
}

func TestPaddingMapUsesRuntimeSize(t *testing.T) {
	def := definitions.NewPadding(definitions.NewBase("pad", nil, "", nil), 4)
	m := dmap.NewPaddingMap(def)

	ctx := runtime.New()
	ctx.PaddingSize = 3

	v, err := m.MapByteStream([]byte{1, 2, 3, 4}, 0, ctx)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, v)

	buf, err := m.FoldByteStream(nil, ctx)
	require.NoError(t, err)
	require.Len(t, buf, 3)
}
