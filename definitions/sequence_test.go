package definitions_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libyal/dtfabric-go/definitions"
)

func TestElementSequenceModePrecedence(t *testing.T) {
	element := u8("byte")

	byTerminator := definitions.NewStream(definitions.NewBase("a", nil, "", nil), element)
	byTerminator.ElementsTerminator = byte(0)
	require.Equal(t, definitions.LengthModeTerminator, byTerminator.Mode())

	byCount := definitions.NewSequence(definitions.NewBase("b", nil, "", nil), element)
	byCount.NumberOfElements = 4
	require.Equal(t, definitions.LengthModeElementCount, byCount.Mode())

	bySize := definitions.NewStream(definitions.NewBase("c", nil, "", nil), element)
	bySize.ElementsDataSize = 16
	require.Equal(t, definitions.LengthModeDataSize, bySize.Mode())

	// Data size takes precedence over count when both are literally set.
	both := definitions.NewSequence(definitions.NewBase("d", nil, "", nil), element)
	both.ElementsDataSize = 16
	both.NumberOfElements = 4
	require.Equal(t, definitions.LengthModeDataSize, both.Mode())
}

func TestElementSequenceByteSizeFromCount(t *testing.T) {
	element := u32("word")
	seq := definitions.NewSequence(definitions.NewBase("words", nil, "", nil), element)
	seq.NumberOfElements = 3

	size, ok := seq.ByteSize()
	require.True(t, ok)
	require.Equal(t, 12, size)
}

func TestElementSequenceByteSizeUnknownWithoutLength(t *testing.T) {
	element := u8("byte")
	seq := definitions.NewStream(definitions.NewBase("tail", nil, "", nil), element)

	_, ok := seq.ByteSize()
	require.False(t, ok)
}

func TestStringDefaultsToUTF8(t *testing.T) {
	element := u8("byte")
	s := definitions.NewString(definitions.NewBase("name", nil, "", nil), element, "")
	require.Equal(t, definitions.EncodingUTF8, s.Encoding)
}

func TestNewElementSequencePropagatesElementByteOrder(t *testing.T) {
	base := definitions.NewBase("word", nil, "", nil)
	element := definitions.NewInteger(base, 4, definitions.IntegerFormatUnsigned)
	element.SetByteOrder(definitions.ByteOrderBigEndian)

	seq := definitions.NewSequence(definitions.NewBase("words", nil, "", nil), element)
	require.Equal(t, definitions.ByteOrderBigEndian, seq.ByteOrder())
}
