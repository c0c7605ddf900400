package bytestream_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libyal/dtfabric-go/bytestream"
)

func TestReadFromLittleEndian(t *testing.T) {
	op, err := bytestream.New(bytestream.OrderLittleEndian, []bytestream.Code{bytestream.CodeUint16, bytestream.CodeUint8})
	require.NoError(t, err)
	require.Equal(t, 3, op.Size())

	values, err := op.ReadFrom([]byte{0x01, 0x02, 0xFF})
	require.NoError(t, err)
	require.Equal(t, uint16(0x0201), values[0])
	require.Equal(t, byte(0xFF), values[1])
}

func TestReadFromBigEndian(t *testing.T) {
	op, err := bytestream.New(bytestream.OrderBigEndian, []bytestream.Code{bytestream.CodeUint32})
	require.NoError(t, err)

	values, err := op.ReadFrom([]byte{0x00, 0x00, 0x01, 0x00})
	require.NoError(t, err)
	require.Equal(t, uint32(256), values[0])
}

func TestReadFromRejectsShortBuffer(t *testing.T) {
	op, err := bytestream.New(bytestream.OrderLittleEndian, []bytestream.Code{bytestream.CodeUint32})
	require.NoError(t, err)

	_, err = op.ReadFrom([]byte{0x01, 0x02})
	require.Error(t, err)
}

func TestWriteToRoundTrips(t *testing.T) {
	op, err := bytestream.New(bytestream.OrderBigEndian, []bytestream.Code{bytestream.CodeInt16, bytestream.CodeFloat32})
	require.NoError(t, err)

	buf, err := op.WriteTo([]any{int16(-5), float32(1.5)})
	require.NoError(t, err)

	values, err := op.ReadFrom(buf)
	require.NoError(t, err)
	require.Equal(t, int16(-5), values[0])
	require.Equal(t, float32(1.5), values[1])
}

func TestWriteToRejectsOutOfRangeValue(t *testing.T) {
	op, err := bytestream.New(bytestream.OrderLittleEndian, []bytestream.Code{bytestream.CodeUint8})
	require.NoError(t, err)

	_, err = op.WriteTo([]any{int64(300)})
	require.Error(t, err)
}

func TestWriteToRejectsWrongArity(t *testing.T) {
	op, err := bytestream.New(bytestream.OrderLittleEndian, []bytestream.Code{bytestream.CodeUint8, bytestream.CodeUint8})
	require.NoError(t, err)

	_, err = op.WriteTo([]any{byte(1)})
	require.Error(t, err)
}

func TestNewRejectsInvalidCode(t *testing.T) {
	_, err := bytestream.New(bytestream.OrderLittleEndian, []bytestream.Code{'z'})
	require.Error(t, err)
}
