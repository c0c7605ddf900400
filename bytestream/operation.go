// Package bytestream implements the Byte Operation (§4.A): a packed
// encoder/decoder bound to a single format descriptor (byte order
// plus a concatenation of primitive type codes). It is the one place
// "packed interpretation" happens; higher-level Maps (package dmap)
// delegate raw bit-pushing here.
package bytestream

import (
	"encoding/binary"
	"math"

	"github.com/libyal/dtfabric-go/errors"
)

// Order is the byte-order prefix of a format descriptor.
type Order byte

const (
	OrderNative       Order = '='
	OrderLittleEndian Order = '<'
	OrderBigEndian    Order = '>'
)

// Code is a per-primitive format code, following Python struct's
// naming: signed/unsigned 8/16/32/64-bit integers, and 4-/8-byte
// floats.
type Code byte

const (
	CodeInt8    Code = 'b'
	CodeUint8   Code = 'B'
	CodeInt16   Code = 'h'
	CodeUint16  Code = 'H'
	CodeInt32   Code = 'i'
	CodeUint32  Code = 'I'
	CodeInt64   Code = 'q'
	CodeUint64  Code = 'Q'
	CodeFloat32 Code = 'f'
	CodeFloat64 Code = 'd'
)

func codeSize(c Code) (int, bool) {
	switch c {
	case CodeInt8, CodeUint8:
		return 1, true
	case CodeInt16, CodeUint16:
		return 2, true
	case CodeInt32, CodeUint32, CodeFloat32:
		return 4, true
	case CodeInt64, CodeUint64, CodeFloat64:
		return 8, true
	default:
		return 0, false
	}
}

// Operation is a packed encoder/decoder for a fixed sequence of
// primitive codes in one byte order. Construction fails with
// FormatError on an invalid descriptor; after that, Operation is
// immutable and safe for concurrent use.
type Operation struct {
	order Order
	codes []Code
	size  int
	bo    binary.ByteOrder
}

// New constructs an Operation from a byte-order prefix and a sequence
// of per-primitive codes.
func New(order Order, codes []Code) (*Operation, error) {
	switch order {
	case OrderNative, OrderLittleEndian, OrderBigEndian:
	default:
		return nil, errors.NewFormatError("", "invalid byte order prefix")
	}

	size := 0
	for _, c := range codes {
		n, ok := codeSize(c)
		if !ok {
			return nil, errors.NewFormatError("", "invalid format code")
		}
		size += n
	}

	var bo binary.ByteOrder
	switch order {
	case OrderLittleEndian:
		bo = binary.LittleEndian
	case OrderBigEndian:
		bo = binary.BigEndian
	default:
		bo = binary.NativeEndian
	}

	return &Operation{order: order, codes: codes, size: size, bo: bo}, nil
}

// Size returns the total number of bytes this Operation reads or
// writes in one call.
func (op *Operation) Size() int { return op.size }

// ReadFrom decodes op.codes, in order, starting at the beginning of
// buf. It fails with MappingError if buf is shorter than op.Size().
func (op *Operation) ReadFrom(buf []byte) ([]any, error) {
	if len(buf) < op.size {
		return nil, errors.NewMappingError("", 0, "buffer shorter than the packed format requires")
	}

	values := make([]any, len(op.codes))
	offset := 0
	for i, c := range op.codes {
		n, _ := codeSize(c)
		chunk := buf[offset : offset+n]
		switch c {
		case CodeInt8:
			values[i] = int8(chunk[0])
		case CodeUint8:
			values[i] = chunk[0]
		case CodeInt16:
			values[i] = int16(op.bo.Uint16(chunk))
		case CodeUint16:
			values[i] = op.bo.Uint16(chunk)
		case CodeInt32:
			values[i] = int32(op.bo.Uint32(chunk))
		case CodeUint32:
			values[i] = op.bo.Uint32(chunk)
		case CodeInt64:
			values[i] = int64(op.bo.Uint64(chunk))
		case CodeUint64:
			values[i] = op.bo.Uint64(chunk)
		case CodeFloat32:
			values[i] = math.Float32frombits(op.bo.Uint32(chunk))
		case CodeFloat64:
			values[i] = math.Float64frombits(op.bo.Uint64(chunk))
		}
		offset += n
	}
	return values, nil
}

// WriteTo encodes values, in order, according to op.codes. It fails
// with EncodeError on wrong arity or a value of the wrong Go type.
func (op *Operation) WriteTo(values []any) ([]byte, error) {
	if len(values) != len(op.codes) {
		return nil, errors.NewEncodeError("", "value count does not match the packed format's arity")
	}

	buf := make([]byte, op.size)
	offset := 0
	for i, c := range op.codes {
		n, _ := codeSize(c)
		chunk := buf[offset : offset+n]
		var err error
		switch c {
		case CodeInt8:
			var v int8
			v, err = asInt8(values[i])
			chunk[0] = byte(v)
		case CodeUint8:
			var v uint8
			v, err = asUint8(values[i])
			chunk[0] = v
		case CodeInt16:
			var v int16
			v, err = asInt16(values[i])
			op.bo.PutUint16(chunk, uint16(v))
		case CodeUint16:
			var v uint16
			v, err = asUint16(values[i])
			op.bo.PutUint16(chunk, v)
		case CodeInt32:
			var v int32
			v, err = asInt32(values[i])
			op.bo.PutUint32(chunk, uint32(v))
		case CodeUint32:
			var v uint32
			v, err = asUint32(values[i])
			op.bo.PutUint32(chunk, v)
		case CodeInt64:
			var v int64
			v, err = asInt64Value(values[i])
			op.bo.PutUint64(chunk, uint64(v))
		case CodeUint64:
			var v uint64
			v, err = asUint64(values[i])
			op.bo.PutUint64(chunk, v)
		case CodeFloat32:
			var v float32
			v, err = asFloat32(values[i])
			op.bo.PutUint32(chunk, math.Float32bits(v))
		case CodeFloat64:
			var v float64
			v, err = asFloat64(values[i])
			op.bo.PutUint64(chunk, math.Float64bits(v))
		}
		if err != nil {
			return nil, errors.WrapEncodeError("", "value out of range for packed format", err)
		}
		offset += n
	}
	return buf, nil
}
