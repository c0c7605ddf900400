package dmap

import (
	"github.com/google/uuid"

	"github.com/libyal/dtfabric-go/definitions"
	"github.com/libyal/dtfabric-go/errors"
	"github.com/libyal/dtfabric-go/runtime"
)

// UUIDMap decodes a 16-byte UUID (§4.F). When little-endian, the
// first three groups are byte-swapped per the Microsoft GUID
// convention; when big-endian, bytes are consumed in document order.
// The map does the swapping itself and hands the resulting RFC 4122
// ordered bytes to github.com/google/uuid's FromBytes.
type UUIDMap struct {
	def *definitions.UUIDDefinition
}

func NewUUIDMap(def *definitions.UUIDDefinition) *UUIDMap {
	return &UUIDMap{def: def}
}

func (m *UUIDMap) Definition() definitions.Definition { return m.def }
func (m *UUIDMap) ByteSize() (int, bool)              { return 16, true }
func (m *UUIDMap) GetSizeHint(*runtime.Context) int64 { return 16 }

func (m *UUIDMap) MapByteStream(buffer []byte, byteOffset int64, ctx *runtime.Context) (any, error) {
	ctx = ensureContext(ctx)
	ctx.RequestedSize = 16
	available := int64(len(buffer)) - byteOffset
	if available < 16 {
		return nil, errors.NewByteStreamTooSmall(m.def.Name(), available, 16)
	}

	raw := buffer[byteOffset : byteOffset+16]
	ordered := make([]byte, 16)
	if m.def.ByteOrder() == definitions.ByteOrderLittleEndian {
		// Swap the first three groups (4+2+2 bytes); the last 8 bytes
		// (clock-seq + node) are always stored in document order.
		ordered[0], ordered[1], ordered[2], ordered[3] = raw[3], raw[2], raw[1], raw[0]
		ordered[4], ordered[5] = raw[5], raw[4]
		ordered[6], ordered[7] = raw[7], raw[6]
		copy(ordered[8:], raw[8:16])
	} else {
		copy(ordered, raw)
	}

	id, err := uuid.FromBytes(ordered)
	if err != nil {
		return nil, errors.WrapMappingError(m.def.Name(), byteOffset, "unable to decode UUID", err)
	}
	ctx.ByteSize = 16
	return id, nil
}

func (m *UUIDMap) FoldByteStream(value any, ctx *runtime.Context) ([]byte, error) {
	id, ok := value.(uuid.UUID)
	if !ok {
		return nil, errors.NewEncodeError(m.def.Name(), "value is not a uuid.UUID")
	}
	ordered := id[:]
	out := make([]byte, 16)
	if m.def.ByteOrder() == definitions.ByteOrderLittleEndian {
		out[0], out[1], out[2], out[3] = ordered[3], ordered[2], ordered[1], ordered[0]
		out[4], out[5] = ordered[5], ordered[4]
		out[6], out[7] = ordered[7], ordered[6]
		copy(out[8:], ordered[8:16])
	} else {
		copy(out, ordered)
	}
	return out, nil
}
