package dmap

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/libyal/dtfabric-go/definitions"
	"github.com/libyal/dtfabric-go/errors"
)

// asciiCodec decodes/encodes one byte per character, rejecting bytes
// outside the 7-bit range.
type asciiCodec struct{}

func (asciiCodec) TerminatorWidth() int { return 1 }

func (asciiCodec) Decode(b []byte) (string, error) {
	for _, c := range b {
		if c > 0x7f {
			return "", errors.New("byte is outside the ASCII range")
		}
	}
	return string(b), nil
}

func (asciiCodec) Encode(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0x7f {
			return nil, errors.New("rune is outside the ASCII range")
		}
		out = append(out, byte(r))
	}
	return out, nil
}

// utf8Codec passes bytes through, validating well-formedness.
type utf8Codec struct{}

func (utf8Codec) TerminatorWidth() int { return 1 }

func (utf8Codec) Decode(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", errors.New("byte sequence is not valid UTF-8")
	}
	return string(b), nil
}

func (utf8Codec) Encode(s string) ([]byte, error) {
	return []byte(s), nil
}

// utf16Codec wraps golang.org/x/text/encoding/unicode for one byte
// order.
type utf16Codec struct {
	decoder *unicode.Decoder
	encoder *unicode.Encoder
}

func newUTF16Codec(endianness unicode.Endianness) *utf16Codec {
	enc := unicode.UTF16(endianness, unicode.IgnoreBOM)
	return &utf16Codec{decoder: enc.NewDecoder(), encoder: enc.NewEncoder()}
}

func (c *utf16Codec) TerminatorWidth() int { return 2 }

func (c *utf16Codec) Decode(b []byte) (string, error) {
	out, err := c.decoder.Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (c *utf16Codec) Encode(s string) ([]byte, error) {
	return c.encoder.Bytes([]byte(s))
}

// CodecFor resolves the StringCodec for a declared StringEncoding.
func CodecFor(encoding definitions.StringEncoding) (StringCodec, error) {
	switch encoding {
	case definitions.EncodingASCII:
		return asciiCodec{}, nil
	case definitions.EncodingUTF8, "":
		return utf8Codec{}, nil
	case definitions.EncodingUTF16LE:
		return newUTF16Codec(unicode.LittleEndian), nil
	case definitions.EncodingUTF16BE:
		return newUTF16Codec(unicode.BigEndian), nil
	default:
		return nil, errors.NewFormatError("", "unsupported string encoding: "+string(encoding))
	}
}
