// Package wire hand-encodes the OEF envelope/message protobuf wire format
// using google.golang.org/protobuf/encoding/protowire directly, rather than
// protoc-generated types, since no protoc toolchain is available in this
// build environment. Field numbers below are this module's own consistent
// scheme (see DESIGN.md) — this encoder and decoder agree with each other,
// which is what the round-trip testable properties require.
package wire

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	var x uint64
	if v {
		x = 1
	}
	return appendVarint(b, num, x)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	return appendBytesField(b, num, []byte(s))
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	return appendBytesField(b, num, msg)
}

func appendDouble(b []byte, num protowire.Number, f float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(f))
}

// field is one decoded top-level field: its number, wire type, and the raw
// bytes needed to re-parse its value (for Bytes/Varint/Fixed64 payloads,
// this includes any length prefix, so the corresponding consumeX helper can
// be applied directly).
type field struct {
	Num protowire.Number
	Typ protowire.Type
	Raw []byte
}

func parseFields(b []byte) ([]field, error) {
	var out []field
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("wire: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		var size int
		switch typ {
		case protowire.VarintType:
			_, size = protowire.ConsumeVarint(b)
		case protowire.Fixed64Type:
			_, size = protowire.ConsumeFixed64(b)
		case protowire.Fixed32Type:
			_, size = protowire.ConsumeFixed32(b)
		case protowire.BytesType:
			_, size = protowire.ConsumeBytes(b)
		default:
			return nil, fmt.Errorf("wire: unsupported wire type %d", typ)
		}
		if size < 0 {
			return nil, fmt.Errorf("wire: malformed field %d: %w", num, protowire.ParseError(size))
		}
		out = append(out, field{Num: num, Typ: typ, Raw: b[:size]})
		b = b[size:]
	}
	return out, nil
}

func fieldVarint(f field) (uint64, error) {
	v, n := protowire.ConsumeVarint(f.Raw)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return v, nil
}

func fieldBool(f field) (bool, error) {
	v, err := fieldVarint(f)
	return v != 0, err
}

func fieldBytes(f field) ([]byte, error) {
	v, n := protowire.ConsumeBytes(f.Raw)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	return v, nil
}

func fieldString(f field) (string, error) {
	b, err := fieldBytes(f)
	return string(b), err
}

func fieldDouble(f field) (float64, error) {
	v, n := protowire.ConsumeFixed64(f.Raw)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return math.Float64frombits(v), nil
}
