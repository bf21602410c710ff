package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/oef-ai/oef-agent-go/geo"
)

// Value field numbers (self-consistent scheme, see package doc).
const (
	valFieldString = 1
	valFieldInt    = 2
	valFieldDouble = 3
	valFieldBool   = 4
	valFieldLoc    = 5

	locFieldLat = 1
	locFieldLon = 2
)

// EncodeValue encodes a Go scalar (bool, int64-compatible, float64, string,
// geo.Location) as a typed value submessage.
func EncodeValue(v interface{}) ([]byte, error) {
	var b []byte
	switch x := v.(type) {
	case string:
		b = appendString(b, valFieldString, x)
	case bool:
		b = appendBool(b, valFieldBool, x)
	case int:
		b = appendVarint(b, valFieldInt, protowire.EncodeZigZag(int64(x)))
	case int32:
		b = appendVarint(b, valFieldInt, protowire.EncodeZigZag(int64(x)))
	case int64:
		b = appendVarint(b, valFieldInt, protowire.EncodeZigZag(x))
	case float64:
		b = appendDouble(b, valFieldDouble, x)
	case float32:
		b = appendDouble(b, valFieldDouble, float64(x))
	case geo.Location:
		var loc []byte
		loc = appendDouble(loc, locFieldLat, x.Latitude)
		loc = appendDouble(loc, locFieldLon, x.Longitude)
		b = appendMessage(b, valFieldLoc, loc)
	default:
		return nil, fmt.Errorf("wire: unsupported value type %T", v)
	}
	return b, nil
}

// DecodeValue decodes a typed value submessage back into a Go scalar.
func DecodeValue(data []byte) (interface{}, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	for _, f := range fields {
		switch f.Num {
		case valFieldString:
			return fieldString(f)
		case valFieldInt:
			u, err := fieldVarint(f)
			if err != nil {
				return nil, err
			}
			return protowire.DecodeZigZag(u), nil
		case valFieldDouble:
			return fieldDouble(f)
		case valFieldBool:
			return fieldBool(f)
		case valFieldLoc:
			raw, err := fieldBytes(f)
			if err != nil {
				return nil, err
			}
			return decodeLocation(raw)
		}
	}
	return nil, fmt.Errorf("wire: empty value message")
}

func decodeLocation(data []byte) (geo.Location, error) {
	fields, err := parseFields(data)
	if err != nil {
		return geo.Location{}, err
	}
	var loc geo.Location
	for _, f := range fields {
		switch f.Num {
		case locFieldLat:
			loc.Latitude, err = fieldDouble(f)
		case locFieldLon:
			loc.Longitude, err = fieldDouble(f)
		}
		if err != nil {
			return geo.Location{}, err
		}
	}
	return loc, nil
}
