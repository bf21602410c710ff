package wire

import (
	"fmt"

	"github.com/oef-ai/oef-agent-go/query"
)

// AttributeSchema field numbers.
const (
	attrFieldName        = 1
	attrFieldType        = 2
	attrFieldRequired    = 3
	attrFieldDescription = 4
)

// DataModel field numbers.
const (
	dmFieldName        = 1
	dmFieldAttributes  = 2
	dmFieldDescription = 3
)

// Description field numbers.
const (
	descFieldValues    = 1
	descFieldDataModel = 2
)

// KeyValue field numbers.
const (
	kvFieldKey   = 1
	kvFieldValue = 2
)

func attributeTypeTag(t query.AttributeType) uint64 { return uint64(t) }

func EncodeAttributeSchema(a query.AttributeSchema) []byte {
	var b []byte
	b = appendString(b, attrFieldName, a.Name)
	b = appendVarint(b, attrFieldType, attributeTypeTag(a.Type))
	b = appendBool(b, attrFieldRequired, a.Required)
	if a.Description != "" {
		b = appendString(b, attrFieldDescription, a.Description)
	}
	return b
}

func DecodeAttributeSchema(data []byte) (query.AttributeSchema, error) {
	fields, err := parseFields(data)
	if err != nil {
		return query.AttributeSchema{}, err
	}
	var a query.AttributeSchema
	for _, f := range fields {
		switch f.Num {
		case attrFieldName:
			a.Name, err = fieldString(f)
		case attrFieldType:
			var v uint64
			v, err = fieldVarint(f)
			a.Type = query.AttributeType(v)
		case attrFieldRequired:
			a.Required, err = fieldBool(f)
		case attrFieldDescription:
			a.Description, err = fieldString(f)
		}
		if err != nil {
			return query.AttributeSchema{}, err
		}
	}
	return a, nil
}

func EncodeDataModel(m *query.DataModel) []byte {
	var b []byte
	b = appendString(b, dmFieldName, m.Name)
	for _, a := range m.AttributeSchemas {
		b = appendMessage(b, dmFieldAttributes, EncodeAttributeSchema(a))
	}
	if m.Description != "" {
		b = appendString(b, dmFieldDescription, m.Description)
	}
	return b
}

func DecodeDataModel(data []byte) (*query.DataModel, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	var name, description string
	var attrs []query.AttributeSchema
	for _, f := range fields {
		switch f.Num {
		case dmFieldName:
			name, err = fieldString(f)
		case dmFieldDescription:
			description, err = fieldString(f)
		case dmFieldAttributes:
			var raw []byte
			raw, err = fieldBytes(f)
			if err == nil {
				var a query.AttributeSchema
				a, err = DecodeAttributeSchema(raw)
				attrs = append(attrs, a)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return query.NewDataModel(name, attrs, description)
}

func EncodeDescription(d *query.Description) ([]byte, error) {
	var b []byte
	for name, v := range d.Values {
		val, err := EncodeValue(v)
		if err != nil {
			return nil, err
		}
		var kv []byte
		kv = appendString(kv, kvFieldKey, name)
		kv = appendMessage(kv, kvFieldValue, val)
		b = appendMessage(b, descFieldValues, kv)
	}
	b = appendMessage(b, descFieldDataModel, EncodeDataModel(d.DataModel))
	return b, nil
}

func DecodeDescription(data []byte) (*query.Description, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	values := map[string]interface{}{}
	var model *query.DataModel
	for _, f := range fields {
		switch f.Num {
		case descFieldValues:
			raw, err2 := fieldBytes(f)
			if err2 != nil {
				return nil, err2
			}
			kvFields, err2 := parseFields(raw)
			if err2 != nil {
				return nil, err2
			}
			var key string
			var val interface{}
			for _, kvf := range kvFields {
				switch kvf.Num {
				case kvFieldKey:
					key, err2 = fieldString(kvf)
				case kvFieldValue:
					var vb []byte
					vb, err2 = fieldBytes(kvf)
					if err2 == nil {
						val, err2 = DecodeValue(vb)
					}
				}
				if err2 != nil {
					return nil, err2
				}
			}
			values[key] = val
		case descFieldDataModel:
			raw, err2 := fieldBytes(f)
			if err2 != nil {
				return nil, err2
			}
			model, err2 = DecodeDataModel(raw)
			if err2 != nil {
				return nil, err2
			}
		}
	}
	if model == nil {
		return nil, fmt.Errorf("wire: description missing data model")
	}
	return query.NewDescription(values, model, model.Name)
}
