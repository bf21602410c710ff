// Package query implements the constraint expression tree, the typed data
// model it validates against, and the in-memory evaluator, plus conversion
// to and from the wire tree the OEF node consumes.
//
// Grounded on oef/src/python/schema.py (DataModel, AttributeSchema,
// Description) and Query.py / QueryBuildingBlocks.py (the expression tree
// and its wire form).
package query

import (
	"errors"
	"fmt"
	"sort"

	"github.com/oef-ai/oef-agent-go/geo"
)

// ErrValidation is returned when a query, data model, or description
// violates one of the construction-time invariants.
var ErrValidation = errors.New("query: validation failed")

// AttributeType enumerates the scalar types a DataModel attribute may hold.
type AttributeType int

const (
	TypeUnknown AttributeType = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
	TypeLocation
)

func (t AttributeType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeLocation:
		return "location"
	default:
		return "unknown"
	}
}

// AttributeSchema describes one named, typed attribute of a DataModel.
type AttributeSchema struct {
	Name        string
	Type        AttributeType
	Required    bool
	Description string
}

// Equal compares name, type and required-ness only (description is metadata).
func (a AttributeSchema) Equal(b AttributeSchema) bool {
	return a.Name == b.Name && a.Type == b.Type && a.Required == b.Required
}

// DataModel is a named, ordered set of attribute schemas.
type DataModel struct {
	Name             string
	AttributeSchemas []AttributeSchema
	Description      string
	attributesByName map[string]AttributeSchema
}

// NewDataModel builds a DataModel, sorting its attributes ascending by name
// (matching schema.py's DataModel constructor) and rejecting duplicate
// attribute names.
func NewDataModel(name string, attrs []AttributeSchema, description string) (*DataModel, error) {
	sorted := append([]AttributeSchema(nil), attrs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	byName := make(map[string]AttributeSchema, len(sorted))
	for _, a := range sorted {
		if _, dup := byName[a.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate attribute name %q in data model %q", ErrValidation, a.Name, name)
		}
		byName[a.Name] = a
	}
	return &DataModel{Name: name, AttributeSchemas: sorted, Description: description, attributesByName: byName}, nil
}

// Attribute looks up an attribute schema by name.
func (d *DataModel) Attribute(name string) (AttributeSchema, bool) {
	a, ok := d.attributesByName[name]
	return a, ok
}

// Equal compares name and attribute schemas (order-sensitive, as they are
// always kept sorted).
func (d *DataModel) Equal(o *DataModel) bool {
	if d.Name != o.Name || len(d.AttributeSchemas) != len(o.AttributeSchemas) {
		return false
	}
	for i := range d.AttributeSchemas {
		if !d.AttributeSchemas[i].Equal(o.AttributeSchemas[i]) {
			return false
		}
	}
	return true
}

// goTypeToAttributeType infers an AttributeType from a Go value, used when
// synthesizing a DataModel for a Description that wasn't given one.
func goTypeToAttributeType(v interface{}) (AttributeType, bool) {
	switch v.(type) {
	case bool:
		return TypeBool, true
	case int, int32, int64:
		return TypeInt, true
	case float32, float64:
		return TypeFloat, true
	case string:
		return TypeString, true
	case geo.Location:
		return TypeLocation, true
	default:
		return TypeUnknown, false
	}
}

// GenerateSchema synthesizes a DataModel from a set of attribute values,
// marking every attribute required — mirroring schema.py's generate_schema.
func GenerateSchema(modelName string, values map[string]interface{}) (*DataModel, error) {
	attrs := make([]AttributeSchema, 0, len(values))
	for name, v := range values {
		t, ok := goTypeToAttributeType(v)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported attribute value type for %q: %T", ErrValidation, name, v)
		}
		attrs = append(attrs, AttributeSchema{Name: name, Type: t, Required: true})
	}
	return NewDataModel(modelName, attrs, "")
}

// Description is a set of named attribute values checked for consistency
// against a DataModel — synthesizing one if none is supplied.
type Description struct {
	Values    map[string]interface{}
	DataModel *DataModel
}

// NewDescription builds and validates a Description. If model is nil, one is
// synthesized from values (every observed attribute required).
func NewDescription(values map[string]interface{}, model *DataModel, modelName string) (*Description, error) {
	cloned := make(map[string]interface{}, len(values))
	for k, v := range values {
		cloned[k] = v
	}

	if model == nil {
		var err error
		model, err = GenerateSchema(modelName, cloned)
		if err != nil {
			return nil, err
		}
	}

	d := &Description{Values: cloned, DataModel: model}
	if err := d.checkConsistency(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Description) checkConsistency() error {
	for _, attr := range d.DataModel.AttributeSchemas {
		if attr.Required {
			if _, ok := d.Values[attr.Name]; !ok {
				return fmt.Errorf("%w: missing required attribute %q", ErrValidation, attr.Name)
			}
		}
	}
	for name, v := range d.Values {
		attr, ok := d.DataModel.Attribute(name)
		if !ok {
			return fmt.Errorf("%w: attribute %q not declared in data model", ErrValidation, name)
		}
		t, ok := goTypeToAttributeType(v)
		if !ok || t != attr.Type {
			return fmt.Errorf("%w: attribute %q has incorrect type: %T", ErrValidation, name, v)
		}
	}
	return nil
}
