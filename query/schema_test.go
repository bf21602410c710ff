package query

import "testing"

func TestDataModelSortsAttributesByName(t *testing.T) {
	m, err := NewDataModel("m", []AttributeSchema{
		{Name: "zeta", Type: TypeString, Required: true},
		{Name: "alpha", Type: TypeInt, Required: true},
	}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.AttributeSchemas[0].Name != "alpha" || m.AttributeSchemas[1].Name != "zeta" {
		t.Fatalf("attributes not sorted: %+v", m.AttributeSchemas)
	}
}

func TestDataModelRejectsDuplicateAttributes(t *testing.T) {
	_, err := NewDataModel("m", []AttributeSchema{
		{Name: "a", Type: TypeInt, Required: true},
		{Name: "a", Type: TypeString, Required: false},
	}, "")
	if err == nil {
		t.Fatalf("expected error for duplicate attribute name")
	}
}

func TestDescriptionMissingRequiredAttribute(t *testing.T) {
	model, err := NewDataModel("m", []AttributeSchema{{Name: "a", Type: TypeInt, Required: true}}, "")
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	if _, err := NewDescription(map[string]interface{}{}, model, ""); err == nil {
		t.Fatalf("expected error for missing required attribute")
	}
}

func TestDescriptionExtraAttribute(t *testing.T) {
	model, err := NewDataModel("m", []AttributeSchema{{Name: "a", Type: TypeInt, Required: true}}, "")
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	_, err = NewDescription(map[string]interface{}{"a": 1, "b": 2}, model, "")
	if err == nil {
		t.Fatalf("expected error for attribute absent from schema")
	}
}

func TestDescriptionWrongType(t *testing.T) {
	model, err := NewDataModel("m", []AttributeSchema{{Name: "a", Type: TypeInt, Required: true}}, "")
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	_, err = NewDescription(map[string]interface{}{"a": "not an int"}, model, "")
	if err == nil {
		t.Fatalf("expected error for mistyped attribute")
	}
}

func TestGenerateSchemaMarksEveryAttributeRequired(t *testing.T) {
	model, err := GenerateSchema("m", map[string]interface{}{"a": 1, "b": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, a := range model.AttributeSchemas {
		if !a.Required {
			t.Fatalf("synthesized attribute %q should be required", a.Name)
		}
	}
}
