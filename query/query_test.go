package query

import (
	"testing"

	"github.com/oef-ai/oef-agent-go/geo"
)

func TestScenarioD(t *testing.T) {
	q, err := NewQuery([]Expr{
		And{Children: []Expr{
			Constraint{Attribute: "title", Relation: Range{Low: "I", High: "J"}},
			Constraint{Attribute: "title", Relation: NotEq{Value: "It"}},
		}},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	desc1, err := NewDescription(map[string]interface{}{"title": "I, Robot"}, nil, "book")
	if err != nil {
		t.Fatalf("unexpected description error: %v", err)
	}
	if !q.Check(desc1) {
		t.Fatalf("expected query to match %q", "I, Robot")
	}

	desc2, err := NewDescription(map[string]interface{}{"title": "It"}, nil, "book")
	if err != nil {
		t.Fatalf("unexpected description error: %v", err)
	}
	if q.Check(desc2) {
		t.Fatalf("expected query to reject %q", "It")
	}
}

func TestQueryWireRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		expr Expr
		desc map[string]interface{}
	}{
		{"eq-match", Constraint{"color", Eq{Value: "red"}}, map[string]interface{}{"color": "red"}},
		{"eq-mismatch", Constraint{"color", Eq{Value: "red"}}, map[string]interface{}{"color": "blue"}},
		{"in", Constraint{"n", In{Values: []interface{}{1, 2, 3}}}, map[string]interface{}{"n": 2}},
		{"notin", Constraint{"n", NotIn{Values: []interface{}{1, 2, 3}}}, map[string]interface{}{"n": 9}},
		{"range", Constraint{"n", Range{Low: 1, High: 10}}, map[string]interface{}{"n": 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := NewQuery([]Expr{tc.expr}, nil)
			if err != nil {
				t.Fatalf("build query: %v", err)
			}
			desc, err := NewDescription(tc.desc, nil, "m")
			if err != nil {
				t.Fatalf("build description: %v", err)
			}
			want := q.Check(desc)
			got := q.ToWire().Check(desc.Values)
			if want != got {
				t.Fatalf("query.Check()=%v, eval(ToWire()).Check()=%v", want, got)
			}
		})
	}
}

func TestDistanceWireExpansion(t *testing.T) {
	center := geo.Location{Latitude: 1, Longitude: 2}
	q, err := NewQuery([]Expr{Constraint{"pos", Distance{Center: center, RadiusKm: 10}}}, nil)
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	root := q.ToWire()
	if len(root.Subnodes) != 1 {
		t.Fatalf("expected a single subnode branch for the distance constraint, got %d", len(root.Subnodes))
	}
	branch := root.Subnodes[0]
	if branch.Combiner != CombinerAll || len(branch.Leaves) != 2 {
		t.Fatalf("expected Branch(ALL) over two leaves, got %+v", branch)
	}
	names := map[string]bool{branch.Leaves[0].TargetFieldName: true, branch.Leaves[1].TargetFieldName: true}
	if !names["pos.location"] || !names["pos.radius"] {
		t.Fatalf("unexpected leaf names: %+v", names)
	}
}

func TestValidationRejectsSingleChildAndOr(t *testing.T) {
	if _, err := NewQuery([]Expr{And{Children: []Expr{Constraint{"a", Eq{Value: 1}}}}}, nil); err == nil {
		t.Fatalf("expected single-child And to fail validation")
	}
	if _, err := NewQuery([]Expr{Or{Children: []Expr{Constraint{"a", Eq{Value: 1}}}}}, nil); err == nil {
		t.Fatalf("expected single-child Or to fail validation")
	}
	if _, err := NewQuery(nil, nil); err == nil {
		t.Fatalf("expected empty query to fail validation")
	}
}

func TestValidationRejectsUnknownAttribute(t *testing.T) {
	model, err := NewDataModel("m", []AttributeSchema{{Name: "a", Type: TypeInt, Required: true}}, "")
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	_, err = NewQuery([]Expr{Constraint{"b", Eq{Value: 1}}}, model)
	if err == nil {
		t.Fatalf("expected validation error for attribute absent from model")
	}
}
