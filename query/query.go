package query

import "fmt"

// Expr is a node in the constraint expression tree: And, Or, Not, or a leaf
// Constraint. Validation rules are enforced at construction, matching the
// source's "throw on construction" behavior (spec §4.6).
type Expr interface {
	// validate checks this node's own shape invariants (child counts) and
	// recurses into children. It does not know about any DataModel.
	validate() error
	// check evaluates this node against a set of attribute values.
	check(values map[string]interface{}) bool
	// walkConstraints calls fn for every Constraint leaf in the subtree.
	walkConstraints(fn func(Constraint))
	// toWireNode converts this node into its wire Branch/Leaf form.
	toWireNode() wireNode
}

// And is satisfied when every child is satisfied. Requires at least two
// children.
type And struct{ Children []Expr }

func (a And) validate() error {
	if len(a.Children) < 2 {
		return fmt.Errorf("%w: And requires at least two children, got %d", ErrValidation, len(a.Children))
	}
	for _, c := range a.Children {
		if err := c.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (a And) check(values map[string]interface{}) bool {
	for _, c := range a.Children {
		if !c.check(values) {
			return false
		}
	}
	return true
}

func (a And) walkConstraints(fn func(Constraint)) {
	for _, c := range a.Children {
		c.walkConstraints(fn)
	}
}

// Or is satisfied when any child is satisfied. Requires at least two
// children.
type Or struct{ Children []Expr }

func (o Or) validate() error {
	if len(o.Children) < 2 {
		return fmt.Errorf("%w: Or requires at least two children, got %d", ErrValidation, len(o.Children))
	}
	for _, c := range o.Children {
		if err := c.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (o Or) check(values map[string]interface{}) bool {
	for _, c := range o.Children {
		if c.check(values) {
			return true
		}
	}
	return false
}

func (o Or) walkConstraints(fn func(Constraint)) {
	for _, c := range o.Children {
		c.walkConstraints(fn)
	}
}

// Not is satisfied when its child is not.
type Not struct{ Child Expr }

func (n Not) validate() error                          { return n.Child.validate() }
func (n Not) check(values map[string]interface{}) bool { return !n.Child.check(values) }
func (n Not) walkConstraints(fn func(Constraint))      { n.Child.walkConstraints(fn) }

// Constraint is a leaf: a named attribute paired with the relation it must
// satisfy.
type Constraint struct {
	Attribute string
	Relation  Relation
}

func (c Constraint) validate() error { return nil }

func (c Constraint) check(values map[string]interface{}) bool {
	v, ok := values[c.Attribute]
	if !ok {
		return false
	}
	matched, ok := c.Relation.match(v)
	if !ok {
		return false
	}
	return matched
}

func (c Constraint) walkConstraints(fn func(Constraint)) { fn(c) }

// Query is the top-level object sent to the OEF node: a non-empty list of
// constraint expressions (implicitly ANDed), optionally cross-checked
// against a DataModel.
type Query struct {
	Constraints []Expr
	Model       *DataModel
}

// NewQuery validates and constructs a Query. At least one top-level
// constraint is required; if model is non-nil, every Constraint leaf in the
// tree must reference an attribute declared on model, with a matching type
// (an undetermined relation type is permitted through).
func NewQuery(constraints []Expr, model *DataModel) (*Query, error) {
	if len(constraints) == 0 {
		return nil, fmt.Errorf("%w: query requires at least one top-level constraint", ErrValidation)
	}
	for _, c := range constraints {
		if err := c.validate(); err != nil {
			return nil, err
		}
	}
	if model != nil {
		var walkErr error
		for _, c := range constraints {
			c.walkConstraints(func(leaf Constraint) {
				if walkErr != nil {
					return
				}
				attr, ok := model.Attribute(leaf.Attribute)
				if !ok {
					walkErr = fmt.Errorf("%w: constraint references attribute %q not present in data model %q",
						ErrValidation, leaf.Attribute, model.Name)
					return
				}
				if t, known := declaredType(leaf.Relation); known && t != attr.Type {
					walkErr = fmt.Errorf("%w: attribute %q declared as %s but constraint expects %s",
						ErrValidation, leaf.Attribute, attr.Type, t)
				}
			})
			if walkErr != nil {
				return nil, walkErr
			}
		}
	}
	return &Query{Constraints: constraints, Model: model}, nil
}

// Check evaluates the query against a description's values: every top-level
// constraint must hold.
func (q *Query) Check(desc *Description) bool {
	for _, c := range q.Constraints {
		if !c.check(desc.Values) {
			return false
		}
	}
	return true
}
