package query

// Operator identifies the comparison a Relation applies, using the exact
// string tokens the OEF wire protocol carries (ProtoHelpers.py OPERATOR_*).
type Operator string

const (
	OpEq      Operator = "=="
	OpNotEq   Operator = "!="
	OpLtEq    Operator = "<="
	OpGtEq    Operator = ">="
	OpLt      Operator = "<"
	OpGt      Operator = ">"
	OpCloseTo Operator = "CLOSE_TO"
	OpIn      Operator = "IN"
	OpNotIn   Operator = "NOTIN"
)

// Relation is a constraint type: the predicate applied to an attribute's
// value, independent of which attribute it's attached to.
type Relation interface {
	operator() Operator
	// match reports whether value satisfies the relation. ok is false if
	// value's runtime type doesn't match what the relation expects.
	match(value interface{}) (matched, ok bool)
}

// Eq is satisfied when the attribute value equals Value.
type Eq struct{ Value interface{} }

func (Eq) operator() Operator { return OpEq }
func (r Eq) match(v interface{}) (bool, bool) {
	return comparablesEqual(v, r.Value), typesComparable(v, r.Value)
}

// NotEq is satisfied when the attribute value differs from Value.
type NotEq struct{ Value interface{} }

func (NotEq) operator() Operator { return OpNotEq }
func (r NotEq) match(v interface{}) (bool, bool) {
	return !comparablesEqual(v, r.Value), typesComparable(v, r.Value)
}

// Lt, LtEq, Gt, GtEq are ordering relations, valid for ordered scalar types
// (numbers and strings).
type Lt struct{ Value interface{} }
type LtEq struct{ Value interface{} }
type Gt struct{ Value interface{} }
type GtEq struct{ Value interface{} }

func (Lt) operator() Operator   { return OpLt }
func (LtEq) operator() Operator { return OpLtEq }
func (Gt) operator() Operator   { return OpGt }
func (GtEq) operator() Operator { return OpGtEq }

func (r Lt) match(v interface{}) (bool, bool) {
	c, ok := compareOrdered(v, r.Value)
	return ok && c < 0, ok
}
func (r LtEq) match(v interface{}) (bool, bool) {
	c, ok := compareOrdered(v, r.Value)
	return ok && c <= 0, ok
}
func (r Gt) match(v interface{}) (bool, bool) {
	c, ok := compareOrdered(v, r.Value)
	return ok && c > 0, ok
}
func (r GtEq) match(v interface{}) (bool, bool) {
	c, ok := compareOrdered(v, r.Value)
	return ok && c >= 0, ok
}

// Range is satisfied when Low <= value <= High (inclusive both ends).
type Range struct{ Low, High interface{} }

func (Range) operator() Operator { return OpGtEq } // wire expansion handled separately (see ToWire)
func (r Range) match(v interface{}) (bool, bool) {
	cl, okl := compareOrdered(v, r.Low)
	ch, okh := compareOrdered(v, r.High)
	return okl && okh && cl >= 0 && ch <= 0, okl && okh
}

// In is satisfied when value is a member of Values.
type In struct{ Values []interface{} }

func (In) operator() Operator { return OpIn }
func (r In) match(v interface{}) (bool, bool) {
	for _, candidate := range r.Values {
		if typesComparable(v, candidate) && comparablesEqual(v, candidate) {
			return true, true
		}
	}
	return false, len(r.Values) == 0 || typesComparable(v, r.Values[0])
}

// NotIn is satisfied when value is absent from Values.
type NotIn struct{ Values []interface{} }

func (NotIn) operator() Operator { return OpNotIn }
func (r NotIn) match(v interface{}) (bool, bool) {
	matched, ok := In{Values: r.Values}.match(v)
	return !matched, ok
}

// Distance is satisfied when the haversine distance between the attribute's
// location value and Center is within RadiusKm.
type Distance struct {
	Center   interface{} // geo.Location
	RadiusKm float64
}

func (Distance) operator() Operator { return OpCloseTo }
func (r Distance) match(v interface{}) (bool, bool) {
	return distanceMatch(v, r.Center, r.RadiusKm)
}
