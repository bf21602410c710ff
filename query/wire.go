package query

import "strings"

// Combiner is the branch-level aggregation rule of a wire Branch node.
type Combiner string

const (
	CombinerAll  Combiner = "all"
	CombinerAny  Combiner = "any"
	CombinerNone Combiner = "none"
)

// DapFieldCandidate is the per-DAP routing metadata a Leaf may carry for a
// given directory-plugin name: which wire field and table it maps onto.
type DapFieldCandidate struct {
	TargetFieldType string
	TargetTableName string
}

// wireNode is the common capability of Branch and Leaf: DAP bookkeeping and
// in-memory re-evaluation straight off the wire tree (testable property 7).
type wireNode interface {
	dapNames() map[string]struct{}
	dapFieldCandidates() map[string]DapFieldCandidate
	Check(values map[string]interface{}) bool
}

// Leaf is a wire-tree leaf: one constraint against one named field.
type Leaf struct {
	Name               string
	Operator           Operator
	QueryFieldType     string
	QueryFieldValue    interface{}
	TargetFieldName    string
	TargetFieldType    string
	TargetTableName    string
	DapNames           map[string]struct{}
	DapFieldCandidates map[string]DapFieldCandidate
}

func (l *Leaf) dapNames() map[string]struct{}                    { return l.DapNames }
func (l *Leaf) dapFieldCandidates() map[string]DapFieldCandidate { return l.DapFieldCandidates }

// Branch is a wire-tree internal node combining leaves and/or subnodes under
// a Combiner.
type Branch struct {
	Name               string
	Combiner           Combiner
	Leaves             []*Leaf
	Subnodes           []*Branch
	DapNames           map[string]struct{}
	DapFieldCandidates map[string]DapFieldCandidate
}

func (b *Branch) dapNames() map[string]struct{}                    { return b.DapNames }
func (b *Branch) dapFieldCandidates() map[string]DapFieldCandidate { return b.DapFieldCandidates }

// add routes a child wire node into Subnodes (Branch) or Leaves (Leaf),
// mirroring QueryBuildingBlocks.py's Branch.Add.
func (b *Branch) add(n wireNode) {
	switch v := n.(type) {
	case *Branch:
		b.Subnodes = append(b.Subnodes, v)
	case *Leaf:
		b.Leaves = append(b.Leaves, v)
	}
}

// mergeDaps implements QueryBuildingBlocks.py's Branch.MergeDaps exactly:
// the branch's DapNames is the intersection-if-all-children-agree of its
// children's DapNames sets; any disagreement clears it to nil (no
// candidates computed in that case).
func (b *Branch) mergeDaps() {
	var childSets []map[string]struct{}
	for _, s := range b.Subnodes {
		childSets = append(childSets, s.DapNames)
	}
	for _, l := range b.Leaves {
		childSets = append(childSets, l.DapNames)
	}
	if len(childSets) == 0 {
		b.DapNames = map[string]struct{}{}
		return
	}
	merged := cloneSet(childSets[0])
	for _, s := range childSets[1:] {
		if !setsEqual(s, merged) {
			b.DapNames = nil
			return
		}
	}
	b.DapNames = merged

	candidates := map[string]DapFieldCandidate{}
	for _, s := range b.Subnodes {
		for k, v := range s.DapFieldCandidates {
			candidates[k] = v
		}
	}
	for _, l := range b.Leaves {
		for k, v := range l.DapFieldCandidates {
			candidates[k] = v
		}
	}
	filtered := map[string]DapFieldCandidate{}
	for name := range b.DapNames {
		if v, ok := candidates[name]; ok {
			filtered[name] = v
		}
	}
	b.DapFieldCandidates = filtered
}

func cloneSet(s map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// ToWire converts a Query into its root wire Branch, per spec §4.6: a root
// Branch(ALL) whose children are each top-level constraint's node.
func (q *Query) ToWire() *Branch {
	root := &Branch{Name: "?", Combiner: CombinerAll}
	for _, c := range q.Constraints {
		root.add(c.toWireNode())
	}
	root.mergeDaps()
	return root
}

func (a And) toWireNode() wireNode {
	b := &Branch{Name: "?", Combiner: CombinerAll}
	for _, c := range a.Children {
		b.add(c.toWireNode())
	}
	b.mergeDaps()
	return b
}

func (o Or) toWireNode() wireNode {
	b := &Branch{Name: "?", Combiner: CombinerAny}
	for _, c := range o.Children {
		b.add(c.toWireNode())
	}
	b.mergeDaps()
	return b
}

func (n Not) toWireNode() wireNode {
	b := &Branch{Name: "?", Combiner: CombinerNone}
	b.add(n.Child.toWireNode())
	b.mergeDaps()
	return b
}

// toWireNode converts a Constraint leaf. A Distance relation expands into a
// Branch(ALL) over two synthetic Leaves ("<attr>.location", "<attr>.radius"),
// per spec §4.6; every other relation produces a single Leaf.
func (c Constraint) toWireNode() wireNode {
	if d, ok := c.Relation.(Distance); ok {
		locLeaf := &Leaf{Name: "?", Operator: OpEq, QueryFieldType: "location",
			QueryFieldValue: d.Center, TargetFieldName: c.Attribute + ".location"}
		radiusLeaf := &Leaf{Name: "?", Operator: OpEq, QueryFieldType: "double",
			QueryFieldValue: d.RadiusKm, TargetFieldName: c.Attribute + ".radius"}
		b := &Branch{Name: "?", Combiner: CombinerAll, Leaves: []*Leaf{locLeaf, radiusLeaf}}
		b.mergeDaps()
		return b
	}

	switch r := c.Relation.(type) {
	case Range:
		t, _ := goTypeToAttributeType(r.Low)
		return &Leaf{Name: "?", Operator: OpGtEq, QueryFieldType: t.String() + "_range",
			QueryFieldValue: [2]interface{}{r.Low, r.High}, TargetFieldName: c.Attribute}
	case In:
		t := TypeUnknown
		if len(r.Values) > 0 {
			t, _ = goTypeToAttributeType(r.Values[0])
		}
		return &Leaf{Name: "?", Operator: OpIn, QueryFieldType: t.String() + "_list",
			QueryFieldValue: r.Values, TargetFieldName: c.Attribute}
	case NotIn:
		t := TypeUnknown
		if len(r.Values) > 0 {
			t, _ = goTypeToAttributeType(r.Values[0])
		}
		return &Leaf{Name: "?", Operator: OpNotIn, QueryFieldType: t.String() + "_list",
			QueryFieldValue: r.Values, TargetFieldName: c.Attribute}
	default:
		t, _ := declaredType(c.Relation)
		return &Leaf{Name: "?", Operator: c.Relation.operator(), QueryFieldType: t.String(),
			QueryFieldValue: scalarValue(c.Relation), TargetFieldName: c.Attribute}
	}
}

// scalarValue extracts the single comparison operand from the simple
// equality/ordering relations.
func scalarValue(r Relation) interface{} {
	switch x := r.(type) {
	case Eq:
		return x.Value
	case NotEq:
		return x.Value
	case Lt:
		return x.Value
	case LtEq:
		return x.Value
	case Gt:
		return x.Value
	case GtEq:
		return x.Value
	default:
		return nil
	}
}

// Check re-evaluates a Branch directly off the wire tree, independent of the
// Expr it was built from — this is what testable property 7 exercises.
func (b *Branch) Check(values map[string]interface{}) bool {
	if loc, radius, ok := b.distancePair(); ok {
		return evalDistanceLeaves(loc, radius, values)
	}
	switch b.Combiner {
	case CombinerAny:
		for _, s := range b.Subnodes {
			if s.Check(values) {
				return true
			}
		}
		for _, l := range b.Leaves {
			if l.Check(values) {
				return true
			}
		}
		return false
	case CombinerNone:
		for _, s := range b.Subnodes {
			if s.Check(values) {
				return false
			}
		}
		for _, l := range b.Leaves {
			if l.Check(values) {
				return false
			}
		}
		return true
	default: // CombinerAll
		for _, s := range b.Subnodes {
			if !s.Check(values) {
				return false
			}
		}
		for _, l := range b.Leaves {
			if !l.Check(values) {
				return false
			}
		}
		return true
	}
}

// distancePair detects the synthetic two-leaf Distance expansion produced
// by toWireNode, so Check can reconstruct the original distance test.
func (b *Branch) distancePair() (loc, radius *Leaf, ok bool) {
	if b.Combiner != CombinerAll || len(b.Leaves) != 2 || len(b.Subnodes) != 0 {
		return nil, nil, false
	}
	l0, l1 := b.Leaves[0], b.Leaves[1]
	if strings.HasSuffix(l0.TargetFieldName, ".location") && strings.HasSuffix(l1.TargetFieldName, ".radius") {
		return l0, l1, true
	}
	if strings.HasSuffix(l1.TargetFieldName, ".location") && strings.HasSuffix(l0.TargetFieldName, ".radius") {
		return l1, l0, true
	}
	return nil, nil, false
}

func evalDistanceLeaves(loc, radius *Leaf, values map[string]interface{}) bool {
	attr := strings.TrimSuffix(loc.TargetFieldName, ".location")
	v, ok := values[attr]
	if !ok {
		return false
	}
	matched, ok := (Distance{Center: loc.QueryFieldValue, RadiusKm: radius.QueryFieldValue.(float64)}).match(v)
	return ok && matched
}

// Check evaluates a single Leaf against a value map.
func (l *Leaf) Check(values map[string]interface{}) bool {
	v, ok := values[l.TargetFieldName]
	if !ok {
		return false
	}
	return evalLeaf(l, v)
}

func evalLeaf(l *Leaf, v interface{}) bool {
	if strings.HasSuffix(l.QueryFieldType, "_range") {
		pair, ok := l.QueryFieldValue.([2]interface{})
		if !ok {
			return false
		}
		cl, okl := compareOrdered(v, pair[0])
		ch, okh := compareOrdered(v, pair[1])
		return okl && okh && cl >= 0 && ch <= 0
	}
	if strings.HasSuffix(l.QueryFieldType, "_list") {
		values, ok := l.QueryFieldValue.([]interface{})
		if !ok {
			return false
		}
		found := false
		for _, candidate := range values {
			if typesComparable(v, candidate) && comparablesEqual(v, candidate) {
				found = true
				break
			}
		}
		if l.Operator == OpNotIn {
			return !found
		}
		return found
	}
	switch l.Operator {
	case OpEq:
		return comparablesEqual(v, l.QueryFieldValue)
	case OpNotEq:
		// Mirrors Constraint.check's step 2: a type mismatch between the
		// value and the relation's operand means "not satisfied", not a
		// vacuous true from negating a false equality.
		return typesComparable(v, l.QueryFieldValue) && !comparablesEqual(v, l.QueryFieldValue)
	case OpLt:
		c, ok := compareOrdered(v, l.QueryFieldValue)
		return ok && c < 0
	case OpLtEq:
		c, ok := compareOrdered(v, l.QueryFieldValue)
		return ok && c <= 0
	case OpGt:
		c, ok := compareOrdered(v, l.QueryFieldValue)
		return ok && c > 0
	case OpGtEq:
		c, ok := compareOrdered(v, l.QueryFieldValue)
		return ok && c >= 0
	default:
		return false
	}
}
