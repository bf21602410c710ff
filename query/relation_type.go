package query

// declaredType reports the AttributeType a Relation's operand(s) claim, used
// by Query validation to cross-check against a supplied DataModel. ok is
// false when the relation carries no representative value (e.g. an empty
// In/NotIn list), in which case validation treats the type as "unknown" and
// permits it, per spec.
func declaredType(r Relation) (AttributeType, bool) {
	switch x := r.(type) {
	case Eq:
		return goTypeToAttributeType(x.Value)
	case NotEq:
		return goTypeToAttributeType(x.Value)
	case Lt:
		return goTypeToAttributeType(x.Value)
	case LtEq:
		return goTypeToAttributeType(x.Value)
	case Gt:
		return goTypeToAttributeType(x.Value)
	case GtEq:
		return goTypeToAttributeType(x.Value)
	case Range:
		return goTypeToAttributeType(x.Low)
	case In:
		if len(x.Values) == 0 {
			return TypeUnknown, false
		}
		return goTypeToAttributeType(x.Values[0])
	case NotIn:
		if len(x.Values) == 0 {
			return TypeUnknown, false
		}
		return goTypeToAttributeType(x.Values[0])
	case Distance:
		return TypeLocation, true
	default:
		return TypeUnknown, false
	}
}
