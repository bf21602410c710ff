package query

import (
	"reflect"

	"github.com/oef-ai/oef-agent-go/geo"
)

// typesComparable reports whether a and b share the type a relation operator
// may be evaluated over (used to implement check()'s step 2: a type
// mismatch between the constraint and the attribute's runtime value means
// "not satisfied", not an error).
func typesComparable(a, b interface{}) bool {
	return reflect.TypeOf(a) == reflect.TypeOf(b)
}

func comparablesEqual(a, b interface{}) bool {
	if !typesComparable(a, b) {
		return false
	}
	return a == b
}

// compareOrdered compares a against b for the ordered scalar types (numbers
// and strings). ok is false if the types don't match or aren't ordered.
func compareOrdered(a, b interface{}) (int, bool) {
	if !typesComparable(a, b) {
		return 0, false
	}
	switch av := a.(type) {
	case int:
		bv := b.(int)
		return sign(av - bv), true
	case int64:
		bv := b.(int64)
		return sign64(av - bv), true
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		default:
			return 0, true
		}
	case string:
		bv := b.(string)
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func sign64(n int64) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func distanceMatch(value, center interface{}, radiusKm float64) (matched, ok bool) {
	loc, okV := value.(geo.Location)
	c, okC := center.(geo.Location)
	if !okV || !okC {
		return false, false
	}
	return geo.Distance(loc, c) <= radiusKm, true
}
