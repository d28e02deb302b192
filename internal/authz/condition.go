package authz

import "strings"

// EvaluateCondition checks one condition against a record view.
//
// A missing field evaluates to false, except for != and not_in which
// evaluate to true: absence satisfies "is not equal to / not in". The
// asymmetry is deliberate and covered by tests.
//
// The ordering operators (>, <, >=, <=) compare numerically when both sides
// parse as numbers, and fall back to lexicographic string comparison when
// either side does not.
func EvaluateCondition(cond Condition, record RecordView) bool {
	fieldValue, present := record.Resolve(cond.Field)
	if !present {
		return cond.Operator == OpNotEqual || cond.Operator == OpNotIn
	}

	lit := parseLiteral(cond.Value)
	fieldStr := stringify(fieldValue)

	switch cond.Operator {
	case OpEqual:
		return equalish(fieldValue, fieldStr, lit)
	case OpNotEqual:
		return !equalish(fieldValue, fieldStr, lit)
	case OpGreaterThan:
		return ordered(fieldValue, fieldStr, lit) > 0
	case OpLessThan:
		return ordered(fieldValue, fieldStr, lit) < 0
	case OpGreaterEqual:
		return ordered(fieldValue, fieldStr, lit) >= 0
	case OpLessEqual:
		return ordered(fieldValue, fieldStr, lit) <= 0
	case OpIn:
		return containsString(lit.list(), fieldStr)
	case OpNotIn:
		return !containsString(lit.list(), fieldStr)
	case OpContains:
		return strings.Contains(fieldStr, cond.Value)
	case OpStartsWith:
		return strings.HasPrefix(fieldStr, cond.Value)
	default:
		// Unknown operators fail closed for this condition.
		return false
	}
}

// EvaluateGroup combines conditions with AND or OR. An empty AND group is
// vacuously true; an empty OR group grants nothing and is false.
func EvaluateGroup(group ConditionGroup, record RecordView) bool {
	switch group.CombineWith {
	case CombineAnd:
		for _, cond := range group.Conditions {
			if !EvaluateCondition(cond, record) {
				return false
			}
		}
		return true
	case CombineOr:
		for _, cond := range group.Conditions {
			if EvaluateCondition(cond, record) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// equalish compares numerically when both sides are numbers (so 1500 ==
// "1500.0"), and by exact string form otherwise. Booleans compare through
// their canonical true/false rendering.
func equalish(fieldValue any, fieldStr string, lit literal) bool {
	if fn, ok := numeric(fieldValue); ok && lit.isNum {
		return fn == lit.num
	}
	if b, ok := fieldValue.(bool); ok && lit.isBool {
		return b == lit.boolVal
	}
	return fieldStr == lit.raw
}

// ordered returns -1, 0 or 1 for field vs literal.
func ordered(fieldValue any, fieldStr string, lit literal) int {
	if fn, ok := numeric(fieldValue); ok && lit.isNum {
		switch {
		case fn < lit.num:
			return -1
		case fn > lit.num:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fieldStr, lit.raw)
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
