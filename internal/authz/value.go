package authz

import (
	"fmt"
	"strconv"
	"strings"
)

// literal is a condition value resolved from its stored string form once per
// comparison, so numeric and list operators stay well-defined instead of
// re-parsing untyped strings at every call site.
type literal struct {
	raw     string
	num     float64
	isNum   bool
	boolVal bool
	isBool  bool
}

func parseLiteral(raw string) literal {
	l := literal{raw: raw}
	if n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		l.num = n
		l.isNum = true
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		l.boolVal, l.isBool = true, true
	case "false":
		l.boolVal, l.isBool = false, true
	}
	return l
}

// list splits a comma-separated literal into trimmed elements for in/not_in.
func (l literal) list() []string {
	parts := strings.Split(l.raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// stringify renders a record field value the same way regardless of its
// dynamic type, so comparisons against string literals are deterministic.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// numeric reports the field value as a float64 when it is a number or a
// numeric string.
func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return n, err == nil
	default:
		return 0, false
	}
}
