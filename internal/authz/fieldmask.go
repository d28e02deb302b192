package authz

import "sort"

type MaskKind string

const (
	MaskAllFields MaskKind = "all"
	MaskOnly      MaskKind = "only"
	MaskAllExcept MaskKind = "all_except"
)

// FieldMask is the merged field visibility for one (module, action) pair:
// everything, only the named fields, or everything except the named fields.
type FieldMask struct {
	Kind   MaskKind `json:"kind"`
	Fields []string `json:"fields,omitempty"`
}

func AllFields() FieldMask {
	return FieldMask{Kind: MaskAllFields}
}

// Allows reports whether the field is visible (read) or writable (update)
// under this mask.
func (m FieldMask) Allows(field string) bool {
	switch m.Kind {
	case MaskOnly:
		return containsString(m.Fields, field)
	case MaskAllExcept:
		return !containsString(m.Fields, field)
	default:
		return true
	}
}

// Apply returns a copy of the record view with disallowed fields removed.
// The unrestricted mask returns the view unchanged.
func (m FieldMask) Apply(record RecordView) RecordView {
	if m.Kind == MaskAllFields || record == nil {
		return record
	}
	out := make(RecordView, len(record))
	for k, v := range record {
		if m.Allows(k) {
			out[k] = v
		}
	}
	return out
}

// ResolveFieldMask merges the field-permission rules of the effective
// capabilities for (module, action).
//
// Merge policy: no matching rules means unrestricted. Any whitelist rule
// makes the result the union of all whitelist field sets, even when
// blacklist rules are also present — a field no whitelist named must not
// leak in just because a blacklist omitted it. With only blacklist rules, a
// field is hidden only if every blacklist hides it (most permissive union of
// grants), so the result excludes the intersection of the blacklists.
func ResolveFieldMask(effective []Capability, module Module, action Action) FieldMask {
	var whitelists [][]string
	var blacklists [][]string
	for _, cap := range effective {
		for _, fp := range cap.FieldPermissions {
			if fp.Module != module || fp.Action != action {
				continue
			}
			switch fp.Mode {
			case FieldModeWhitelist:
				whitelists = append(whitelists, fp.Fields)
			case FieldModeBlacklist:
				blacklists = append(blacklists, fp.Fields)
			}
		}
	}

	if len(whitelists) > 0 {
		return FieldMask{Kind: MaskOnly, Fields: union(whitelists)}
	}
	if len(blacklists) > 0 {
		hidden := intersection(blacklists)
		if len(hidden) == 0 {
			return AllFields()
		}
		return FieldMask{Kind: MaskAllExcept, Fields: hidden}
	}
	return AllFields()
}

func union(sets [][]string) []string {
	seen := make(map[string]struct{})
	for _, set := range sets {
		for _, f := range set {
			seen[f] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func intersection(sets [][]string) []string {
	counts := make(map[string]int)
	for _, set := range sets {
		dedup := make(map[string]struct{}, len(set))
		for _, f := range set {
			dedup[f] = struct{}{}
		}
		for f := range dedup {
			counts[f]++
		}
	}
	result := make(map[string]struct{})
	for f, n := range counts {
		if n == len(sets) {
			result[f] = struct{}{}
		}
	}
	return sortedKeys(result)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
