package authz

import "strings"

// RecordView is the flat, dotted-path-addressable projection of a record the
// scope filter and condition evaluator read. The engine never fetches
// records; callers build the view from their repository.
type RecordView map[string]any

// Resolve looks up a dotted path. A literal key match wins over path
// traversal, so records may expose either flat keys ("vehicle.type") or
// nested maps.
func (r RecordView) Resolve(path string) (any, bool) {
	if r == nil {
		return nil, false
	}
	if v, ok := r[path]; ok {
		return v, true
	}
	parts := strings.Split(path, ".")
	var current any = map[string]any(r)
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			if rv, isView := current.(RecordView); isView {
				m = map[string]any(rv)
			} else {
				return nil, false
			}
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// withSubject overlays user.* keys onto a record view so custom scope
// filters can cross-reference the subject (e.g. user.id == record.created_by).
func (r RecordView) withSubject(subject Subject) RecordView {
	merged := make(RecordView, len(r)+4)
	for k, v := range r {
		merged[k] = v
	}
	merged["user.id"] = subject.ID
	merged["user.role"] = subject.Role
	merged["user.department"] = subject.Department
	merged["user.yard_id"] = subject.YardID
	return merged
}
