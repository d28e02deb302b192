package authz

// Record fields the built-in scopes agree on with the record collaborators.
const (
	recordFieldCreatedBy  = "created_by"
	recordFieldYardID     = "yard_id"
	recordFieldDepartment = "department"
	recordFieldAssignedTo = "assigned_to"
)

// InScope decides whether the record is reachable under the capability's
// scope for this subject. Record-less calls (create, list-level checks) pass
// a nil record and skip scoping entirely; the caller is responsible for
// distinguishing record-scoped from record-less checks.
func InScope(c *Capability, subject Subject, record RecordView) bool {
	if record == nil {
		return true
	}
	switch c.Scope {
	case "", ScopeAll:
		return true
	case ScopeOwnOnly:
		return recordFieldEquals(record, recordFieldCreatedBy, subject.ID)
	case ScopeYardOnly:
		return recordFieldEquals(record, recordFieldYardID, subject.YardID)
	case ScopeDepartmentOnly:
		return recordFieldEquals(record, recordFieldDepartment, subject.Department)
	case ScopeAssignedOnly:
		return recordFieldEquals(record, recordFieldAssignedTo, subject.ID)
	case ScopeCustom:
		// Authoring validation guarantees a filter; a grant that reaches us
		// without one fails closed.
		if c.CustomFilter == nil || len(c.CustomFilter.Conditions) == 0 {
			return false
		}
		return EvaluateGroup(*c.CustomFilter, record.withSubject(subject))
	default:
		return false
	}
}

func recordFieldEquals(record RecordView, field, want string) bool {
	v, ok := record.Resolve(field)
	if !ok {
		return false
	}
	return stringify(v) == want && want != ""
}
