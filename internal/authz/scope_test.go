package authz

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("InScope", func() {
	subject := Subject{
		ID:         "u-17",
		Role:       "supervisor",
		Department: "ops",
		YardID:     "yard-3",
	}

	record := RecordView{
		"created_by":  "u-17",
		"yard_id":     "yard-3",
		"department":  "ops",
		"assigned_to": "u-99",
	}

	It("treats an absent scope as all", func() {
		cap := Capability{Module: ModuleGatePass, Action: ActionRead}
		Expect(InScope(&cap, subject, RecordView{"created_by": "someone-else"})).To(BeTrue())
	})

	It("passes any record for scope all", func() {
		cap := Capability{Scope: ScopeAll}
		Expect(InScope(&cap, subject, RecordView{})).To(BeTrue())
	})

	Context("own_only", func() {
		It("passes when the subject created the record", func() {
			cap := Capability{Scope: ScopeOwnOnly}
			Expect(InScope(&cap, subject, record)).To(BeTrue())
		})

		It("fails for someone else's record", func() {
			cap := Capability{Scope: ScopeOwnOnly}
			other := RecordView{"created_by": "u-18"}
			Expect(InScope(&cap, subject, other)).To(BeFalse())
		})

		It("fails when the owner field is missing", func() {
			cap := Capability{Scope: ScopeOwnOnly}
			Expect(InScope(&cap, subject, RecordView{})).To(BeFalse())
		})
	})

	It("yard_only matches the subject's yard", func() {
		cap := Capability{Scope: ScopeYardOnly}
		Expect(InScope(&cap, subject, record)).To(BeTrue())
		Expect(InScope(&cap, subject, RecordView{"yard_id": "yard-9"})).To(BeFalse())
	})

	It("department_only matches the subject's department", func() {
		cap := Capability{Scope: ScopeDepartmentOnly}
		Expect(InScope(&cap, subject, record)).To(BeTrue())
		Expect(InScope(&cap, subject, RecordView{"department": "sales"})).To(BeFalse())
	})

	It("assigned_only matches the assignee", func() {
		cap := Capability{Scope: ScopeAssignedOnly}
		Expect(InScope(&cap, subject, record)).To(BeFalse())
		Expect(InScope(&cap, subject, RecordView{"assigned_to": "u-17"})).To(BeTrue())
	})

	Context("custom scope", func() {
		It("evaluates the filter against a view that exposes user fields", func() {
			cap := Capability{
				Scope: ScopeCustom,
				CustomFilter: &ConditionGroup{
					CombineWith: CombineAnd,
					Conditions: []Condition{
						{Field: "user.department", Operator: OpEqual, Value: "ops"},
						{Field: "yard_id", Operator: OpIn, Value: "yard-3,yard-4"},
					},
				},
			}
			Expect(InScope(&cap, subject, record)).To(BeTrue())
		})

		It("fails closed when the filter is missing", func() {
			cap := Capability{Scope: ScopeCustom}
			Expect(InScope(&cap, subject, record)).To(BeFalse())
		})
	})

	It("skips scoping entirely for record-less checks", func() {
		cap := Capability{Scope: ScopeOwnOnly}
		Expect(InScope(&cap, subject, nil)).To(BeTrue())
	})

	It("fails closed on an unknown scope", func() {
		cap := Capability{Scope: "branch_only"}
		Expect(InScope(&cap, subject, record)).To(BeFalse())
	})
})
