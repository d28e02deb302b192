package authz

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func capWithFields(mode FieldPermissionMode, fields ...string) Capability {
	return Capability{
		Module: ModuleExpense,
		Action: ActionRead,
		FieldPermissions: []FieldPermission{
			{Module: ModuleExpense, Action: ActionRead, Mode: mode, Fields: fields},
		},
	}
}

var _ = Describe("ResolveFieldMask", func() {
	It("is unrestricted when no rules match", func() {
		caps := []Capability{{Module: ModuleExpense, Action: ActionRead}}
		mask := ResolveFieldMask(caps, ModuleExpense, ActionRead)
		Expect(mask.Kind).To(Equal(MaskAllFields))
		Expect(mask.Allows("anything")).To(BeTrue())
	})

	It("ignores rules for other module/action pairs", func() {
		cap := Capability{
			Module: ModuleExpense,
			Action: ActionRead,
			FieldPermissions: []FieldPermission{
				{Module: ModuleExpense, Action: ActionUpdate, Mode: FieldModeWhitelist, Fields: []string{"status"}},
			},
		}
		mask := ResolveFieldMask([]Capability{cap}, ModuleExpense, ActionRead)
		Expect(mask.Kind).To(Equal(MaskAllFields))
	})

	It("unions whitelist fields across grants", func() {
		caps := []Capability{
			capWithFields(FieldModeWhitelist, "a", "b"),
			capWithFields(FieldModeWhitelist, "b", "c"),
		}
		mask := ResolveFieldMask(caps, ModuleExpense, ActionRead)
		Expect(mask.Kind).To(Equal(MaskOnly))
		Expect(mask.Fields).To(ConsistOf("a", "b", "c"))
	})

	It("hides only the intersection of blacklists", func() {
		caps := []Capability{
			capWithFields(FieldModeBlacklist, "cost", "margin"),
			capWithFields(FieldModeBlacklist, "margin", "notes"),
		}
		mask := ResolveFieldMask(caps, ModuleExpense, ActionRead)
		Expect(mask.Kind).To(Equal(MaskAllExcept))
		Expect(mask.Fields).To(ConsistOf("margin"))
		Expect(mask.Allows("cost")).To(BeTrue())
		Expect(mask.Allows("margin")).To(BeFalse())
	})

	It("collapses disjoint blacklists to unrestricted", func() {
		caps := []Capability{
			capWithFields(FieldModeBlacklist, "cost"),
			capWithFields(FieldModeBlacklist, "notes"),
		}
		mask := ResolveFieldMask(caps, ModuleExpense, ActionRead)
		Expect(mask.Kind).To(Equal(MaskAllFields))
	})

	It("lets the whitelist win when modes are mixed", func() {
		caps := []Capability{
			capWithFields(FieldModeWhitelist, "a"),
			capWithFields(FieldModeBlacklist, "a", "b"),
		}
		mask := ResolveFieldMask(caps, ModuleExpense, ActionRead)
		Expect(mask.Kind).To(Equal(MaskOnly))
		Expect(mask.Fields).To(ConsistOf("a"))
		Expect(mask.Allows("b")).To(BeFalse())
	})
})

var _ = Describe("FieldMask.Apply", func() {
	record := RecordView{"amount": 120, "status": "pending", "notes": "fragile"}

	It("returns the record unchanged for the unrestricted mask", func() {
		Expect(AllFields().Apply(record)).To(HaveLen(3))
	})

	It("keeps only whitelisted fields", func() {
		mask := FieldMask{Kind: MaskOnly, Fields: []string{"amount", "status"}}
		redacted := mask.Apply(record)
		Expect(redacted).To(HaveKey("amount"))
		Expect(redacted).To(HaveKey("status"))
		Expect(redacted).ToNot(HaveKey("notes"))
	})

	It("drops blacklisted fields", func() {
		mask := FieldMask{Kind: MaskAllExcept, Fields: []string{"notes"}}
		redacted := mask.Apply(record)
		Expect(redacted).To(HaveLen(2))
		Expect(redacted).ToNot(HaveKey("notes"))
	})

	It("does not mutate the original view", func() {
		mask := FieldMask{Kind: MaskOnly, Fields: []string{"amount"}}
		_ = mask.Apply(record)
		Expect(record).To(HaveLen(3))
	})
})
