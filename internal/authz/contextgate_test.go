package authz

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SatisfiesContext", func() {
	baseCtx := AccessContext{
		Now:          time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC),
		MFASatisfied: true,
		ClientIP:     "10.1.2.3",
		DeviceType:   DeviceDesktop,
	}

	It("passes with nil restrictions", func() {
		ok, rej := SatisfiesContext(nil, baseCtx)
		Expect(ok).To(BeTrue())
		Expect(rej).To(BeNil())
	})

	Context("MFA", func() {
		It("denies with an actionable reason when MFA is missing", func() {
			ctx := baseCtx
			ctx.MFASatisfied = false
			ok, rej := SatisfiesContext(&ContextRestrictions{RequireMFA: true}, ctx)
			Expect(ok).To(BeFalse())
			Expect(rej.Gate).To(Equal(GateContext))
			Expect(rej.Message).To(ContainSubstring("multi-factor"))
		})
	})

	Context("approval", func() {
		It("requires approval to have been obtained", func() {
			ok, rej := SatisfiesContext(&ContextRestrictions{RequireApproval: true}, baseCtx)
			Expect(ok).To(BeFalse())
			Expect(rej.Message).To(ContainSubstring("approval"))
		})

		It("checks the approver's role when roles are listed", func() {
			cr := &ContextRestrictions{RequireApproval: true, ApprovalFromRole: []string{"manager", "director"}}

			ctx := baseCtx
			ctx.ApprovalObtained = true
			ctx.ApproverRole = "clerk"
			ok, rej := SatisfiesContext(cr, ctx)
			Expect(ok).To(BeFalse())
			Expect(rej.Message).To(ContainSubstring("manager"))

			ctx.ApproverRole = "director"
			ok, rej = SatisfiesContext(cr, ctx)
			Expect(ok).To(BeTrue())
			Expect(rej).To(BeNil())
		})
	})

	Context("reason", func() {
		It("requires a non-empty justification", func() {
			cr := &ContextRestrictions{RequireReason: true}
			ctx := baseCtx
			ctx.ReasonProvided = "   "
			ok, _ := SatisfiesContext(cr, ctx)
			Expect(ok).To(BeFalse())

			ctx.ReasonProvided = "monthly audit"
			ok, _ = SatisfiesContext(cr, ctx)
			Expect(ok).To(BeTrue())
		})
	})

	Context("IP whitelist", func() {
		It("matches literal addresses", func() {
			cr := &ContextRestrictions{IPWhitelist: []string{"10.1.2.3"}}
			ok, _ := SatisfiesContext(cr, baseCtx)
			Expect(ok).To(BeTrue())
		})

		It("matches CIDR blocks", func() {
			cr := &ContextRestrictions{IPWhitelist: []string{"10.1.0.0/16"}}
			ok, _ := SatisfiesContext(cr, baseCtx)
			Expect(ok).To(BeTrue())
		})

		It("denies addresses outside every entry", func() {
			cr := &ContextRestrictions{IPWhitelist: []string{"192.168.0.0/24", "172.16.0.1"}}
			ok, rej := SatisfiesContext(cr, baseCtx)
			Expect(ok).To(BeFalse())
			Expect(rej.Message).To(ContainSubstring("network"))
		})

		It("denies unparseable client addresses", func() {
			cr := &ContextRestrictions{IPWhitelist: []string{"10.0.0.0/8"}}
			ctx := baseCtx
			ctx.ClientIP = "not-an-ip"
			ok, _ := SatisfiesContext(cr, ctx)
			Expect(ok).To(BeFalse())
		})
	})

	Context("device types", func() {
		It("allows listed devices and denies the rest", func() {
			cr := &ContextRestrictions{DeviceTypes: []DeviceType{DeviceMobile, DeviceTablet}}
			ok, rej := SatisfiesContext(cr, baseCtx)
			Expect(ok).To(BeFalse())
			Expect(rej.Message).To(ContainSubstring("desktop"))

			ctx := baseCtx
			ctx.DeviceType = DeviceTablet
			ok, _ = SatisfiesContext(cr, ctx)
			Expect(ok).To(BeTrue())
		})
	})

	It("reports the first failing restriction", func() {
		cr := &ContextRestrictions{
			RequireMFA:  true,
			DeviceTypes: []DeviceType{DeviceMobile},
		}
		ctx := baseCtx
		ctx.MFASatisfied = false
		_, rej := SatisfiesContext(cr, ctx)
		Expect(rej.Message).To(ContainSubstring("multi-factor"))
	})
})
