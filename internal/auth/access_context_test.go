package auth_test

import (
	"net/http/httptest"

	"github.com/frahmantamala/yardguard/internal/auth"
	"github.com/frahmantamala/yardguard/internal/authz"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ContextBuilder", func() {
	var builder auth.ContextBuilder

	BeforeEach(func() {
		builder = auth.ContextBuilder{}
	})

	Describe("client IP", func() {
		It("should use the remote address by default", func() {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = "203.0.113.9:51234"
			r.Header.Set("X-Forwarded-For", "10.0.0.1")

			ac := builder.Build(r, nil)
			Expect(ac.ClientIP).To(Equal("203.0.113.9"))
		})

		It("should take the first forwarded hop when trusted", func() {
			builder.TrustForwardedFor = true
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = "192.0.2.1:443"
			r.Header.Set("X-Forwarded-For", "10.0.0.1, 192.0.2.254")

			ac := builder.Build(r, nil)
			Expect(ac.ClientIP).To(Equal("10.0.0.1"))
		})

		It("should fall back to the remote address when no forwarded header is present", func() {
			builder.TrustForwardedFor = true
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = "192.0.2.1:443"

			ac := builder.Build(r, nil)
			Expect(ac.ClientIP).To(Equal("192.0.2.1"))
		})
	})

	Describe("device type", func() {
		It("should sniff mobile user agents", func() {
			r := httptest.NewRequest("GET", "/", nil)
			r.Header.Set("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile/15E148")

			ac := builder.Build(r, nil)
			Expect(ac.DeviceType).To(Equal(authz.DeviceMobile))
		})

		It("should sniff tablets before mobile", func() {
			r := httptest.NewRequest("GET", "/", nil)
			r.Header.Set("User-Agent", "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) Mobile/15E148")

			ac := builder.Build(r, nil)
			Expect(ac.DeviceType).To(Equal(authz.DeviceTablet))
		})

		It("should default to desktop", func() {
			r := httptest.NewRequest("GET", "/", nil)
			r.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")

			ac := builder.Build(r, nil)
			Expect(ac.DeviceType).To(Equal(authz.DeviceDesktop))
		})

		It("should honor a valid device hint header", func() {
			r := httptest.NewRequest("GET", "/", nil)
			r.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")
			r.Header.Set(auth.HeaderDeviceType, "tablet")

			ac := builder.Build(r, nil)
			Expect(ac.DeviceType).To(Equal(authz.DeviceTablet))
		})

		It("should ignore an unknown device hint", func() {
			r := httptest.NewRequest("GET", "/", nil)
			r.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")
			r.Header.Set(auth.HeaderDeviceType, "smartwatch")

			ac := builder.Build(r, nil)
			Expect(ac.DeviceType).To(Equal(authz.DeviceDesktop))
		})
	})

	Describe("trust signals", func() {
		It("should carry approval and reason headers", func() {
			r := httptest.NewRequest("GET", "/", nil)
			r.Header.Set(auth.HeaderApprovalTicket, "APPR-881")
			r.Header.Set(auth.HeaderApproverRole, "yard_manager")
			r.Header.Set(auth.HeaderAccessReason, "incident follow-up")

			ac := builder.Build(r, nil)
			Expect(ac.ApprovalObtained).To(BeTrue())
			Expect(ac.ApproverRole).To(Equal("yard_manager"))
			Expect(ac.ReasonProvided).To(Equal("incident follow-up"))
		})

		It("should take the mfa signal from the token claims", func() {
			r := httptest.NewRequest("GET", "/", nil)

			ac := builder.Build(r, &auth.Claims{MFAVerified: true})
			Expect(ac.MFASatisfied).To(BeTrue())

			ac = builder.Build(r, &auth.Claims{})
			Expect(ac.MFASatisfied).To(BeFalse())
		})

		It("should capture the evaluation instant once", func() {
			r := httptest.NewRequest("GET", "/", nil)
			ac := builder.Build(r, nil)
			Expect(ac.Now).NotTo(BeZero())
		})
	})
})
