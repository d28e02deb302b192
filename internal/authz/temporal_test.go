package authz

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TemporallyValid", func() {
	// 2025-06-11 is a Wednesday.
	wednesdayNoon := time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC)

	It("treats nil restrictions as always valid", func() {
		Expect(TemporallyValid(nil, wednesdayNoon)).To(BeTrue())
	})

	Context("validity bounds", func() {
		It("fails before valid_from", func() {
			from := wednesdayNoon.Add(time.Hour)
			tr := &TimeRestrictions{ValidFrom: &from}
			Expect(TemporallyValid(tr, wednesdayNoon)).To(BeFalse())
		})

		It("fails after valid_until", func() {
			until := wednesdayNoon.Add(-time.Hour)
			tr := &TimeRestrictions{ValidUntil: &until}
			Expect(TemporallyValid(tr, wednesdayNoon)).To(BeFalse())
		})

		It("passes inside the window with both bounds set", func() {
			from := wednesdayNoon.Add(-time.Hour)
			until := wednesdayNoon.Add(time.Hour)
			tr := &TimeRestrictions{ValidFrom: &from, ValidUntil: &until}
			Expect(TemporallyValid(tr, wednesdayNoon)).To(BeTrue())
		})
	})

	Context("days of week", func() {
		It("passes when the weekday is in the set", func() {
			tr := &TimeRestrictions{DaysOfWeek: []time.Weekday{time.Monday, time.Wednesday}}
			Expect(TemporallyValid(tr, wednesdayNoon)).To(BeTrue())
		})

		It("fails when the weekday is not in the set", func() {
			tr := &TimeRestrictions{DaysOfWeek: []time.Weekday{time.Saturday, time.Sunday}}
			Expect(TemporallyValid(tr, wednesdayNoon)).To(BeFalse())
		})

		It("treats an empty set as no day restriction", func() {
			tr := &TimeRestrictions{DaysOfWeek: []time.Weekday{}}
			Expect(TemporallyValid(tr, wednesdayNoon)).To(BeTrue())
		})
	})

	Context("time of day", func() {
		It("passes inside a same-day window", func() {
			tr := &TimeRestrictions{TimeOfDay: &TimeOfDayWindow{Start: "08:00", End: "17:00"}}
			Expect(TemporallyValid(tr, wednesdayNoon)).To(BeTrue())
		})

		It("fails outside a same-day window", func() {
			tr := &TimeRestrictions{TimeOfDay: &TimeOfDayWindow{Start: "13:00", End: "17:00"}}
			Expect(TemporallyValid(tr, wednesdayNoon)).To(BeFalse())
		})

		Context("when the window wraps midnight", func() {
			tr := &TimeRestrictions{TimeOfDay: &TimeOfDayWindow{Start: "22:00", End: "02:00"}}

			It("is valid late in the evening", func() {
				at := time.Date(2025, 6, 11, 23, 30, 0, 0, time.UTC)
				Expect(TemporallyValid(tr, at)).To(BeTrue())
			})

			It("is valid after midnight", func() {
				at := time.Date(2025, 6, 12, 1, 0, 0, 0, time.UTC)
				Expect(TemporallyValid(tr, at)).To(BeTrue())
			})

			It("is invalid at midday", func() {
				Expect(TemporallyValid(tr, wednesdayNoon)).To(BeFalse())
			})
		})

		It("fails closed on malformed clock strings", func() {
			tr := &TimeRestrictions{TimeOfDay: &TimeOfDayWindow{Start: "25:00", End: "02:00"}}
			Expect(TemporallyValid(tr, wednesdayNoon)).To(BeFalse())
		})

		It("includes both window edges", func() {
			tr := &TimeRestrictions{TimeOfDay: &TimeOfDayWindow{Start: "12:00", End: "12:00"}}
			Expect(TemporallyValid(tr, wednesdayNoon)).To(BeTrue())
		})
	})
})

var _ = Describe("Capability expiry", func() {
	now := time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC)

	It("is inert once expires_at has passed", func() {
		past := now.Add(-time.Minute)
		cap := Capability{Module: ModuleExpense, Action: ActionRead, ExpiresAt: &past}
		Expect(cap.Expired(now)).To(BeTrue())
	})

	It("is live before expires_at", func() {
		future := now.Add(time.Minute)
		cap := Capability{Module: ModuleExpense, Action: ActionRead, ExpiresAt: &future}
		Expect(cap.Expired(now)).To(BeFalse())
	})

	It("never expires without a deadline", func() {
		cap := Capability{Module: ModuleExpense, Action: ActionRead}
		Expect(cap.Expired(now)).To(BeFalse())
	})
})
