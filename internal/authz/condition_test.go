package authz

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EvaluateCondition", func() {
	record := RecordView{
		"amount":  1500.0,
		"status":  "pending",
		"flagged": false,
		"vehicle": map[string]any{
			"type":  "truck",
			"plate": "B 9123 XYZ",
		},
		"driver.license": "A-44120",
	}

	Context("equality operators", func() {
		It("matches numeric fields against numeric literals", func() {
			cond := Condition{Field: "amount", Operator: OpEqual, Value: "1500"}
			Expect(EvaluateCondition(cond, record)).To(BeTrue())
		})

		It("matches boolean fields against boolean literals", func() {
			cond := Condition{Field: "flagged", Operator: OpEqual, Value: "false"}
			Expect(EvaluateCondition(cond, record)).To(BeTrue())
		})

		It("compares strings exactly", func() {
			cond := Condition{Field: "status", Operator: OpEqual, Value: "Pending"}
			Expect(EvaluateCondition(cond, record)).To(BeFalse())
		})

		It("negates equality with !=", func() {
			cond := Condition{Field: "status", Operator: OpNotEqual, Value: "approved"}
			Expect(EvaluateCondition(cond, record)).To(BeTrue())
		})
	})

	Context("missing fields", func() {
		It("evaluates == to false when the field is absent", func() {
			cond := Condition{Field: "x", Operator: OpEqual, Value: "5"}
			Expect(EvaluateCondition(cond, record)).To(BeFalse())
		})

		It("evaluates != to true when the field is absent", func() {
			cond := Condition{Field: "x", Operator: OpNotEqual, Value: "5"}
			Expect(EvaluateCondition(cond, record)).To(BeTrue())
		})

		It("evaluates not_in to true when the field is absent", func() {
			cond := Condition{Field: "x", Operator: OpNotIn, Value: "a,b"}
			Expect(EvaluateCondition(cond, record)).To(BeTrue())
		})

		It("evaluates in to false when the field is absent", func() {
			cond := Condition{Field: "x", Operator: OpIn, Value: "a,b"}
			Expect(EvaluateCondition(cond, record)).To(BeFalse())
		})

		It("evaluates ordering operators to false when the field is absent", func() {
			cond := Condition{Field: "x", Operator: OpGreaterThan, Value: "1"}
			Expect(EvaluateCondition(cond, record)).To(BeFalse())
		})
	})

	Context("ordering operators", func() {
		It("compares numerically when both sides are numbers", func() {
			Expect(EvaluateCondition(Condition{Field: "amount", Operator: OpGreaterThan, Value: "1000"}, record)).To(BeTrue())
			Expect(EvaluateCondition(Condition{Field: "amount", Operator: OpLessThan, Value: "1000"}, record)).To(BeFalse())
			Expect(EvaluateCondition(Condition{Field: "amount", Operator: OpGreaterEqual, Value: "1500"}, record)).To(BeTrue())
			Expect(EvaluateCondition(Condition{Field: "amount", Operator: OpLessEqual, Value: "1499"}, record)).To(BeFalse())
		})

		It("falls back to lexicographic comparison when either side is non-numeric", func() {
			// "pending" > "approved" lexicographically
			cond := Condition{Field: "status", Operator: OpGreaterThan, Value: "approved"}
			Expect(EvaluateCondition(cond, record)).To(BeTrue())
		})

		It("treats numeric strings in the record as numbers", func() {
			rec := RecordView{"amount": "0200"}
			cond := Condition{Field: "amount", Operator: OpGreaterThan, Value: "30"}
			Expect(EvaluateCondition(cond, rec)).To(BeTrue())
		})
	})

	Context("list operators", func() {
		It("treats the value as a comma-separated list for in", func() {
			cond := Condition{Field: "status", Operator: OpIn, Value: "pending, approved"}
			Expect(EvaluateCondition(cond, record)).To(BeTrue())
		})

		It("rejects values outside the list for not_in", func() {
			cond := Condition{Field: "status", Operator: OpNotIn, Value: "pending, approved"}
			Expect(EvaluateCondition(cond, record)).To(BeFalse())
		})
	})

	Context("string operators", func() {
		It("contains is a case-sensitive substring check", func() {
			Expect(EvaluateCondition(Condition{Field: "vehicle.plate", Operator: OpContains, Value: "9123"}, record)).To(BeTrue())
			Expect(EvaluateCondition(Condition{Field: "vehicle.plate", Operator: OpContains, Value: "xyz"}, record)).To(BeFalse())
		})

		It("starts_with is a case-sensitive prefix check", func() {
			Expect(EvaluateCondition(Condition{Field: "driver.license", Operator: OpStartsWith, Value: "A-"}, record)).To(BeTrue())
			Expect(EvaluateCondition(Condition{Field: "driver.license", Operator: OpStartsWith, Value: "a-"}, record)).To(BeFalse())
		})
	})

	Context("dotted paths", func() {
		It("walks nested maps", func() {
			cond := Condition{Field: "vehicle.type", Operator: OpEqual, Value: "truck"}
			Expect(EvaluateCondition(cond, record)).To(BeTrue())
		})

		It("prefers a literal flat key over traversal", func() {
			cond := Condition{Field: "driver.license", Operator: OpEqual, Value: "A-44120"}
			Expect(EvaluateCondition(cond, record)).To(BeTrue())
		})
	})

	Context("unknown operators", func() {
		It("fails closed", func() {
			cond := Condition{Field: "status", Operator: "matches", Value: "pending"}
			Expect(EvaluateCondition(cond, record)).To(BeFalse())
		})
	})
})

var _ = Describe("EvaluateGroup", func() {
	record := RecordView{"amount": 1500, "flagged": false}

	It("AND with an empty condition list is vacuously true", func() {
		group := ConditionGroup{CombineWith: CombineAnd}
		Expect(EvaluateGroup(group, record)).To(BeTrue())
	})

	It("OR with an empty condition list grants nothing", func() {
		group := ConditionGroup{CombineWith: CombineOr}
		Expect(EvaluateGroup(group, record)).To(BeFalse())
	})

	It("AND requires every condition to hold", func() {
		group := ConditionGroup{
			CombineWith: CombineAnd,
			Conditions: []Condition{
				{Field: "amount", Operator: OpGreaterThan, Value: "1000"},
				{Field: "flagged", Operator: OpEqual, Value: "true"},
			},
		}
		Expect(EvaluateGroup(group, record)).To(BeFalse())
	})

	It("OR requires at least one condition to hold", func() {
		group := ConditionGroup{
			CombineWith: CombineOr,
			Conditions: []Condition{
				{Field: "amount", Operator: OpGreaterThan, Value: "1000"},
				{Field: "flagged", Operator: OpEqual, Value: "true"},
			},
		}
		Expect(EvaluateGroup(group, record)).To(BeTrue())
	})

	It("fails closed on an unknown combinator", func() {
		group := ConditionGroup{CombineWith: "XOR", Conditions: []Condition{{Field: "amount", Operator: OpGreaterThan, Value: "1"}}}
		Expect(EvaluateGroup(group, record)).To(BeFalse())
	})
})
