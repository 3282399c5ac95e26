package boolstr_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gitlab.com/akita/nvwear/internal/boolstr"
)

var _ = Describe("Parse", func() {
	DescribeTable("recognized spellings",
		func(in string, want bool) {
			got, ok := boolstr.Parse(in)
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(want))
		},
		Entry("true", "true", true),
		Entry("TRUE uppercase", "TRUE", true),
		Entry("yes", "yes", true),
		Entry("1", "1", true),
		Entry("false", "false", false),
		Entry("off", "off", false),
		Entry("0", "0", false),
	)

	It("reports not-ok for an unrecognized spelling", func() {
		_, ok := boolstr.Parse("maybe")
		Expect(ok).To(BeFalse())
	})
})
