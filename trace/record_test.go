package trace_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gitlab.com/akita/nvwear/trace"
)

var _ = Describe("Record encode/decode", func() {
	It("round-trips every field", func() {
		r := trace.Record{
			NodeNum:  0x5A3,
			IsWrite:  true,
			LineAddr: 0xDEADBEEFCAFE,
			Cycle:    0x1122334455667788,
		}
		buf := make([]byte, trace.RecordSize)
		trace.EncodeRecord(r, buf)

		got := trace.DecodeRecord(buf)
		Expect(got).To(Equal(r))
	})

	It("clears the write bit for reads without disturbing the node number", func() {
		r := trace.Record{NodeNum: 0x7FFF, IsWrite: false, LineAddr: 1, Cycle: 1}
		buf := make([]byte, trace.RecordSize)
		trace.EncodeRecord(r, buf)

		got := trace.DecodeRecord(buf)
		Expect(got.IsWrite).To(BeFalse())
		Expect(got.NodeNum).To(Equal(uint16(0x7FFF)))
	})

	It("applies the fixed line-to-page shift", func() {
		Expect(trace.LineAddrToPageAddr(0b1_0000_0000_0000, 4, 16)).To(Equal(uint64(1)))
	})
})
