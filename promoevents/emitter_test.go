package promoevents_test

import (
	"bytes"
	"encoding/binary"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gitlab.com/akita/nvwear/promoevents"
)

var _ = Describe("Emitter", func() {
	It("writes uint64 timestamps as 8 little-endian bytes each", func() {
		var buf bytes.Buffer
		e := promoevents.NewEmitter[uint64](&buf, 0)

		wrote, err := e.Emit(42)
		Expect(err).NotTo(HaveOccurred())
		Expect(wrote).To(BeTrue())

		Expect(buf.Len()).To(Equal(8))
		Expect(binary.LittleEndian.Uint64(buf.Bytes())).To(Equal(uint64(42)))
	})

	It("stops writing once the cap is reached (P5)", func() {
		var buf bytes.Buffer
		e := promoevents.NewEmitter[uint64](&buf, 2)

		for i := uint64(0); i < 5; i++ {
			_, err := e.Emit(i)
			Expect(err).NotTo(HaveOccurred())
		}

		Expect(e.Written()).To(Equal(uint64(2)))
		Expect(buf.Len()).To(Equal(16))
	})

	It("never caps when cap is zero", func() {
		var buf bytes.Buffer
		e := promoevents.NewEmitter[uint64](&buf, 0)

		for i := uint64(0); i < 100; i++ {
			_, err := e.Emit(i)
			Expect(err).NotTo(HaveOccurred())
		}

		Expect(e.Written()).To(Equal(uint64(100)))
	})

	It("round-trips float64 timestamps", func() {
		var buf bytes.Buffer
		e := promoevents.NewEmitter[float64](&buf, 0)

		_, err := e.Emit(3.5)
		Expect(err).NotTo(HaveOccurred())

		got, err := promoevents.DecodeTimestamps[float64](&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal([]float64{3.5}))
	})
})
