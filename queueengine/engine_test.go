package queueengine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/golang/mock/gomock"

	"gitlab.com/akita/nvwear/queueengine"
	"gitlab.com/akita/nvwear/queueengine/mocks"
)

// fixedCharger is a hand-rolled WearCharger[uint64] fake for tests that only
// need fixed, ident-independent charges; the gomock-generated MockWearCharger
// below is reserved for the tests that assert exactly which identities the
// engine passes to the charger.
type fixedCharger struct {
	write            uint64
	promotedSwap     uint64
	coldSwap         uint64
	transferredBytes uint64
	transferDelay    uint64
}

func (c fixedCharger) WriteCharge(uint64) uint64 { return c.write }

func (c fixedCharger) SwapCharge(uint64, uint64) (uint64, uint64) {
	return c.promotedSwap, c.coldSwap
}

func (c fixedCharger) SwapTransferBytes(uint64, uint64) (uint64, uint64) {
	return c.transferredBytes, c.transferDelay
}

var _ = Describe("Engine", func() {
	const (
		pageA uint64 = 1
		pageB uint64 = 2
		pageC uint64 = 3
	)

	Describe("single element with no swap partner", func() {
		It("promotes without a rotation swap once it owns the whole memory", func() {
			charger := fixedCharger{write: 1}
			engine, err := queueengine.MakeBuilder[uint64]().
				WithNumBuckets(4).
				WithBitsPerSlot(1).
				WithCellWriteEndurance(4).
				WithWearCharger(charger).
				Build()
			Expect(err).NotTo(HaveOccurred())
			engine.Seed([]uint64{pageA})

			Expect(engine.Process(pageA)).To(Succeed())
			Expect(engine.Process(pageA)).To(Succeed())

			Expect(engine.QueueLen(0)).To(Equal(0))
			Expect(engine.QueueLen(1)).To(Equal(1))
			Expect(engine.TotalPromotions()).To(BeZero(), "lone elements advance lowest_active_queue instead of swapping")
			Expect(engine.LowestActiveQueue()).To(Equal(1))
			Expect(engine.MostWritten().LifetimeBFs).To(Equal(uint64(2)))
		})
	})

	Describe("two elements, promotion triggers a rotation swap", func() {
		var (
			engine  *queueengine.Engine[uint64]
			charger fixedCharger
		)

		BeforeEach(func() {
			charger = fixedCharger{
				write:            3,
				promotedSwap:     5,
				coldSwap:         9,
				transferredBytes: 100,
				transferDelay:    40,
			}
			var err error
			engine, err = queueengine.MakeBuilder[uint64]().
				WithNumBuckets(2).
				WithBitsPerSlot(1).
				WithCellWriteEndurance(2).
				WithWearCharger(charger).
				Build()
			Expect(err).NotTo(HaveOccurred())
			engine.Seed([]uint64{pageA, pageB})
		})

		It("swaps identities and charges both slots on promotion", func() {
			Expect(engine.Process(pageA)).To(Succeed())
			Expect(engine.Process(pageA)).To(Succeed())

			Expect(engine.TotalPromotions()).To(Equal(uint64(1)))
			Expect(engine.TotalBytesTransferred()).To(Equal(uint64(100)))
			Expect(engine.TotalBytesDelay()).To(Equal(uint64(40)))

			promoted := findByQueue(engine, 1)
			cold := findByQueue(engine, 0)

			Expect(promoted.Ident).To(Equal(pageB), "the promoted physical slot now carries the cold element's former identity")
			Expect(cold.Ident).To(Equal(pageA))
			Expect(promoted.LifetimeBFs).To(Equal(uint64(11)))
			Expect(cold.LifetimeBFs).To(Equal(uint64(9)))
		})

		It("conserves total lifetime bit-flips across write and swap charges (P4)", func() {
			Expect(engine.Process(pageA)).To(Succeed())
			Expect(engine.Process(pageA)).To(Succeed())

			var total uint64
			for _, e := range engine.AllElements() {
				total += e.LifetimeBFs
			}
			chargedWrites := charger.write + charger.write
			chargedSwaps := charger.promotedSwap + charger.coldSwap
			Expect(total).To(Equal(chargedWrites + chargedSwaps))
		})

		It("only ever compares the promoted element for most_written, never the cold one (matches the original's quirk)", func() {
			Expect(engine.Process(pageA)).To(Succeed())
			Expect(engine.Process(pageA)).To(Succeed())

			Expect(engine.MostWritten().LifetimeBFs).To(Equal(uint64(11)))
		})
	})

	Describe("wear-out termination", func() {
		It("terminates without counting a promotion once the last queue is exceeded", func() {
			charger := fixedCharger{write: 1}
			engine, err := queueengine.MakeBuilder[uint64]().
				WithNumBuckets(1).
				WithBitsPerSlot(1).
				WithCellWriteEndurance(1).
				WithWearCharger(charger).
				Build()
			Expect(err).NotTo(HaveOccurred())
			engine.Seed([]uint64{pageA})

			Expect(engine.Process(pageA)).To(Succeed())
			err = engine.Process(pageA)

			Expect(err).To(MatchError(queueengine.ErrWornOut))
			Expect(engine.TotalPromotions()).To(BeZero())
		})
	})

	Describe("event trace promotion callback (P5)", func() {
		It("fires exactly once per promotion while under the configured cap, and not after", func() {
			charger := fixedCharger{write: 1, promotedSwap: 1, coldSwap: 1}
			var fired []uint64
			engine, err := queueengine.MakeBuilder[uint64]().
				WithNumBuckets(2).
				WithBitsPerSlot(1).
				WithCellWriteEndurance(2).
				WithWearCharger(charger).
				WithEventTrace(1, func(total uint64) { fired = append(fired, total) }).
				Build()
			Expect(err).NotTo(HaveOccurred())
			engine.Seed([]uint64{pageA, pageB, pageC})

			Expect(engine.Process(pageA)).To(Succeed())
			Expect(engine.Process(pageA)).To(Succeed())
			Expect(fired).To(Equal([]uint64{1}))

			Expect(engine.Process(pageA)).To(Succeed())
			Expect(engine.Process(pageA)).To(Succeed())
			Expect(fired).To(Equal([]uint64{1}), "a second promotion past the cap must not fire again")
		})
	})

	Describe("wiring a gomock WearCharger", func() {
		It("passes the pre-swap identities of both slots to SwapCharge and SwapTransferBytes", func() {
			ctrl := gomock.NewController(GinkgoT())
			defer ctrl.Finish()
			mockCharger := mocks.NewMockWearCharger(ctrl)

			mockCharger.EXPECT().WriteCharge(pageA).Return(uint64(3)).Times(2)
			mockCharger.EXPECT().SwapCharge(pageA, pageB).Return(uint64(5), uint64(9))
			mockCharger.EXPECT().SwapTransferBytes(pageA, pageB).Return(uint64(64), uint64(16))

			engine, err := queueengine.MakeBuilder[uint64]().
				WithNumBuckets(2).
				WithBitsPerSlot(1).
				WithCellWriteEndurance(2).
				WithWearCharger(mockCharger).
				Build()
			Expect(err).NotTo(HaveOccurred())
			engine.Seed([]uint64{pageA, pageB})

			Expect(engine.Process(pageA)).To(Succeed())
			Expect(engine.Process(pageA)).To(Succeed())

			Expect(engine.TotalBytesTransferred()).To(Equal(uint64(64)))
			Expect(engine.TotalBytesDelay()).To(Equal(uint64(16)))
		})
	})

	Describe("placeholders", func() {
		It("are not tracked by the identity map", func() {
			charger := fixedCharger{write: 1}
			engine, err := queueengine.MakeBuilder[uint64]().
				WithNumBuckets(2).
				WithBitsPerSlot(1).
				WithCellWriteEndurance(2).
				WithWearCharger(charger).
				Build()
			Expect(err).NotTo(HaveOccurred())
			engine.Seed([]uint64{pageA})
			engine.SeedPlaceholders(3, 0)

			Expect(engine.QueueLen(0)).To(Equal(4))
			Expect(engine.Process(0)).To(HaveOccurred(), "placeholder identities are not addressable by Process")
		})
	})

	Describe("builder validation", func() {
		It("rejects a bucket interval smaller than bits per slot", func() {
			charger := fixedCharger{write: 1}
			_, err := queueengine.MakeBuilder[uint64]().
				WithNumBuckets(8).
				WithBitsPerSlot(4).
				WithCellWriteEndurance(1).
				WithWearCharger(charger).
				Build()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("MN comparator", func() {
		It("uses strict greater-than so an exact boundary hit does not yet promote", func() {
			charger := fixedCharger{write: 1}
			engine, err := queueengine.MakeBuilder[uint64]().
				WithNumBuckets(4).
				WithBitsPerSlot(1).
				WithCellWriteEndurance(4).
				WithWearCharger(charger).
				WithComparator(queueengine.StrictlyGreater).
				Build()
			Expect(err).NotTo(HaveOccurred())
			engine.Seed([]uint64{pageA})

			Expect(engine.Process(pageA)).To(Succeed())
			Expect(engine.Process(pageA)).To(Succeed())
			Expect(engine.QueueLen(0)).To(Equal(1), "interval_bfs==bucket_interval must not promote under MN's operator")
		})
	})
})

func findByQueue(e *queueengine.Engine[uint64], idx int) *queueengine.Element[uint64] {
	for _, el := range e.AllElements() {
		if el.QueueIdx == idx {
			return el
		}
	}
	return nil
}
