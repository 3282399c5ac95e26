package queueengine

import (
	"container/list"
	"fmt"

	"gitlab.com/akita/akita/v3/sim"

	"gitlab.com/akita/nvwear/errs"
)

// Comparator decides whether an element's accumulated interval bit-flips
// have crossed the promotion threshold. The two simulators this engine
// unifies disagree on the operator at the boundary (SN uses >=, MN uses >);
// see SPEC_FULL.md's Open Questions. Default via MakeBuilder is GreaterOrEqual.
type Comparator func(intervalBFs, bucketInterval uint64) bool

// GreaterOrEqual is the single-node comparator.
func GreaterOrEqual(intervalBFs, bucketInterval uint64) bool {
	return intervalBFs >= bucketInterval
}

// StrictlyGreater is the multi-node comparator.
func StrictlyGreater(intervalBFs, bucketInterval uint64) bool {
	return intervalBFs > bucketInterval
}

// Engine is the shared promotion/rotation wear-leveling core. It owns N
// FIFO queues of Element[I] and a bijective identity map, and knows nothing
// about pages, jobs, trace files, or bit-flip arithmetic beyond what its
// WearCharger tells it.
type Engine[I comparable] struct {
	queues   []*list.List
	identity map[I]*list.Element

	bitsPerSlot    uint64
	cellEndurance  uint64
	bucketCap      uint64
	bucketInterval uint64
	crossesBucket  Comparator

	charger WearCharger[I]

	lowestActiveQueue int
	mostWritten       *Element[I]

	totalPromotions       uint64
	totalBytesTransferred uint64
	totalBytesDelay       uint64

	nPromotionsToEventTrace uint64
	onEventPromotion        func(total uint64)

	systemTime sim.VTimeInSec
}

// Builder constructs an Engine with validated parameters, in the teacher
// codebase's With...().Build() style.
type Builder[I comparable] struct {
	nBuckets                int
	bitsPerSlot             uint64
	cellEndurance           uint64
	charger                 WearCharger[I]
	crossesBucket           Comparator
	nPromotionsToEventTrace uint64
	onEventPromotion        func(total uint64)
}

// MakeBuilder returns a Builder defaulting to the single-node (>=) bucket
// comparator.
func MakeBuilder[I comparable]() Builder[I] {
	return Builder[I]{crossesBucket: GreaterOrEqual}
}

func (b Builder[I]) WithNumBuckets(n int) Builder[I] {
	b.nBuckets = n
	return b
}

func (b Builder[I]) WithBitsPerSlot(bits uint64) Builder[I] {
	b.bitsPerSlot = bits
	return b
}

func (b Builder[I]) WithCellWriteEndurance(e uint64) Builder[I] {
	b.cellEndurance = e
	return b
}

func (b Builder[I]) WithWearCharger(c WearCharger[I]) Builder[I] {
	b.charger = c
	return b
}

func (b Builder[I]) WithComparator(c Comparator) Builder[I] {
	b.crossesBucket = c
	return b
}

// WithEventTrace arms promotion-timestamp emission: onPromotion is called
// once per rotation-swap promotion while the running promotion count is
// <= nPromotions, never afterward.
func (b Builder[I]) WithEventTrace(nPromotions uint64, onPromotion func(total uint64)) Builder[I] {
	b.nPromotionsToEventTrace = nPromotions
	b.onEventPromotion = onPromotion
	return b
}

// Build validates and constructs the Engine with N empty queues.
func (b Builder[I]) Build() (*Engine[I], error) {
	if b.nBuckets <= 0 {
		return nil, &errs.ConfigError{Msg: "number of buckets must be positive"}
	}
	if b.bitsPerSlot == 0 {
		return nil, &errs.ConfigError{Msg: "bits per slot must be positive"}
	}
	if b.cellEndurance == 0 {
		return nil, &errs.ConfigError{Msg: "cell write endurance must be positive"}
	}
	if b.charger == nil {
		return nil, &errs.ConfigError{Msg: "a wear charger is required"}
	}

	bucketCap := b.bitsPerSlot * b.cellEndurance
	bucketInterval := bucketCap / uint64(b.nBuckets)
	if bucketInterval < b.bitsPerSlot {
		return nil, &errs.ConfigError{Msg: fmt.Sprintf(
			"bucket interval (%d) must be >= bits per slot (%d) to avoid skipping buckets",
			bucketInterval, b.bitsPerSlot)}
	}

	queues := make([]*list.List, b.nBuckets)
	for i := range queues {
		queues[i] = list.New()
	}

	return &Engine[I]{
		queues:                  queues,
		identity:                make(map[I]*list.Element),
		bitsPerSlot:             b.bitsPerSlot,
		cellEndurance:           b.cellEndurance,
		bucketCap:               bucketCap,
		bucketInterval:          bucketInterval,
		crossesBucket:           b.crossesBucket,
		charger:                 b.charger,
		nPromotionsToEventTrace: b.nPromotionsToEventTrace,
		onEventPromotion:        b.onEventPromotion,
	}, nil
}

// Seed places one element per ident into queue 0 and registers it in the
// identity map. Call once, before any Process call.
func (e *Engine[I]) Seed(idents []I) {
	for _, ident := range idents {
		elem := &Element[I]{Ident: ident, QueueIdx: 0}
		node := e.queues[0].PushBack(elem)
		e.identity[ident] = node
	}
}

// SeedPlaceholders places n filler elements at the head of queue 0, ahead of
// any seeded elements, carrying placeholder as their identity, without
// registering them in the identity map — they
// exist only to size the memory, exactly as the single-node sizing rule
// (SPEC_FULL.md §3 Sizing) requires.
func (e *Engine[I]) SeedPlaceholders(n int, placeholder I) {
	for i := 0; i < n; i++ {
		elem := &Element[I]{Ident: placeholder, QueueIdx: 0}
		e.queues[0].PushFront(elem)
	}
}

// BucketInterval returns the wear threshold that triggers promotion.
func (e *Engine[I]) BucketInterval() uint64 { return e.bucketInterval }

// BucketCap returns the total wear budget of a slot.
func (e *Engine[I]) BucketCap() uint64 { return e.bucketCap }

// LowestActiveQueue returns the index below which all queues are empty.
func (e *Engine[I]) LowestActiveQueue() int { return e.lowestActiveQueue }

// TotalPromotions returns the number of rotation-swap promotions so far.
func (e *Engine[I]) TotalPromotions() uint64 { return e.totalPromotions }

// TotalBytesTransferred returns the cumulative working-set bytes moved by
// rotation swaps (zero for chargers that report no transfer size).
func (e *Engine[I]) TotalBytesTransferred() uint64 { return e.totalBytesTransferred }

// TotalBytesDelay returns the cumulative full-duplex transfer delay, in
// bytes, accrued by rotation swaps.
func (e *Engine[I]) TotalBytesDelay() uint64 { return e.totalBytesDelay }

// MostWritten returns the element with the largest lifetime bit-flip count
// observed so far, or nil if Process has never been called.
func (e *Engine[I]) MostWritten() *Element[I] { return e.mostWritten }

// AdvanceSystemTime adds dt to the engine's notion of wall time, called by
// the driver once per full trace pass (SN) or scheduler epoch (MN).
func (e *Engine[I]) AdvanceSystemTime(dt sim.VTimeInSec) { e.systemTime += dt }

// SystemTime returns the current simulated wall-clock time.
func (e *Engine[I]) SystemTime() sim.VTimeInSec { return e.systemTime }

// ErrWornOut is returned by Process when the processed element was promoted
// past the hottest queue: the simulation has reached its normal terminal
// condition, not a failure.
var ErrWornOut = fmt.Errorf("element reached terminal wear-out")

// Process resolves ident through the identity map, charges it a write (SN)
// or quantum (MN) via the WearCharger, promotes-and-swaps it if its interval
// has crossed the bucket threshold, and returns ErrWornOut if that promotion
// would exceed the hottest queue.
func (e *Engine[I]) Process(ident I) error {
	node, ok := e.identity[ident]
	if !ok {
		return &errs.ConfigError{Msg: fmt.Sprintf("identity %v is not tracked by this engine", ident)}
	}
	elem := node.Value.(*Element[I])
	charge := e.charger.WriteCharge(ident)

	if e.crossesBucket(elem.IntervalBFs, e.bucketInterval) {
		if err := e.promoteAndSwap(node, elem); err != nil {
			elem.LifetimeBFs += charge
			e.updateMostWritten(elem)
			return err
		}
	} else {
		elem.IntervalBFs += charge
	}

	elem.LifetimeBFs += charge
	e.updateMostWritten(elem)
	return nil
}

func (e *Engine[I]) updateMostWritten(elem *Element[I]) {
	if e.mostWritten == nil || elem.LifetimeBFs > e.mostWritten.LifetimeBFs {
		e.mostWritten = elem
	}
}

// promoteAndSwap implements SPEC_FULL.md §4.3. node/elem are the element
// being promoted; its interval has already been observed to cross the
// bucket threshold, by the caller.
func (e *Engine[I]) promoteAndSwap(node *list.Element, elem *Element[I]) error {
	qOld := elem.QueueIdx
	qNew := qOld + 1

	e.queues[qOld].Remove(node)

	if e.queues[e.lowestActiveQueue].Len() == 0 {
		e.lowestActiveQueue++
	}

	if qNew == len(e.queues) {
		return ErrWornOut
	}

	elem.QueueIdx = qNew
	elem.IntervalBFs -= e.bucketInterval
	newNode := e.queues[qNew].PushBack(elem)
	e.identity[elem.Ident] = newNode

	if e.lowestActiveQueue < qNew {
		e.rotationSwap(newNode, elem)
	}

	return nil
}

func (e *Engine[I]) rotationSwap(promotedNode *list.Element, promoted *Element[I]) {
	lowQueue := e.queues[e.lowestActiveQueue]
	coldNode := lowQueue.Front()
	cold := coldNode.Value.(*Element[I])
	lowQueue.MoveToBack(coldNode)

	promotedOldIdent, coldOldIdent := promoted.Ident, cold.Ident
	promoted.Ident, cold.Ident = coldOldIdent, promotedOldIdent

	e.identity[promoted.Ident] = promotedNode
	e.identity[cold.Ident] = coldNode

	promotedCharge, coldCharge := e.charger.SwapCharge(promotedOldIdent, coldOldIdent)
	promoted.IntervalBFs += promotedCharge
	promoted.LifetimeBFs += promotedCharge
	cold.IntervalBFs += coldCharge
	cold.LifetimeBFs += coldCharge

	transferred, delay := e.charger.SwapTransferBytes(promotedOldIdent, coldOldIdent)
	e.totalBytesTransferred += transferred
	e.totalBytesDelay += delay

	e.totalPromotions++
	if e.onEventPromotion != nil && e.totalPromotions <= e.nPromotionsToEventTrace {
		e.onEventPromotion(e.totalPromotions)
	}
}

// AllElements returns every element across every queue, in queue-then-FIFO
// order. Used only for whole-memory statistics (e.g. the average-wear
// lifetime estimate); never on the hot path.
func (e *Engine[I]) AllElements() []*Element[I] {
	var out []*Element[I]
	for _, q := range e.queues {
		for n := q.Front(); n != nil; n = n.Next() {
			out = append(out, n.Value.(*Element[I]))
		}
	}
	return out
}

// QueueLen returns the number of elements currently in queue idx, for tests
// and diagnostics.
func (e *Engine[I]) QueueLen(idx int) int { return e.queues[idx].Len() }

// NumQueues returns N.
func (e *Engine[I]) NumQueues() int { return len(e.queues) }
