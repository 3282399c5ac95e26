// Package queueengine implements the multi-queue promotion/rotation
// wear-leveling core shared by the single-node (page-keyed) and multi-node
// (job-keyed) simulators. One Engine[I] serves both: I is whatever identity
// type the caller's trace keys elements by.
package queueengine

// Element is one physical slot tracked by the engine: a page frame in
// single-node mode, a node in multi-node mode. Its Ident is the logical key
// (page address or job index) currently mapped onto it; Ident changes on a
// rotation swap, QueueIdx changes on a promotion.
type Element[I comparable] struct {
	IntervalBFs uint64
	LifetimeBFs uint64
	QueueIdx    int
	Ident       I
}
