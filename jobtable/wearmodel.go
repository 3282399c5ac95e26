package jobtable

import pkgmath "github.com/pkg/math"

// WearModel adapts a Table into a queueengine.WearCharger[uint64] for the
// multi-node engine, where an element's identity is a job index.
type WearModel struct {
	table *Table
}

// NewWearModel builds a WearModel over t.
func NewWearModel(t *Table) *WearModel {
	return &WearModel{table: t}
}

// WriteCharge implements queueengine.WearCharger: every scheduler quantum
// charges the mapped job's full bit_writes_per_quanta budget.
func (m *WearModel) WriteCharge(jobIdx uint64) uint64 {
	return m.table.jobs[jobIdx].BitWritesPerQuanta
}

// SwapCharge implements queueengine.WearCharger. Unlike the single-node
// model, each side of an MN rotation swap is charged using its OWN former
// job's rss*write_factor product, not the other side's: the promoted
// node's former job was the one whose write pattern triggered the event,
// so it is charged as though that job had just written to it once more;
// symmetrically for the cold node's former job.
func (m *WearModel) SwapCharge(promotedOldIdent, coldOldIdent uint64) (promotedCharge, coldCharge uint64) {
	promotedJob := m.table.jobs[promotedOldIdent]
	coldJob := m.table.jobs[coldOldIdent]
	promotedCharge = uint64(float64(promotedJob.RSSBytes) * promotedJob.WriteFactor)
	coldCharge = uint64(float64(coldJob.RSSBytes) * coldJob.WriteFactor)
	return promotedCharge, coldCharge
}

// SwapTransferBytes implements queueengine.WearCharger. A rotation swap
// exchanges both jobs' working sets over the interconnect: the total bytes
// moved is the sum of both RSS, and the full-duplex transfer delay is
// bounded by the larger of the two.
func (m *WearModel) SwapTransferBytes(promotedOldIdent, coldOldIdent uint64) (bytes, delay uint64) {
	promotedRSS := m.table.jobs[promotedOldIdent].RSSBytes
	coldRSS := m.table.jobs[coldOldIdent].RSSBytes
	return promotedRSS + coldRSS, pkgmath.MaxUint64(promotedRSS, coldRSS)
}
