package bittrack

// WearModel converts page writes into bit-flip charges for the
// single-node queueengine.Engine[uint64]. In Average mode every write
// costs the same summary-derived charge; in PerPage mode a page present in
// the per-page table uses its measured charge, falling back to the
// average for pages the table doesn't cover.
type WearModel struct {
	summary *Summary
	perPage *PerPage
}

// NewAverageWearModel builds a WearModel that charges every write the
// summary's AverageBFPW regardless of which page it touches.
func NewAverageWearModel(s *Summary) *WearModel {
	return &WearModel{summary: s}
}

// NewPerPageWearModel builds a WearModel that prefers pp's measured
// charges, falling back to s.AverageBFPW for pages pp has no entry for.
func NewPerPageWearModel(s *Summary, pp *PerPage) *WearModel {
	return &WearModel{summary: s, perPage: pp}
}

// bfpw is the charge a write to page would incur: the per-page measured
// value if known, else the summary average.
func (m *WearModel) bfpw(page uint64) uint64 {
	if m.perPage != nil {
		if v, ok := m.perPage.BFPW(page); ok {
			return v
		}
	}
	return m.summary.AverageBFPW
}

// WriteCharge implements queueengine.WearCharger.
func (m *WearModel) WriteCharge(page uint64) uint64 {
	return m.bfpw(page)
}

// SwapCharge implements queueengine.WearCharger. A rotation swap charges
// both the promoted slot and the cold slot with the bit-flip-per-write
// rate of the promoted page's former identity: the promotion that
// triggered the swap is itself a write, and the swap mechanics apply that
// same write's charge to both halves of the exchange.
func (m *WearModel) SwapCharge(promotedOldIdent, coldOldIdent uint64) (promotedCharge, coldCharge uint64) {
	c := m.bfpw(promotedOldIdent)
	return c, c
}

// SwapTransferBytes implements queueengine.WearCharger. A single-node
// rotation swap exchanges logical identities between two fixed physical
// slots; no data moves and no link is occupied, so both returned values
// are zero.
func (m *WearModel) SwapTransferBytes(promotedOldIdent, coldOldIdent uint64) (bytes, delay uint64) {
	return 0, 0
}
