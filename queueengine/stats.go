package queueengine

// Snapshot is the subset of an Engine's state that feeds the driver's
// incremental and terminal stats lines (SPEC_FULL.md §6).
type Snapshot struct {
	SystemTimeS           float64
	TotalBytesTransferred uint64
	TotalBytesDelay       uint64
	TotalNPromotions      uint64
	MostWrittenWearPct    float64
	LifetimeEstViaMaxS    float64
	LifetimeEstViaMaxY    float64
	LifetimeEstViaAvgS    float64
	LifetimeEstViaAvgY    float64
}

const secondsPerYear = 86400 * 365

// Snapshot computes the point-in-time stats derived from the engine's
// counters. viaAvg is only meaningful on the final dump (it walks every
// element), so callers pass includeAvg=false for incremental dumps.
// bitsPossibleOverride is the denominator LifetimeEstViaAvg divides into;
// pass 0 to use the in-sim memory size.
func (e *Engine[I]) Snapshot(includeAvg bool, bitsPossibleOverride uint64) Snapshot {
	s := Snapshot{
		SystemTimeS:           float64(e.systemTime),
		TotalBytesTransferred: e.totalBytesTransferred,
		TotalBytesDelay:       e.totalBytesDelay,
		TotalNPromotions:      e.totalPromotions,
	}

	if e.mostWritten != nil && e.bucketCap > 0 {
		s.MostWrittenWearPct = float64(e.mostWritten.LifetimeBFs) / float64(e.bucketCap)
	}
	if s.MostWrittenWearPct > 0 {
		s.LifetimeEstViaMaxS = s.SystemTimeS / s.MostWrittenWearPct
		s.LifetimeEstViaMaxY = s.LifetimeEstViaMaxS / secondsPerYear
	}

	if includeAvg {
		s.LifetimeEstViaAvgS, s.LifetimeEstViaAvgY = e.lifetimeEstViaAvg(bitsPossibleOverride)
	}

	return s
}

// lifetimeEstViaAvg divides the total bit-flips performed across every
// element by the bit-flips possible across the whole memory, so the
// estimate reflects wear spread evenly rather than the single
// most-written element. bitsPossibleOverride lets a caller substitute the
// requested memory size for the in-sim one (SN sizing can round the latter
// up past what was asked for); 0 falls back to the in-sim size.
func (e *Engine[I]) lifetimeEstViaAvg(bitsPossibleOverride uint64) (secs, years float64) {
	elems := e.AllElements()
	if len(elems) == 0 {
		return 0, 0
	}

	var bfsPerformed uint64
	for _, el := range elems {
		bfsPerformed += el.LifetimeBFs
	}

	bitsPossible := bitsPossibleOverride
	if bitsPossible == 0 {
		bitsPossible = uint64(len(elems)) * e.bitsPerSlot * e.cellEndurance
	}
	if bitsPossible == 0 {
		return 0, 0
	}

	fracBFs := float64(bfsPerformed) / float64(bitsPossible)
	if fracBFs == 0 {
		return 0, 0
	}

	secs = float64(e.systemTime) / fracBFs
	years = secs / secondsPerYear
	return secs, years
}
