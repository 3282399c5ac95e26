package runner

import (
	"log/slog"
	"math/bits"
	"os"
	"path/filepath"

	"github.com/rs/xid"

	"gitlab.com/akita/akita/v3/sim"

	"gitlab.com/akita/nvwear/bittrack"
	"gitlab.com/akita/nvwear/errs"
	"gitlab.com/akita/nvwear/promoevents"
	"gitlab.com/akita/nvwear/queueengine"
	"gitlab.com/akita/nvwear/runledger"
	"gitlab.com/akita/nvwear/statusserver"
	"gitlab.com/akita/nvwear/trace"
)

// SNRunner wires the single-node simulation: a bittrack.WearModel, a
// trace.Reader over memtrace.bin, and a queueengine.Engine[uint64] keyed
// on page address.
type SNRunner struct {
	cfg    *SNConfig
	logger *slog.Logger
	runID  string
	ledger *runledger.RunLedger

	reader  *trace.Reader
	model   *bittrack.WearModel
	summary *bittrack.Summary
	engine  *queueengine.Engine[uint64]

	emitter *promoevents.Emitter[uint64]
	status  *statusserver.StatusServer

	nBytesMem uint64
	nPagesMem uint64
	statsOut  string
}

// NewSNRunner validates cfg and opens the bittrack and trace inputs. It does
// not build the queueengine.Engine or run the simulation loop; Run does
// both, after its warm-up pass has sized memory.
func NewSNRunner(cfg *SNConfig, logger *slog.Logger) (*SNRunner, error) {
	runID := xid.New().String()
	ledger := runledger.NewRunLedger(runID)

	summary, err := bittrack.LoadSummary(filepath.Join(cfg.BitTrackDir, "bittrack.txt"))
	if err != nil {
		return nil, err
	}

	var model *bittrack.WearModel
	if cfg.WriteFactorMode == "perpage" {
		perPage, err := bittrack.LoadPerPage(filepath.Join(cfg.BitTrackDir, "bittrack.bin"), summary)
		if err != nil {
			return nil, err
		}
		model = bittrack.NewPerPageWearModel(summary, perPage)
	} else {
		model = bittrack.NewAverageWearModel(summary)
	}

	reader := trace.NewReader(logger)
	if err := reader.Load(filepath.Join(cfg.MemTraceDir, "memtrace.bin"), 0); err != nil {
		return nil, err
	}
	ledger.Register("trace reader", reader)

	if reader.NWritesInTrace() == 0 {
		return nil, &errs.ConfigError{Msg: "trace contains no writes; lifetime = infinity"}
	}

	bucketCap := summary.BitsPerPage * cfg.CellWriteEndurance
	bucketInterval := bucketCap / cfg.NBuckets
	if bucketInterval < summary.BitsPerPage {
		return nil, &errs.ConfigError{Msg: "bucket interval must be >= bits per page to avoid skipping buckets"}
	}

	r := &SNRunner{
		cfg:      cfg,
		logger:   logger,
		runID:    runID,
		ledger:   ledger,
		reader:   reader,
		model:    model,
		summary:  summary,
		statsOut: statsOutPath(cfg.Ambient.StatsOut, runID, "snqueues"),
	}

	if cfg.NPromotionsToTrace != 0 {
		f, err := os.Create("snqueues-promotion-timestamps-uint64.bin")
		if err != nil {
			return nil, &errs.IoError{Msg: "creating promotion event trace file", Err: err}
		}
		ledger.Register("event trace", f)
		r.emitter = promoevents.NewEmitter[uint64](f, cfg.NPromotionsToTrace)
	}

	if cfg.Ambient.StatsAddr != "" {
		r.status = statusserver.New(cfg.Ambient.StatsAddr)
		r.status.Start()
		ledger.Register("status server", r.status)
	}

	return r, nil
}

// Close flushes and closes every file this runner opened.
func (r *SNRunner) Close() []error { return r.ledger.Close() }

// Run drives the simulation to completion: a warm-up pass over the trace
// to discover the distinct page set and size memory, then the main
// promote-and-swap loop, dumping incremental stats at the end of every
// pass and terminal stats once the loop ends.
func (r *SNRunner) Run() error {
	pages, err := r.warmUpPass()
	if err != nil {
		return err
	}

	r.sizeMemory(uint64(len(pages)))

	r.engine, err = queueengine.MakeBuilder[uint64]().
		WithNumBuckets(int(r.cfg.NBuckets)).
		WithBitsPerSlot(r.summary.BitsPerPage).
		WithCellWriteEndurance(r.cfg.CellWriteEndurance).
		WithWearCharger(r.model).
		Build()
	if err != nil {
		return err
	}

	r.engine.Seed(pages)
	r.engine.SeedPlaceholders(int(r.nPagesMem-uint64(len(pages))), 0)

	traceEndCycle := r.reader.LastRecord().Cycle

	for {
		if r.reader.IsEndOfPass() {
			r.engine.AdvanceSystemTime(sim.VTimeInSec(r.cfg.TraceTimeS))
			r.dumpStats(false)
			if r.reader.NFullPasses()+1 == r.cfg.NIterations && r.cfg.NIterations != 0 {
				break
			}
		}

		rec := r.reader.Next()
		if !rec.IsWrite {
			continue
		}

		page := trace.LineAddrToPageAddr(rec.LineAddr, r.summary.LineSizeLog2, r.summary.PageSizeLog2)

		before := r.engine.TotalPromotions()
		err := r.engine.Process(page)

		if r.emitter != nil && r.engine.TotalPromotions() > before {
			ts := rec.Cycle + r.reader.NFullPasses()*traceEndCycle
			r.emitter.Emit(ts)
		}

		if err == queueengine.ErrWornOut {
			break
		}
		if err != nil {
			return err
		}
	}

	r.dumpStats(true)
	return nil
}

// warmUpPass scans one full pass of the trace, returning every distinct
// page address observed in first-seen order, then rewinds the reader
// without counting that scan as a pass.
func (r *SNRunner) warmUpPass() ([]uint64, error) {
	seen := make(map[uint64]bool)
	var pages []uint64

	for {
		rec := r.reader.Next()
		page := trace.LineAddrToPageAddr(rec.LineAddr, r.summary.LineSizeLog2, r.summary.PageSizeLog2)
		if !seen[page] {
			seen[page] = true
			pages = append(pages, page)
		}
		if r.reader.IsEndOfPass() {
			break
		}
	}

	return pages, r.reader.Reset(false)
}

// sizeMemory implements the SN sizing rule: if the trace's distinct page
// count exceeds what was requested, round up to the next power of two;
// otherwise honor the request as-is.
func (r *SNRunner) sizeMemory(nPagesRSS uint64) {
	nBytesRSS := nPagesRSS * r.summary.PageSizeBytes
	nPagesRequested := r.cfg.NBytesRequested / r.summary.PageSizeBytes

	if nPagesRSS > nPagesRequested {
		if isPowerOfTwo(nBytesRSS) {
			r.nBytesMem = nBytesRSS
		} else {
			r.nBytesMem = 1 << uint(bits.Len64(nBytesRSS))
		}
	} else {
		r.nBytesMem = r.cfg.NBytesRequested
	}
	r.nPagesMem = r.nBytesMem / r.summary.PageSizeBytes
}

func (r *SNRunner) dumpStats(final bool) {
	snap := r.engine.Snapshot(final, r.cfg.NBytesRequested*8*r.cfg.CellWriteEndurance)
	s := newStatSet(r.runID)

	if final {
		s.add("QUEUES", r.cfg.NBuckets)
		s.add("CELL_WRITE_ENDURANCE", r.cfg.CellWriteEndurance)
		s.add("PAGE_SIZE_BYTES", r.summary.PageSizeBytes)
		s.add("MEMORY_BYTES_REQUESTED", r.cfg.NBytesRequested)
		s.add("MEMORY_BYTES_INSIM", r.nBytesMem)
		s.add("MEMORY_PAGES_INSIM", r.nPagesMem)
	}

	s.add("FULL_PASSES", r.reader.NFullPasses())
	s.add("SYSTEM_TIME_S", snap.SystemTimeS)
	if most := r.engine.MostWritten(); most != nil {
		s.add("MOST_WRITTEN_FRAME_BFS", most.LifetimeBFs)
		s.add("MOST_WRITTEN_FRAME_QUEUE", most.QueueIdx)
	}
	s.add("MOST_WRITTEN_FRAME_WEAR_PCT", snap.MostWrittenWearPct)
	s.add("LOWEST_ACTIVE_QUEUE", r.engine.LowestActiveQueue())
	s.add("TOTAL_N_PROMOTIONS", snap.TotalNPromotions)
	s.add("LIFETIME_EST_VIAMAX_S", snap.LifetimeEstViaMaxS)
	s.add("LIFETIME_EST_VIAMAX_Y", snap.LifetimeEstViaMaxY)

	if final {
		s.add("LIFETIME_EST_VIAAVG_S", snap.LifetimeEstViaAvgS)
		s.add("LIFETIME_EST_VIAAVG_Y", snap.LifetimeEstViaAvgY)
	}

	status := "incremental"
	if final {
		status = "termination"
	}
	echoStdout(status, s)
	publishStatus(r.status, s)

	if final {
		if f, err := os.Create(r.statsOut); err == nil {
			defer f.Close()
			s.writeTo(f)
		}
	}
}
