package runner

import (
	"log/slog"
	"os"

	"github.com/rs/xid"

	"gitlab.com/akita/akita/v3/sim"

	"gitlab.com/akita/nvwear/errs"
	"gitlab.com/akita/nvwear/jobtable"
	"gitlab.com/akita/nvwear/promoevents"
	"gitlab.com/akita/nvwear/queueengine"
	"gitlab.com/akita/nvwear/runledger"
	"gitlab.com/akita/nvwear/statusserver"
)

const incrementalDumpEveryNEpochs = 100000000

// MNRunner wires the multi-node simulation: a jobtable.Table/WearModel and
// a queueengine.Engine[uint64] keyed on job index, one element per node.
type MNRunner struct {
	cfg    *MNConfig
	logger *slog.Logger
	runID  string
	ledger *runledger.RunLedger

	table  *jobtable.Table
	model  *jobtable.WearModel
	engine *queueengine.Engine[uint64]

	emitter *promoevents.Emitter[float64]
	status  *statusserver.StatusServer

	statsOut string
}

// NewMNRunner validates cfg and parses the jobs descriptor, but does not
// yet build the engine or run the simulation.
func NewMNRunner(cfg *MNConfig, logger *slog.Logger) (*MNRunner, error) {
	runID := xid.New().String()
	ledger := runledger.NewRunLedger(runID)

	table, err := jobtable.Parse(cfg.JobsDescriptor, cfg.SchedulerQuantaS)
	if err != nil {
		return nil, err
	}
	model := jobtable.NewWearModel(table)

	bitsPerNode := cfg.NBytesPerNode * 8
	bucketCap := bitsPerNode * cfg.CellWriteEndurance
	bucketInterval := bucketCap / cfg.NBuckets
	if bucketInterval < bitsPerNode {
		return nil, &errs.ConfigError{Msg: "bucket interval must be >= bits per node to avoid skipping buckets"}
	}

	r := &MNRunner{
		cfg:      cfg,
		logger:   logger,
		runID:    runID,
		ledger:   ledger,
		table:    table,
		model:    model,
		statsOut: statsOutPath(cfg.Ambient.StatsOut, runID, "mnqueues"),
	}

	if cfg.NPromotionsToTrace != 0 {
		f, err := os.Create("mnqueues-promotion-timestamps-f64.bin")
		if err != nil {
			return nil, &errs.IoError{Msg: "creating promotion event trace file", Err: err}
		}
		ledger.Register("event trace", f)
		r.emitter = promoevents.NewEmitter[float64](f, cfg.NPromotionsToTrace)
	}

	if cfg.Ambient.StatsAddr != "" {
		r.status = statusserver.New(cfg.Ambient.StatsAddr)
		r.status.Start()
		ledger.Register("status server", r.status)
	}

	return r, nil
}

// Close flushes and closes every file this runner opened.
func (r *MNRunner) Close() []error { return r.ledger.Close() }

// Run drives the multi-node simulation. If the configured rebalance toggle
// is off, it skips the promotion loop entirely and reports the no-rebalance
// closed-form lifetime estimate instead (SPEC_FULL.md §4.3).
func (r *MNRunner) Run() error {
	if !r.cfg.Rebalance {
		return r.runNoRebalance()
	}
	return r.runRebalance()
}

func (r *MNRunner) runNoRebalance() error {
	most := r.table.MostWriteIntensive()
	bitsPerNode := r.cfg.NBytesPerNode * 8
	bucketCap := bitsPerNode * r.cfg.CellWriteEndurance

	nQuantas := bucketCap / most.BitWritesPerQuanta
	systemTimeS := r.cfg.SchedulerQuantaS * float64(nQuantas)

	s := newStatSet(r.runID)
	s.add("QUEUES", r.cfg.NBuckets)
	s.add("CELL_WRITE_ENDURANCE", r.cfg.CellWriteEndurance)
	s.add("PAGE_SIZE_BYTES", r.cfg.PageSize)
	s.add("N_NODES", r.table.NNodes())
	s.add("MEMORY_BYTES_PER_NODE", r.cfg.NBytesPerNode)
	s.add("EPOCHS", nQuantas)
	s.add("SYSTEM_TIME_S", systemTimeS)
	s.add("MOST_WRITTEN_NODE_BFS", most.BitWritesPerQuanta*nQuantas)
	s.add("MOST_WRITTEN_NODE_WEAR_PCT", 1.0)
	s.add("MOST_WRITTEN_NODE_QUEUE", r.cfg.NBuckets-1)
	s.add("LOWEST_ACTIVE_QUEUE", r.cfg.NBuckets-1)
	s.add("TOTAL_BYTES_TRANSFERRED", uint64(0))
	s.add("TOTAL_BYTES_DELAY", uint64(0))
	s.add("TOTAL_N_PROMOTIONS", uint64(0))
	s.add("LIFETIME_EST_VIAMAX_S", r.cfg.SchedulerQuantaS*float64(nQuantas))
	s.add("LIFETIME_EST_VIAMAX_Y", systemTimeS/secondsPerYear)
	s.add("LIFETIME_EST_VIAAVG_S", 0.0)
	s.add("LIFETIME_EST_VIAAVG_Y", 0.0)

	echoStdout("termination", s)
	publishStatus(r.status, s)
	return r.writeStatsFile(s)
}

func (r *MNRunner) runRebalance() error {
	engine, err := queueengine.MakeBuilder[uint64]().
		WithNumBuckets(int(r.cfg.NBuckets)).
		WithBitsPerSlot(r.cfg.NBytesPerNode*8).
		WithCellWriteEndurance(r.cfg.CellWriteEndurance).
		WithWearCharger(r.model).
		WithComparator(queueengine.StrictlyGreater).
		Build()
	if err != nil {
		return err
	}
	r.engine = engine

	idents := make([]uint64, r.table.NNodes())
	for i := range idents {
		idents[i] = uint64(i)
	}
	r.engine.Seed(idents)

	var epoch uint64
	for {
		for _, job := range r.table.Jobs() {
			before := r.engine.TotalPromotions()
			err := r.engine.Process(job.Index)

			if r.emitter != nil && r.engine.TotalPromotions() > before {
				ts := r.engine.SystemTime()
				r.emitter.Emit(float64(ts))
			}

			if err == queueengine.ErrWornOut {
				r.dumpStats(true)
				return nil
			}
			if err != nil {
				return err
			}
		}

		r.engine.AdvanceSystemTime(sim.VTimeInSec(r.cfg.SchedulerQuantaS))
		epoch++

		if epoch%incrementalDumpEveryNEpochs == 0 {
			r.dumpStats(false)
		}

		if r.cfg.NIterations != 0 && epoch == r.cfg.NIterations {
			break
		}
	}

	r.dumpStats(true)
	return nil
}

func (r *MNRunner) dumpStats(final bool) {
	snap := r.engine.Snapshot(final, 0)
	s := newStatSet(r.runID)

	if final {
		s.add("QUEUES", r.cfg.NBuckets)
		s.add("CELL_WRITE_ENDURANCE", r.cfg.CellWriteEndurance)
		s.add("PAGE_SIZE_BYTES", r.cfg.PageSize)
		s.add("N_NODES", r.table.NNodes())
		s.add("MEMORY_BYTES_PER_NODE", r.cfg.NBytesPerNode)
	}

	s.add("EPOCHS", uint64(snap.SystemTimeS/r.cfg.SchedulerQuantaS))
	s.add("SYSTEM_TIME_S", snap.SystemTimeS)
	if most := r.engine.MostWritten(); most != nil {
		s.add("MOST_WRITTEN_NODE_BFS", most.LifetimeBFs)
		s.add("MOST_WRITTEN_NODE_QUEUE", most.QueueIdx)
	}
	s.add("MOST_WRITTEN_NODE_WEAR_PCT", snap.MostWrittenWearPct)
	s.add("LOWEST_ACTIVE_QUEUE", r.engine.LowestActiveQueue())
	s.add("TOTAL_BYTES_TRANSFERRED", snap.TotalBytesTransferred)
	s.add("TOTAL_BYTES_DELAY", snap.TotalBytesDelay)
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
		r.writeStatsFile(s)
	}
}

func (r *MNRunner) writeStatsFile(s *statSet) error {
	f, err := os.Create(r.statsOut)
	if err != nil {
		return &errs.IoError{Msg: "creating stats output file", Err: err}
	}
	defer f.Close()
	return s.writeTo(f)
}
