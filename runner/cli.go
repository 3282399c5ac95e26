// Package runner wires TraceReader, WearModel/jobtable, queueengine.Engine,
// the promotion-event pipeline, and the ambient stack (run ledger, logger,
// status server) into the two driver binaries: snqueues and mnqueues. It
// owns CLI parsing, the simulation loop, and stats emission.
package runner

import (
	"flag"
	"strings"

	"gitlab.com/akita/nvwear/errs"
	"gitlab.com/akita/nvwear/internal/boolstr"
	"gitlab.com/akita/nvwear/internal/shorthand"
)

// ambientFlags is the set of flags shared by both binaries: they never
// affect simulation output, only observability.
type ambientFlags struct {
	Verbose   bool
	StatsAddr string
	StatsOut  string
}

func registerAmbientFlags(fs *flag.FlagSet) *ambientFlags {
	a := &ambientFlags{}
	fs.BoolVar(&a.Verbose, "v", false, "enable debug logging")
	fs.StringVar(&a.StatsAddr, "stats-addr", "", "optional host:port to serve live stats over HTTP")
	fs.StringVar(&a.StatsOut, "stats-out", "", "override the default RUN_ID-derived stats output filename")
	return a
}

// SNConfig is the parsed, validated configuration for the single-node
// driver.
type SNConfig struct {
	NBuckets            uint64
	CellWriteEndurance  uint64
	BitTrackDir         string
	MemTraceDir         string
	WriteFactorMode     string
	TraceTimeS          float64
	NBytesRequested     uint64
	NIterations         uint64
	NPromotionsToTrace  uint64
	Ambient             *ambientFlags
}

// ParseSNConfig parses args (excluding the program name) into an SNConfig,
// mirroring SNQueues::parse_and_validate_args's flag set and validation
// order exactly.
func ParseSNConfig(args []string) (*SNConfig, error) {
	fs := flag.NewFlagSet("snqueues", flag.ContinueOnError)

	nBuckets := fs.String("n", "", "number of wear-leveling buckets")
	cellEndurance := fs.String("c", "", "cell write endurance")
	bittrackDir := fs.String("b", "", "BitTrack input directory")
	memtraceDir := fs.String("m", "", "MemTrace input directory")
	wfMode := fs.String("w", "", "write factor mode: average|perpage")
	traceTimeS := fs.Float64("t", 0.0, "trace duration in seconds")
	nIterations := fs.String("i", "0", "number of passes to run (0 = until wear-out)")
	nPromotions := fs.String("e", "0", "number of promotion events to record")
	nBytesRequested := fs.String("g", "", "requested memory size in bytes")
	ambient := registerAmbientFlags(fs)

	if err := fs.Parse(args); err != nil {
		return nil, &errs.ConfigError{Msg: err.Error()}
	}

	cfg := &SNConfig{WriteFactorMode: normalizeWriteFactorMode(*wfMode), TraceTimeS: *traceTimeS, Ambient: ambient}
	cfg.BitTrackDir = *bittrackDir
	cfg.MemTraceDir = *memtraceDir

	var err error
	if cfg.NBuckets, err = parseShorthandOrZero(*nBuckets, shorthand.Base1000); err != nil {
		return nil, err
	}
	if cfg.CellWriteEndurance, err = parseShorthandOrZero(*cellEndurance, shorthand.Base1000); err != nil {
		return nil, err
	}
	if cfg.NIterations, err = parseShorthandOrZero(*nIterations, shorthand.Base1000); err != nil {
		return nil, err
	}
	if cfg.NPromotionsToTrace, err = parseShorthandOrZero(*nPromotions, shorthand.Base1000); err != nil {
		return nil, err
	}
	if cfg.NBytesRequested, err = parseShorthandOrZero(*nBytesRequested, shorthand.Base1024); err != nil {
		return nil, err
	}

	if cfg.NBuckets == 0 {
		return nil, &errs.ConfigError{Msg: "must supply n. buckets (-n)"}
	}
	if cfg.CellWriteEndurance == 0 {
		return nil, &errs.ConfigError{Msg: "must supply cell write endurance (-c)"}
	}
	if cfg.BitTrackDir == "" {
		return nil, &errs.ConfigError{Msg: "must supply BitTrack input directory (-b)"}
	}
	if cfg.MemTraceDir == "" {
		return nil, &errs.ConfigError{Msg: "must supply MemTrace input directory (-m)"}
	}
	if cfg.WriteFactorMode != "average" && cfg.WriteFactorMode != "perpage" {
		return nil, &errs.ConfigError{Msg: "must supply write factor mode (-w <average|perpage>)"}
	}
	if cfg.TraceTimeS == 0.0 {
		return nil, &errs.ConfigError{Msg: "must supply trace time duration in seconds (-t)"}
	}
	if cfg.NBytesRequested == 0 {
		return nil, &errs.ConfigError{Msg: "must supply requested memory size in bytes (-g)"}
	}
	if !isPowerOfTwo(cfg.NBytesRequested) {
		return nil, &errs.ConfigError{Msg: "requested memory size (-g) must be a power of two"}
	}

	return cfg, nil
}

// MNConfig is the parsed, validated configuration for the multi-node
// driver.
type MNConfig struct {
	NBuckets           uint64
	CellWriteEndurance uint64
	LineSize           uint64
	PageSize           uint64
	NBytesPerNode      uint64
	SchedulerQuantaS   float64
	Rebalance          bool
	JobsDescriptor     string
	NIterations        uint64
	NPromotionsToTrace uint64
	Ambient            *ambientFlags
}

// ParseMNConfig parses args into an MNConfig, mirroring
// MNQueues::parse_and_validate_args.
func ParseMNConfig(args []string) (*MNConfig, error) {
	fs := flag.NewFlagSet("mnqueues", flag.ContinueOnError)

	nBuckets := fs.String("n", "", "number of wear-leveling buckets")
	cellEndurance := fs.String("c", "", "cell write endurance")
	lineSize := fs.String("l", "", "line size in bytes")
	pageSize := fs.String("p", "", "page size in bytes")
	nIterations := fs.String("i", "0", "number of epochs to run")
	nPromotions := fs.String("e", "0", "number of promotion events to record")
	nBytesPerNode := fs.String("g", "", "requested memory size per node in bytes")
	schedulerQuantaS := fs.Float64("t", 0.0, "scheduler time quantum in seconds")
	rebalanceStr := fs.String("r", "", "enable rotation/rebalancing: true|false")
	jobsStr := fs.String("j", "", "jobs descriptor bw:rss:wf[,bw:rss:wf...]")
	ambient := registerAmbientFlags(fs)

	if err := fs.Parse(args); err != nil {
		return nil, &errs.ConfigError{Msg: err.Error()}
	}

	cfg := &MNConfig{SchedulerQuantaS: *schedulerQuantaS, JobsDescriptor: *jobsStr, Ambient: ambient}

	var err error
	if cfg.NBuckets, err = parseShorthandOrZero(*nBuckets, shorthand.Base1000); err != nil {
		return nil, err
	}
	if cfg.CellWriteEndurance, err = parseShorthandOrZero(*cellEndurance, shorthand.Base1000); err != nil {
		return nil, err
	}
	if cfg.LineSize, err = parseShorthandOrZero(*lineSize, shorthand.Base1024); err != nil {
		return nil, err
	}
	if cfg.PageSize, err = parseShorthandOrZero(*pageSize, shorthand.Base1024); err != nil {
		return nil, err
	}
	if cfg.NIterations, err = parseShorthandOrZero(*nIterations, shorthand.Base1000); err != nil {
		return nil, err
	}
	if cfg.NPromotionsToTrace, err = parseShorthandOrZero(*nPromotions, shorthand.Base1000); err != nil {
		return nil, err
	}
	if cfg.NBytesPerNode, err = parseShorthandOrZero(*nBytesPerNode, shorthand.Base1024); err != nil {
		return nil, err
	}

	if cfg.NBuckets == 0 {
		return nil, &errs.ConfigError{Msg: "must supply n. buckets (-n)"}
	}
	if cfg.CellWriteEndurance == 0 {
		return nil, &errs.ConfigError{Msg: "must supply cell write endurance (-c)"}
	}
	if cfg.NBytesPerNode == 0 {
		return nil, &errs.ConfigError{Msg: "must supply requested memory size per node in bytes (-g)"}
	}
	if !isPowerOfTwo(cfg.NBytesPerNode) {
		return nil, &errs.ConfigError{Msg: "requested memory size per node (-g) must be a power of two"}
	}
	if cfg.LineSize == 0 {
		return nil, &errs.ConfigError{Msg: "must supply line size (-l)"}
	}
	if cfg.PageSize == 0 {
		return nil, &errs.ConfigError{Msg: "must supply page size (-p)"}
	}
	if cfg.LineSize > cfg.PageSize {
		return nil, &errs.ConfigError{Msg: "line size (-l) must be <= page size (-p)"}
	}
	if !isPowerOfTwo(cfg.LineSize) {
		return nil, &errs.ConfigError{Msg: "line size (-l) must be a power of 2"}
	}
	if !isPowerOfTwo(cfg.PageSize) {
		return nil, &errs.ConfigError{Msg: "page size (-p) must be a power of 2"}
	}
	if cfg.SchedulerQuantaS == 0.0 {
		return nil, &errs.ConfigError{Msg: "must supply scheduler time quanta in seconds (-t)"}
	}
	if *rebalanceStr == "" {
		return nil, &errs.ConfigError{Msg: "must supply whether/not to perform rotation/rebalancing (-r)"}
	}
	rebalance, ok := boolstr.Parse(*rebalanceStr)
	if !ok {
		return nil, &errs.ConfigError{Msg: "could not parse rebalance toggle (-r): " + *rebalanceStr}
	}
	cfg.Rebalance = rebalance
	if cfg.JobsDescriptor == "" {
		return nil, &errs.ConfigError{Msg: "must supply jobs str., of the form bw:rss:wf,... (-j)"}
	}

	return cfg, nil
}

func parseShorthandOrZero(s string, base int64) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := shorthand.ToInt64(s, base)
	if err != nil {
		return 0, err
	}
	return uint64(v), nil
}

func normalizeWriteFactorMode(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "average"), strings.Contains(lower, "avg"):
		return "average"
	case strings.Contains(lower, "per"), strings.Contains(lower, "page"):
		return "perpage"
	default:
		return ""
	}
}

func isPowerOfTwo(n uint64) bool { return n != 0 && n&(n-1) == 0 }
