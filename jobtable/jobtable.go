// Package jobtable is the multi-node counterpart to bittrack: it parses the
// "bw:rss:wf[,bw:rss:wf...]" jobs descriptor into a fixed per-node write
// model and implements queueengine.WearCharger[uint64] over job indices.
package jobtable

import (
	"strconv"
	"strings"

	"gitlab.com/akita/nvwear/errs"
)

// Job is one node's fixed write-intensity profile.
type Job struct {
	Index              uint64
	WriteBWBytesS      float64
	RSSBytes           uint64
	WriteFactor        float64
	BitWritesPerQuanta uint64
}

// Table holds the parsed, fully-derived job set: one job per node.
type Table struct {
	jobs []Job
}

// Parse parses a "bw:rss:wf[,bw:rss:wf...]" descriptor and derives each
// job's bit_writes_per_quanta = floor(quanta * bw * 8 * wf). Every
// write_factor must lie in [0.0, 1.0].
func Parse(descriptor string, schedulerQuantaS float64) (*Table, error) {
	if descriptor == "" {
		return nil, &errs.ConfigError{Msg: "jobs descriptor must not be empty"}
	}

	tokens := strings.Split(descriptor, ",")
	jobs := make([]Job, 0, len(tokens))

	for i, tok := range tokens {
		fields := strings.Split(tok, ":")
		if len(fields) != 3 {
			return nil, &errs.ConfigError{Msg: "malformed job entry " + tok + ", expected bw:rss:wf"}
		}

		bw, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, &errs.ConfigError{Msg: "invalid write bandwidth in job entry " + tok}
		}
		rss, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, &errs.ConfigError{Msg: "invalid rss in job entry " + tok}
		}
		wf, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, &errs.ConfigError{Msg: "invalid write factor in job entry " + tok}
		}
		if wf < 0.0 || wf > 1.0 {
			return nil, &errs.ConfigError{Msg: "write factor for job entry " + tok + " must be in [0.0, 1.0]"}
		}

		bwpq := uint64(schedulerQuantaS * bw * 8 * wf)
		jobs = append(jobs, Job{
			Index:              uint64(i),
			WriteBWBytesS:      bw,
			RSSBytes:           rss,
			WriteFactor:        wf,
			BitWritesPerQuanta: bwpq,
		})
	}

	return &Table{jobs: jobs}, nil
}

// Jobs returns the parsed job set, one per node, in descriptor order.
func (t *Table) Jobs() []Job { return t.jobs }

// NNodes reports how many jobs (equivalently, nodes) this table holds.
func (t *Table) NNodes() int { return len(t.jobs) }

// MostWriteIntensive returns the job with the largest bit_writes_per_quanta,
// used by the MN no-rebalance closed-form lifetime estimate.
func (t *Table) MostWriteIntensive() Job {
	most := t.jobs[0]
	for _, j := range t.jobs[1:] {
		if j.BitWritesPerQuanta > most.BitWritesPerQuanta {
			most = j
		}
	}
	return most
}
