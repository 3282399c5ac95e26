package promoevents

import (
	"encoding/binary"
	"io"
	stdmath "math"
	"sort"

	pkgmath "github.com/pkg/math"

	"gitlab.com/akita/nvwear/errs"
)

// DecodeTimestamps reads r as a flat sequence of little-endian 8-byte
// values, interpreting each as T, and returns them sorted ascending: the
// event trace a running simulation produces is not guaranteed to be in
// timestamp order, since promotions across passes/epochs can interleave.
func DecodeTimestamps[T Timestamp](r io.Reader) ([]T, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &errs.IoError{Msg: "reading event trace", Err: err}
	}
	if len(raw)%8 != 0 {
		return nil, &errs.IoError{Msg: "event trace is not a whole number of 8-byte records"}
	}

	n := len(raw) / 8
	out := make([]T, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint64(raw[i*8 : i*8+8])
		var zero T
		switch any(zero).(type) {
		case uint64:
			out[i] = any(bits).(T)
		case float64:
			out[i] = any(stdmath.Float64frombits(bits)).(T)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// AnalyzeQueueDepth replays timestamps (already sorted ascending) against
// a fixed service duration and reports the maximum number of events that
// were ever concurrently in flight, excluding the event that has just
// arrived.
func AnalyzeQueueDepth[T Timestamp](timestamps []T, duration T) uint64 {
	var inFlight []T
	var maxDepth uint64

	for _, ts := range timestamps {
		inFlight = append(inFlight, ts)

		kept := inFlight[:0]
		for _, start := range inFlight {
			if start+duration <= ts {
				continue
			}
			kept = append(kept, start)
		}
		inFlight = kept

		depth := uint64(len(inFlight) - 1)
		maxDepth = pkgmath.MaxUint64(maxDepth, depth)
	}

	return maxDepth
}
