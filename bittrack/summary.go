// Package bittrack loads the companion bit-flip-tracking files that drive
// the single-node WearModel: a text summary (bittrack.txt) giving the
// line/page geometry and the average bit-flip-per-write rate, and an
// optional per-page binary table (bittrack.bin) for higher-fidelity charge
// computation.
package bittrack

import (
	"math"
	"strconv"

	"gitlab.com/akita/nvwear/errs"
	"gitlab.com/akita/nvwear/internal/kvfile"
)

// Summary is the parsed contents of bittrack.txt.
type Summary struct {
	LineSizeBytes   uint64
	PageSizeBytes   uint64
	NPagesWritten   uint64
	BitflipPerWrite float64

	LineSizeLog2 uint
	PageSizeLog2 uint
	BitsPerLine  uint64
	BitsPerPage  uint64

	// AverageBFPW is ceil(BitflipPerWrite * BitsPerLine): the default
	// per-write bit-flip charge used in Average mode, and the fallback used
	// in PerPage mode for pages absent from the per-page table.
	AverageBFPW uint64
}

// LoadSummary parses path into a Summary, validating that both sizes are
// powers of two and that line_size <= page_size.
func LoadSummary(path string) (*Summary, error) {
	kv, err := kvfile.Parse(path)
	if err != nil {
		return nil, err
	}

	lineSize, err := parseUint(kv, "BLOCK_SIZE")
	if err != nil {
		return nil, err
	}
	pageSize, err := parseUint(kv, "PAGE_SIZE")
	if err != nil {
		return nil, err
	}
	nPages, err := parseUint(kv, "N_PAGES_WRITTEN")
	if err != nil {
		return nil, err
	}
	bfRate, err := parseFloat(kv, "P_BITFLIP_PER_WRITE")
	if err != nil {
		return nil, err
	}

	if !isPowerOfTwo(lineSize) || !isPowerOfTwo(pageSize) {
		return nil, &errs.ConfigError{Msg: "BLOCK_SIZE and PAGE_SIZE must be powers of two"}
	}
	if lineSize > pageSize {
		return nil, &errs.ConfigError{Msg: "BLOCK_SIZE must be <= PAGE_SIZE"}
	}

	bitsPerLine := lineSize * 8
	bitsPerPage := pageSize * 8

	return &Summary{
		LineSizeBytes:   lineSize,
		PageSizeBytes:   pageSize,
		NPagesWritten:   nPages,
		BitflipPerWrite: bfRate,
		LineSizeLog2:    log2(lineSize),
		PageSizeLog2:    log2(pageSize),
		BitsPerLine:     bitsPerLine,
		BitsPerPage:     bitsPerPage,
		AverageBFPW:     uint64(math.Ceil(bfRate * float64(bitsPerLine))),
	}, nil
}

func parseUint(kv map[string]string, key string) (uint64, error) {
	v, ok := kv[key]
	if !ok {
		return 0, &errs.ConfigError{Msg: "missing " + key + " in bittrack summary"}
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, &errs.ConfigError{Msg: "invalid " + key + " in bittrack summary: " + v}
	}
	return n, nil
}

func parseFloat(kv map[string]string, key string) (float64, error) {
	v, ok := kv[key]
	if !ok {
		return 0, &errs.ConfigError{Msg: "missing " + key + " in bittrack summary"}
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &errs.ConfigError{Msg: "invalid " + key + " in bittrack summary: " + v}
	}
	return n, nil
}

func isPowerOfTwo(n uint64) bool { return n != 0 && n&(n-1) == 0 }

func log2(n uint64) uint {
	var shift uint
	for n > 1 {
		n >>= 1
		shift++
	}
	return shift
}
