package bittrack

import (
	"encoding/binary"
	"io"
	"math"
	"os"

	"gitlab.com/akita/nvwear/errs"
)

// perPageRecordSize is the packed {page_addr uint64, page_wf float64}
// binary layout of bittrack.bin.
const perPageRecordSize = 16

// PerPage is the parsed contents of bittrack.bin: a measured wear factor
// per written page, converted to an absolute bit-flip-per-write charge.
type PerPage struct {
	bfpw map[uint64]uint64
}

// LoadPerPage reads path and computes, for every page in the table,
// ceil(page_wf * s.BitsPerLine). The table's record count must exactly
// match s.NPagesWritten; any other count is a fatal I/O error reporting
// a mismatch between bittrack.txt and bittrack.bin.
func LoadPerPage(path string, s *Summary) (*PerPage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &errs.IoError{Msg: "opening per-page bittrack file " + path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &errs.IoError{Msg: "stat'ing per-page bittrack file " + path, Err: err}
	}
	if info.Size()%perPageRecordSize != 0 {
		return nil, &errs.IoError{Msg: "per-page bittrack file " + path + " is not a whole number of records"}
	}

	nRecords := uint64(info.Size()) / perPageRecordSize
	if nRecords != s.NPagesWritten {
		return nil, &errs.IoError{Msg: "bittrack.bin has a different page count than N_PAGES_WRITTEN in bittrack.txt"}
	}

	buf := make([]byte, perPageRecordSize)
	pp := &PerPage{bfpw: make(map[uint64]uint64, nRecords)}
	for i := uint64(0); i < nRecords; i++ {
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, &errs.IoError{Msg: "reading per-page bittrack file " + path, Err: err}
		}
		pageAddr := binary.LittleEndian.Uint64(buf[0:8])
		pageWF := math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16]))
		pp.bfpw[pageAddr] = uint64(math.Ceil(pageWF * float64(s.BitsPerLine)))
	}

	return pp, nil
}

// BFPW returns the measured charge for page and true if the page was
// present in the table.
func (pp *PerPage) BFPW(page uint64) (uint64, bool) {
	v, ok := pp.bfpw[page]
	return v, ok
}

// Len reports how many pages the table covers.
func (pp *PerPage) Len() int { return len(pp.bfpw) }
