package trace

import (
	"io"
	"log/slog"
	"os"

	"github.com/google/btree"

	"gitlab.com/akita/nvwear/errs"
)

// DefaultBufferBytes is the default size of the in-memory cyclic window,
// matching the original instrumentation's ~8 GiB default.
const DefaultBufferBytes = 8589934592

// lineToPageShift is the fixed line-to-page shift the load-time diagnostic
// scan uses to bucket writes by page, independent of whatever line/page
// sizes the caller's WearModel is configured with.
const lineToPageShift = 14

// Reader streams fixed-size trace records from a file, looping over it for
// multi-pass simulations, using a bounded-size buffer regardless of file
// size.
type Reader struct {
	logger *slog.Logger

	file          *os.File
	fileNBytes    int64
	nUnique       uint64
	firstRecord   Record
	lastRecord    Record

	buf               []byte
	bufferSizeEntries uint64
	bufferCurrEntry   uint64

	nRequests   uint64
	nFullPasses uint64
	posInPass   uint64

	nReadsInTrace  uint64
	nWritesInTrace uint64
}

// NewReader returns an unloaded Reader. logger may be nil, in which case
// diagnostic logging is silently discarded.
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}
	return &Reader{logger: logger}
}

// pageWriteCount is a google/btree Item ordering page write counts so the
// load-time diagnostic can pull the extremes via Min()/Max() instead of a
// hand-rolled scan.
type pageWriteCount struct {
	count uint64
	page  uint64
}

func (a pageWriteCount) Less(than btree.Item) bool {
	b := than.(pageWriteCount)
	if a.count != b.count {
		return a.count < b.count
	}
	return a.page < b.page
}

// Load opens path, validates its size is a whole number of records, scans it
// once to compute read/write totals and the load-time page-write histogram,
// and primes the cyclic buffer. bufferBytes <= 0 selects DefaultBufferBytes.
func (r *Reader) Load(path string, bufferBytes int) error {
	f, err := os.Open(path)
	if err != nil {
		return &errs.IoError{Msg: "opening trace file " + path, Err: err}
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return &errs.IoError{Msg: "statting trace file " + path, Err: err}
	}

	size := info.Size()
	if size == 0 || size%RecordSize != 0 {
		f.Close()
		return &errs.IoError{Msg: "trace file size is not a multiple of the record size"}
	}

	r.file = f
	r.fileNBytes = size
	r.nUnique = uint64(size) / RecordSize

	if bufferBytes <= 0 {
		bufferBytes = DefaultBufferBytes
	}
	r.bufferSizeEntries = uint64(bufferBytes) / RecordSize
	if r.bufferSizeEntries == 0 {
		r.bufferSizeEntries = 1
	}
	if r.bufferSizeEntries > r.nUnique {
		r.bufferSizeEntries = r.nUnique
	}
	r.buf = make([]byte, r.bufferSizeEntries*RecordSize)

	if err := r.scanAndSummarize(); err != nil {
		f.Close()
		return err
	}

	if _, err := r.file.Seek(0, 0); err != nil {
		f.Close()
		return &errs.IoError{Msg: "rewinding trace file", Err: err}
	}
	r.refill(true)

	return nil
}

// scanAndSummarize performs the single pass over the whole file that
// computes n_reads_in_trace/n_writes_in_trace and the per-page write-count
// histogram, and captures the first and last records for peeking. It does
// not disturb the buffer cursor state, which is primed separately by the
// caller after this returns.
func (r *Reader) scanAndSummarize() error {
	scanBuf := make([]byte, len(r.buf))
	pageCounts := make(map[uint64]uint64)

	var recordIdx uint64
	for remaining := r.fileNBytes; remaining > 0; {
		chunk := int64(len(scanBuf))
		if remaining < chunk {
			chunk = remaining
		}
		if _, err := io.ReadFull(r.file, scanBuf[:chunk]); err != nil {
			return &errs.IoError{Msg: "scanning trace file", Err: err}
		}
		remaining -= chunk

		for off := int64(0); off < chunk; off += RecordSize {
			rec := DecodeRecord(scanBuf[off : off+RecordSize])
			if recordIdx == 0 {
				r.firstRecord = rec
			}
			r.lastRecord = rec
			recordIdx++

			if rec.IsWrite {
				r.nWritesInTrace++
				page := rec.LineAddr >> lineToPageShift
				pageCounts[page]++
			} else {
				r.nReadsInTrace++
			}
		}
	}

	tree := btree.New(32)
	for page, count := range pageCounts {
		tree.ReplaceOrInsert(pageWriteCount{count: count, page: page})
	}
	if tree.Len() > 0 {
		max := tree.Max().(pageWriteCount)
		min := tree.Min().(pageWriteCount)
		r.logger.Debug("trace load summary",
			"n_reads_in_trace", r.nReadsInTrace,
			"n_writes_in_trace", r.nWritesInTrace,
			"max_page_write_count", max.count,
			"min_page_write_count", min.count)
	}

	return nil
}

// refill repopulates the cyclic buffer from the current file offset,
// wrapping to the beginning of the file if fewer than a full buffer's worth
// of bytes remain. force bypasses the "buffer already holds everything"
// short-circuit, used for the very first fill.
func (r *Reader) refill(force bool) {
	r.bufferCurrEntry = 0

	if !force && r.nUnique <= r.bufferSizeEntries {
		return
	}

	pos, _ := r.file.Seek(0, 1)
	bytesTillEnd := r.fileNBytes - pos

	if bytesTillEnd >= int64(len(r.buf)) {
		io.ReadFull(r.file, r.buf)
		return
	}

	io.ReadFull(r.file, r.buf[:bytesTillEnd])
	r.file.Seek(0, 0)
	io.ReadFull(r.file, r.buf[bytesTillEnd:])
}

// Next returns the next record in trace order, transparently wrapping to the
// beginning of the file. The pass-completion counter is only reset (and
// NFullPasses bumped) on the call that starts delivering a new pass, so
// IsEndOfPass reports true from the call that delivers a pass's last record
// until (not including) the following call.
func (r *Reader) Next() Record {
	if r.bufferCurrEntry == r.bufferSizeEntries {
		r.refill(false)
	}

	if r.posInPass == r.nUnique {
		r.nFullPasses++
		r.posInPass = 1
	} else {
		r.posInPass++
	}

	off := r.bufferCurrEntry * RecordSize
	rec := DecodeRecord(r.buf[off : off+RecordSize])
	r.bufferCurrEntry++
	r.nRequests++

	return rec
}

// IsEndOfPass reports whether a full pass has been delivered as of the
// most recent call to Next.
func (r *Reader) IsEndOfPass() bool {
	return r.posInPass == r.nUnique
}

// Reset rewinds to the first record. If incPasses, NFullPasses is
// incremented as if a pass had just completed.
func (r *Reader) Reset(incPasses bool) error {
	r.bufferCurrEntry = 0
	r.posInPass = 0
	if _, err := r.file.Seek(0, 0); err != nil {
		return &errs.IoError{Msg: "resetting trace reader", Err: err}
	}
	r.refill(true)
	if incPasses {
		r.nFullPasses++
	}
	return nil
}

// FirstRecord returns the first record of the file without disturbing the
// cursor.
func (r *Reader) FirstRecord() Record { return r.firstRecord }

// LastRecord returns the last record of the file without disturbing the
// cursor.
func (r *Reader) LastRecord() Record { return r.lastRecord }

// NRequests returns the number of calls made to Next.
func (r *Reader) NRequests() uint64 { return r.nRequests }

// NFullPasses returns the number of times the reader has wrapped.
func (r *Reader) NFullPasses() uint64 { return r.nFullPasses }

// NUnique returns the number of distinct records in the file.
func (r *Reader) NUnique() uint64 { return r.nUnique }

// NReadsInTrace returns the total read-record count found at load time.
func (r *Reader) NReadsInTrace() uint64 { return r.nReadsInTrace }

// NWritesInTrace returns the total write-record count found at load time.
func (r *Reader) NWritesInTrace() uint64 { return r.nWritesInTrace }

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}
