// Package trace reads the packed binary memory-access trace that drives the
// single-node wear-leveling simulator: one fixed-size record per memory
// access, produced in trace order, cycles non-decreasing but not strictly
// increasing.
package trace

import "encoding/binary"

// RecordSize is the on-disk size of one Record: a 15-bit node number and a
// 1-bit write flag packed into two bytes, followed by an 8-byte line address
// and an 8-byte cycle count, all little-endian. This mirrors a C
// __attribute__((packed)) bitfield struct — there is no byte-aligned
// structure here for a general serialization format to help with.
const RecordSize = 18

// maxNodeNum is the largest value a 15-bit node number can hold.
const maxNodeNum = 1<<15 - 1

// Record is one decoded trace entry.
type Record struct {
	NodeNum  uint16
	IsWrite  bool
	LineAddr uint64
	Cycle    uint64
}

// DecodeRecord unpacks one RecordSize-byte slice into a Record.
func DecodeRecord(buf []byte) Record {
	header := binary.LittleEndian.Uint16(buf[0:2])
	return Record{
		NodeNum:  header & maxNodeNum,
		IsWrite:  header&(1<<15) != 0,
		LineAddr: binary.LittleEndian.Uint64(buf[2:10]),
		Cycle:    binary.LittleEndian.Uint64(buf[10:18]),
	}
}

// EncodeRecord packs r into buf, which must be at least RecordSize bytes.
// Used by tests to build trace fixtures without shelling out to a real
// trace-generation tool.
func EncodeRecord(r Record, buf []byte) {
	header := r.NodeNum & maxNodeNum
	if r.IsWrite {
		header |= 1 << 15
	}
	binary.LittleEndian.PutUint16(buf[0:2], header)
	binary.LittleEndian.PutUint64(buf[2:10], r.LineAddr)
	binary.LittleEndian.PutUint64(buf[10:18], r.Cycle)
}

// LineAddrToPageAddr applies the fixed line-to-page shift used throughout
// the wear-leveling core: page_addr = line_addr >> (page_size_log2 -
// line_size_log2).
func LineAddrToPageAddr(lineAddr uint64, lineSizeLog2, pageSizeLog2 uint) uint64 {
	return lineAddr >> (pageSizeLog2 - lineSizeLog2)
}
