// Copyright ©2014 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/biogo/rangehts"
	"github.com/biogo/rangehts/bgzf"
	"github.com/biogo/rangehts/cursor"
	"github.com/biogo/rangehts/internal/binning"
)

// baiMagic is the 4-byte magic at the head of a BAI index.
const baiMagic = "BAI\x01"

// coalesceDistance is the maximum byte gap between two chunks' member
// boundaries under which they are merged into one, amortizing the round
// trips adjacent chunks would otherwise cost. 65000 is somewhat under a
// full 65536-byte BGZF member and is preserved exactly rather than
// rounded up to 65535, to match observed behaviour of the reference
// indexers.
const coalesceDistance = 65000

// bin holds the chunks recorded against one bin number of one reference.
type bin struct {
	number uint32
	chunks []bgzf.Chunk
}

// refIndex is the per-reference content of a BAI: its bin index and its
// linear index of 16kbp-tile lower bounds.
type refIndex struct {
	bins   []bin
	linear []bgzf.Offset
}

// BaiIndex is a parsed BAI index, immutable after construction.
type BaiIndex struct {
	refs []refIndex
}

// ParseBaiIndex parses the bytes of a complete BAI file.
func ParseBaiIndex(data []byte) (*BaiIndex, error) {
	c := cursor.New(data, binary.LittleEndian) // BAI fields are always little-endian.

	if string(c.Take(4)) != baiMagic {
		return nil, rangehts.NewError(rangehts.FileFormat, "bai", 0, 4, fmt.Errorf("bad BAI magic"))
	}

	numRefs := int(c.I32())
	idx := &BaiIndex{refs: make([]refIndex, numRefs)}
	for i := 0; i < numRefs; i++ {
		ref := &idx.refs[i]

		numBins := int(c.I32())
		ref.bins = make([]bin, 0, numBins)
		for b := 0; b < numBins; b++ {
			binNumber := c.U32()
			if binNumber == binning.PseudoBin {
				// Reference-level mapped/unmapped statistics: a 4-byte
				// chunk count, one chunk (two 8-byte virtual offsets) and
				// two 8-byte counters, 36 bytes in all,
				// skipped rather than decoded since nothing here consumes
				// per-reference alignment counts.
				c.Skip(36)
				continue
			}
			numChunks := int(c.I32())
			chunks := make([]bgzf.Chunk, numChunks)
			for k := range chunks {
				chunks[k] = bgzf.Chunk{
					Begin: bgzf.ReadVirtualOffset(c.Take(8)),
					End:   bgzf.ReadVirtualOffset(c.Take(8)),
				}
			}
			ref.bins = append(ref.bins, bin{number: binNumber, chunks: chunks})
		}

		numIntervals := int(c.I32())
		ref.linear = make([]bgzf.Offset, numIntervals)
		for k := range ref.linear {
			ref.linear[k] = bgzf.ReadVirtualOffset(c.Take(8))
		}
	}
	return idx, nil
}

// RefCount returns the number of references this index covers.
func (x *BaiIndex) RefCount() int { return len(x.refs) }

// Chunks returns the sorted, coalesced chunks that must be fetched to find
// every alignment overlapping [start, end) on reference refID, following
// §4.7's region-to-chunks procedure.
func (x *BaiIndex) Chunks(refID, start, end int) ([]bgzf.Chunk, error) {
	if refID < 0 || refID >= len(x.refs) {
		return nil, rangehts.NewError(rangehts.DataMissing, "bai", 0, 0, fmt.Errorf("reference %d out of range", refID))
	}
	ref := x.refs[refID]

	overlapping := binning.OverlappingBinsFor(start, end)
	inOverlap := make(map[uint32]bool, len(overlapping))
	for _, b := range overlapping {
		inOverlap[b] = true
	}

	var chunks []bgzf.Chunk
	for _, b := range ref.bins {
		if inOverlap[b.number] {
			chunks = append(chunks, b.chunks...)
		}
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	lowest := x.linearLowerBound(ref, start, end)
	kept := chunks[:0]
	for _, c := range chunks {
		if vOffset(c.End) >= vOffset(lowest) {
			kept = append(kept, c)
		}
	}
	chunks = kept

	slices.SortFunc(chunks, func(a, b bgzf.Chunk) int {
		av, bv := vOffset(a.Begin), vOffset(b.Begin)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	})

	return coalesce(chunks), nil
}

// linearLowerBound computes the smallest virtual offset recorded for any
// of the 16kbp tiles the interval [start, end) spans, per §4.7 step 3.
func (x *BaiIndex) linearLowerBound(ref refIndex, start, end int) bgzf.Offset {
	l := len(ref.linear)
	if l == 0 {
		return bgzf.Offset{}
	}
	iStart := start / binning.TileWidth
	if iStart > l-1 {
		iStart = l - 1
	}
	iEnd := (end - 1) / binning.TileWidth
	if iEnd > l-1 {
		iEnd = l - 1
	}
	if iStart > iEnd {
		iStart, iEnd = iEnd, iStart
	}

	var lowest bgzf.Offset
	have := false
	for _, o := range ref.linear[iStart : iEnd+1] {
		if o == (bgzf.Offset{}) {
			continue
		}
		if !have || vOffset(o) < vOffset(lowest) {
			lowest = o
			have = true
		}
	}
	return lowest
}

func vOffset(o bgzf.Offset) int64 { return o.File<<16 | int64(o.Block) }

// coalesce merges adjacent chunks in start-sorted order whenever the gap
// between the current chunk's end member and the next chunk's start
// member is under coalesceDistance bytes, approximately one BGZF member.
func coalesce(chunks []bgzf.Chunk) []bgzf.Chunk {
	if len(chunks) == 0 {
		return chunks
	}
	out := make([]bgzf.Chunk, 0, len(chunks))
	cur := chunks[0]
	for _, next := range chunks[1:] {
		if next.Begin.File-cur.End.File < coalesceDistance {
			if vOffset(next.End) > vOffset(cur.End) {
				cur.End = next.End
			}
			continue
		}
		out = append(out, cur)
		cur = next
	}
	out = append(out, cur)
	return out
}
