// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package twobit

import (
	"context"
	"fmt"

	"github.com/biogo/rangehts"
)

// baseTable maps each of the 256 possible packed bytes to its four
// decoded, uppercase bases, precomputed once at init per §4.10 step 2.
var baseTable [256][4]byte

// baseLetters is the 2-bit code to base-letter mapping 2bit packs four
// codes per byte with, high bits first.
var baseLetters = [4]byte{'T', 'C', 'A', 'G'}

func init() {
	for b := 0; b < 256; b++ {
		for i := 0; i < 4; i++ {
			shift := 6 - 2*i
			code := (b >> shift) & 0x3
			baseTable[b][i] = baseLetters[code]
		}
	}
}

// ReadTwoBitData returns the half-open, 0-based interval [start, end) of
// chrom's sequence, uppercase with N-blocks and lowercase mask-blocks
// overlaid, per §4.10.
func (r *Reader) ReadTwoBitData(ctx context.Context, chrom string, start, end int) (string, error) {
	rec, err := r.SequenceRecord(ctx, chrom)
	if err != nil {
		return "", err
	}
	if start < 0 || end > rec.DNASize || start > end {
		return "", rangehts.NewError(rangehts.OutOfRange, chrom, int64(start), int64(end-start),
			fmt.Errorf("interval [%d,%d) out of range for sequence of length %d", start, end, rec.DNASize))
	}
	if start == end {
		return "", nil
	}

	packed, err := r.fetchPacked(ctx, rec, start, end)
	if err != nil {
		return "", err
	}
	out := []byte(decodeRange(packed, start, end))
	overlayNBlocks(out, rec.NBlocks, start, end)
	overlayMaskBlocks(out, rec.MaskBlocks, start, end)
	return string(out), nil
}

// fetchPacked retrieves exactly the packed bytes covering [start, end),
// per §4.10 step 1.
func (r *Reader) fetchPacked(ctx context.Context, rec *SequenceRecord, start, end int) ([]byte, error) {
	first := start / 4
	lastByte := (end - 1) / 4
	n := lastByte - first + 1
	return r.src.Read(ctx, rec.packedOffset+int64(first), int64(n))
}

// decodeRange decodes packed (the bytes covering byte-aligned
// [4*(start/4), 4*ceil(end/4))) and slices to exactly [start, end).
func decodeRange(packed []byte, start, end int) string {
	out := make([]byte, 0, end-start)
	base := (start / 4) * 4
	for _, b := range packed {
		out = append(out, baseTable[b][:]...)
	}
	lo := start - base
	hi := lo + (end - start)
	if hi > len(out) {
		hi = len(out)
	}
	return string(out[lo:hi])
}

// overlayNBlocks replaces the positions of out (which represents
// [start, end)) covered by any N-block with 'N'.
func overlayNBlocks(out []byte, blocks []BlockPair, start, end int) {
	for _, b := range blocks {
		overlayRun(out, start, end, b.Start, b.Start+b.Size, func(i int) byte { return 'N' })
	}
}

// overlayMaskBlocks lowercases the positions of out covered by any
// soft-mask block. The loop ranges over len(blocks) (i.e. the mask-block
// table itself) rather than the N-block table's length — a correction to
// an off-by-array mistake in the historical implementation this format
// traces to.
func overlayMaskBlocks(out []byte, blocks []BlockPair, start, end int) {
	for _, b := range blocks {
		overlayRun(out, start, end, b.Start, b.Start+b.Size, func(i int) byte {
			return out[i] | 0x20 // ASCII lowercase bit
		})
	}
}

// overlayRun applies fn to every position of out in [start,end) that also
// falls within [blockStart, blockEnd).
func overlayRun(out []byte, start, end, blockStart, blockEnd int, fn func(i int) byte) {
	lo := blockStart
	if lo < start {
		lo = start
	}
	hi := blockEnd
	if hi > end {
		hi = end
	}
	for i := lo; i < hi; i++ {
		out[i-start] = fn(i - start)
	}
}
