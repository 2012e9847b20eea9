// Copyright ©2014 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package binning implements the UCSC hierarchical binning scheme shared
// by the BAI index: a reference sequence is partitioned into five levels
// of nested windows, the coarsest a single bin covering the whole
// reference and each finer level subdividing it by a factor of 8.
package binning

const (
	// indexWordBits bounds the coordinate space the scheme covers: 2^29,
	// matched to BAM/BAI's 0-based coordinate range.
	indexWordBits = 29
	nextBinShift  = 3

	// maxCoord is the coordinate cap applied to the end of a query
	// interval before bin numbers are derived from it.
	maxCoord = 1 << indexWordBits
)

const (
	level0 = uint32(((1 << (iota * nextBinShift)) - 1) / 7)
	level1
	level2
	level3
	level4
	level5
)

const (
	level0Shift = indexWordBits - (iota * nextBinShift)
	level1Shift
	level2Shift
	level3Shift
	level4Shift
	level5Shift
)

// BinFor returns the bin number of the smallest bin that fully contains
// the interval [beg,end), zero-based and half-open.
func BinFor(beg, end int) uint32 {
	if end > maxCoord {
		end = maxCoord
	}
	end--
	switch {
	case beg>>level5Shift == end>>level5Shift:
		return level5 + uint32(beg>>level5Shift)
	case beg>>level4Shift == end>>level4Shift:
		return level4 + uint32(beg>>level4Shift)
	case beg>>level3Shift == end>>level3Shift:
		return level3 + uint32(beg>>level3Shift)
	case beg>>level2Shift == end>>level2Shift:
		return level2 + uint32(beg>>level2Shift)
	case beg>>level1Shift == end>>level1Shift:
		return level1 + uint32(beg>>level1Shift)
	}
	return level0
}

// OverlappingBinsFor returns every bin number that can hold a record
// overlapping the interval [beg,end), zero-based and half-open. Bin 0 is
// always included since it covers the entire reference.
func OverlappingBinsFor(beg, end int) []uint32 {
	if end > maxCoord {
		end = maxCoord
	}
	end--
	list := []uint32{level0}
	for _, r := range []struct {
		offset, shift uint32
	}{
		{level1, level1Shift},
		{level2, level2Shift},
		{level3, level3Shift},
		{level4, level4Shift},
		{level5, level5Shift},
	} {
		for k := r.offset + uint32(beg>>r.shift); k <= r.offset+uint32(end>>r.shift); k++ {
			list = append(list, k)
		}
	}
	return list
}

// PseudoBin is the reserved bin number that carries optional per-reference
// statistics rather than a set of alignment chunks, and must be skipped
// when walking a reference's ordinary bins.
const PseudoBin = 0x924a

// TileWidth is the width, in bases, of the linear index's windows.
const TileWidth = 0x4000
