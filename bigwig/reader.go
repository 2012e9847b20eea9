// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bigwig

import (
	"context"
	"fmt"

	"github.com/biogo/rangehts"
)

// leafBytes fetches exactly leaf.DataSize bytes at leaf.DataOffset and
// inflates them when the header says data blocks are compressed.
func leafBytes(ctx context.Context, r *Reader, leaf RTreeLeaf, h *Header) ([]byte, error) {
	raw, err := r.src.Read(ctx, int64(leaf.DataOffset), int64(leaf.DataSize))
	if err != nil {
		return nil, err
	}
	return inflateBlock(raw, h.UncompressBufSize)
}

func queryFor(startChrom, startBase, endChrom, endBase int) query {
	return query{
		startChrom: uint32(startChrom),
		startBase:  uint32(startBase),
		endChrom:   uint32(endChrom),
		endBase:    uint32(endBase),
	}
}

func indexRangeErr(zoomIndex, count int) error {
	return rangehts.NewError(rangehts.FileFormat, "bigwig.zoomLevels", int64(zoomIndex), int64(count),
		fmt.Errorf("zoom index %d out of range [0,%d)", zoomIndex, count))
}

// ReadBigWigData returns every Wig record overlapping the half-open
// rectangle (startChrom, startBase)..(endChrom, endBase), in on-disk order.
func (r *Reader) ReadBigWigData(ctx context.Context, startChrom, startBase, endChrom, endBase int) ([]WigRecord, error) {
	h, err := r.Header(ctx)
	if err != nil {
		return nil, err
	}
	q := queryFor(startChrom, startBase, endChrom, endBase)
	leaves, err := walkRTree(ctx, r.src, int64(h.FullIndexOffset), h.Order, q)
	if err != nil {
		return nil, err
	}

	var out []WigRecord
	for _, leaf := range leaves {
		block, err := leafBytes(ctx, r, leaf, h)
		if err != nil {
			return nil, err
		}
		recs, err := decodeWigBlock(block, h.Order, h, q)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

// ReadBigBedData returns every Bed record overlapping the query rectangle,
// with each record's "rest" column parsed by parser (DefaultColumnParser
// when parser is nil).
func (r *Reader) ReadBigBedData(ctx context.Context, startChrom, startBase, endChrom, endBase int, parser BedColumnParser) ([]BedRecord, error) {
	h, err := r.Header(ctx)
	if err != nil {
		return nil, err
	}
	if parser == nil {
		parser = DefaultColumnParser
	}
	q := queryFor(startChrom, startBase, endChrom, endBase)
	leaves, err := walkRTree(ctx, r.src, int64(h.FullIndexOffset), h.Order, q)
	if err != nil {
		return nil, err
	}

	var out []BedRecord
	for _, leaf := range leaves {
		block, err := leafBytes(ctx, r, leaf, h)
		if err != nil {
			return nil, err
		}
		recs, err := decodeBedBlock(block, h.Order, h, q, parser)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

// ReadZoomData returns every ZoomRecord from the given zoom level
// overlapping the query rectangle.
func (r *Reader) ReadZoomData(ctx context.Context, startChrom, startBase, endChrom, endBase, zoomIndex int) ([]ZoomRecord, error) {
	h, err := r.Header(ctx)
	if err != nil {
		return nil, err
	}
	if zoomIndex < 0 || zoomIndex >= len(h.ZoomLevels) {
		return nil, indexRangeErr(zoomIndex, len(h.ZoomLevels))
	}
	zoom := h.ZoomLevels[zoomIndex]

	q := queryFor(startChrom, startBase, endChrom, endBase)
	leaves, err := walkRTree(ctx, r.src, int64(zoom.IndexOffset), h.Order, q)
	if err != nil {
		return nil, err
	}

	var out []ZoomRecord
	for _, leaf := range leaves {
		raw, err := r.src.Read(ctx, int64(leaf.DataOffset), int64(leaf.DataSize))
		if err != nil {
			return nil, err
		}
		block, err := inflateBlock(raw, h.UncompressBufSize)
		if err != nil {
			return nil, err
		}
		recs, err := decodeZoomBlock(block, h.Order, h, q)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}
