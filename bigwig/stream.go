// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bigwig

import "context"

// WigStream emits WigRecords one leaf's worth at a time, per the
// leaves-first pull model of §5: no background goroutine, every call to
// Next suspends only at a RangeSource fetch.
type WigStream struct {
	ctx    context.Context
	r      *Reader
	h      *Header
	q      query
	leaves []RTreeLeaf
	li     int
	buf    []WigRecord
	bi     int
	cur    WigRecord
	err    error
}

// StreamBigWigData is the streaming counterpart of ReadBigWigData.
func (r *Reader) StreamBigWigData(ctx context.Context, startChrom, startBase, endChrom, endBase int) (*WigStream, error) {
	h, err := r.Header(ctx)
	if err != nil {
		return nil, err
	}
	q := queryFor(startChrom, startBase, endChrom, endBase)
	leaves, err := walkRTree(ctx, r.src, int64(h.FullIndexOffset), h.Order, q)
	if err != nil {
		return nil, err
	}
	return &WigStream{ctx: ctx, r: r, h: h, q: q, leaves: leaves}, nil
}

// Next advances to the next record, returning false at the end of the
// stream or on error (check Err to distinguish the two).
func (s *WigStream) Next() bool {
	for s.bi >= len(s.buf) {
		if s.li >= len(s.leaves) {
			return false
		}
		leaf := s.leaves[s.li]
		s.li++
		block, err := leafBytes(s.ctx, s.r, leaf, s.h)
		if err != nil {
			s.err = err
			return false
		}
		recs, err := decodeWigBlock(block, s.h.Order, s.h, s.q)
		if err != nil {
			s.err = err
			return false
		}
		s.buf = recs
		s.bi = 0
	}
	s.cur = s.buf[s.bi]
	s.bi++
	return true
}

// Record returns the record most recently produced by Next.
func (s *WigStream) Record() WigRecord { return s.cur }

// Err returns the error, if any, that stopped the stream.
func (s *WigStream) Err() error { return s.err }

// BedStream is the streaming counterpart of []BedRecord.
type BedStream struct {
	ctx    context.Context
	r      *Reader
	h      *Header
	q      query
	parser BedColumnParser
	leaves []RTreeLeaf
	li     int
	buf    []BedRecord
	bi     int
	cur    BedRecord
	err    error
}

// StreamBigBedData is the streaming counterpart of ReadBigBedData.
func (r *Reader) StreamBigBedData(ctx context.Context, startChrom, startBase, endChrom, endBase int, parser BedColumnParser) (*BedStream, error) {
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
	return &BedStream{ctx: ctx, r: r, h: h, q: q, parser: parser, leaves: leaves}, nil
}

func (s *BedStream) Next() bool {
	for s.bi >= len(s.buf) {
		if s.li >= len(s.leaves) {
			return false
		}
		leaf := s.leaves[s.li]
		s.li++
		block, err := leafBytes(s.ctx, s.r, leaf, s.h)
		if err != nil {
			s.err = err
			return false
		}
		recs, err := decodeBedBlock(block, s.h.Order, s.h, s.q, s.parser)
		if err != nil {
			s.err = err
			return false
		}
		s.buf = recs
		s.bi = 0
	}
	s.cur = s.buf[s.bi]
	s.bi++
	return true
}

func (s *BedStream) Record() BedRecord { return s.cur }
func (s *BedStream) Err() error        { return s.err }

// ZoomStream is the streaming counterpart of []ZoomRecord.
type ZoomStream struct {
	ctx    context.Context
	r      *Reader
	h      *Header
	q      query
	leaves []RTreeLeaf
	li     int
	buf    []ZoomRecord
	bi     int
	cur    ZoomRecord
	err    error
}

// StreamZoomData is the streaming counterpart of ReadZoomData.
func (r *Reader) StreamZoomData(ctx context.Context, startChrom, startBase, endChrom, endBase, zoomIndex int) (*ZoomStream, error) {
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
	return &ZoomStream{ctx: ctx, r: r, h: h, q: q, leaves: leaves}, nil
}

func (s *ZoomStream) Next() bool {
	for s.bi >= len(s.buf) {
		if s.li >= len(s.leaves) {
			return false
		}
		leaf := s.leaves[s.li]
		s.li++
		raw, err := s.r.src.Read(s.ctx, int64(leaf.DataOffset), int64(leaf.DataSize))
		if err != nil {
			s.err = err
			return false
		}
		block, err := inflateBlock(raw, s.h.UncompressBufSize)
		if err != nil {
			s.err = err
			return false
		}
		recs, err := decodeZoomBlock(block, s.h.Order, s.h, s.q)
		if err != nil {
			s.err = err
			return false
		}
		s.buf = recs
		s.bi = 0
	}
	s.cur = s.buf[s.bi]
	s.bi++
	return true
}

func (s *ZoomStream) Record() ZoomRecord { return s.cur }
func (s *ZoomStream) Err() error         { return s.err }
