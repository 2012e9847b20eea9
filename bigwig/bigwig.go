// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bigwig reads BigWig and BigBed files over an abstract byte-range
// transport: it discovers a file's magic and byte order, decodes the common
// header, the chromosome B+ tree, and the zoom-level table, and walks the
// data R+ tree to locate and decode only the leaf blocks a query interval
// touches.
package bigwig

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/biogo/rangehts"
	"github.com/biogo/rangehts/cursor"
	"github.com/biogo/rangehts/rangeio"
)

// Magic numbers identifying a BigWig or BigBed file, read in little-endian
// order. A file whose first 4 bytes don't match either value in that order
// is retried in big-endian order before being rejected.
const (
	bigWigMagic = 0x888FFC26
	bigBedMagic = 0x8789F2EB
)

// FileKind distinguishes the two UCSC "big" binary formats this package
// reads; both share a common header, chromosome B+ tree and R+ tree layout
// and differ only in how data leaves are decoded.
type FileKind int

const (
	BigWig FileKind = iota
	BigBed
)

func (k FileKind) String() string {
	if k == BigBed {
		return "bigBed"
	}
	return "bigWig"
}

// commonHeaderSize is the fixed size, in bytes, of the header every BigWig
// and BigBed file begins with.
const commonHeaderSize = 64

// Header is the BigWig/BigBed CommonHeader plus the derived ChromDict and
// zoom-level table, decoded once per file and memoized by Reader.
type Header struct {
	Kind    FileKind
	Order   binary.ByteOrder
	Version uint16

	ChromTreeOffset    uint64
	FullDataOffset     uint64
	FullIndexOffset    uint64
	FieldCount         uint16
	DefinedFieldCount  uint16
	AutoSqlOffset      uint64
	TotalSummaryOffset uint64
	UncompressBufSize  uint32

	ZoomLevels []ZoomLevelHeader

	AutoSql string

	Summary *TotalSummary

	chromToID map[string]uint32
	idToChrom []chromEntry
}

// ZoomLevelHeader describes one pre-aggregated summary level.
type ZoomLevelHeader struct {
	ReductionLevel uint32
	DataOffset     uint64
	IndexOffset    uint64
}

// TotalSummary is the whole-file statistics block recorded in the header.
type TotalSummary struct {
	ValidCount uint64
	MinVal     float64
	MaxVal     float64
	SumData    float64
	SumSquares float64
}

type chromEntry struct {
	Name string
	Size uint32
}

// ChromName returns the name for a chromosome id, and whether it exists.
func (h *Header) ChromName(id uint32) (string, bool) {
	if int(id) < 0 || int(id) >= len(h.idToChrom) {
		return "", false
	}
	return h.idToChrom[id].Name, true
}

// ChromSize returns the size for a chromosome id, and whether it exists.
func (h *Header) ChromSize(id uint32) (uint32, bool) {
	if int(id) < 0 || int(id) >= len(h.idToChrom) {
		return 0, false
	}
	return h.idToChrom[id].Size, true
}

// ChromID looks up a chromosome by name.
func (h *Header) ChromID(name string) (uint32, bool) {
	id, ok := h.chromToID[name]
	return id, ok
}

// Reader reads BigWig/BigBed records via a RangeSource, caching the header,
// chromosome dictionary and zoom table on first use.
type Reader struct {
	src rangeio.RangeSource

	mu     sync.Mutex
	header *Header
}

// NewReader returns a Reader over src. The header is not read until first
// needed.
func NewReader(ctx context.Context, src rangeio.RangeSource) (*Reader, error) {
	return &Reader{src: src}, nil
}

// Header returns the parsed file header, parsing and memoizing it on first
// call.
func (r *Reader) Header(ctx context.Context) (*Header, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.header != nil {
		return r.header, nil
	}

	raw, err := r.src.Read(ctx, 0, commonHeaderSize)
	if err != nil {
		return nil, err
	}
	if len(raw) < 4 {
		return nil, rangehts.NewError(rangehts.FileFormat, "bigwig", 0, int64(len(raw)),
			fmt.Errorf("file too short for a bigWig/bigBed magic"))
	}

	order, kind, ok := detectOrder(raw[:4])
	if !ok {
		return nil, rangehts.NewError(rangehts.FileFormat, "bigwig", 0, 4,
			fmt.Errorf("bad bigWig/bigBed magic % x", raw[:4]))
	}

	c := cursor.New(raw, order)
	c.Skip(4) // magic, already consumed by detectOrder.
	h := &Header{Kind: kind, Order: order}
	h.Version = c.U16()
	numZoom := int(c.U16())
	h.ChromTreeOffset = c.U64()
	h.FullDataOffset = c.U64()
	h.FullIndexOffset = c.U64()
	h.FieldCount = c.U16()
	h.DefinedFieldCount = c.U16()
	h.AutoSqlOffset = c.U64()
	h.TotalSummaryOffset = c.U64()
	h.UncompressBufSize = c.U32()
	c.Skip(8) // reserved

	if numZoom > 0 {
		zoomRaw, err := r.src.Read(ctx, commonHeaderSize, int64(numZoom*24))
		if err != nil {
			return nil, err
		}
		zc := cursor.New(zoomRaw, order)
		h.ZoomLevels = make([]ZoomLevelHeader, numZoom)
		// Entries are stored on disk from coarsest to finest reduction
		// level; decode them in reverse index order so h.ZoomLevels[0] is
		// the finest level, matching the order ReadZoomData's zoomIndex
		// callers expect.
		for i := 0; i < numZoom; i++ {
			lvl := ZoomLevelHeader{
				ReductionLevel: zc.U32(),
			}
			zc.Skip(4) // reserved
			lvl.DataOffset = zc.U64()
			lvl.IndexOffset = zc.U64()
			h.ZoomLevels[numZoom-1-i] = lvl
		}
	}

	if h.AutoSqlOffset != 0 {
		sql, err := readAutoSql(ctx, r.src, h.AutoSqlOffset, order)
		if err != nil {
			return nil, err
		}
		h.AutoSql = sql
	}

	if h.TotalSummaryOffset != 0 {
		sumRaw, err := r.src.Read(ctx, int64(h.TotalSummaryOffset), 40)
		if err != nil {
			return nil, err
		}
		sc := cursor.New(sumRaw, order)
		h.Summary = &TotalSummary{
			ValidCount: sc.U64(),
			MinVal:     sc.F64(),
			MaxVal:     sc.F64(),
			SumData:    sc.F64(),
			SumSquares: sc.F64(),
		}
	}

	chromToID, idToChrom, err := readChromTree(ctx, r.src, h.ChromTreeOffset, order)
	if err != nil {
		return nil, err
	}
	h.chromToID = chromToID
	h.idToChrom = idToChrom

	r.header = h
	return h, nil
}

// detectOrder reports the byte order and file kind implied by a 4-byte
// magic, trying little-endian first and then big-endian, per §4.4.
func detectOrder(magic []byte) (binary.ByteOrder, FileKind, bool) {
	le := binary.LittleEndian.Uint32(magic)
	switch le {
	case bigWigMagic:
		return binary.LittleEndian, BigWig, true
	case bigBedMagic:
		return binary.LittleEndian, BigBed, true
	}
	be := binary.BigEndian.Uint32(magic)
	switch be {
	case bigWigMagic:
		return binary.BigEndian, BigWig, true
	case bigBedMagic:
		return binary.BigEndian, BigBed, true
	}
	return nil, 0, false
}

// readAutoSql fetches and decodes the NUL-terminated autoSql text starting
// at offset. Its length isn't recorded in the header, so a generous window
// is fetched and grown if the terminator isn't found within it.
func readAutoSql(ctx context.Context, src rangeio.RangeSource, offset uint64, order binary.ByteOrder) (string, error) {
	const initial = 4096
	fetch := int64(initial)
	for attempt := 0; attempt < 6; attempt++ {
		raw, err := src.Read(ctx, int64(offset), fetch)
		if err != nil {
			if kind, ok := rangehts.KindOf(err); ok && kind == rangehts.OutOfRange {
				raw, err = src.Read(ctx, int64(offset), rangeio.ToEOF)
			}
			if err != nil {
				return "", err
			}
		}
		for i, b := range raw {
			if b == 0 {
				return string(raw[:i]), nil
			}
		}
		if int64(len(raw)) < fetch {
			return string(raw), nil
		}
		fetch *= 4
	}
	return "", rangehts.NewError(rangehts.FileFormat, "bigwig.autoSql", int64(offset), fetch,
		fmt.Errorf("autoSql text not NUL-terminated within %d bytes", fetch))
}
