// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bigwig

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/biogo/rangehts"
	"github.com/biogo/rangehts/cursor"
)

// WigRecord is one BigWig data value over a half-open interval.
type WigRecord struct {
	Chrom string
	Start int
	End   int
	Value float32
}

// BedRecord is a decoded BigBed record: the fixed (chrom, start, end) plus
// whatever a BedColumnParser extracted from the tab-delimited "rest" field.
type BedRecord struct {
	Chrom string
	Start int
	End   int
	Rest  string
	Cols  interface{} // produced by the BedColumnParser passed to ReadBigBedData.
}

// ZoomRecord is one pre-aggregated summary bucket from a zoom level.
type ZoomRecord struct {
	Chrom      string
	Start      int
	End        int
	ValidCount uint32
	MinVal     float32
	MaxVal     float32
	SumData    float32
	SumSquares float32
}

// inflateBlock decompresses raw with zlib when uncompressBufSize is
// non-zero (the header's signal that data blocks are deflate-compressed);
// otherwise raw is already the decoded block.
func inflateBlock(raw []byte, uncompressBufSize uint32) ([]byte, error) {
	if uncompressBufSize == 0 {
		return raw, nil
	}
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, rangehts.NewError(rangehts.FileFormat, "bigwig.block", 0, int64(len(raw)), err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, rangehts.NewError(rangehts.FileFormat, "bigwig.block", 0, int64(len(raw)), err)
	}
	return out, nil
}

// wigRecordTypeBedGraph and wigRecordTypeVaryStep are the block-header
// "type" byte values decodeWigBlock dispatches on; any other value is
// decoded as FixedStep.
const (
	wigRecordTypeBedGraph = 1
	wigRecordTypeVaryStep = 2
)

// decodeWigBlock decodes a single BigWig data block per §4.6's Wig rules,
// emitting only records overlapping [startChrom,startBase)..(endChrom,endBase).
func decodeWigBlock(block []byte, order binary.ByteOrder, h *Header, q query) ([]WigRecord, error) {
	c := cursor.New(block, order)
	chromID := c.U32()
	blockStartBase := c.U32()
	c.Skip(4) // block endBase, redundant with the R+ tree leaf rectangle.
	itemStep := c.U32()
	itemSpan := c.U32()
	recType := c.U8()
	c.Skip(1) // reserved
	itemCount := int(c.U16())

	if chromID < q.startChrom || chromID > q.endChrom {
		return nil, nil
	}
	name, _ := h.ChromName(chromID)

	var out []WigRecord
	start := int(blockStartBase)
	for i := 0; i < itemCount; i++ {
		var recStart, recEnd int
		var value float32
		switch recType {
		case wigRecordTypeBedGraph:
			recStart = int(c.U32())
			recEnd = int(c.U32())
			value = c.F32()
		case wigRecordTypeVaryStep:
			recStart = int(c.U32())
			value = c.F32()
			recEnd = recStart + int(itemSpan)
		default: // FixedStep
			value = c.F32()
			recStart = start
			recEnd = start + int(itemSpan)
			start += int(itemStep)
		}

		if chromID == q.startChrom && recEnd <= int(q.startBase) {
			continue
		}
		if chromID == q.endChrom && recStart >= int(q.endBase) {
			break
		}
		out = append(out, WigRecord{Chrom: name, Start: recStart, End: recEnd, Value: value})
	}
	return out, nil
}

// decodeZoomBlock decodes a run of fixed 32-byte zoom summary records.
func decodeZoomBlock(block []byte, order binary.ByteOrder, h *Header, q query) ([]ZoomRecord, error) {
	const recSize = 32
	c := cursor.New(block, order)
	var out []ZoomRecord
	for c.Remaining() >= recSize {
		chromID := c.U32()
		start := int(c.U32())
		end := int(c.U32())
		validCount := c.U32()
		minVal := c.F32()
		maxVal := c.F32()
		sumData := c.F32()
		sumSquares := c.F32()

		if chromID < q.startChrom || chromID > q.endChrom {
			continue
		}
		if chromID == q.startChrom && end <= int(q.startBase) {
			continue
		}
		if chromID == q.endChrom && start >= int(q.endBase) {
			break
		}
		name, _ := h.ChromName(chromID)
		out = append(out, ZoomRecord{
			Chrom: name, Start: start, End: end,
			ValidCount: validCount, MinVal: minVal, MaxVal: maxVal,
			SumData: sumData, SumSquares: sumSquares,
		})
	}
	return out, nil
}

// decodeBedBlock decodes a run of BigBed records, handing each one's "rest"
// field to parser.
func decodeBedBlock(block []byte, order binary.ByteOrder, h *Header, q query, parser BedColumnParser) ([]BedRecord, error) {
	c := cursor.New(block, order)
	var out []BedRecord
	for c.Remaining() >= 12 {
		chromID := c.U32()
		start := int(c.U32())
		end := int(c.U32())
		rest := c.NulString(-1)

		if chromID < q.startChrom || chromID > q.endChrom {
			continue
		}
		if chromID == q.startChrom && end <= int(q.startBase) {
			continue
		}
		if chromID == q.endChrom && start >= int(q.endBase) {
			break
		}

		name, _ := h.ChromName(chromID)
		rec := BedRecord{Chrom: name, Start: start, End: end, Rest: rest}
		if parser != nil {
			cols, err := parser(rest)
			if err != nil {
				return nil, err
			}
			rec.Cols = cols
		}
		out = append(out, rec)
	}
	return out, nil
}
