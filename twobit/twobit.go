// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package twobit reads UCSC 2bit sequence files over an abstract
// byte-range transport: four bases packed per byte, overlaid with N-block
// and soft-mask runs.
package twobit

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/biogo/rangehts"
	"github.com/biogo/rangehts/cursor"
	"github.com/biogo/rangehts/rangeio"
)

const twoBitMagic = 0x1A412743

// BlockPair is a single (start, size) run, used for both N-blocks and
// soft-mask blocks.
type BlockPair struct {
	Start, Size int
}

// SequenceRecord is one 2bit sequence's decoded index entry: its length,
// its N-block and mask-block tables, and the file offset of its packed
// bases.
type SequenceRecord struct {
	Name          string
	DNASize       int
	NBlocks       []BlockPair
	MaskBlocks    []BlockPair
	packedOffset  int64
}

// Reader reads sequences from a 2bit file, caching the header's sequence
// directory and each SequenceRecord it has decoded.
type Reader struct {
	src rangeio.RangeSource

	mu      sync.Mutex
	order   binary.ByteOrder
	offsets map[string]int64 // name -> file offset of the sequence's own header
	records map[string]*SequenceRecord
}

// NewReader returns a Reader over src, reading and validating the file
// header immediately (unlike the BigWig/BAM readers, the 2bit sequence
// directory is small and always needed before any read can resolve a
// chromosome name).
func NewReader(ctx context.Context, src rangeio.RangeSource) (*Reader, error) {
	r := &Reader{src: src, records: make(map[string]*SequenceRecord)}
	if err := r.readIndex(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) readIndex(ctx context.Context) error {
	hdr, err := r.src.Read(ctx, 0, 16)
	if err != nil {
		return err
	}
	order, ok := detectOrder(hdr[:4])
	if !ok {
		return rangehts.NewError(rangehts.FileFormat, "twobit", 0, 4,
			fmt.Errorf("bad 2bit magic % x", hdr[:4]))
	}
	c := cursor.New(hdr, order)
	c.Skip(4) // magic
	version := c.U32()
	seqCount := c.U32()
	reserved := c.U32()
	if version != 0 || reserved != 0 {
		return rangehts.NewError(rangehts.FileFormat, "twobit", 0, 16,
			fmt.Errorf("non-zero version/reserved in 2bit header"))
	}

	r.order = order
	r.offsets = make(map[string]int64, seqCount)

	pos := int64(16)
	for i := uint32(0); i < seqCount; i++ {
		lenRaw, err := r.src.Read(ctx, pos, 1)
		if err != nil {
			return err
		}
		nameLen := int(lenRaw[0])
		entry, err := r.src.Read(ctx, pos+1, int64(nameLen)+4)
		if err != nil {
			return err
		}
		ec := cursor.New(entry, order)
		name := ec.FixedString(nameLen, false)
		offset := ec.U32()
		r.offsets[name] = int64(offset)
		pos += 1 + int64(nameLen) + 4
	}
	return nil
}

// detectOrder reports the byte order implied by a 4-byte 2bit magic,
// trying little-endian first and then big-endian.
func detectOrder(magic []byte) (binary.ByteOrder, bool) {
	if binary.LittleEndian.Uint32(magic) == twoBitMagic {
		return binary.LittleEndian, true
	}
	if binary.BigEndian.Uint32(magic) == twoBitMagic {
		return binary.BigEndian, true
	}
	return nil, false
}

// SequenceRecord returns the decoded sequence-header entry for chrom,
// parsing and memoizing it on first call.
func (r *Reader) SequenceRecord(ctx context.Context, chrom string) (*SequenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[chrom]; ok {
		return rec, nil
	}
	offset, ok := r.offsets[chrom]
	if !ok {
		return nil, rangehts.NewError(rangehts.DataMissing, chrom, 0, 0,
			fmt.Errorf("sequence %q not found in 2bit index", chrom))
	}

	head, err := r.src.Read(ctx, offset, 8)
	if err != nil {
		return nil, err
	}
	c := cursor.New(head, r.order)
	dnaSize := int(c.U32())
	nBlockCount := int(c.U32())

	pos := offset + 8
	nStarts, err := readBlockInts(ctx, r.src, pos, nBlockCount, r.order)
	if err != nil {
		return nil, err
	}
	pos += int64(nBlockCount) * 4
	nSizes, err := readBlockInts(ctx, r.src, pos, nBlockCount, r.order)
	if err != nil {
		return nil, err
	}
	pos += int64(nBlockCount) * 4

	maskCountRaw, err := r.src.Read(ctx, pos, 4)
	if err != nil {
		return nil, err
	}
	maskCount := int(r.order.Uint32(maskCountRaw))
	pos += 4

	maskStarts, err := readBlockInts(ctx, r.src, pos, maskCount, r.order)
	if err != nil {
		return nil, err
	}
	pos += int64(maskCount) * 4
	maskSizes, err := readBlockInts(ctx, r.src, pos, maskCount, r.order)
	if err != nil {
		return nil, err
	}
	pos += int64(maskCount) * 4

	pos += 4 // reserved u32

	rec := &SequenceRecord{
		Name:         chrom,
		DNASize:      dnaSize,
		NBlocks:      zipBlocks(nStarts, nSizes),
		MaskBlocks:   zipBlocks(maskStarts, maskSizes),
		packedOffset: pos,
	}
	r.records[chrom] = rec
	return rec, nil
}

func readBlockInts(ctx context.Context, src rangeio.RangeSource, offset int64, count int, order binary.ByteOrder) ([]int, error) {
	if count == 0 {
		return nil, nil
	}
	raw, err := src.Read(ctx, offset, int64(count)*4)
	if err != nil {
		return nil, err
	}
	c := cursor.New(raw, order)
	out := make([]int, count)
	for i := range out {
		out[i] = int(c.U32())
	}
	return out, nil
}

func zipBlocks(starts, sizes []int) []BlockPair {
	if len(starts) == 0 {
		return nil
	}
	out := make([]BlockPair, len(starts))
	for i := range starts {
		out[i] = BlockPair{Start: starts[i], Size: sizes[i]}
	}
	return out
}
