// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bigwig

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/biogo/rangehts"
	"github.com/biogo/rangehts/cursor"
	"github.com/biogo/rangehts/rangeio"
)

const (
	rTreeMagic      = 0x2468ACE0
	rTreeHeaderSize = 48
	rTreeNodePreSize = 4
	rTreeLeafSize    = 32
	rTreeChildSize   = 24
)

// RTreeLeaf points at one compressed (or, when the header's
// UncompressBufSize is 0, uncompressed) block of encoded records.
type RTreeLeaf struct {
	StartChrom uint32
	StartBase  uint32
	EndChrom   uint32
	EndBase    uint32
	DataOffset uint64
	DataSize   uint64
}

// query is the (startChrom, startBase, endChrom, endBase) rectangle an
// RTreeLeaf or internal-node item is tested against.
type query struct {
	startChrom, startBase uint32
	endChrom, endBase     uint32
}

// overlaps implements the rectangle overlap predicate of §4.5.
func overlaps(itemStartChrom, itemStartBase, itemEndChrom, itemEndBase uint32, q query) bool {
	afterOrAtStart := q.endChrom > itemStartChrom || (q.endChrom == itemStartChrom && q.endBase >= itemStartBase)
	beforeOrAtEnd := q.startChrom < itemEndChrom || (q.startChrom == itemEndChrom && q.startBase <= itemEndBase)
	return afterOrAtStart && beforeOrAtEnd
}

// walkRTree returns, in on-disk (ascending chrom/base) order, every leaf of
// the R+ tree rooted at treeOffset whose rectangle overlaps q.
func walkRTree(ctx context.Context, src rangeio.RangeSource, treeOffset int64, order binary.ByteOrder, q query) ([]RTreeLeaf, error) {
	hdrRaw, err := src.Read(ctx, treeOffset, rTreeHeaderSize)
	if err != nil {
		return nil, err
	}
	c := cursor.New(hdrRaw, order)
	magic := c.U32()
	if magic != rTreeMagic {
		return nil, rangehts.NewError(rangehts.FileFormat, "bigwig.rTree", treeOffset, 4,
			fmt.Errorf("bad R+ tree magic %#x", magic))
	}
	// blockSize, itemCount, the root rectangle, endFileOffset, itemsPerSlot
	// and reserved are all available here but not needed by the walker:
	// pruning relies solely on the per-item rectangle test at every level.

	var out []RTreeLeaf
	var walk func(nodeOffset int64) error
	walk = func(nodeOffset int64) error {
		preRaw, err := src.Read(ctx, nodeOffset, rTreeNodePreSize)
		if err != nil {
			return err
		}
		pc := cursor.New(preRaw, order)
		isLeaf := pc.U8()
		pc.Skip(1) // reserved
		count := int(pc.U16())
		if count == 0 {
			return nil
		}

		if isLeaf != 0 {
			body, err := src.Read(ctx, nodeOffset+rTreeNodePreSize, int64(count*rTreeLeafSize))
			if err != nil {
				return err
			}
			bc := cursor.New(body, order)
			for i := 0; i < count; i++ {
				leaf := RTreeLeaf{
					StartChrom: bc.U32(),
					StartBase:  bc.U32(),
					EndChrom:   bc.U32(),
					EndBase:    bc.U32(),
					DataOffset: bc.U64(),
					DataSize:   bc.U64(),
				}
				if overlaps(leaf.StartChrom, leaf.StartBase, leaf.EndChrom, leaf.EndBase, q) {
					out = append(out, leaf)
				}
			}
			return nil
		}

		body, err := src.Read(ctx, nodeOffset+rTreeNodePreSize, int64(count*rTreeChildSize))
		if err != nil {
			return err
		}
		bc := cursor.New(body, order)
		type child struct {
			startChrom, startBase, endChrom, endBase uint32
			offset                                   int64
		}
		children := make([]child, count)
		for i := range children {
			children[i] = child{
				startChrom: bc.U32(),
				startBase:  bc.U32(),
				endChrom:   bc.U32(),
				endBase:    bc.U32(),
				offset:     int64(bc.U64()),
			}
		}
		for _, ch := range children {
			if !overlaps(ch.startChrom, ch.startBase, ch.endChrom, ch.endBase, q) {
				continue
			}
			if err := walk(ch.offset); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(treeOffset + rTreeHeaderSize); err != nil {
		return nil, err
	}
	return out, nil
}
