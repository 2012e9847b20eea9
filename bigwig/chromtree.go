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
	chromTreeMagic       = 0x78CA8C91
	chromTreeHeaderSize  = 32
	chromTreeNodePreSize = 4
)

// readChromTree walks the B+ tree rooted at offset and returns the
// name→id and id→(name,size) dictionaries described in §4.4.
func readChromTree(ctx context.Context, src rangeio.RangeSource, offset uint64, order binary.ByteOrder) (map[string]uint32, []chromEntry, error) {
	hdrRaw, err := src.Read(ctx, int64(offset), chromTreeHeaderSize)
	if err != nil {
		return nil, nil, err
	}
	c := cursor.New(hdrRaw, order)
	magic := c.U32()
	if magic != chromTreeMagic {
		return nil, nil, rangehts.NewError(rangehts.FileFormat, "bigwig.chromTree", int64(offset), 4,
			fmt.Errorf("bad chromosome B+ tree magic %#x", magic))
	}
	c.Skip(4) // blockSize, not needed: we read each node's own count.
	keySize := int(c.U32())
	c.Skip(4) // valSize is always 8 (chromId, chromSize), not consulted.
	itemCount := c.U64()
	c.Skip(8) // reserved

	chromToID := make(map[string]uint32, itemCount)
	idToChrom := make([]chromEntry, itemCount)

	var walk func(nodeOffset int64) error
	walk = func(nodeOffset int64) error {
		preRaw, err := src.Read(ctx, nodeOffset, chromTreeNodePreSize)
		if err != nil {
			return err
		}
		pc := cursor.New(preRaw, order)
		isLeaf := pc.U8()
		pc.Skip(1) // reserved
		count := int(pc.U16())

		if isLeaf != 0 {
			itemSize := keySize + 8
			body, err := src.Read(ctx, nodeOffset+chromTreeNodePreSize, int64(count*itemSize))
			if err != nil {
				return err
			}
			bc := cursor.New(body, order)
			for i := 0; i < count; i++ {
				name := bc.FixedString(keySize, true)
				id := bc.U32()
				size := bc.U32()
				chromToID[name] = id
				if int(id) < len(idToChrom) {
					idToChrom[id] = chromEntry{Name: name, Size: size}
				}
			}
			return nil
		}

		itemSize := keySize + 8
		body, err := src.Read(ctx, nodeOffset+chromTreeNodePreSize, int64(count*itemSize))
		if err != nil {
			return err
		}
		bc := cursor.New(body, order)
		children := make([]int64, count)
		for i := 0; i < count; i++ {
			bc.Skip(keySize)
			children[i] = int64(bc.U64())
		}
		for _, child := range children {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(int64(offset) + chromTreeHeaderSize); err != nil {
		return nil, nil, err
	}
	return chromToID, idToChrom, nil
}
