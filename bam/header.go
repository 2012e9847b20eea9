// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import (
	"encoding/binary"
	"fmt"

	"github.com/biogo/rangehts"
	"github.com/biogo/rangehts/cursor"
)

// bamMagic is the 4-byte magic at the head of a BAM's decompressed stream.
const bamMagic = 0x014d4142

// Reference is one entry of a BAM's reference dictionary.
type Reference struct {
	Name string
	Len  int
}

// Header holds a BAM's raw header text and its reference dictionary.
type Header struct {
	Text string
	Refs []Reference

	nameToID map[string]int
}

// ParseHeader decodes a BAM header from the start of an already
// BGZF-decompressed byte buffer, per §4.8.
func ParseHeader(data []byte) (*Header, error) {
	c := cursor.New(data, binary.LittleEndian)

	if c.Remaining() < 4 {
		return nil, rangehts.NewError(rangehts.FileFormat, "bam", 0, 4, fmt.Errorf("truncated BAM header"))
	}
	magic := c.U32()
	if magic != bamMagic {
		return nil, rangehts.NewError(rangehts.FileFormat, "bam", 0, 4, fmt.Errorf("bad BAM magic %#x", magic))
	}

	textLen := int(c.I32())
	text := c.FixedString(textLen, false)

	numRefs := int(c.I32())
	h := &Header{
		Text:     text,
		Refs:     make([]Reference, numRefs),
		nameToID: make(map[string]int, numRefs),
	}
	for i := 0; i < numRefs; i++ {
		nameLen := int(c.I32())
		name := c.FixedString(nameLen, false)
		// Reference names are NUL-terminated, not merely fixed-length;
		// drop the trailing NUL the length field itself counts.
		if len(name) > 0 && name[len(name)-1] == 0 {
			name = name[:len(name)-1]
		}
		refLen := int(c.I32())
		h.Refs[i] = Reference{Name: name, Len: refLen}
		h.nameToID[name] = i
	}
	return h, nil
}

// RefID returns the numeric id of the named reference, and whether it was
// found in the dictionary.
func (h *Header) RefID(name string) (int, bool) {
	id, ok := h.nameToID[name]
	return id, ok
}
