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

// Alignment is a decoded BAM alignment record, filtered to the interval
// that was queried for it.
type Alignment struct {
	RefID       int
	Start       int // 0-based leftmost mapped position.
	Flags       Flags
	Strand      bool // true for forward strand, derived from Flags.
	Name        string
	Cigar       []CigarOp
	LengthOnRef int // sum of reference-consuming CIGAR operation lengths.
	MapQ        uint8
	Seq         string
	Qual        []byte
	MateRefID   int
	MatePos     int
	TemplateLen int
}

// baseAlphabet is the 4-bit code to base-letter mapping BAM packs two
// codes per byte with.
var baseAlphabet = [...]byte{'=', 'A', 'C', 'M', 'G', 'R', 'S', 'V', 'T', 'W', 'Y', 'H', 'K', 'D', 'B', 'N'}

func decodeSeq(packed []byte, seqLen int) string {
	out := make([]byte, seqLen)
	for i := 0; i < seqLen; i++ {
		v := packed[i/2]
		var code byte
		if i%2 == 0 {
			code = v >> 4
		} else {
			code = v & 0xf
		}
		out[i] = baseAlphabet[code]
	}
	return string(out)
}

// DecodeAlignments decodes every alignment in buf (a fully BGZF-inflated
// byte span) that overlaps reference refID's interval [start, end), per
// §4.9. Records on other references, or that fall outside the interval,
// are skipped by jumping straight to the next record's boundary without
// decoding their variable-length fields.
func DecodeAlignments(buf []byte, refID, start, end int) ([]*Alignment, error) {
	c := cursor.New(buf, binary.LittleEndian)

	var out []*Alignment
	for c.Remaining() >= 4 {
		blockSize := int(c.I32())
		blockStart := c.Pos
		blockEnd := blockStart + blockSize
		if blockSize < 0 || blockEnd > c.Len() {
			return out, rangehts.NewError(rangehts.FileFormat, "bam", int64(blockStart), int64(blockSize),
				fmt.Errorf("invalid record block size %d", blockSize))
		}

		blockRefID := int(c.I32())
		pos := int(c.I32())
		nameLen := int(c.U8())
		mapQ := c.U8()
		c.Skip(2) // bin: not needed once BaiIndex has already selected this chunk.
		numCigar := int(c.U16())
		flags := Flags(c.U16())
		seqLen := int(c.I32())
		mateRefID := int(c.I32())
		matePos := int(c.I32())
		tLen := int(c.I32())

		if blockRefID == -1 || blockRefID != refID || pos > end || pos+seqLen < start {
			c.Pos = blockEnd
			continue
		}

		name := c.FixedString(nameLen, false)
		if len(name) > 0 && name[len(name)-1] == 0 {
			name = name[:len(name)-1]
		}

		cigarRaw := make([]uint32, numCigar)
		for i := range cigarRaw {
			cigarRaw[i] = c.U32()
		}
		ops, lengthOnRef := decodeCigar(cigarRaw)

		seqBytes := c.Take((seqLen + 1) / 2)
		seq := decodeSeq(seqBytes, seqLen)
		qual := append([]byte(nil), c.Take(seqLen)...)

		out = append(out, &Alignment{
			RefID:       blockRefID,
			Start:       pos,
			Flags:       flags,
			Strand:      flags.Strand(),
			Name:        name,
			Cigar:       ops,
			LengthOnRef: lengthOnRef,
			MapQ:        mapQ,
			Seq:         seq,
			Qual:        qual,
			MateRefID:   mateRefID,
			MatePos:     matePos,
			TemplateLen: tLen,
		})

		c.Pos = blockEnd
	}
	return out, nil
}
