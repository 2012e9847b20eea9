// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import (
	"bytes"
	"encoding/binary"

	"gopkg.in/check.v1"
)

// packSeq packs upper-case bases from "=ACMGRSVTWYHKDBN" two per byte, the
// inverse of decodeSeq, for building test fixtures.
func packSeq(bases string) []byte {
	out := make([]byte, (len(bases)+1)/2)
	for i, b := range bases {
		code := bytes.IndexByte(baseAlphabet[:], byte(b))
		if code < 0 {
			panic("packSeq: base not in alphabet")
		}
		if i%2 == 0 {
			out[i/2] |= byte(code) << 4
		} else {
			out[i/2] |= byte(code)
		}
	}
	return out
}

type recordFixture struct {
	refID, pos               int32
	mapQ                     uint8
	flags                    uint16
	name                     string
	cigar                    []uint32
	seq                      string
	qual                     []byte
	mateRefID, matePos, tLen int32
}

func encodeRecord(buf *bytes.Buffer, f recordFixture) {
	nameWithNul := f.name + "\x00"
	seqBytes := packSeq(f.seq)

	var body bytes.Buffer
	binary.Write(&body, binary.LittleEndian, f.refID)
	binary.Write(&body, binary.LittleEndian, f.pos)
	body.WriteByte(uint8(len(nameWithNul)))
	body.WriteByte(f.mapQ)
	binary.Write(&body, binary.LittleEndian, uint16(0)) // bin, unused by the decoder.
	binary.Write(&body, binary.LittleEndian, uint16(len(f.cigar)))
	binary.Write(&body, binary.LittleEndian, f.flags)
	binary.Write(&body, binary.LittleEndian, int32(len(f.seq)))
	binary.Write(&body, binary.LittleEndian, f.mateRefID)
	binary.Write(&body, binary.LittleEndian, f.matePos)
	binary.Write(&body, binary.LittleEndian, f.tLen)
	body.WriteString(nameWithNul)
	for _, op := range f.cigar {
		binary.Write(&body, binary.LittleEndian, op)
	}
	body.Write(seqBytes)
	body.Write(f.qual)

	binary.Write(buf, binary.LittleEndian, int32(body.Len()))
	buf.Write(body.Bytes())
}

func (s *S) TestDecodeAlignments(c *check.C) {
	var buf bytes.Buffer
	encodeRecord(&buf, recordFixture{
		refID: 0, pos: 100, mapQ: 37, flags: uint16(Reverse),
		name:      "read1",
		cigar:     []uint32{36 << 4}, // 36M
		seq:       "ACGTACGTAC",
		qual:      bytes.Repeat([]byte{30}, 10),
		mateRefID: -1, matePos: -1, tLen: 0,
	})
	// A record on a different reference, which must be skipped without
	// being decoded (the jump-to-blockEnd path).
	encodeRecord(&buf, recordFixture{
		refID: 1, pos: 50, mapQ: 10, flags: 0,
		name: "read2", cigar: nil, seq: "AC", qual: []byte{20, 20},
		mateRefID: -1, matePos: -1, tLen: 0,
	})

	recs, err := DecodeAlignments(buf.Bytes(), 0, 0, 1000)
	c.Assert(err, check.Equals, nil)
	c.Assert(recs, check.HasLen, 1)

	r := recs[0]
	c.Check(r.Name, check.Equals, "read1")
	c.Check(r.Start, check.Equals, 100)
	c.Check(r.MapQ, check.Equals, uint8(37))
	c.Check(r.Strand, check.Equals, false) // Reverse flag set.
	c.Check(r.Seq, check.Equals, "ACGTACGTAC")
	c.Check(r.LengthOnRef, check.Equals, 36)
	c.Check(r.Cigar, check.HasLen, 1)
	c.Check(r.Cigar[0].Op, check.Equals, CigarMatch)
	c.Check(r.Cigar[0].Len, check.Equals, 36)
}

func (s *S) TestDecodeAlignmentsFiltersByInterval(c *check.C) {
	var buf bytes.Buffer
	encodeRecord(&buf, recordFixture{
		refID: 0, pos: 5000, mapQ: 1, flags: 0,
		name: "toolate", cigar: nil, seq: "A", qual: []byte{1},
		mateRefID: -1, matePos: -1, tLen: 0,
	})

	recs, err := DecodeAlignments(buf.Bytes(), 0, 0, 100)
	c.Assert(err, check.Equals, nil)
	c.Check(recs, check.HasLen, 0)
}
