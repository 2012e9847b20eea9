// Copyright ©2014 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import (
	"bytes"
	"encoding/binary"
	"testing"

	"gopkg.in/check.v1"

	"github.com/biogo/rangehts/bgzf"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

func putVOffset(buf *bytes.Buffer, o bgzf.Offset) {
	var raw uint64 = uint64(o.File)<<16 | uint64(o.Block)
	binary.Write(buf, binary.LittleEndian, raw)
}

// buildBai constructs the bytes of a single-reference BAI holding one bin
// with one chunk, and a linear index of the given virtual offsets.
func buildBai(binNumber uint32, chunk bgzf.Chunk, linear []bgzf.Offset) []byte {
	var buf bytes.Buffer
	buf.WriteString(baiMagic)
	binary.Write(&buf, binary.LittleEndian, int32(1)) // n_ref

	binary.Write(&buf, binary.LittleEndian, int32(1)) // n_bin
	binary.Write(&buf, binary.LittleEndian, binNumber)
	binary.Write(&buf, binary.LittleEndian, int32(1)) // n_chunk
	putVOffset(&buf, chunk.Begin)
	putVOffset(&buf, chunk.End)

	binary.Write(&buf, binary.LittleEndian, int32(len(linear)))
	for _, o := range linear {
		putVOffset(&buf, o)
	}
	return buf.Bytes()
}

func (s *S) TestParseBaiIndexRoundTrip(c *check.C) {
	chunk := bgzf.Chunk{
		Begin: bgzf.Offset{File: 100, Block: 0},
		End:   bgzf.Offset{File: 5000, Block: 20},
	}
	data := buildBai(0, chunk, []bgzf.Offset{{File: 0, Block: 0}})

	idx, err := ParseBaiIndex(data)
	c.Assert(err, check.Equals, nil)
	c.Check(idx.RefCount(), check.Equals, 1)

	chunks, err := idx.Chunks(0, 0, 1000)
	c.Assert(err, check.Equals, nil)
	c.Check(chunks, check.DeepEquals, []bgzf.Chunk{chunk})
}

func (s *S) TestParseBaiIndexBadMagic(c *check.C) {
	_, err := ParseBaiIndex([]byte("XXXX"))
	c.Assert(err, check.Not(check.Equals), nil)
}

func (s *S) TestParseBaiIndexSkipsPseudoBin(c *check.C) {
	var buf bytes.Buffer
	buf.WriteString(baiMagic)
	binary.Write(&buf, binary.LittleEndian, int32(1)) // n_ref
	binary.Write(&buf, binary.LittleEndian, int32(1)) // n_bin
	binary.Write(&buf, binary.LittleEndian, uint32(37450))
	buf.Write(make([]byte, 36))
	binary.Write(&buf, binary.LittleEndian, int32(0)) // n_intervals

	idx, err := ParseBaiIndex(buf.Bytes())
	c.Assert(err, check.Equals, nil)
	chunks, err := idx.Chunks(0, 0, 1000)
	c.Assert(err, check.Equals, nil)
	c.Check(chunks, check.HasLen, 0)
}

func (s *S) TestChunkCoalesce(c *check.C) {
	chunks := []bgzf.Chunk{
		{Begin: bgzf.Offset{File: 0, Block: 0}, End: bgzf.Offset{File: 1000, Block: 0}},
		{Begin: bgzf.Offset{File: 1500, Block: 0}, End: bgzf.Offset{File: 2000, Block: 0}},
		{Begin: bgzf.Offset{File: 100000, Block: 0}, End: bgzf.Offset{File: 101000, Block: 0}},
	}
	merged := coalesce(chunks)
	c.Assert(merged, check.HasLen, 2)
	c.Check(merged[0].End.File, check.Equals, int64(2000))
	c.Check(merged[1].Begin.File, check.Equals, int64(100000))
}
