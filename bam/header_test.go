// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import (
	"bytes"
	"encoding/binary"

	"gopkg.in/check.v1"
)

func buildHeader(text string, refs []Reference) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(bamMagic))
	binary.Write(&buf, binary.LittleEndian, int32(len(text)))
	buf.WriteString(text)
	binary.Write(&buf, binary.LittleEndian, int32(len(refs)))
	for _, ref := range refs {
		nameWithNul := ref.Name + "\x00"
		binary.Write(&buf, binary.LittleEndian, int32(len(nameWithNul)))
		buf.WriteString(nameWithNul)
		binary.Write(&buf, binary.LittleEndian, int32(ref.Len))
	}
	return buf.Bytes()
}

func (s *S) TestParseHeader(c *check.C) {
	refs := []Reference{{Name: "chr1", Len: 249250621}, {Name: "chr2", Len: 243199373}}
	data := buildHeader("@HD\tVN:1.5\n", refs)

	h, err := ParseHeader(data)
	c.Assert(err, check.Equals, nil)
	c.Check(h.Text, check.Equals, "@HD\tVN:1.5\n")
	c.Check(h.Refs, check.DeepEquals, refs)

	id, ok := h.RefID("chr2")
	c.Check(ok, check.Equals, true)
	c.Check(id, check.Equals, 1)

	_, ok = h.RefID("chr99")
	c.Check(ok, check.Equals, false)
}

func (s *S) TestParseHeaderBadMagic(c *check.C) {
	_, err := ParseHeader([]byte{0, 0, 0, 0})
	c.Assert(err, check.Not(check.Equals), nil)
}
