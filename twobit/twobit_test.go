// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package twobit

import (
	"bytes"
	"context"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/kortschak/utter"
)

type memSource struct{ data []byte }

func (m *memSource) Read(ctx context.Context, offset, size int64) ([]byte, error) {
	if size < 0 {
		size = int64(len(m.data)) - offset
	}
	out := make([]byte, size)
	copy(out, m.data[offset:offset+size])
	return out, nil
}

// packBases packs an upper-case "TCAG"-alphabet string 4 bases per byte.
func packBases(s string) []byte {
	code := map[byte]byte{'T': 0, 'C': 1, 'A': 2, 'G': 3}
	out := make([]byte, (len(s)+3)/4)
	for i := 0; i < len(s); i++ {
		out[i/4] |= code[s[i]] << uint(6-2*(i%4))
	}
	return out
}

// buildFixture assembles a minimal 2bit file with one sequence, one
// N-block and one mask-block.
func buildFixture(seq string, nBlocks, maskBlocks []BlockPair) []byte {
	order := binary.LittleEndian

	var out bytes.Buffer
	binary.Write(&out, order, uint32(twoBitMagic))
	binary.Write(&out, order, uint32(0)) // version
	binary.Write(&out, order, uint32(1)) // sequenceCount
	binary.Write(&out, order, uint32(0)) // reserved

	// Sequence directory entry: nameLen, name, offset. Patched after the
	// sequence record's own offset is known.
	name := "seq1"
	out.WriteByte(byte(len(name)))
	out.WriteString(name)
	offsetFieldPos := out.Len()
	binary.Write(&out, order, uint32(0)) // placeholder offset

	seqOffset := uint32(out.Len())

	binary.Write(&out, order, uint32(len(seq)))       // dnaSize
	binary.Write(&out, order, uint32(len(nBlocks)))   // nBlockCount
	for _, b := range nBlocks {
		binary.Write(&out, order, uint32(b.Start))
	}
	for _, b := range nBlocks {
		binary.Write(&out, order, uint32(b.Size))
	}
	binary.Write(&out, order, uint32(len(maskBlocks))) // maskBlockCount
	for _, b := range maskBlocks {
		binary.Write(&out, order, uint32(b.Start))
	}
	for _, b := range maskBlocks {
		binary.Write(&out, order, uint32(b.Size))
	}
	binary.Write(&out, order, uint32(0)) // reserved

	out.Write(packBases(seq))

	final := out.Bytes()
	binary.LittleEndian.PutUint32(final[offsetFieldPos:], seqOffset)
	return final
}

func TestReadTwoBitDataPlain(t *testing.T) {
	// "CTGATGCTA" at [2, 11), surrounded by arbitrary bases.
	seq := "ACCTGATGCTATTTT"
	src := &memSource{data: buildFixture(seq, nil, nil)}
	r, err := NewReader(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.ReadTwoBitData(context.Background(), "seq1", 2, 11)
	if err != nil {
		t.Fatal(err)
	}
	if got != "CTGATGCTA" {
		t.Fatalf("got %q, want %q", got, "CTGATGCTA")
	}
}

func TestReadTwoBitDataNBlock(t *testing.T) {
	base := make([]byte, 90)
	for i := range base {
		base[i] = "TCAG"[i%4]
	}
	base[86] = 'C' // the one base past the N-block's end, inside the query.
	seq := string(base)

	// N-block covers [44, 86); the query [44, 87) extends one base past
	// it, so the output is 42 Ns followed by that one un-masked base.
	src := &memSource{data: buildFixture(seq, []BlockPair{{Start: 44, Size: 42}}, nil)}
	r, err := NewReader(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := r.SequenceRecord(context.Background(), "seq1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.NBlocks) != 1 || rec.NBlocks[0].Start != 44 || rec.NBlocks[0].Size != 42 {
		t.Fatalf("rec.NBlocks = %s", utter.Sdump(rec.NBlocks))
	}
	got, err := r.ReadTwoBitData(context.Background(), "seq1", 44, 87)
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Repeat("N", 42) + "C"
	if got != want {
		t.Fatalf("got %q, want %q: %s", got, want, utter.Sdump(rec))
	}
}

func TestReadTwoBitDataMaskBlock(t *testing.T) {
	seq := "TACTGTGATCGATT"
	src := &memSource{data: buildFixture(seq, nil, []BlockPair{{Start: 1, Size: 11}})}
	r, err := NewReader(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.ReadTwoBitData(context.Background(), "seq1", 1, 12)
	if err != nil {
		t.Fatal(err)
	}
	if got != "actgtgatcga" {
		t.Fatalf("got %q, want %q", got, "actgtgatcga")
	}
}

func TestReadOneHot(t *testing.T) {
	seq := "ACGT"
	src := &memSource{data: buildFixture(seq, nil, nil)}
	r, err := NewReader(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.ReadOneHot(context.Background(), "seq1", 0, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := [][4]float32{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}
	if got != nil {
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
			}
		}
	}
}

func TestStreamTwoBitData(t *testing.T) {
	seq := "ACCTGATGCTATTTT"
	src := &memSource{data: buildFixture(seq, nil, nil)}
	r, err := NewReader(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	st, err := r.StreamTwoBitData(context.Background(), "seq1", 2, 11, 3)
	if err != nil {
		t.Fatal(err)
	}
	var got string
	for st.Next() {
		got += st.Chunk()
	}
	if st.Err() != nil {
		t.Fatal(st.Err())
	}
	if got != "CTGATGCTA" {
		t.Fatalf("got %q, want %q", got, "CTGATGCTA")
	}
}
