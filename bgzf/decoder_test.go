// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgzf

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// writeMember writes payload as a single BGZF member (a gzip member
// carrying the "BC" extra subfield with the total block size) to w, and
// returns the number of bytes written.
//
// The fixed 10-byte gzip header is followed by a 2-byte XLEN and then the
// extra-field bytes themselves when FEXTRA is set, so once the member's
// total length is known the BSIZE value can be patched directly into the
// bytes already written, the same two-pass trick BGZF writers use.
func writeMember(t *testing.T, w *bytes.Buffer, payload []byte) int {
	t.Helper()
	before := w.Len()

	var member bytes.Buffer
	zw, err := gzip.NewWriterLevel(&member, gzip.DefaultCompression)
	if err != nil {
		t.Fatal(err)
	}
	zw.Header.Extra = []byte{'B', 'C', 2, 0, 0, 0}
	if _, err := zw.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	b := member.Bytes()
	bsize := uint16(len(b) - 1)
	// offset 10-11: XLEN: offset 12-13: SI1,SI2; 14-15: SLEN; 16-17: BSIZE.
	b[16] = byte(bsize)
	b[17] = byte(bsize >> 8)

	w.Write(b)
	return w.Len() - before
}

func buildStream(t *testing.T, members ...[]byte) ([]byte, []int) {
	t.Helper()
	var buf bytes.Buffer
	var sizes []int
	for _, m := range members {
		sizes = append(sizes, writeMember(t, &buf, m))
	}
	return buf.Bytes(), sizes
}

func TestDecodeConcatenatesMembers(t *testing.T) {
	data, _ := buildStream(t, []byte("hello "), []byte("world"))
	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello world" {
		t.Fatalf("got %q, want %q", got, "hello world")
	}
}

func TestDecodeChunkWithinOneMember(t *testing.T) {
	data, _ := buildStream(t, []byte("0123456789"))
	chunk := Chunk{
		Begin: Offset{File: 0, Block: 2},
		End:   Offset{File: 0, Block: 5},
	}
	got, err := DecodeChunk(data, chunk)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "2345" {
		t.Fatalf("got %q, want %q", got, "2345")
	}
}

func TestDecodeChunkAcrossMembers(t *testing.T) {
	members := [][]byte{[]byte("aaaaa"), []byte("bbbbb"), []byte("ccccc")}
	data, sizes := buildStream(t, members...)
	member2Offset := int64(sizes[0])

	chunk := Chunk{
		Begin: Offset{File: 0, Block: 3},
		End:   Offset{File: member2Offset, Block: 1},
	}
	got, err := DecodeChunk(data, chunk)
	if err != nil {
		t.Fatal(err)
	}
	want := "aa" + "bb"
	if string(got) != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecodeIdempotenceAcrossChunkSpans(t *testing.T) {
	members := [][]byte{[]byte("0123"), []byte("4567"), []byte("89AB")}
	data, sizes := buildStream(t, members...)
	full, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}

	member1Offset := int64(sizes[0])
	member2Offset := member1Offset + int64(sizes[1])

	spans := []Chunk{
		{Begin: Offset{File: 0, Block: 0}, End: Offset{File: member1Offset, Block: 1}},
		{Begin: Offset{File: member1Offset, Block: 2}, End: Offset{File: member2Offset, Block: 3}},
	}

	var reassembled []byte
	for _, c := range spans {
		part, err := DecodeChunk(data[c.Begin.File:], c)
		if err != nil {
			t.Fatal(err)
		}
		reassembled = append(reassembled, part...)
	}
	if string(reassembled) != string(full) {
		t.Fatalf("reassembled %q != full decode %q", reassembled, full)
	}
}
