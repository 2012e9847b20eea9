// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bgzf decodes BGZF (RFC1952 gzip member concatenation) data held
// in memory, the framing BAM and BAI are built on. Unlike a conventional
// streaming bgzf.Reader layered over a seekable file, this decoder works
// over byte slices already fetched through a rangeio.RangeSource: the
// caller supplies exactly the bytes covering one or more members, and asks
// for either the whole decompressed span or the span trimmed to a Chunk of
// virtual offsets.
package bgzf

import "encoding/binary"

// Offset is a virtual offset into a BGZF stream: File is the byte offset
// of the BGZF member the pointer falls in, and Block is the byte offset
// within that member's decompressed output. The two fields correspond to
// the spec's blockPos (48 bits) and dataPos (16 bits); Go's native int64
// and uint16 hold them without the 2^53 double-precision caveat that the
// source implementations work around.
type Offset struct {
	File  int64
	Block uint16
}

// Chunk is a half-open span of BGZF virtual offsets, the unit a BAI index
// resolves a genomic interval into.
type Chunk struct {
	Begin, End Offset
}

// vOffset returns the total order key for an Offset: by File, then Block.
func vOffset(o Offset) int64 { return o.File<<16 | int64(o.Block) }

// Less reports whether o sorts before other in the Offset total order.
func (o Offset) Less(other Offset) bool { return vOffset(o) < vOffset(other) }

// ParseVirtualOffset decodes an 8-byte little-endian virtual offset, the
// encoding used throughout BAI regardless of the host file's own byte
// order.
func ParseVirtualOffset(raw uint64) Offset {
	return Offset{File: int64(raw >> 16), Block: uint16(raw)}
}

// ReadVirtualOffset decodes the 8 bytes at the front of b as a virtual
// offset.
func ReadVirtualOffset(b []byte) Offset {
	return ParseVirtualOffset(binary.LittleEndian.Uint64(b))
}

// isZero reports whether o is the zero Offset, the value the BAI linear
// index holds for an unset tile.
func isZero(o Offset) bool { return o == Offset{} }
