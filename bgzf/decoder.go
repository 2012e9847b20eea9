// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgzf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/biogo/rangehts"
	"github.com/biogo/rangehts/internal/pool"
)

// copyScratchSize is the chunk size used to drain each inflated member
// into its output buffer; pooling it avoids a fresh allocation per member
// on hot paths that decode many small chunks.
const copyScratchSize = 32 * 1024

// bgzfExtraSubfield is the gzip extra-field subfield identifier ("BC")
// that marks a member as BGZF-framed and carries its total on-disk block
// size minus one.
var bgzfExtraSubfield = [2]byte{'B', 'C'}

// blockSize returns the declared total size of the member whose header is
// hdr, and whether hdr carries a well-formed BGZF "BC" subfield.
func blockSize(hdr *gzip.Header) (int, bool) {
	extra := hdr.Extra
	for len(extra) >= 4 {
		si1, si2, slen := extra[0], extra[1], int(extra[2])|int(extra[3])<<8
		extra = extra[4:]
		if len(extra) < slen {
			return 0, false
		}
		if si1 == bgzfExtraSubfield[0] && si2 == bgzfExtraSubfield[1] && slen == 2 {
			bsize := int(extra[0]) | int(extra[1])<<8
			return bsize + 1, true
		}
		extra = extra[slen:]
	}
	return 0, false
}

// Decode inflates every BGZF member in data, in order, and returns their
// concatenated decompressed payload.
func Decode(data []byte) ([]byte, error) {
	var out []byte
	err := walkMembers(data, func(member []byte, decoded []byte) error {
		out = append(out, decoded...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeBestEffort behaves like Decode but tolerates data that ends
// mid-member: decoding stops silently and returns whatever complete
// members were already decoded, rather than surfacing an error for the
// truncated tail. It is meant for speculative prefetches — for example,
// fetching a generous guess at a BAM header's length — where the caller
// cannot know the exact byte count in advance and is prepared to grow the
// fetch and retry if the result turns out to be incomplete.
func DecodeBestEffort(data []byte) ([]byte, error) {
	var out []byte
	err := walkMembers(data, func(_ []byte, decoded []byte) error {
		out = append(out, decoded...)
		return nil
	})
	if err != nil {
		if _, ok := rangehts.KindOf(err); ok {
			return out, nil
		}
		return out, err
	}
	return out, nil
}

// DecodeChunk inflates only the members data's byte range overlaps, and
// trims the result to exactly the span chunk names: chunk.Begin.Block
// leading bytes of the first member are dropped, and the member whose
// file offset equals chunk.End.File is truncated to chunk.End.Block+1
// bytes, after which decoding stops. data must begin at the BGZF member
// that contains chunk.Begin and run at least through the member that
// contains chunk.End.
func DecodeChunk(data []byte, chunk Chunk) ([]byte, error) {
	var out []byte
	first := true
	err := walkMembersAt(data, chunk.Begin.File, func(fileOffset int64, decoded []byte) (stop bool, err error) {
		start := 0
		if first {
			start = int(chunk.Begin.Block)
			first = false
		}
		end := len(decoded)
		isEndMember := fileOffset == chunk.End.File
		if isEndMember {
			end = int(chunk.End.Block) + 1
		}
		if start > len(decoded) {
			start = len(decoded)
		}
		if end > len(decoded) {
			end = len(decoded)
		}
		if end < start {
			end = start
		}
		out = append(out, decoded[start:end]...)
		return isEndMember, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// walkMembers decodes every BGZF member in data in sequence, calling fn
// with each member's raw bytes and decoded payload.
func walkMembers(data []byte, fn func(member, decoded []byte) error) error {
	return walkMembersAt(data, 0, func(_ int64, decoded []byte) (bool, error) {
		return false, fn(nil, decoded)
	})
}

// walkMembersAt decodes successive BGZF members starting at data[0], which
// is understood to correspond to absolute file offset baseOffset. fn is
// called once per member with the member's absolute file offset and
// decoded payload; decoding stops as soon as fn returns stop=true, data is
// exhausted, or an error occurs.
func walkMembersAt(data []byte, baseOffset int64, fn func(fileOffset int64, decoded []byte) (stop bool, err error)) error {
	r := bytes.NewReader(data)
	offset := baseOffset
	for r.Len() > 0 {
		before := r.Len()
		zr, err := gzip.NewReader(r)
		if err != nil {
			return rangehts.NewError(rangehts.FileFormat, "bgzf", offset, 0, err)
		}
		if _, ok := blockSize(&zr.Header); !ok {
			zr.Close()
			return rangehts.NewError(rangehts.FileFormat, "bgzf", offset, 0,
				fmt.Errorf("member at offset %d lacks a BGZF \"BC\" extra subfield", offset))
		}
		// Stop at the end of this member instead of running on into the
		// next one, so each member is decoded and reported on its own.
		zr.Multistream(false)
		var member bytes.Buffer
		scratch := pool.GetBuffer(copyScratchSize)
		_, err = io.CopyBuffer(&member, zr, scratch)
		pool.PutBuffer(scratch)
		zr.Close()
		if err != nil {
			return rangehts.NewError(rangehts.FileFormat, "bgzf", offset, 0, err)
		}
		decoded := member.Bytes()
		consumed := before - r.Len()

		stop, err := fn(offset, decoded)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
		offset += int64(consumed)
	}
	return nil
}
