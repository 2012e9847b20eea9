// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bam reads BAM alignment records, via their companion BAI index,
// from an abstract byte-range transport: it resolves a genomic interval to
// a set of BAI chunks, fetches and BGZF-decompresses just those bytes, and
// decodes the alignments that actually overlap the interval.
package bam

import (
	"context"
	"fmt"
	"sync"

	"github.com/biogo/rangehts"
	"github.com/biogo/rangehts/bgzf"
	"github.com/biogo/rangehts/rangeio"
)

// bgzfMemberMax is the largest a single BGZF member's on-disk size can be;
// it bounds how far past a chunk's ending member a fetch must reach to be
// sure of having the whole member available to decode.
const bgzfMemberMax = 65536

// initialHeaderFetch is the first guess at how many compressed bytes are
// needed to cover the BAM header and reference dictionary; grown and
// retried if the header turns out not to fit.
const initialHeaderFetch = 1 << 20

const maxHeaderFetchAttempts = 6

// Reader reads alignments from a BAM file via its BAI index, both reached
// through their own RangeSources (so, for instance, a caller can point the
// BAM source at a local file while the much smaller BAI is fetched over
// HTTP, or vice versa).
type Reader struct {
	bamSrc rangeio.RangeSource
	baiSrc rangeio.RangeSource

	mu     sync.Mutex
	header *Header
	index  *BaiIndex
}

// NewReader returns a Reader over the given BAM and BAI byte-range
// sources. Neither the header nor the index is read until first needed.
func NewReader(bamSrc, baiSrc rangeio.RangeSource) *Reader {
	return &Reader{bamSrc: bamSrc, baiSrc: baiSrc}
}

// HeaderData returns the BAM header, parsing and memoizing it on first
// call.
func (r *Reader) HeaderData(ctx context.Context) (*Header, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.header != nil {
		return r.header, nil
	}

	fetch := int64(initialHeaderFetch)
	for attempt := 0; attempt < maxHeaderFetchAttempts; attempt++ {
		raw, err := r.bamSrc.Read(ctx, 0, fetch)
		if err != nil {
			if kind, ok := rangehts.KindOf(err); ok && kind == rangehts.OutOfRange {
				raw, err = r.bamSrc.Read(ctx, 0, rangeio.ToEOF)
			}
			if err != nil {
				return nil, err
			}
		}

		decoded, err := bgzf.DecodeBestEffort(raw)
		if err != nil {
			return nil, err
		}

		h, perr := ParseHeader(decoded)
		if perr == nil {
			r.header = h
			return h, nil
		}
		if int64(len(raw)) < fetch {
			// The source itself ran out of bytes; growing the fetch
			// further cannot help.
			return nil, perr
		}
		fetch *= 4
	}
	return nil, rangehts.NewError(rangehts.FileFormat, "bam", 0, fetch,
		fmt.Errorf("BAM header not found within %d bytes", fetch))
}

// IndexData returns the parsed BAI index, parsing and memoizing it on
// first call.
func (r *Reader) IndexData(ctx context.Context) (*BaiIndex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index != nil {
		return r.index, nil
	}
	raw, err := r.baiSrc.Read(ctx, 0, rangeio.ToEOF)
	if err != nil {
		return nil, err
	}
	idx, err := ParseBaiIndex(raw)
	if err != nil {
		return nil, err
	}
	r.index = idx
	return idx, nil
}

// Read returns every alignment overlapping [start, end) on chrom, in
// on-disk order.
func (r *Reader) Read(ctx context.Context, chrom string, start, end int) ([]*Alignment, error) {
	h, err := r.HeaderData(ctx)
	if err != nil {
		return nil, err
	}
	refID, ok := h.RefID(chrom)
	if !ok {
		return nil, rangehts.NewError(rangehts.DataMissing, chrom, 0, 0,
			fmt.Errorf("reference %q not found in BAM header", chrom))
	}

	idx, err := r.IndexData(ctx)
	if err != nil {
		return nil, err
	}
	chunks, err := idx.Chunks(refID, start, end)
	if err != nil {
		return nil, err
	}

	var out []*Alignment
	for _, chunk := range chunks {
		fetchSize := chunk.End.File - chunk.Begin.File + bgzfMemberMax
		raw, err := r.bamSrc.Read(ctx, chunk.Begin.File, fetchSize)
		if err != nil {
			if kind, ok := rangehts.KindOf(err); ok && kind == rangehts.OutOfRange {
				raw, err = r.bamSrc.Read(ctx, chunk.Begin.File, rangeio.ToEOF)
			}
			if err != nil {
				return nil, err
			}
		}

		decoded, err := bgzf.DecodeChunk(raw, chunk)
		if err != nil {
			return nil, err
		}

		recs, err := DecodeAlignments(decoded, refID, start, end)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}
