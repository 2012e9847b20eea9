// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package twobit

import "context"

// SequenceStream emits chunkSize-sized pieces of [start, end) one fetch at
// a time, per the leaves-first pull model of §5.
type SequenceStream struct {
	ctx       context.Context
	r         *Reader
	rec       *SequenceRecord
	chunkSize int
	pos, end  int
	cur       string
	err       error
}

// StreamTwoBitData is the streaming counterpart of ReadTwoBitData.
func (r *Reader) StreamTwoBitData(ctx context.Context, chrom string, start, end, chunkSize int) (*SequenceStream, error) {
	rec, err := r.SequenceRecord(ctx, chrom)
	if err != nil {
		return nil, err
	}
	if chunkSize <= 0 {
		chunkSize = end - start
	}
	return &SequenceStream{ctx: ctx, r: r, rec: rec, chunkSize: chunkSize, pos: start, end: end}, nil
}

// Next advances to the next chunk, returning false at the end of the
// interval or on error.
func (s *SequenceStream) Next() bool {
	if s.pos >= s.end {
		return false
	}
	next := s.pos + s.chunkSize
	if next > s.end {
		next = s.end
	}
	chunk, err := s.r.ReadTwoBitData(s.ctx, s.rec.Name, s.pos, next)
	if err != nil {
		s.err = err
		return false
	}
	s.cur = chunk
	s.pos = next
	return true
}

// Chunk returns the piece most recently produced by Next.
func (s *SequenceStream) Chunk() string { return s.cur }

// Err returns the error, if any, that stopped the stream.
func (s *SequenceStream) Err() error { return s.err }

// oneHotTable maps each uppercase ACGT letter to its one-hot vector; N and
// soft-masked positions are left as the zero vector per §4.10's policy.
var oneHotTable = map[byte][4]float32{
	'A': {1, 0, 0, 0},
	'C': {0, 1, 0, 0},
	'G': {0, 0, 1, 0},
	'T': {0, 0, 0, 1},
}

// ReadOneHot decodes [start, end) the same way ReadTwoBitData does, then
// emits a one-hot vector over "ACGT" per base; N and soft-masked bases
// (which ReadTwoBitData lowercases) yield the zero vector.
func (r *Reader) ReadOneHot(ctx context.Context, chrom string, start, end int) ([][4]float32, error) {
	seq, err := r.ReadTwoBitData(ctx, chrom, start, end)
	if err != nil {
		return nil, err
	}
	out := make([][4]float32, len(seq))
	for i := 0; i < len(seq); i++ {
		out[i] = oneHotTable[seq[i]] // undefined key => zero value, per policy.
	}
	return out, nil
}
