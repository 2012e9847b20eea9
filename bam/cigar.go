// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import "fmt"

// CigarOpType is the type of a single CIGAR operation.
type CigarOpType byte

const (
	CigarMatch       CigarOpType = iota // M: alignment match (sequence match or mismatch).
	CigarInsertion                      // I: insertion to the reference.
	CigarDeletion                       // D: deletion from the reference.
	CigarSkipped                        // N: skipped region from the reference.
	CigarSoftClipped                    // S: soft clipping (sequence present in SEQ).
	CigarHardClipped                    // H: hard clipping (sequence absent from SEQ).
	CigarPadded                         // P: padding.
	CigarEqual                          // =: sequence match.
	CigarMismatch                       // X: sequence mismatch.
)

var cigarOpLetters = [...]byte{'M', 'I', 'D', 'N', 'S', 'H', 'P', '=', 'X'}

func (t CigarOpType) String() string {
	if int(t) >= len(cigarOpLetters) {
		return "?"
	}
	return string(cigarOpLetters[t])
}

// consumesQuery reports whether an operation of type t advances the
// offset into the read sequence.
func (t CigarOpType) consumesQuery() bool {
	switch t {
	case CigarMatch, CigarInsertion, CigarSoftClipped, CigarEqual, CigarMismatch:
		return true
	}
	return false
}

// consumesReference reports whether an operation of type t advances the
// offset into the reference sequence.
func (t CigarOpType) consumesReference() bool {
	switch t {
	case CigarMatch, CigarDeletion, CigarSkipped, CigarEqual, CigarMismatch:
		return true
	}
	return false
}

// CigarOp is a single decoded CIGAR operation: its type, its length, and
// the cumulative query/reference offsets at which it starts. SeqOffset and
// RefOffset let a caller locate the bases an operation covers without
// re-deriving the running totals BamRecordReader already computed while
// decoding the record.
type CigarOp struct {
	Op        CigarOpType
	Len       int
	SeqOffset int
	RefOffset int
}

func (c CigarOp) String() string { return fmt.Sprintf("%d%s", c.Len, c.Op) }

// decodeCigar decodes raw, a sequence of little-endian uint32s each
// packing a CIGAR operation as (opLen << 4 | op), and returns the ops
// together with the total length the CIGAR consumes on the reference
// (lengthOnRef).
func decodeCigar(raw []uint32) (ops []CigarOp, lengthOnRef int) {
	ops = make([]CigarOp, len(raw))
	var seqOffset, refOffset int
	for i, v := range raw {
		t := CigarOpType(v & 0xf)
		n := int(v >> 4)
		ops[i] = CigarOp{Op: t, Len: n, SeqOffset: seqOffset, RefOffset: refOffset}
		if t.consumesQuery() {
			seqOffset += n
		}
		if t.consumesReference() {
			refOffset += n
		}
	}
	return ops, refOffset
}
