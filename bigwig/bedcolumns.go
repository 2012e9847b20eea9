// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bigwig

import (
	"fmt"
	"strconv"
	"strings"
)

// BedColumnParser coerces a BigBed record's tab-delimited "rest" field (the
// columns beyond chrom/start/end) into a typed value. The default parser
// produces *BedFields; domain-specific parsers for peak-calling formats
// produce their own types. ReadBigBedData and StreamBigBedData use
// DefaultColumnParser when given a nil parser.
type BedColumnParser func(rest string) (interface{}, error)

// BedFields is the UCSC default BED column layout (name, score, strand,
// thickStart, thickEnd, itemRgb, and the block/exon tables), §4.6.
type BedFields struct {
	Name        string
	Score       int
	Strand      byte // the one-character strand column as given ('+', '-', '.'), or 0 when absent.
	ThickStart  int
	ThickEnd    int
	ItemRGB     string // normalized to "rgb(r,g,b)" when the source used a comma triple.
	BlockCount  int
	BlockSizes  []int
	BlockStarts []int
}

// DefaultColumnParser implements the UCSC BED column layout.
func DefaultColumnParser(rest string) (interface{}, error) {
	cols := strings.Split(rest, "\t")
	f := &BedFields{}
	if len(cols) > 0 {
		f.Name = cols[0]
	}
	if len(cols) > 1 {
		v, err := strconv.Atoi(cols[1])
		if err != nil {
			return nil, fmt.Errorf("bigwig: bad BED score %q: %w", cols[1], err)
		}
		f.Score = v
	}
	if len(cols) > 2 && len(cols[2]) == 1 {
		f.Strand = cols[2][0]
	}
	if len(cols) > 3 {
		v, err := strconv.Atoi(cols[3])
		if err != nil {
			return nil, fmt.Errorf("bigwig: bad BED thickStart %q: %w", cols[3], err)
		}
		f.ThickStart = v
	}
	if len(cols) > 4 {
		v, err := strconv.Atoi(cols[4])
		if err != nil {
			return nil, fmt.Errorf("bigwig: bad BED thickEnd %q: %w", cols[4], err)
		}
		f.ThickEnd = v
	}
	if len(cols) > 5 {
		f.ItemRGB = normalizeRGB(cols[5])
	}
	if len(cols) > 6 {
		v, err := strconv.Atoi(cols[6])
		if err != nil {
			return nil, fmt.Errorf("bigwig: bad BED blockCount %q: %w", cols[6], err)
		}
		f.BlockCount = v
	}
	if len(cols) > 7 {
		sizes, err := parseIntList(cols[7])
		if err != nil {
			return nil, fmt.Errorf("bigwig: bad BED blockSizes: %w", err)
		}
		f.BlockSizes = sizes
	}
	if len(cols) > 8 {
		starts, err := parseIntList(cols[8])
		if err != nil {
			return nil, fmt.Errorf("bigwig: bad BED blockStarts: %w", err)
		}
		f.BlockStarts = starts
	}
	return f, nil
}

// normalizeRGB turns a comma-separated "r,g,b" triple into "rgb(r,g,b)"
// form; a value already in rgb(...) form, or anything else, passes through
// unchanged.
func normalizeRGB(s string) string {
	if s == "0" || strings.HasPrefix(s, "rgb(") {
		return s
	}
	if strings.Contains(s, ",") {
		return "rgb(" + s + ")"
	}
	return s
}

func parseIntList(s string) ([]int, error) {
	s = strings.TrimSuffix(s, ",")
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// NarrowPeakFields is the ENCODE narrowPeak column layout: BedFields plus
// signalValue, pValue, qValue (all float, per the BED spec's column types —
// not the int/float mix the UCSC reference parser happens to use) and the
// integer peak-summit offset.
type NarrowPeakFields struct {
	BedFields
	SignalValue float64
	PValue      float64
	QValue      float64
	Peak        int
}

// NarrowPeakColumnParser parses ENCODE narrowPeak's columns.
func NarrowPeakColumnParser(rest string) (interface{}, error) {
	base, err := DefaultColumnParser(rest)
	if err != nil {
		return nil, err
	}
	cols := strings.Split(rest, "\t")
	f := &NarrowPeakFields{BedFields: *base.(*BedFields)}
	var perr error
	if len(cols) > 6 {
		f.SignalValue, perr = strconv.ParseFloat(cols[6], 64)
	}
	if perr == nil && len(cols) > 7 {
		f.PValue, perr = strconv.ParseFloat(cols[7], 64)
	}
	if perr == nil && len(cols) > 8 {
		f.QValue, perr = strconv.ParseFloat(cols[8], 64)
	}
	if perr != nil {
		return nil, fmt.Errorf("bigwig: bad narrowPeak column: %w", perr)
	}
	if len(cols) > 9 {
		v, err := strconv.Atoi(cols[9])
		if err != nil {
			return nil, fmt.Errorf("bigwig: bad narrowPeak peak offset %q: %w", cols[9], err)
		}
		f.Peak = v
	}
	return f, nil
}

// BroadPeakFields is the ENCODE broadPeak column layout: narrowPeak minus
// the peak-summit offset (broadPeak calls have no single summit).
type BroadPeakFields struct {
	BedFields
	SignalValue float64
	PValue      float64
	QValue      float64
}

// BroadPeakColumnParser parses ENCODE broadPeak's columns.
func BroadPeakColumnParser(rest string) (interface{}, error) {
	base, err := DefaultColumnParser(rest)
	if err != nil {
		return nil, err
	}
	cols := strings.Split(rest, "\t")
	f := &BroadPeakFields{BedFields: *base.(*BedFields)}
	var perr error
	if len(cols) > 6 {
		f.SignalValue, perr = strconv.ParseFloat(cols[6], 64)
	}
	if perr == nil && len(cols) > 7 {
		f.PValue, perr = strconv.ParseFloat(cols[7], 64)
	}
	if perr == nil && len(cols) > 8 {
		f.QValue, perr = strconv.ParseFloat(cols[8], 64)
	}
	if perr != nil {
		return nil, fmt.Errorf("bigwig: bad broadPeak column: %w", perr)
	}
	return f, nil
}

// MethylFields is the bigBed methylation-track column layout used by
// WGBS/RRBS tracks: coverage and percent-methylated beyond the base BED
// columns.
type MethylFields struct {
	BedFields
	Coverage        int
	PercentMethylated float64
}

// MethylColumnParser parses a methylation track's columns.
func MethylColumnParser(rest string) (interface{}, error) {
	base, err := DefaultColumnParser(rest)
	if err != nil {
		return nil, err
	}
	cols := strings.Split(rest, "\t")
	f := &MethylFields{BedFields: *base.(*BedFields)}
	if len(cols) > 9 {
		v, err := strconv.Atoi(cols[9])
		if err != nil {
			return nil, fmt.Errorf("bigwig: bad methyl coverage %q: %w", cols[9], err)
		}
		f.Coverage = v
	}
	if len(cols) > 10 {
		v, err := strconv.ParseFloat(cols[10], 64)
		if err != nil {
			return nil, fmt.Errorf("bigwig: bad methyl percent %q: %w", cols[10], err)
		}
		f.PercentMethylated = v
	}
	return f, nil
}

// TSSPeakFields is the FANTOM-style TSS peak column layout: narrowPeak's
// columns plus a representative-count field.
type TSSPeakFields struct {
	NarrowPeakFields
	RepCount int
}

// TSSPeakColumnParser parses a TSS-peak track's columns.
func TSSPeakColumnParser(rest string) (interface{}, error) {
	base, err := NarrowPeakColumnParser(rest)
	if err != nil {
		return nil, err
	}
	cols := strings.Split(rest, "\t")
	f := &TSSPeakFields{NarrowPeakFields: *base.(*NarrowPeakFields)}
	if len(cols) > 10 {
		v, err := strconv.Atoi(cols[10])
		if err != nil {
			return nil, fmt.Errorf("bigwig: bad TSS peak repCount %q: %w", cols[10], err)
		}
		f.RepCount = v
	}
	return f, nil
}

// IDRPeakFields is the IDR (Irreproducible Discovery Rate) narrowPeak
// variant: narrowPeak's columns plus the local and global IDR scores.
type IDRPeakFields struct {
	NarrowPeakFields
	LocalIDR  float64
	GlobalIDR float64
}

// IDRPeakColumnParser parses an IDR-thresholded peak track's columns.
func IDRPeakColumnParser(rest string) (interface{}, error) {
	base, err := NarrowPeakColumnParser(rest)
	if err != nil {
		return nil, err
	}
	cols := strings.Split(rest, "\t")
	f := &IDRPeakFields{NarrowPeakFields: *base.(*NarrowPeakFields)}
	var perr error
	if len(cols) > 10 {
		f.LocalIDR, perr = strconv.ParseFloat(cols[10], 64)
	}
	if perr == nil && len(cols) > 11 {
		f.GlobalIDR, perr = strconv.ParseFloat(cols[11], 64)
	}
	if perr != nil {
		return nil, fmt.Errorf("bigwig: bad IDR peak column: %w", perr)
	}
	return f, nil
}
