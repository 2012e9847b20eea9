// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/biogo/rangehts/bam"
	"github.com/biogo/rangehts/rangeio"
)

var baiPath string

var bamCmd = &cobra.Command{
	Use:   "bam <file.bam> <chr:start-end>",
	Short: "Query alignments overlapping a region of a BAM file",
	Long: `Query alignments from a specific genomic region of a BAM file via
its companion BAI index.

Only the BGZF chunks the region's bins resolve to are fetched and
decompressed, not the whole file.

Example:
  rangehts bam sample.bam chr22:20890000-20910000`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bamPath := args[0]
		r, err := parseRegion(args[1])
		if err != nil {
			return err
		}
		if baiPath == "" {
			baiPath = bamPath + ".bai"
		}

		bamSrc, err := rangeio.OpenFile(bamPath)
		if err != nil {
			return fmt.Errorf("opening %s: %w", bamPath, err)
		}
		defer bamSrc.Close()
		baiSrc, err := rangeio.OpenFile(baiPath)
		if err != nil {
			return fmt.Errorf("opening %s: %w", baiPath, err)
		}
		defer baiSrc.Close()

		reader := bam.NewReader(bamSrc, baiSrc)
		ctx := context.Background()
		alns, err := reader.Read(ctx, r.Chrom, r.Start, r.End)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}

		fmt.Printf("Found %d alignments in %s:%d-%d\n", len(alns), r.Chrom, r.Start, r.End)
		if countOnly {
			return nil
		}
		numToShow := showReads
		if numToShow == 0 || numToShow > len(alns) {
			numToShow = len(alns)
		}
		if numToShow > 0 {
			fmt.Println()
			fmt.Printf("%-20s %12s %6s %s\n", "Read Name", "Position", "MapQ", "CIGAR")
			fmt.Println(dashes)
			for i := 0; i < numToShow; i++ {
				a := alns[i]
				fmt.Printf("%-20s %12d %6d %s\n", a.Name, a.Start, a.MapQ, cigarString(a.Cigar))
			}
		}
		return nil
	},
}

var (
	countOnly bool
	showReads int
)

const dashes = "------------------------------------------------------------"

func init() {
	bamCmd.Flags().StringVar(&baiPath, "bai", "", "path to the BAI index (default: <file.bam>.bai)")
	bamCmd.Flags().BoolVar(&countOnly, "count", false, "only show the alignment count")
	bamCmd.Flags().IntVar(&showReads, "show", 10, "number of alignments to display (0 for all)")
}

func cigarString(ops []bam.CigarOp) string {
	var s string
	for _, op := range ops {
		s += op.String()
	}
	return s
}
