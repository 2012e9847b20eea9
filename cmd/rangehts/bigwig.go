// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/biogo/rangehts/bigwig"
	"github.com/biogo/rangehts/rangeio"
)

var bigwigCmd = &cobra.Command{
	Use:   "bigwig <file.bw> <chr:start-end>",
	Short: "Query signal values overlapping a region of a BigWig file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := rangeio.OpenFile(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer src.Close()

		ctx := context.Background()
		r, err := bigwig.NewReader(ctx, src)
		if err != nil {
			return fmt.Errorf("reading header: %w", err)
		}
		h, err := r.Header(ctx)
		if err != nil {
			return err
		}
		startID, endID, startBase, endBase, err := resolveRegion(h, args[1])
		if err != nil {
			return err
		}

		recs, err := r.ReadBigWigData(ctx, int(startID), startBase, int(endID), endBase)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		fmt.Printf("Found %d records\n", len(recs))
		for _, rec := range recs {
			fmt.Printf("%s\t%d\t%d\t%g\n", rec.Chrom, rec.Start, rec.End, rec.Value)
		}
		return nil
	},
}

// resolveRegion looks chrom up in the header's chromosome dictionary and
// returns (chromID, chromID, start, end) — the same chromosome on both
// ends of the rectangle, since the CLI only accepts single-chromosome
// regions.
func resolveRegion(h *bigwig.Header, regionStr string) (startID, endID uint32, start, end int, err error) {
	r, err := parseRegion(regionStr)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	id, ok := h.ChromID(r.Chrom)
	if !ok {
		return 0, 0, 0, 0, fmt.Errorf("chromosome %q not found", r.Chrom)
	}
	return id, id, r.Start, r.End, nil
}
