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

var bedParserName string

var bigbedCmd = &cobra.Command{
	Use:   "bigbed <file.bb> <chr:start-end>",
	Short: "Query features overlapping a region of a BigBed file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		parser, err := bedParserByName(bedParserName)
		if err != nil {
			return err
		}

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

		recs, err := r.ReadBigBedData(ctx, int(startID), startBase, int(endID), endBase, parser)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		fmt.Printf("Found %d records\n", len(recs))
		for _, rec := range recs {
			fmt.Printf("%s\t%d\t%d\t%s\n", rec.Chrom, rec.Start, rec.End, rec.Rest)
		}
		return nil
	},
}

func bedParserByName(name string) (bigwig.BedColumnParser, error) {
	switch name {
	case "", "default":
		return bigwig.DefaultColumnParser, nil
	case "narrowpeak":
		return bigwig.NarrowPeakColumnParser, nil
	case "broadpeak":
		return bigwig.BroadPeakColumnParser, nil
	case "methyl":
		return bigwig.MethylColumnParser, nil
	case "tsspeak":
		return bigwig.TSSPeakColumnParser, nil
	case "idrpeak":
		return bigwig.IDRPeakColumnParser, nil
	default:
		return nil, fmt.Errorf("unknown column parser %q", name)
	}
}

func init() {
	bigbedCmd.Flags().StringVar(&bedParserName, "parser", "default",
		"rest-column parser: default, narrowpeak, broadpeak, methyl, tsspeak, idrpeak")
}
