// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/biogo/rangehts/rangeio"
	"github.com/biogo/rangehts/twobit"
)

var oneHot bool

var twobitCmd = &cobra.Command{
	Use:   "twobit <file.2bit> <chr:start-end>",
	Short: "Fetch a sequence range from a 2bit file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := parseRegion(args[1])
		if err != nil {
			return err
		}

		src, err := rangeio.OpenFile(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer src.Close()

		ctx := context.Background()
		rd, err := twobit.NewReader(ctx, src)
		if err != nil {
			return fmt.Errorf("reading index: %w", err)
		}

		if oneHot {
			vecs, err := rd.ReadOneHot(ctx, r.Chrom, r.Start, r.End)
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}
			for i, v := range vecs {
				fmt.Printf("%d\t%v\n", r.Start+i, v)
			}
			return nil
		}

		seq, err := rd.ReadTwoBitData(ctx, r.Chrom, r.Start, r.End)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		fmt.Println(seq)
		return nil
	},
}

func init() {
	twobitCmd.Flags().BoolVar(&oneHot, "one-hot", false, "emit one-hot encoded vectors instead of bases")
}
