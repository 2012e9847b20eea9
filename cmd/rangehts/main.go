// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command rangehts is a thin CLI wrapper around the bam, bigwig and twobit
// readers: it resolves a region against a local file and prints the
// overlapping records.
package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rangehts",
	Short: "Range-scoped reads of BigWig, BigBed, 2bit and BAM files",
	Long: `rangehts queries BigWig, BigBed, 2bit and BAM files for records
overlapping a genomic region, fetching and decoding only the bytes the
region's index says are needed.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func init() {
	rootCmd.AddCommand(bamCmd)
	rootCmd.AddCommand(bigwigCmd)
	rootCmd.AddCommand(bigbedCmd)
	rootCmd.AddCommand(twobitCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("rangehts version 0.1.0")
	},
}
