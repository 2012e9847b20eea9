// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strconv"
	"strings"
)

// region is a single-chromosome query interval parsed from "chr:start-end".
type region struct {
	Chrom      string
	Start, End int
}

func parseRegion(s string) (region, error) {
	var r region
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return r, fmt.Errorf("invalid region %q (expected chr:start-end)", s)
	}
	r.Chrom = parts[0]

	posParts := strings.Split(parts[1], "-")
	if len(posParts) != 2 {
		return r, fmt.Errorf("invalid region %q (expected chr:start-end)", s)
	}
	start, err := strconv.Atoi(posParts[0])
	if err != nil {
		return r, fmt.Errorf("invalid start in region %q: %w", s, err)
	}
	end, err := strconv.Atoi(posParts[1])
	if err != nil {
		return r, fmt.Errorf("invalid end in region %q: %w", s, err)
	}
	r.Start, r.End = start, end
	return r, nil
}
