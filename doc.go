// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rangehts provides random-access, range-scoped readers for the
// BigWig, BigBed, 2bit and BAM (via BAI) genomics binary formats over an
// abstract byte-range transport.
//
// Format-specific readers live in the bigwig, twobit and bam subpackages;
// this package holds the error kinds shared across all of them.
package rangehts // import "github.com/biogo/rangehts"
