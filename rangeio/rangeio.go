// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rangeio defines the abstract byte-range transport that every
// format reader in this module is built on, plus a read-ahead buffering
// wrapper and a couple of concrete transports (local file, HTTP).
package rangeio

import (
	"context"
	"io"
)

// ToEOF requests all bytes from the offset to the end of the resource, the
// size argument's sentinel value for "omitted" in spec terms.
const ToEOF int64 = -1

// RangeSource is the abstract byte-range fetcher every format reader in
// this module is layered on. Read returns exactly size bytes starting at
// offset, or all bytes from offset to the end of the resource when size is
// ToEOF. A request that extends past the end of the resource returns an
// error of kind rangehts.OutOfRange.
type RangeSource interface {
	Read(ctx context.Context, offset, size int64) ([]byte, error)
}

// StreamingRangeSource is a RangeSource that can additionally hand back a
// pull stream for large reads instead of materializing the whole range.
type StreamingRangeSource interface {
	RangeSource
	Stream(ctx context.Context, offset, size int64) (io.ReadCloser, error)
}
