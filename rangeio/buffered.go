// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rangeio

import (
	"context"
	"errors"
	"io"
	"math"
	"sync"

	"github.com/biogo/rangehts"
)

// streamChunk bounds a single read from an underlying stream while filling
// the growing tail buffer.
const streamChunk = 64 * 1024

// BufferedRangeSource wraps one RangeSource with a fixed-size read-ahead
// buffer. Non-streaming reads are served from a single cached window,
// refilled on a miss; on an OutOfRange response from the underlying source
// the fetch is retried exactly once without an upper bound, to cover reads
// that run up against the end of the resource. A second, independent mode
// serves reads from a growing tail fed by a byte stream, for sources where
// StreamingRangeSource is available and large sequential reads dominate.
//
// Read, ReadStreaming and Close each hold an internal mutex for their
// whole duration, so concurrent calls on one BufferedRangeSource are
// serialized rather than interleaved.
type BufferedRangeSource struct {
	src        RangeSource
	bufferSize int64

	mu       sync.Mutex
	hasBuf   bool
	bufStart int64
	buf      []byte

	stream    io.ReadCloser
	streamPos int64
	streamBuf []byte
}

// NewBuffered returns a BufferedRangeSource over src, issuing bufferSize
// byte fetches on a cache miss.
func NewBuffered(src RangeSource, bufferSize int64) *BufferedRangeSource {
	return &BufferedRangeSource{src: src, bufferSize: bufferSize}
}

// Read implements RangeSource using the single cached window. It is the
// non-streaming path of §4.2.
func (b *BufferedRangeSource) Read(ctx context.Context, offset, size int64) ([]byte, error) {
	if size == ToEOF {
		return b.src.Read(ctx, offset, size)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.hasBuf && offset >= b.bufStart && offset+size <= b.bufStart+int64(len(b.buf)) {
		start := offset - b.bufStart
		out := make([]byte, size)
		copy(out, b.buf[start:start+size])
		return out, nil
	}

	fetch := b.bufferSize
	if fetch < size {
		fetch = size
	}
	data, err := b.src.Read(ctx, offset, fetch)
	if err != nil {
		if kind, ok := rangehts.KindOf(err); ok && kind == rangehts.OutOfRange {
			data, err = b.src.Read(ctx, offset, ToEOF)
		}
		if err != nil {
			return nil, err
		}
	}
	b.bufStart = offset
	b.buf = data
	b.hasBuf = true

	if int64(len(data)) < size {
		return nil, rangehts.NewError(rangehts.OutOfRange, "buffered range source", offset, size, nil)
	}
	out := make([]byte, size)
	copy(out, data[:size])
	return out, nil
}

// ReadStreaming serves a read from a growing tail fed by the underlying
// StreamingRangeSource, the streaming path of §4.2. It is the caller's
// choice, per read, whether to use Read or ReadStreaming; both share the
// same underlying RangeSource.
func (b *BufferedRangeSource) ReadStreaming(ctx context.Context, offset, size int64) ([]byte, error) {
	ss, ok := b.src.(StreamingRangeSource)
	if !ok {
		return nil, rangehts.NewError(rangehts.IO, "buffered range source", offset, size,
			errors.New("underlying source does not support streaming"))
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stream == nil || offset < b.streamPos || offset > b.streamPos+int64(len(b.streamBuf)) {
		if b.stream != nil {
			b.stream.Close()
		}
		st, err := ss.Stream(ctx, offset, ToEOF)
		if err != nil {
			return nil, err
		}
		b.stream = st
		b.streamPos = offset
		b.streamBuf = nil
	}

	requiredEnd := int64(math.MaxInt64)
	if size != ToEOF {
		requiredEnd = offset + size
	}

	chunk := make([]byte, streamChunk)
	for b.streamPos+int64(len(b.streamBuf)) < requiredEnd {
		n, err := b.stream.Read(chunk)
		if n > 0 {
			b.streamBuf = append(b.streamBuf, chunk[:n]...)
		}
		if err != nil {
			if err == io.EOF {
				if size == ToEOF {
					break
				}
				return nil, rangehts.NewError(rangehts.IO, "buffered range source", offset, size,
					errors.New("stream ended before required end"))
			}
			return nil, rangehts.NewError(rangehts.IO, "buffered range source", offset, size, err)
		}
	}

	start := offset - b.streamPos
	var end int64
	if size == ToEOF {
		end = int64(len(b.streamBuf))
	} else {
		end = start + size
	}
	out := make([]byte, end-start)
	copy(out, b.streamBuf[start:end])

	// Trim the delivered head to save memory; disposal of the stream
	// itself only happens on a future re-seek.
	b.streamBuf = b.streamBuf[end:]
	b.streamPos += end

	return out, nil
}

// Close releases any active stream held by the streaming path.
func (b *BufferedRangeSource) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stream != nil {
		err := b.stream.Close()
		b.stream = nil
		return err
	}
	return nil
}
