// Copyright ©2020 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rangeio

import (
	"context"
	"io"

	"golang.org/x/exp/mmap"

	"github.com/biogo/rangehts"
)

// FileSource is a RangeSource backed by an mmapped local file. Access is
// implemented via mmapped memory, so integer indexing limits may impact
// access to very large files.
type FileSource struct {
	r *mmap.ReaderAt
}

// OpenFile opens the file at path as a FileSource.
func OpenFile(path string) (*FileSource, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, rangehts.NewError(rangehts.IO, path, -1, -1, err)
	}
	return &FileSource{r: r}, nil
}

// Close releases the mmapped file. Bytes previously returned by Read must
// not be retained past Close.
func (f *FileSource) Close() error { return f.r.Close() }

// Read implements RangeSource.
func (f *FileSource) Read(_ context.Context, offset, size int64) ([]byte, error) {
	total := int64(f.r.Len())
	if offset < 0 || offset > total {
		return nil, rangehts.NewError(rangehts.OutOfRange, "file", offset, size, nil)
	}
	if size == ToEOF {
		size = total - offset
	}
	if offset+size > total {
		return nil, rangehts.NewError(rangehts.OutOfRange, "file", offset, size, nil)
	}
	buf := make([]byte, size)
	_, err := f.r.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, rangehts.NewError(rangehts.IO, "file", offset, size, err)
	}
	return buf, nil
}

// Stream implements StreamingRangeSource.
func (f *FileSource) Stream(ctx context.Context, offset, size int64) (io.ReadCloser, error) {
	b, err := f.Read(ctx, offset, size)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(newByteReader(b)), nil
}

func newByteReader(b []byte) io.Reader {
	return &sliceReader{b: b}
}

type sliceReader struct {
	b []byte
	i int
}

func (s *sliceReader) Read(p []byte) (int, error) {
	if s.i >= len(s.b) {
		return 0, io.EOF
	}
	n := copy(p, s.b[s.i:])
	s.i += n
	return n, nil
}
