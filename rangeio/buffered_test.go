package rangeio

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biogo/rangehts"
)

// memSource is an in-memory RangeSource and StreamingRangeSource used by
// the buffering tests below; it also records every fetch it serves so
// tests can assert on the buffering behaviour, not just the result.
type memSource struct {
	data    []byte
	fetches []fetch
}

type fetch struct{ offset, size int64 }

func (m *memSource) Read(_ context.Context, offset, size int64) ([]byte, error) {
	m.fetches = append(m.fetches, fetch{offset, size})
	if offset < 0 || offset > int64(len(m.data)) {
		return nil, rangehts.NewError(rangehts.OutOfRange, "mem", offset, size, nil)
	}
	end := offset + size
	if size == ToEOF || end > int64(len(m.data)) {
		if size != ToEOF {
			return nil, rangehts.NewError(rangehts.OutOfRange, "mem", offset, size, nil)
		}
		end = int64(len(m.data))
	}
	return append([]byte(nil), m.data[offset:end]...), nil
}

func (m *memSource) Stream(ctx context.Context, offset, size int64) (io.ReadCloser, error) {
	b, err := m.Read(ctx, offset, size)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func TestBufferedReadCacheHit(t *testing.T) {
	src := &memSource{data: bytes.Repeat([]byte("0123456789"), 100)}
	b := NewBuffered(src, 64)
	ctx := context.Background()

	got, err := b.Read(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []byte("0123456789"), got)
	require.Len(t, src.fetches, 1)

	// Falls entirely within the already-cached window: no new fetch.
	got, err = b.Read(ctx, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, src.data[5:15], got)
	assert.Len(t, src.fetches, 1)
}

func TestBufferedReadTailRetriesWithoutBound(t *testing.T) {
	src := &memSource{data: []byte("hello world")}
	b := NewBuffered(src, 16)
	ctx := context.Background()

	got, err := b.Read(ctx, 6, 5) // "world"; a 16-byte window from 6 runs past the 11-byte end
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), got)
	require.Len(t, src.fetches, 2)
	assert.Equal(t, ToEOF, src.fetches[1].size)
}

func TestBufferedReadOutOfRange(t *testing.T) {
	src := &memSource{data: []byte("short")}
	b := NewBuffered(src, 64)
	_, err := b.Read(context.Background(), 0, 100)
	require.Error(t, err)
	kind, ok := rangehts.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, rangehts.OutOfRange, kind)
}

func TestBufferedStreamingGrowsAndTrims(t *testing.T) {
	src := &memSource{data: bytes.Repeat([]byte("abcdefgh"), 1000)}
	b := NewBuffered(src, 64)
	ctx := context.Background()

	got, err := b.ReadStreaming(ctx, 0, 16)
	require.NoError(t, err)
	assert.Equal(t, src.data[:16], got)

	got, err = b.ReadStreaming(ctx, 16, 16)
	require.NoError(t, err)
	assert.Equal(t, src.data[16:32], got)

	// A backward seek must discard and reopen the stream.
	got, err = b.ReadStreaming(ctx, 0, 8)
	require.NoError(t, err)
	assert.Equal(t, src.data[:8], got)
}

func TestBufferedStreamingFailsIfStreamEndsEarly(t *testing.T) {
	src := &memSource{data: []byte("short")}
	b := NewBuffered(src, 64)
	_, err := b.ReadStreaming(context.Background(), 0, 100)
	require.Error(t, err)
	kind, ok := rangehts.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, rangehts.IO, kind)
}
