// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rangeio

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/biogo/rangehts"
)

// HTTPSource is a RangeSource backed by HTTP range requests (RFC 7233)
// against a single URL, the transport a remote BigWig/BigBed/2bit/BAM
// reader is layered on when the file is not local.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource returns an HTTPSource for url using client. If client is
// nil, http.DefaultClient is used.
func NewHTTPSource(url string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{url: url, client: client}
}

func (h *HTTPSource) do(ctx context.Context, offset, size int64) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, rangehts.NewError(rangehts.IO, h.url, offset, size, err)
	}
	if size == ToEOF {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	} else {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+size-1))
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, rangehts.NewError(rangehts.IO, h.url, offset, size, err)
	}
	switch resp.StatusCode {
	case http.StatusOK, http.StatusPartialContent:
		return resp, nil
	case http.StatusRequestedRangeNotSatisfiable:
		resp.Body.Close()
		return nil, rangehts.NewError(rangehts.OutOfRange, h.url, offset, size, nil)
	default:
		resp.Body.Close()
		return nil, rangehts.NewError(rangehts.IO, h.url, offset, size,
			fmt.Errorf("unexpected status %s", resp.Status))
	}
}

// Read implements RangeSource.
func (h *HTTPSource) Read(ctx context.Context, offset, size int64) ([]byte, error) {
	resp, err := h.do(ctx, offset, size)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, rangehts.NewError(rangehts.IO, h.url, offset, size, err)
	}
	if size != ToEOF && int64(len(b)) != size {
		return nil, rangehts.NewError(rangehts.IO, h.url, offset, size,
			fmt.Errorf("short read: got %d bytes, want %d", len(b), size))
	}
	return b, nil
}

// Stream implements StreamingRangeSource.
func (h *HTTPSource) Stream(ctx context.Context, offset, size int64) (io.ReadCloser, error) {
	resp, err := h.do(ctx, offset, size)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
