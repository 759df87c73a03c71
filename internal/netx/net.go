// Package netx holds transfer helpers shared by the file-serving clients.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/dmitrijs2005/clubattach/internal/filex"
)

// ProgressReader counts the bytes read through it and reports the running
// total to OnRead after every successful read.
type ProgressReader struct {
	R      io.Reader
	OnRead func(total int64)

	n atomic.Int64
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.R.Read(b)
	if n > 0 {
		total := p.n.Add(int64(n))
		if p.OnRead != nil {
			p.OnRead(total)
		}
	}
	return n, err
}

// Total returns the number of bytes read so far.
func (p *ProgressReader) Total() int64 {
	return p.n.Load()
}

// StatusError is an unexpected HTTP response status.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status: %s; body: %s", e.Status, e.Body)
}

// ReadStatusError drains up to 512 bytes of the body into a StatusError.
func ReadStatusError(resp *http.Response) *StatusError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: string(b)}
}

// DownloadToFile GETs url with c and stores the body as dir/name.
// Non-200 responses are returned as *StatusError.
func DownloadToFile(ctx context.Context, c *http.Client, url, dir, name string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ReadStatusError(resp)
	}

	path, _, err := filex.WriteFile(dir, name, resp.Body)
	return path, err
}
