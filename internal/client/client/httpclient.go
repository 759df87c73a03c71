package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/clubattach/internal/client/models"
	"github.com/dmitrijs2005/clubattach/internal/client/upload"
	"github.com/dmitrijs2005/clubattach/internal/filex"
	"github.com/dmitrijs2005/clubattach/internal/logging"
	"github.com/dmitrijs2005/clubattach/internal/netx"
)

const uploadField = "files"

var _ Client = (*HTTPClient)(nil)

// HTTPClient talks to the portal's file-serving REST API.
type HTTPClient struct {
	base   *url.URL
	http   *http.Client
	bearer *bearerTransport
	log    logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client. Apply it before
// WithAccessToken.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

// WithAccessToken sends token as a bearer token. refresh may be nil.
func WithAccessToken(token string, refresh RefreshFunc) Option {
	return func(h *HTTPClient) {
		h.bearer = newBearerTransport(h.http.Transport, token, refresh)
		c := *h.http
		c.Transport = h.bearer
		h.http = &c
	}
}

func WithLogger(l logging.Logger) Option {
	return func(h *HTTPClient) { h.log = l }
}

// NewHTTPClient parses baseURL, e.g. "https://portal.example.edu/api".
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		base: u,
		http: &http.Client{Transport: http.DefaultTransport},
		log:  logging.Discard(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// SetAccessToken replaces the bearer token, e.g. after the user logs in.
func (c *HTTPClient) SetAccessToken(token string) {
	if c.bearer == nil {
		WithAccessToken(token, nil)(c)
		return
	}
	c.bearer.SetToken(token)
}

func (c *HTTPClient) endpoint(parts ...string) string {
	return c.base.JoinPath(parts...).String()
}

func (c *HTTPClient) ServeURL(id string) string {
	return c.endpoint("files", id)
}

func (c *HTTPClient) ThumbnailURL(id string, width, height int) string {
	return fmt.Sprintf("%s?width=%d&height=%d", c.endpoint("files", id, "thumbnail"), width, height)
}

type uploadResponse struct {
	Files []models.AttachmentReference `json:"files"`
}

// UploadBatch streams every file as a "files" part of one multipart request.
// progress receives payload bytes read so far against the sum of file sizes.
func (c *HTTPClient) UploadBatch(ctx context.Context, files []models.RawFile, progress upload.ProgressFunc) ([]models.AttachmentReference, error) {
	var total int64
	for _, f := range files {
		total += f.Size
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeParts(mw, files, total, progress)
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("files", "upload"), pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		_ = pr.CloseWithError(err)
		return nil, c.mapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, c.mapError(netx.ReadStatusError(resp))
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}

	c.log.Debug(ctx, "upload response", "sent", len(files), "received", len(out.Files))
	return out.Files, nil
}

func writeParts(mw *multipart.Writer, files []models.RawFile, total int64, progress upload.ProgressFunc) error {
	var done int64
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, uploadField, filex.SafeName(f.Name, "file")))
		ct := f.MimeType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := mw.CreatePart(h)
		if err != nil {
			return err
		}

		rc, err := f.Open()
		if err != nil {
			return err
		}

		base := done
		r := &netx.ProgressReader{R: rc, OnRead: func(n int64) {
			if progress != nil {
				progress(base+n, total)
			}
		}}
		_, err = io.Copy(part, r)
		_ = rc.Close()
		if err != nil {
			return fmt.Errorf("send %s: %w", f.Name, err)
		}
		done += r.Total()
	}
	return nil
}

// Download saves the file as dir/name. An empty dir means "download" under
// the working directory.
func (c *HTTPClient) Download(ctx context.Context, id, name, dir string) (string, error) {
	dir, err := filex.EnsureDir(dir, "download")
	if err != nil {
		return "", err
	}

	path, err := netx.DownloadToFile(ctx, c.http, c.endpoint("files", id, "download"), dir, filex.SafeName(name, id))
	if err != nil {
		return "", c.mapError(err)
	}
	return path, nil
}

func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("files", id), nil)
	if err != nil {
		return err
	}
	return c.doNoContent(req)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("health"), nil)
	if err != nil {
		return err
	}
	return c.doNoContent(req)
}

func (c *HTTPClient) doNoContent(req *http.Request) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return c.mapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapError(netx.ReadStatusError(resp))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *HTTPClient) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, ErrUnauthorized) {
		return err
	}

	var se *netx.StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrUnauthorized
		case http.StatusNotFound:
			return ErrNotFound
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return ErrUnavailable
		default:
			return fmt.Errorf("http error: %s: %s", se.Status, se.Body)
		}
	}

	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}
