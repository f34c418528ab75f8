package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iksnae/targus/internal"
)

// DefaultTimeout bounds a single request when no http.Client is supplied
const DefaultTimeout = 60 * time.Second

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 10 << 20

// Client talks to the document backend
type Client struct {
	baseURL      string
	httpClient   *http.Client
	uploadFields []string
	chatFormats  []ChatFormat
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithUploadFields sets the ordered multipart field names UploadFile tries
func WithUploadFields(fields []string) Option {
	return func(c *Client) {
		if len(fields) > 0 {
			c.uploadFields = append([]string(nil), fields...)
		}
	}
}

// WithChatFormats sets the ordered body shapes SendChatMessageFallback tries
func WithChatFormats(formats []ChatFormat) Option {
	return func(c *Client) {
		if len(formats) > 0 {
			c.chatFormats = append([]ChatFormat(nil), formats...)
		}
	}
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		uploadFields: append([]string(nil), DefaultUploadFields...),
		chatFormats:  append([]ChatFormat(nil), DefaultChatFormats...),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// UploadFields returns the field names UploadFile tries, in order
func (c *Client) UploadFields() []string {
	return append([]string(nil), c.uploadFields...)
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + path
}

// response is a fully read HTTP response
type response struct {
	status int
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

func (r *response) serverResponse() *internal.ServerResponse {
	return &internal.ServerResponse{Status: r.status, Payload: internal.DecodePayload(r.body)}
}

// do sends req and reads the whole body. Only failures that produced no
// response are returned as errors.
func (c *Client) do(op string, req *http.Request) (*response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &internal.TransportError{Op: op, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &internal.TransportError{Op: op, URL: req.URL.String(), Err: fmt.Errorf("reading response: %w", err)}
	}

	internal.LogDebug("%s %s -> %d (%s)", req.Method, req.URL.Path, resp.StatusCode, time.Since(start).Round(time.Millisecond))
	return &response{status: resp.StatusCode, body: body}, nil
}

func (c *Client) get(ctx context.Context, op, path string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(op, req)
}
