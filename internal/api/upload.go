package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/iksnae/targus/internal"
)

// DefaultUploadFields are the multipart field names tried, in order
var DefaultUploadFields = internal.DefaultUploadFieldNames

// FallbackUploadField is the only field name the buffered upload uses
const FallbackUploadField = "files"

// UploadFile posts path to /upload, reporting progress while the body is
// sent. Each configured field name is tried in turn; when all are rejected
// the last error is returned unchanged.
func (c *Client) UploadFile(ctx context.Context, path string, onProgress func(percent float64)) (*internal.ServerResponse, error) {
	var lastErr error
	for i, field := range c.uploadFields {
		resp, err := c.uploadWithField(ctx, path, field, onProgress)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		internal.LogDebug("Upload attempt %d/%d with field %q failed: %v", i+1, len(c.uploadFields), field, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) uploadWithField(ctx context.Context, path, field string, onProgress func(float64)) (*internal.ServerResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cannot stat %s: %w", path, err)
	}

	// Render the multipart framing up front so the full length is known and
	// progress can be reported against it. Closing an empty part leaves the
	// terminating boundary, which goes after the file content.
	var head, tail bytes.Buffer
	mw := multipart.NewWriter(&head)
	if _, err := mw.CreatePart(filePartHeader(field, filepath.Base(path))); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	headLen := head.Len()
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	tail.Write(head.Bytes()[headLen:])
	head.Truncate(headLen)
	total := int64(head.Len()) + info.Size() + int64(tail.Len())

	body := &progressReader{
		r:          io.MultiReader(&head, f, &tail),
		total:      total,
		onProgress: onProgress,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/upload"), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do("upload", req)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, uploadError(resp)
	}
	return resp.serverResponse(), nil
}

// UploadFileFallback posts path to /upload as a single buffered request
// under the "files" field. It reports no progress.
func (c *Client) UploadFileFallback(ctx context.Context, path string) (*internal.ServerResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreatePart(filePartHeader(FallbackUploadField, filepath.Base(path)))
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/upload"), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do("upload", req)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, uploadError(resp)
	}
	return resp.serverResponse(), nil
}

func uploadError(resp *response) error {
	return &internal.HTTPError{
		Op:      "upload",
		Status:  resp.status,
		Message: internal.ExtractErrorMessage(resp.body, fmt.Sprintf("Upload failed: %d", resp.status)),
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func filePartHeader(field, filename string) textproto.MIMEHeader {
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)
	return h
}

// progressReader reports how much of the body the transport has consumed
type progressReader struct {
	r          io.Reader
	total      int64
	onProgress func(float64)
	sent       int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.onProgress != nil && p.total > 0 {
		p.sent += int64(n)
		p.onProgress(float64(p.sent) / float64(p.total) * 100)
	}
	return n, err
}
