package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/iksnae/targus/internal"
)

// GetCollections fetches GET /collections. A body that is not JSON comes
// back as a text payload.
func (c *Client) GetCollections(ctx context.Context) (internal.Payload, error) {
	resp, err := c.get(ctx, "collections", "/collections")
	if err != nil {
		return internal.Payload{}, err
	}
	if !resp.ok() {
		return internal.Payload{}, &internal.HTTPError{Op: "collections", Status: resp.status}
	}
	return internal.DecodePayload(resp.body), nil
}

// DeleteCollection removes a collection by name
func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("/collections/"+url.PathEscape(name)), nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}
	resp, err := c.do("delete", req)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return &internal.HTTPError{Op: "delete", Status: resp.status}
	}
	return nil
}

// CheckHealth fetches GET /health. A 2xx body that is not JSON is an error.
func (c *Client) CheckHealth(ctx context.Context) (internal.Payload, error) {
	resp, err := c.get(ctx, "health", "/health")
	if err != nil {
		return internal.Payload{}, err
	}
	if !resp.ok() {
		return internal.Payload{}, &internal.HTTPError{Op: "health", Status: resp.status}
	}
	var v interface{}
	if err := json.Unmarshal(resp.body, &v); err != nil {
		return internal.Payload{}, fmt.Errorf("invalid health response: %w", err)
	}
	return internal.DecodePayload(resp.body), nil
}

var (
	_ internal.Uploader         = (*Client)(nil)
	_ internal.ChatSender       = (*Client)(nil)
	_ internal.CollectionLister = (*Client)(nil)
	_ internal.HealthChecker    = (*Client)(nil)
)
