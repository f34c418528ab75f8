package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/iksnae/targus/internal"
)

// DefaultCollectionName is what a ChatFormat with OverrideCollection sends
const DefaultCollectionName = "default"

// ChatFormat is one request body shape for POST /chat
type ChatFormat struct {
	// TextKey names the field carrying the message text
	TextKey string
	// OverrideCollection, when set, replaces the selected collection name
	OverrideCollection string
}

// DefaultChatFormats are the body shapes SendChatMessageFallback tries, in
// order. The second entry deliberately ignores the selected collection.
var DefaultChatFormats = []ChatFormat{
	{TextKey: "query"},
	{TextKey: "query", OverrideCollection: DefaultCollectionName},
	{TextKey: "message"},
	{TextKey: "text"},
	{TextKey: "prompt"},
	{TextKey: "input"},
}

// Body renders the request body for text sent to collection
func (f ChatFormat) Body(text, collection string) map[string]string {
	if f.OverrideCollection != "" {
		collection = f.OverrideCollection
	}
	return map[string]string{
		f.TextKey:         text,
		"collection_name": collection,
	}
}

func (f ChatFormat) String() string {
	if f.OverrideCollection != "" {
		return fmt.Sprintf("%s (collection %q)", f.TextKey, f.OverrideCollection)
	}
	return f.TextKey
}

// SendChatMessage posts {query, collection_name} to /chat once
func (c *Client) SendChatMessage(ctx context.Context, text, collection string) (*internal.ServerResponse, error) {
	resp, err := c.postChat(ctx, ChatFormat{TextKey: "query"}.Body(text, collection))
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, &internal.ChatRequestError{
			Status:  resp.status,
			Message: internal.ExtractErrorMessage(resp.body, fmt.Sprintf("Chat request failed: %d", resp.status)),
		}
	}
	return resp.serverResponse(), nil
}

// SendChatMessageFallback tries each configured body shape in order and
// returns the first successful response
func (c *Client) SendChatMessageFallback(ctx context.Context, text, collection string) (*internal.ServerResponse, error) {
	var lastErr error
	for i, format := range c.chatFormats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := c.postChat(ctx, format.Body(text, collection))
		if err == nil && resp.ok() {
			if i > 0 {
				internal.LogInfo("Chat accepted with request format %d (%s)", i+1, format)
			}
			return resp.serverResponse(), nil
		}

		if err == nil {
			err = &internal.ChatRequestError{
				Status:  resp.status,
				Message: internal.ExtractErrorMessage(resp.body, fmt.Sprintf("Chat request failed: %d", resp.status)),
			}
		}
		lastErr = err
		internal.LogDebug("Chat request format %d (%s) failed: %v", i+1, format, err)
	}

	return nil, &internal.AllFormatsFailedError{Op: "chat", Attempts: len(c.chatFormats), Last: lastErr}
}

func (c *Client) postChat(ctx context.Context, body map[string]string) (*response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/chat"), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do("chat", req)
}
