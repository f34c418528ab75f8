package internal

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// ChatErrorReply is the bot message stored when a send fails
const ChatErrorReply = "Sorry, I encountered an error. Please try again."

// FallbackCollections are offered when the server's list is unavailable
var FallbackCollections = []string{"documents", "knowledge", "general"}

// ChatSender is the pair of transport mechanisms a chat message can use
type ChatSender interface {
	SendChatMessage(ctx context.Context, text, collection string) (*ServerResponse, error)
	SendChatMessageFallback(ctx context.Context, text, collection string) (*ServerResponse, error)
}

// ChatSession is a conversation against one selected collection at a time
type ChatSession struct {
	sender ChatSender
	store  *HistoryStore

	mu         sync.Mutex
	collection string
}

// NewChatSession creates a session with no collection selected
func NewChatSession(sender ChatSender, store *HistoryStore) *ChatSession {
	return &ChatSession{sender: sender, store: store}
}

// Select switches the active collection. Other collections are untouched.
func (c *ChatSession) Select(collection string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collection = collection
}

// Collection returns the active collection, "" when none
func (c *ChatSession) Collection() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collection
}

// Messages returns the active collection's history
func (c *ChatSession) Messages() []ChatMessage {
	collection := c.Collection()
	if collection == "" {
		return []ChatMessage{}
	}
	return c.store.Messages(collection)
}

// Send delivers text to the active collection and records both sides of
// the exchange. On failure the stored reply is an error message and the
// returned error describes the cause.
func (c *ChatSession) Send(ctx context.Context, text string) (ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatMessage{}, ErrEmptyMessage
	}
	collection := c.Collection()
	if collection == "" {
		return ChatMessage{}, ErrNoCollection
	}

	c.store.Append(collection, NewChatMessage(SenderUser, text))

	resp, err := c.sender.SendChatMessage(ctx, text, collection)
	if err != nil && ctx.Err() == nil {
		LogWarn("Chat request failed, trying alternate formats: %v", err)
		resp, err = c.sender.SendChatMessageFallback(ctx, text, collection)
	}

	if err != nil {
		LogError("Chat error: %v", err)
		reply := NewErrorMessage(ChatErrorReply)
		c.store.Append(collection, reply)
		return reply, fmt.Errorf("Failed to send message: %w", err)
	}

	reply := NewChatMessage(SenderBot, ExtractReplyText(resp.Payload))
	c.store.Append(collection, reply)
	return reply, nil
}

// Clear empties the active collection's history
func (c *ChatSession) Clear() error {
	collection := c.Collection()
	if collection == "" {
		return ErrNoCollection
	}
	c.store.Clear(collection)
	return nil
}

// ClearAll empties every collection's history
func (c *ChatSession) ClearAll() {
	c.store.ClearAll()
}

// ResolveCollections fetches collection names from the server, falling back
// to FallbackCollections when that fails. The first name is selected when no
// collection is active. A fetch error is returned alongside the fallback
// names.
func (c *ChatSession) ResolveCollections(ctx context.Context, lister CollectionLister) ([]string, error) {
	refs, err := FetchCollections(ctx, lister)
	var names []string
	if err != nil {
		LogWarn("Failed to load collections, using defaults: %v", err)
		names = append([]string(nil), FallbackCollections...)
	} else {
		names = CollectionNames(refs)
	}

	c.mu.Lock()
	if c.collection == "" && len(names) > 0 {
		c.collection = names[0]
	}
	c.mu.Unlock()

	return names, err
}
