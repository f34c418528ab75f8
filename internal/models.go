package internal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sender identifies who wrote a chat message
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ChatMessage is a single entry in a collection's chat history
type ChatMessage struct {
	ID        string    `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	Sender    Sender    `json:"sender" yaml:"sender"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	IsError   bool      `json:"isError,omitempty" yaml:"is_error,omitempty"`
}

// NewChatMessage creates a message stamped with the current time. IDs are
// UUIDv7 so they sort in creation order.
func NewChatMessage(sender Sender, text string) ChatMessage {
	return ChatMessage{
		ID:        newMessageID(),
		Text:      text,
		Sender:    sender,
		Timestamp: time.Now(),
	}
}

// NewErrorMessage creates a bot message flagged as an error
func NewErrorMessage(text string) ChatMessage {
	msg := NewChatMessage(SenderBot, text)
	msg.IsError = true
	return msg
}

func newMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// CollectionRef describes a document collection as reported by the server
type CollectionRef struct {
	Name        string                 `json:"name" yaml:"name"`
	Count       *int                   `json:"count,omitempty" yaml:"count,omitempty"`
	Description string                 `json:"description,omitempty" yaml:"description,omitempty"`
	Extra       map[string]interface{} `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// CountText renders the item count for display, or "" when unknown
func (c CollectionRef) CountText() string {
	if c.Count == nil {
		return ""
	}
	return fmt.Sprintf("%d items", *c.Count)
}

// ServerResponse is a successful response from the backend
type ServerResponse struct {
	Status  int
	Payload Payload
}

// Conversation is one collection's history, the unit of export
type Conversation struct {
	Collection string        `json:"collection" yaml:"collection"`
	ExportedAt time.Time     `json:"exported_at" yaml:"exported_at"`
	Messages   []ChatMessage `json:"messages" yaml:"messages"`
}

// NewConversation builds an export unit from a store snapshot
func NewConversation(collection string, messages []ChatMessage) *Conversation {
	return &Conversation{
		Collection: collection,
		ExportedAt: time.Now(),
		Messages:   messages,
	}
}

// ToJSON renders the conversation as indented JSON
func (c *Conversation) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
