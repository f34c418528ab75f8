package internal

import (
	"strings"
	"testing"
)

func TestNewChatMessage(t *testing.T) {
	msg := NewChatMessage(SenderUser, "Hello")

	if msg.ID == "" {
		t.Error("NewChatMessage() should assign an ID")
	}
	if msg.Sender != SenderUser {
		t.Errorf("Sender = %v, want user", msg.Sender)
	}
	if msg.Text != "Hello" {
		t.Errorf("Text = %v, want Hello", msg.Text)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
	if msg.IsError {
		t.Error("IsError should default to false")
	}
}

func TestNewChatMessage_IDsAreOrdered(t *testing.T) {
	prev := NewChatMessage(SenderUser, "first").ID
	for i := 0; i < 50; i++ {
		next := NewChatMessage(SenderBot, "next").ID
		if next == prev {
			t.Fatalf("duplicate message ID %s", next)
		}
		if strings.Compare(next, prev) <= 0 {
			t.Fatalf("message IDs should increase: %s then %s", prev, next)
		}
		prev = next
	}
}

func TestNewErrorMessage(t *testing.T) {
	msg := NewErrorMessage("boom")
	if !msg.IsError || msg.Sender != SenderBot {
		t.Errorf("NewErrorMessage() = %+v, want bot error message", msg)
	}
}

func TestCollectionRef_CountText(t *testing.T) {
	n := 3
	if got := (CollectionRef{Name: "docs", Count: &n}).CountText(); got != "3 items" {
		t.Errorf("CountText() = %q, want %q", got, "3 items")
	}
	if got := (CollectionRef{Name: "docs"}).CountText(); got != "" {
		t.Errorf("CountText() without count = %q, want empty", got)
	}
}

func TestConversation_ToJSON(t *testing.T) {
	conv := NewConversation("docs", []ChatMessage{NewChatMessage(SenderUser, "hi")})
	data, err := conv.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	if !strings.Contains(string(data), `"collection": "docs"`) {
		t.Errorf("ToJSON() missing collection, got: %s", data)
	}
}
