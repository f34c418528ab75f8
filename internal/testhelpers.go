package internal

import (
	"time"
)

// testTime is a fixed instant so exported output is stable
var testTime = time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)

// CreateTestConversation creates a conversation with one question and answer
func CreateTestConversation(collection string) *Conversation {
	return CreateTestConversationWithMessages(collection, []ChatMessage{
		{
			ID:        "0190f1a2-0000-7000-8000-000000000001",
			Text:      "What is in the handbook?",
			Sender:    SenderUser,
			Timestamp: testTime,
		},
		{
			ID:        "0190f1a2-0000-7000-8000-000000000002",
			Text:      "The handbook covers onboarding.",
			Sender:    SenderBot,
			Timestamp: testTime.Add(2 * time.Second),
		},
	})
}

// CreateTestConversationWithMessages creates a conversation with custom messages
func CreateTestConversationWithMessages(collection string, messages []ChatMessage) *Conversation {
	return &Conversation{
		Collection: collection,
		ExportedAt: testTime.Add(time.Hour),
		Messages:   messages,
	}
}
