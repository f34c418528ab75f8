package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/iksnae/targus/internal"
)

func TestJSONExporter_Export(t *testing.T) {
	conv := internal.CreateTestConversation("handbook")

	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(conv, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var got internal.Conversation
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.Collection != "handbook" || len(got.Messages) != 2 {
		t.Errorf("decoded = %+v", got)
	}
	if !got.Messages[1].Timestamp.Equal(conv.Messages[1].Timestamp) {
		t.Errorf("timestamp = %v, want %v", got.Messages[1].Timestamp, conv.Messages[1].Timestamp)
	}
	if !bytes.Contains(buf.Bytes(), []byte("\n  \"collection\"")) {
		t.Error("output is not indented")
	}
}

func TestJSONExporter_Extension(t *testing.T) {
	if ext := (&JSONExporter{}).Extension(); ext != "json" {
		t.Errorf("Extension() = %q, want json", ext)
	}
}
