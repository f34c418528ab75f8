package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/iksnae/targus/internal"
)

// JSONLExporter exports one message per line
type JSONLExporter struct{}

// Export writes each message of conv as a JSON line
func (e *JSONLExporter) Export(conv *internal.Conversation, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range conv.Messages {
		obj := map[string]interface{}{
			"id":         msg.ID,
			"collection": conv.Collection,
			"sender":     msg.Sender,
			"text":       msg.Text,
			"timestamp":  msg.Timestamp.Format(time.RFC3339Nano),
		}
		if msg.IsError {
			obj["isError"] = true
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
