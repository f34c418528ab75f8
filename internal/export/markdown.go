package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iksnae/targus/internal"
)

// MarkdownExporter exports a conversation as a readable transcript
type MarkdownExporter struct{}

// Export writes conv as Markdown
func (e *MarkdownExporter) Export(conv *internal.Conversation, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Chat: %s\n\n", conv.Collection)
	_, _ = fmt.Fprintf(w, "**Exported:** %s  \n", conv.ExportedAt.Format(time.RFC3339))
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(conv.Messages))
	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range conv.Messages {
		label := senderLabel(msg)
		content := escapeMarkdown(msg.Text)

		_, _ = fmt.Fprintf(w, "**%s** (%s)\n\n%s\n\n", label, msg.Timestamp.Format(time.RFC3339), content)

		if i < len(conv.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

func senderLabel(msg internal.ChatMessage) string {
	switch {
	case msg.IsError:
		return "Error:"
	case msg.Sender == internal.SenderUser:
		return "You:"
	default:
		return "Assistant:"
	}
}

// escapeMarkdown escapes emphasis markers outside fenced code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	result := make([]string, 0, len(lines))
	inCodeBlock := false

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "```"):
			inCodeBlock = !inCodeBlock
		case !inCodeBlock:
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
		}
		result = append(result, line)
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
