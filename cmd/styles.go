package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/targus/internal"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	botStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Bold(true)
)

// printMessage renders one chat line: "[15:04] You: text"
func printMessage(w io.Writer, msg internal.ChatMessage) {
	stamp := dimStyle.Render("[" + msg.Timestamp.Local().Format("15:04") + "]")
	switch {
	case msg.IsError:
		fmt.Fprintf(w, "%s %s %s\n", stamp, errorStyle.Render("Assistant:"), msg.Text)
	case msg.Sender == internal.SenderUser:
		fmt.Fprintf(w, "%s %s %s\n", stamp, userStyle.Render("You:"), msg.Text)
	default:
		fmt.Fprintf(w, "%s %s %s\n", stamp, botStyle.Render("Assistant:"), msg.Text)
	}
}
