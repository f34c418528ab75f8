package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/targus/internal"
	"github.com/iksnae/targus/internal/api"
	"github.com/spf13/cobra"
)

var (
	chatCollection string
)

var chatCmd = &cobra.Command{
	Use:   "chat [message...]",
	Short: "Chat with a collection",
	Long: `Send a message to a collection, or start an interactive chat when no
message is given.

Both sides of every exchange are saved in the local history for the
collection. When no collection is given, the first collection reported by
the backend is used (documents, knowledge or general if the list cannot be
fetched).

Interactive commands:
  /use <name>      Switch collection
  /collections     List collections
  /history         Show this collection's history
  /clear           Clear this collection's history
  /clear-all       Clear the history of every collection
  /quit            Leave (also /exit or Ctrl-D)

Examples:
  targus chat -c documents "What does the handbook say about leave?"
  targus chat -c knowledge`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		ctx, cancel := commandContext(cmd)
		defer cancel()

		client := newClient()
		session := internal.NewChatSession(client, store)
		if chatCollection != "" {
			session.Select(chatCollection)
		} else if _, err := session.ResolveCollections(ctx, client); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), warningStyle.Render("⚠️  Could not load collections, using defaults"))
		}

		if len(args) > 0 {
			reply, err := session.Send(ctx, strings.Join(args, " "))
			// validation failures never produce a reply
			if reply.ID != "" {
				printMessage(cmd.OutOrStdout(), reply)
			}
			return err
		}

		return runChatLoop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), session, client)
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatCollection, "collection", "c", "", "Collection to chat with")
	rootCmd.AddCommand(chatCmd)
}

// runChatLoop reads lines from in until EOF, /quit or ctx is cancelled
func runChatLoop(ctx context.Context, in io.Reader, out io.Writer, session *internal.ChatSession, client *api.Client) error {
	fmt.Fprintln(out, sectionStyle.Render("💬 Chatting with "+session.Collection()))
	fmt.Fprintln(out, dimStyle.Render("Type /quit to leave, /use <name> to switch collection"))
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "%s> ", nameStyle.Render(session.Collection()))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := runChatCommand(ctx, out, line, session, client); quit {
				return nil
			}
			continue
		}

		reply, err := session.Send(ctx, line)
		if err != nil && reply.ID == "" {
			fmt.Fprintln(out, errorStyle.Render(err.Error()))
			continue
		}
		printMessage(out, reply)
		if err != nil {
			internal.LogDebug("%v", err)
		}
	}
}

// runChatCommand handles one slash command and reports whether to quit
func runChatCommand(ctx context.Context, out io.Writer, line string, session *internal.ChatSession, client *api.Client) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true

	case "/use":
		if len(fields) < 2 {
			fmt.Fprintln(out, warningStyle.Render("Usage: /use <collection>"))
			return false
		}
		session.Select(fields[1])
		fmt.Fprintln(out, infoStyle.Render("Switched to "+fields[1]))
		for _, msg := range session.Messages() {
			printMessage(out, msg)
		}

	case "/collections":
		names, err := session.ResolveCollections(ctx, client)
		if err != nil {
			fmt.Fprintln(out, warningStyle.Render("⚠️  Could not load collections, showing defaults"))
		}
		for _, name := range names {
			marker := "  "
			if name == session.Collection() {
				marker = "* "
			}
			fmt.Fprintln(out, marker+name)
		}

	case "/history":
		msgs := session.Messages()
		if len(msgs) == 0 {
			fmt.Fprintln(out, dimStyle.Render("No messages yet"))
		}
		for _, msg := range msgs {
			printMessage(out, msg)
		}

	case "/clear":
		if err := session.Clear(); err != nil {
			fmt.Fprintln(out, errorStyle.Render(err.Error()))
			return false
		}
		fmt.Fprintln(out, successStyle.Render("History cleared for "+session.Collection()))

	case "/clear-all":
		session.ClearAll()
		fmt.Fprintln(out, successStyle.Render("All chat history cleared"))

	default:
		fmt.Fprintln(out, warningStyle.Render("Unknown command: "+fields[0]))
	}
	return false
}
