package cmd

import (
	"errors"
	"fmt"

	"github.com/iksnae/targus/internal"
	"github.com/spf13/cobra"
)

var (
	historyCollection string
	historyLimit      int
	historyClearAll   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show, clear and export the local chat history",
	Long: `Chat history is kept locally, per collection, in the configured storage
backend (a SQLite database by default). Nothing here touches the backend.`,
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show saved chat history",
	Long: `Without --collection, list the collections that have saved history.
With --collection, print that collection's messages.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		out := cmd.OutOrStdout()
		if historyCollection == "" {
			names := store.Collections()
			if len(names) == 0 {
				fmt.Fprintln(out, "No chat history saved.")
				return nil
			}
			fmt.Fprintln(out, sectionStyle.Render("🗂  Saved history"))
			for _, name := range names {
				fmt.Fprintf(out, "  %s %s\n", nameStyle.Render(name), dimStyle.Render(fmt.Sprintf("(%d messages)", store.Len(name))))
			}
			return nil
		}

		msgs := store.Messages(historyCollection)
		if len(msgs) == 0 {
			fmt.Fprintf(out, "No messages saved for %s.\n", historyCollection)
			return nil
		}
		if historyLimit > 0 && len(msgs) > historyLimit {
			msgs = msgs[len(msgs)-historyLimit:]
		}

		fmt.Fprintln(out, sectionStyle.Render("💬 "+historyCollection))
		for _, msg := range msgs {
			printMessage(out, msg)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear saved chat history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyCollection == "" && !historyClearAll {
			return errors.New("specify a collection with --collection, or --all")
		}

		store, closeStore, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		session := internal.NewChatSession(nil, store)
		out := cmd.OutOrStdout()
		if historyClearAll {
			session.ClearAll()
			fmt.Fprintln(out, successStyle.Render("✅ All chat history cleared"))
			return nil
		}

		session.Select(historyCollection)
		if err := session.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(out, successStyle.Render("✅ Chat history cleared for "+historyCollection))
		return nil
	},
}

func init() {
	historyCmd.PersistentFlags().StringVarP(&historyCollection, "collection", "c", "", "Collection")
	historyShowCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Show only the last N messages")
	historyClearCmd.Flags().BoolVar(&historyClearAll, "all", false, "Clear the history of every collection")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
