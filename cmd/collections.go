package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/iksnae/targus/internal"
	"github.com/spf13/cobra"
)

var (
	collectionsWatch bool
	deleteYes        bool
)

var collectionsCmd = &cobra.Command{
	Use:     "collections",
	Aliases: []string{"collection", "col"},
	Short:   "List and delete backend collections",
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections on the backend",
	Long: `List the collections the backend reports.

Backends describe collections in different shapes (a bare array, an object
wrapping a "collections" array, or an object keyed by collection name); all
of them are shown the same way.

With --watch the list is refreshed every 5 seconds (collections.refresh_interval)
until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		client := newClient()
		out := cmd.OutOrStdout()

		if !collectionsWatch {
			refs, err := internal.FetchCollections(ctx, client)
			if err != nil {
				return fmt.Errorf("failed to fetch collections: %w", err)
			}
			displayCollections(out, refs)
			return nil
		}

		watcher := internal.NewCollectionWatcher(client, appConfig.Collections.RefreshInterval, nil, func(u internal.CollectionsUpdate) {
			fmt.Fprintln(out, dimStyle.Render("Updated "+u.At.Local().Format("15:04:05")))
			if u.Err != nil {
				fmt.Fprintln(out, errorStyle.Render("❌ Failed to fetch collections: "+u.Err.Error()))
				return
			}
			displayCollections(out, u.Collections)
		})
		watcher.Refresh(ctx)
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		watcher.Stop()
		return nil
	},
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a collection and its documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		out := cmd.OutOrStdout()

		if !deleteYes && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete collection %q and all of its documents? [y/N]: ", name)) {
			fmt.Fprintln(out, dimStyle.Render("Cancelled"))
			return nil
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		if err := newClient().DeleteCollection(ctx, name); err != nil {
			return fmt.Errorf("failed to delete collection: %w", err)
		}
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Collection %s deleted", name)))
		return nil
	},
}

func init() {
	collectionsListCmd.Flags().BoolVar(&collectionsWatch, "watch", false, "Keep refreshing the list until interrupted")
	collectionsDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Delete without asking for confirmation")

	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsDeleteCmd)
	rootCmd.AddCommand(collectionsCmd)
}

// displayCollections prints refs as a table
func displayCollections(w io.Writer, refs []internal.CollectionRef) {
	if len(refs) == 0 {
		fmt.Fprintln(w, "No collections found.")
		return
	}

	fmt.Fprintln(w, sectionStyle.Render(fmt.Sprintf("📚 %d collection(s)", len(refs))))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, ref := range refs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ref.Name, ref.CountText(), ref.Description)
	}
	tw.Flush()
}

// confirm asks prompt on out and reads a yes/no answer from in
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
