package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iksnae/targus/internal"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend health, collections and local history at a glance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		client := newClient()
		poller := internal.NewHealthPoller(client, appConfig.Health.Interval, nil)

		var (
			health     internal.HealthStatus
			refs       []internal.CollectionRef
			refsErr    error
			historyLen = map[string]int{}
		)

		// failures are reported in the summary, so no goroutine returns one
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			health = poller.Check(gctx)
			return nil
		})
		g.Go(func() error {
			refs, refsErr = internal.FetchCollections(gctx, client)
			return nil
		})
		g.Go(func() error {
			store, closeStore, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer closeStore()
			for _, name := range store.Collections() {
				historyLen[name] = store.Len(name)
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sectionStyle.Render("📡 Backend"))
		fmt.Fprintf(out, "   URL: %s\n", appConfig.APIURL)
		displayHealth(out, health, time.Now())
		fmt.Fprintln(out)

		fmt.Fprintln(out, sectionStyle.Render("📚 Collections"))
		if refsErr != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to fetch collections: "+refsErr.Error()))
		} else {
			fmt.Fprintf(out, "   %d: %s\n", len(refs), strings.Join(internal.CollectionNames(refs), ", "))
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, sectionStyle.Render("🗂  Local history"))
		fmt.Fprintf(out, "   Storage: %s (%s)\n", appConfig.Storage.Path, appConfig.Storage.Backend)
		if len(historyLen) == 0 {
			fmt.Fprintln(out, "   No chat history saved.")
		}
		for _, name := range sortedKeys(historyLen) {
			fmt.Fprintf(out, "   %s: %d messages\n", name, historyLen[name])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
