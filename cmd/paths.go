package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/iksnae/targus/internal"
	"github.com/spf13/cobra"
)

// pathsCmd shows where targus reads configuration and keeps local state
var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show where configuration and local storage live",
	Long: `Show the config file and local storage locations for this OS, whether
they exist, and which keys the local store currently holds.

Useful when chat history seems to be missing or when running with a
custom --storage location.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		paths, err := internal.DetectAppPaths()
		if err != nil {
			return err
		}

		fmt.Fprintln(out, sectionStyle.Render("📂 Configuration"))
		configPath := configFile
		if configPath == "" {
			configPath = paths.ConfigFile()
		}
		fmt.Fprintf(out, "  %s\n", dimStyle.Render(configPath))
		checkPath(out, configPath, "  ")
		fmt.Fprintln(out)

		fmt.Fprintln(out, sectionStyle.Render("🗄  Local storage ("+appConfig.Storage.Backend+")"))
		fmt.Fprintf(out, "  %s\n", dimStyle.Render(appConfig.Storage.Path))
		if !checkPath(out, appConfig.Storage.Path, "  ") {
			return nil
		}

		switch appConfig.Storage.Backend {
		case internal.BackendSQLite:
			store, err := internal.OpenSQLiteKVStore(appConfig.Storage.Path)
			if err != nil {
				fmt.Fprintf(out, "  %s %v\n", warningStyle.Render("⚠️  Storage exists but cannot be opened:"), err)
				return nil
			}
			defer store.Close()
			keys, err := store.Keys()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  %d key(s)\n", len(keys))
			for _, key := range keys {
				fmt.Fprintf(out, "    • %s\n", key)
			}
		case internal.BackendFile:
			store, err := internal.NewFileKVStore(appConfig.Storage.Path)
			if err != nil {
				return err
			}
			historyFile := store.KeyPath(internal.HistoryStorageKey)
			fmt.Fprintf(out, "  History: %s\n", dimStyle.Render(historyFile))
			checkPath(out, historyFile, "  ")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}

// checkPath reports whether path exists
func checkPath(w io.Writer, path string, indent string) bool {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		fmt.Fprintf(w, "%s%s\n", indent, successStyle.Render("✅ Directory exists"))
		return true
	case err == nil:
		fmt.Fprintf(w, "%s%s\n", indent, successStyle.Render("✅ File exists"))
		return true
	case os.IsNotExist(err):
		fmt.Fprintf(w, "%s%s\n", indent, warningStyle.Render("⚠️  Does not exist"))
	default:
		fmt.Fprintf(w, "%s%s %v\n", indent, errorStyle.Render("❌ Error checking:"), err)
	}
	return false
}
