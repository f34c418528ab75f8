package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/iksnae/targus/internal"
	"github.com/iksnae/targus/internal/api"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	verbose        bool
	apiURL         string
	configFile     string
	storagePath    string
	storageBackend string
	version        string = "dev"
	commit         string = "unknown"
	date           string = "unknown"
)

// appConfig is resolved once per invocation by the root PersistentPreRunE
var appConfig *internal.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "targus",
	Short: "Talk to a document-collection chat backend from the terminal",
	Long: `A CLI client for document-collection chat backends.

Upload documents into collections, chat against a collection, manage
collections and keep a local per-collection chat history. Request shapes are
negotiated automatically: uploads retry with alternate multipart field names
and chat retries with alternate body shapes until the backend accepts one.

Quick Start:
  targus healthcheck                     # Is the backend up?
  targus upload handbook.pdf             # Upload a document
  targus collections list                # See what is indexed
  targus chat -c documents               # Start chatting

Configuration is read from config.yaml in the user config directory,
TARGUS_* environment variables, a .env file and command flags.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		internal.SetVerbose(verbose)

		if err := internal.LoadDotEnv(); err != nil {
			internal.LogWarn("%v", err)
		}

		paths, err := internal.DetectAppPaths()
		if err != nil {
			return err
		}

		v := internal.NewViper()
		if err := bindFlags(v, cmd.Root()); err != nil {
			return err
		}

		cfg, err := internal.LoadConfig(v, configFile, paths)
		if err != nil {
			return err
		}
		if !verbose && cfg.LogLevel != "" {
			level, _ := internal.ParseLogLevel(cfg.LogLevel)
			internal.SetLogLevel(level)
		}

		appConfig = cfg
		internal.LogDebug("API: %s, storage: %s (%s)", cfg.APIURL, cfg.Storage.Path, cfg.Storage.Backend)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (default "+internal.DefaultAPIURL+")")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default is config.yaml in the user config directory)")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "Local storage location (database file, or directory for the file backend)")
	rootCmd.PersistentFlags().StringVar(&storageBackend, "storage-backend", "", "Local storage backend: sqlite or file")
	rootCmd.PersistentFlags().Duration("timeout", api.DefaultTimeout, "Per-request timeout")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// flagKeys maps persistent flags onto configuration keys
var flagKeys = map[string]string{
	"api-url":         internal.KeyAPIURL,
	"storage":         internal.KeyStoragePath,
	"storage-backend": internal.KeyStorageBackend,
	"timeout":         internal.KeyTimeout,
}

// bindFlags lets explicitly set flags override config and environment
func bindFlags(v *viper.Viper, root *cobra.Command) error {
	for name, key := range flagKeys {
		flag := root.PersistentFlags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}

// commandContext returns a context cancelled on Ctrl-C
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt)
}

// newClient builds an API client from the resolved configuration
func newClient() *api.Client {
	return api.NewClient(appConfig.APIURL,
		api.WithTimeout(appConfig.Timeout),
		api.WithUploadFields(appConfig.Upload.FieldNames),
	)
}

// openHistory opens the configured local store and restores the chat history.
// A corrupt snapshot is reported and discarded.
func openHistory(cmd *cobra.Command) (*internal.HistoryStore, func(), error) {
	kv, err := internal.OpenKVStore(appConfig.Storage.Backend, appConfig.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open local storage: %w", err)
	}
	closeFn := func() {
		if err := kv.Close(); err != nil {
			internal.LogWarn("Failed to close local storage: %v", err)
		}
	}

	store := internal.NewHistoryStore(kv, internal.WithMaxMessages(appConfig.History.MaxMessages))
	if err := store.Load(); err != nil {
		var parseErr *internal.PersistenceParseError
		if !errors.As(err, &parseErr) {
			closeFn()
			return nil, nil, fmt.Errorf("failed to load chat history: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), warningStyle.Render("⚠️  Saved chat history was unreadable and has been reset"))
	}
	return store, closeFn, nil
}
