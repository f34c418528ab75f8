package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/targus/internal"
	"github.com/iksnae/targus/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportFormat    string
	exportOutputDir string
)

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved chat history",
	Long: `Export saved chat history, one file per collection, named
<collection>.<ext> in the output directory.

Supported formats: json, jsonl, yaml, md. Use --output - to write a single
collection to standard output.

Examples:
  targus history export --format md
  targus history export -c documents --format jsonl -o ./exports
  targus history export -c documents --format json -o -`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		store, closeStore, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		collections := store.Collections()
		if historyCollection != "" {
			collections = []string{historyCollection}
		}
		if len(collections) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No chat history saved.")
			return nil
		}

		if exportOutputDir == "-" {
			if len(collections) != 1 {
				return fmt.Errorf("--output - needs exactly one collection, use --collection")
			}
			conv := internal.NewConversation(collections[0], store.Messages(collections[0]))
			if err := exporter.Export(conv, cmd.OutOrStdout()); err != nil {
				return &internal.ExportError{Format: exportFormat, Path: "-", Err: err}
			}
			return nil
		}

		if err := os.MkdirAll(exportOutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		exported := 0
		for _, collection := range collections {
			path := filepath.Join(exportOutputDir, exportFileName(collection, exporter.Extension()))
			conv := internal.NewConversation(collection, store.Messages(collection))
			if err := writeExport(exporter, conv, path); err != nil {
				internal.LogError("%v", err)
				if len(collections) == 1 {
					return err
				}
				continue
			}
			exported++
		}

		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(
			fmt.Sprintf("✅ Export complete: %d collection(s) exported to %s", exported, exportOutputDir)))
		return nil
	},
}

func init() {
	historyExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	historyExportCmd.Flags().StringVarP(&exportOutputDir, "output", "o", "./exports", "Output directory, or - for standard output")
	historyCmd.AddCommand(historyExportCmd)
}

func writeExport(exporter export.Exporter, conv *internal.Conversation, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: exportFormat, Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &internal.ExportError{Format: exportFormat, Path: path, Err: cerr}
		}
	}()

	if err := exporter.Export(conv, f); err != nil {
		return &internal.ExportError{Format: exportFormat, Path: path, Err: err}
	}
	return nil
}

// exportFileName keeps collection names usable as file names
func exportFileName(collection, ext string) string {
	safe := []rune(collection)
	for i, r := range safe {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			safe[i] = '_'
		}
	}
	return string(safe) + "." + ext
}
