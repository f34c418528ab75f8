package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/iksnae/targus/internal"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a document to the backend",
	Long: `Upload a document so the backend can index it into a collection.

The file is sent as multipart/form-data. If the backend rejects the field
name, the next configured name is tried (files, file, upload_file by default).
If streaming the upload fails entirely, it is retried once as a buffered
request with the field name "files".

Examples:
  targus upload handbook.pdf
  targus upload notes.md --api-url http://rag.internal:8000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := internal.NewUploadSession(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		bar := internal.NewProgressBar(cmd.ErrOrStderr(), "Uploading "+filepath.Base(session.Path))
		session.OnProgress(bar.Update)

		resp, err := session.Run(ctx, newClient())
		bar.Done()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, successStyle.Render("✅ File uploaded successfully!"))
		if msg, ok := resp.Payload.String("message"); ok && msg != "" {
			fmt.Fprintf(out, "   %s\n", msg)
		}
		if name, ok := resp.Payload.String("collection_name"); ok && name != "" {
			fmt.Fprintf(out, "   Collection: %s\n", nameStyle.Render(name))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
