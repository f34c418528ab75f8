package cmd

import (
	"fmt"

	"github.com/iksnae/targus/internal/mockbackend"
	"github.com/spf13/cobra"
)

var (
	mockAddr        string
	mockUploadField string
	mockChatKey     string
	mockShape       string
	mockCollections []string
)

var serveMockCmd = &cobra.Command{
	Use:   "serve-mock",
	Short: "Run a local mock backend",
	Long: `Run an in-memory backend that implements POST /upload, POST /chat,
GET /collections, DELETE /collections/{name} and GET /health.

The mock accepts exactly one multipart field name and one chat body key, so
it can stand in for backends that disagree on request shapes. Rejected
requests get a 422 with a FastAPI-style "detail" body.

Examples:
  targus serve-mock
  targus serve-mock --upload-field upload_file --chat-key prompt --shape mapping`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shape := mockbackend.CollectionShape(mockShape)
		switch shape {
		case mockbackend.ShapeArray, mockbackend.ShapeWrapped, mockbackend.ShapeMapping, mockbackend.ShapeNames:
		default:
			return fmt.Errorf("unsupported shape: %s (supported: array, wrapped, mapping, names)", mockShape)
		}

		srv := mockbackend.New(mockbackend.Options{
			UploadField: mockUploadField,
			ChatTextKey: mockChatKey,
			Shape:       shape,
			Collections: mockCollections,
		})

		ctx, cancel := commandContext(cmd)
		defer cancel()

		fmt.Fprintln(cmd.OutOrStdout(), infoStyle.Render("Mock backend listening on "+mockAddr))
		return srv.ListenAndServe(ctx, mockAddr)
	},
}

func init() {
	serveMockCmd.Flags().StringVar(&mockAddr, "addr", ":8000", "Listen address")
	serveMockCmd.Flags().StringVar(&mockUploadField, "upload-field", "files", "Multipart field accepted by /upload")
	serveMockCmd.Flags().StringVar(&mockChatKey, "chat-key", "query", "Body key accepted as the chat message")
	serveMockCmd.Flags().StringVar(&mockShape, "shape", string(mockbackend.ShapeArray), "GET /collections response shape: array, wrapped, mapping or names")
	serveMockCmd.Flags().StringSliceVar(&mockCollections, "collections", []string{"documents"}, "Collections created at startup")
	rootCmd.AddCommand(serveMockCmd)
}
