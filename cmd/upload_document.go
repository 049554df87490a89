/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/pdfqa-be/types"
)

// uploadDocumentCmd represents the upload-document command
var uploadDocumentCmd = &cobra.Command{
	Use:   "upload-document",
	Short: "Ingest a single PDF file",
	Long: `Extracts, chunks and embeds a PDF from local disk, exactly like an
upload through the HTTP API, and prints the resulting document.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath, _ := cmd.Flags().GetString("file")
		reinit, _ := cmd.Flags().GetBool("reinit")
		if filePath == "" {
			return fmt.Errorf("--file is required")
		}

		ctx := cmd.Context()
		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		if reinit {
			if err := a.reinitVectorStore(ctx); err != nil {
				return fmt.Errorf("failed to reinitialize vector store: %w", err)
			}
		}

		doc, err := ingestWithProgress(ctx, a, filePath)
		if err != nil {
			return err
		}
		fmt.Printf("Document %s (%s) ready: %d pages, %d chunks\n", doc.ID, doc.Filename, deref(doc.TotalPages), deref(doc.TotalChunks))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadDocumentCmd)

	uploadDocumentCmd.Flags().StringP("file", "f", "", "Path to the file to upload")
	uploadDocumentCmd.Flags().BoolP("reinit", "r", false, "Drop every stored chunk before uploading")
}

// ingestWithProgress prints progress events while the file is ingested.
func ingestWithProgress(ctx context.Context, a *app, filePath string) (*types.Document, error) {
	statusChan := make(chan types.ProcessingDocumentStatus)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for status := range statusChan {
			fmt.Printf("[%3.0f%%] %s\n", status.Progress*100, status.Message)
		}
	}()

	doc, err := a.documents.IngestFile(ctx, filePath, statusChan)
	close(statusChan)
	<-done
	return doc, err
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
