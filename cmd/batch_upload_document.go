/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/pdfqa-be/logger"
)

// batchUploadDocumentCmd represents the batch-upload-document command
var batchUploadDocumentCmd = &cobra.Command{
	Use:   "batch-upload-document",
	Short: "Ingest every PDF file in a directory",
	Long: `Ingests each .pdf file found directly under --directory. A failing file is
reported and skipped; the command fails if any file failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		directory, _ := cmd.Flags().GetString("directory")
		reinit, _ := cmd.Flags().GetBool("reinit")
		if directory == "" {
			return fmt.Errorf("--directory is required")
		}

		files, err := os.ReadDir(directory)
		if err != nil {
			return fmt.Errorf("failed to read directory: %w", err)
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

		var uploaded, failed int
		for _, file := range files {
			if file.IsDir() || !strings.EqualFold(filepath.Ext(file.Name()), ".pdf") {
				continue
			}
			filePath := filepath.Join(directory, file.Name())
			doc, err := ingestWithProgress(ctx, a, filePath)
			if err != nil {
				logger.Errorw("Failed to upload document", "path", filePath, "error", err)
				failed++
				continue
			}
			uploaded++
			fmt.Printf("Uploaded %s: %d chunks\n", doc.Filename, deref(doc.TotalChunks))
		}

		fmt.Printf("Done: %d uploaded, %d failed\n", uploaded, failed)
		if failed > 0 {
			return fmt.Errorf("%d documents failed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchUploadDocumentCmd)

	batchUploadDocumentCmd.Flags().String("directory", "", "Path to the dir to upload")
	batchUploadDocumentCmd.Flags().BoolP("reinit", "r", false, "Drop every stored chunk before uploading")
}
