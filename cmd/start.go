/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tieubaoca/pdfqa-be/handler"
	"github.com/tieubaoca/pdfqa-be/logger"
)

const shutdownTimeout = 10 * time.Second

// startServerCmd represents the start command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the HTTP API server",
	Long:  `Starts the server exposing document upload, management and question answering.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		gin.SetMode(gin.ReleaseMode)
		router := handler.SetupRouter(handler.Handlers{
			Cors:     handler.NewCorsHandler(""),
			Health:   handler.NewHealthHandler(a.pingers...),
			Upload:   handler.NewUploadHandler(a.documents),
			Document: handler.NewDocumentHandler(a.documents),
			Query:    handler.NewQueryHandler(a.rag),
		})

		srv := &http.Server{
			Addr:    ":" + cfg.Port,
			Handler: router,
		}
		errChan := make(chan error, 1)
		go func() {
			logger.Infof("Starting server on port %s...", cfg.Port)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
			close(errChan)
		}()

		select {
		case err := <-errChan:
			return err
		case <-ctx.Done():
		}

		logger.Infof("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
