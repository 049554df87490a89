/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/pdfqa-be/config"
	"github.com/tieubaoca/pdfqa-be/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pdfqa-be",
	Short: "Question answering over uploaded PDF documents",
	Long: `pdfqa-be ingests PDF documents (text extraction, chunking, embeddings)
and answers natural-language questions grounded only in their content.

Run "pdfqa-be start" for the HTTP API, or use the upload and ask commands
to work from the terminal.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	defer logger.Sync()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); environment variables override it")
}

// initConfig loads the configuration and sets up logging before any command runs.
func initConfig() {
	var err error
	cfg, err = config.LoadConfig(cfgFile)
	cobra.CheckErr(err)
	cobra.CheckErr(logger.Init(cfg.Log.Level, cfg.Log.Format))
	if cfgFile != "" {
		logger.Infof("Using config file: %s", cfgFile)
	}
}
