// Package main provides the cv_builder command: the HTTP API server and local
// tools for rendering, exporting and saving CVs.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "cv_builder",
	Short: "CV builder API server and tools",
	Long: "cv_builder renders CV documents with a choice of templates and exports them as paginated PDF, " +
		"images or print-ready HTML, over a REST API or from the command line.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML or JSON config file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
