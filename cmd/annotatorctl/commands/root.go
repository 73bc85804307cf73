// Package commands implements annotatorctl's cobra command tree.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

// RootCmd is the base annotatorctl command.
var RootCmd = &cobra.Command{
	Use:   "annotatorctl",
	Short: "Headless tools for the annotation engine's file formats",
	Long: `annotatorctl converts and inspects the annotation engine's on-disk
formats (GeoJSON, PNG label masks, SAM .npy embeddings) without a Viewer.

Use 'annotatorctl [command] --help' for more information about a command.`,
}

// Execute runs the root command, exiting the process with status 1 on error.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	RootCmd.AddCommand(exportCmd)
	RootCmd.AddCommand(validateEmbeddingCmd)
	RootCmd.AddCommand(statsCmd)
}
