// Package cmd implements the ean-watch service commands.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ean-watch",
	Short: "Monitor barcodes against the EAN-Search product database",
	Long: "An API-first service that watches EAN/UPC barcodes in the EAN-Search " +
		"product database, snapshots the returned records on a schedule, scores " +
		"their data quality, and sends alerts when tracked fields change or " +
		"quality drops.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.AddCommand(versionCommand())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the assembled command tree, for doc generation.
func Root() *cobra.Command {
	return rootCmd
}
