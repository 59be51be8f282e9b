// Package cmd implements the eansearch CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	eansearch "github.com/eansearch/eansearch-go"
	apiclient "github.com/eansearch/eansearch-go/internal/api/client"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "eansearch",
		Short: "CLI client for the EAN-Search barcode database",
		Long: "eansearch is a command-line client for the EAN-Search API and the\n" +
			"ean-watch service. Direct commands (lookup, search, verify, ...) talk\n" +
			"to the EAN-Search API and need a token; watch commands (watches,\n" +
			"snapshots, jobs, ...) talk to a running ean-watch server.",
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (default $HOME/.eansearch.yaml)")
	rootCmd.PersistentFlags().
		String("token", "", "EAN-Search API token")
	rootCmd.PersistentFlags().
		String("server", "http://localhost:8080", "ean-watch server URL")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")

	cobra.CheckErr(viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token")))
	cobra.CheckErr(viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server")))
	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))

	rootCmd.AddCommand(lookupCmd())
	rootCmd.AddCommand(isbnCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(prefixCmd())
	rootCmd.AddCommand(categoryCmd())
	rootCmd.AddCommand(imageCmd())
	rootCmd.AddCommand(verifyCmd())
	rootCmd.AddCommand(countryCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(snapshotsCmd())
	rootCmd.AddCommand(creditsCmd())
	rootCmd.AddCommand(jobsCmd())
	rootCmd.AddCommand(refreshCmd())
	rootCmd.AddCommand(pruneCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".eansearch")
	}

	viper.SetEnvPrefix("EANSEARCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newSDKClient builds an EAN-Search API client from the configured token.
func newSDKClient() (*eansearch.Client, error) {
	token := viper.GetString("token")
	if token == "" {
		return nil, fmt.Errorf("no API token set (use --token or EANSEARCH_TOKEN)")
	}
	return eansearch.New(token)
}

func newServiceClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"))
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
