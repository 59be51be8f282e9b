package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	domain "github.com/eansearch/eansearch-go/pkg/types"
)

func watchCmd() *cobra.Command {
	watchRoot := &cobra.Command{
		Use:   "watches",
		Short: "Manage watched barcodes",
		Long: "Manage the barcodes the ean-watch server keeps under observation.\n" +
			"Each watch names a barcode, which product fields to track for\n" +
			"changes, and a quality threshold for alerts.",
	}

	watchRoot.AddCommand(
		watchListCmd(),
		watchGetCmd(),
		watchAddCmd(),
		watchEnableCmd(),
		watchDisableCmd(),
		watchRemoveCmd(),
	)

	return watchRoot
}

func watchListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all watches",
		Example: `  eansearch watches list
  eansearch watches list --output json`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newServiceClient()
			watches, err := c.ListWatches(context.Background())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(watches)
			}
			if len(watches) == 0 {
				fmt.Println("No watches found.")
				return nil
			}
			return printWatchTable(watches)
		},
	}
}

func watchGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Short:   "Show watch details",
		Example: `  eansearch watches get abc123`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newServiceClient()
			w, err := c.GetWatch(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(w)
			}
			return printWatchDetail(w)
		},
	}
}

func watchAddCmd() *cobra.Command {
	var (
		watchLabel     string
		watchLang      int
		watchThreshold int
		watchTracks    []string
	)

	cmd := &cobra.Command{
		Use:   "add <barcode>",
		Short: "Add a new watch",
		Long: "Adds a barcode to the watch list. The watch is enabled immediately\n" +
			"and picked up on the next refresh cycle. Without --track the watch\n" +
			"monitors every tracked field.",
		Example: `  # Watch an album barcode for any change
  eansearch watches add 5099902895529 --label "Thriller CD"

  # Only care about name changes, alert below quality 60
  eansearch watches add 4006381333931 --track name --threshold 60`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			fields := make([]domain.TrackedField, len(watchTracks))
			for i, f := range watchTracks {
				fields[i] = domain.TrackedField(f)
			}

			w := &domain.Watch{
				Barcode:          args[0],
				Label:            watchLabel,
				Language:         watchLang,
				ChangeFields:     fields,
				QualityThreshold: watchThreshold,
				Enabled:          true,
			}
			c := newServiceClient()
			created, err := c.CreateWatch(context.Background(), w)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(created)
			}
			fmt.Printf("Watch created: %s (%s)\n", created.Barcode, created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&watchLabel, "label", "", "human-readable label")
	cmd.Flags().IntVar(&watchLang, "lang", 0, "preferred product name language")
	cmd.Flags().IntVar(&watchThreshold, "threshold", 0, "alert when quality drops below this (0 = off)")
	cmd.Flags().
		StringArrayVar(&watchTracks, "track", nil, "field to track (name, category, issuing_country); repeatable")

	return cmd
}

func watchEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "enable <id>",
		Short:   "Enable a watch",
		Example: `  eansearch watches enable abc123`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runWatchSetEnabled(args[0], true)
		},
	}
}

func watchDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "disable <id>",
		Short:   "Disable a watch",
		Example: `  eansearch watches disable abc123`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runWatchSetEnabled(args[0], false)
		},
	}
}

func watchRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Short:   "Remove a watch",
		Example: `  eansearch watches rm abc123`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newServiceClient()
			if err := c.DeleteWatch(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Watch %s removed.\n", args[0])
			return nil
		},
	}
}

func runWatchSetEnabled(id string, enabled bool) error {
	c := newServiceClient()
	if err := c.SetWatchEnabled(context.Background(), id, enabled); err != nil {
		return err
	}

	action := "enabled"
	if !enabled {
		action = "disabled"
	}
	fmt.Printf("Watch %s %s.\n", id, action)
	return nil
}
