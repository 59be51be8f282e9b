package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func creditsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "credits",
		Short: "Show remaining API credits",
		Long: "Shows the API credit balance as seen by the ean-watch server: the\n" +
			"live value from the last upstream response plus the most recent\n" +
			"sample persisted after a refresh cycle.",
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newServiceClient()
			status, err := c.GetCredits(context.Background())
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(status)
			}

			if status.Remaining < 0 {
				fmt.Println("Credits remaining: unknown (no API call made yet)")
			} else {
				fmt.Printf("Credits remaining: %d\n", status.Remaining)
			}
			if status.LastSample != nil {
				fmt.Printf("Last sampled: %d at %s\n",
					status.LastSample.Credits,
					status.LastSample.SampledAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Trigger a refresh cycle",
		Long:  "Asks the ean-watch server to refresh every watch that is due now.",
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newServiceClient()
			refreshed, err := c.TriggerRefresh(context.Background())
			if err != nil {
				return err
			}

			fmt.Printf("Refreshed %d watches.\n", refreshed)
			return nil
		},
	}
}

func pruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Trigger snapshot retention pruning",
		Long:  "Asks the ean-watch server to delete snapshots past the retention window.",
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newServiceClient()
			pruned, err := c.TriggerPrune(context.Background())
			if err != nil {
				return err
			}

			fmt.Printf("Pruned %d snapshots.\n", pruned)
			return nil
		},
	}
}
