package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apiclient "github.com/eansearch/eansearch-go/internal/api/client"
)

func snapshotsCmd() *cobra.Command {
	snapshotsRoot := &cobra.Command{
		Use:   "snapshots",
		Short: "Query product snapshots",
		Long: "Query the product-record snapshots the ean-watch server has\n" +
			"collected. Each refresh cycle appends one snapshot per checked\n" +
			"watch; the newest snapshot is the current state.",
	}

	snapshotsRoot.AddCommand(
		snapshotsListCmd(),
		snapshotsGetCmd(),
	)

	return snapshotsRoot
}

func snapshotsListCmd() *cobra.Command {
	var (
		watchID     string
		barcode     string
		minQuality  int
		maxQuality  int
		changedOnly bool
		since       string
		limit       int
		offset      int
		orderBy     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots with optional filters",
		Example: `  # Everything, newest first
  eansearch snapshots list

  # Low-quality records only
  eansearch snapshots list --max-quality 50 --order-by quality

  # Changes for one barcode since a date
  eansearch snapshots list --barcode 5099902895529 --changed-only --since 2026-08-01`,
		RunE: func(_ *cobra.Command, _ []string) error {
			params := &apiclient.ListSnapshotsParams{
				WatchID:     watchID,
				Barcode:     barcode,
				MinQuality:  minQuality,
				MaxQuality:  maxQuality,
				ChangedOnly: changedOnly,
				Limit:       limit,
				Offset:      offset,
				OrderBy:     orderBy,
			}
			if since != "" {
				t, err := parseSince(since)
				if err != nil {
					return err
				}
				params.Since = t
			}

			c := newServiceClient()
			resp, err := c.ListSnapshots(context.Background(), params)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(resp)
			}

			if len(resp.Snapshots) == 0 {
				fmt.Println("No snapshots found.")
				return nil
			}

			fmt.Printf("Showing %d of %d snapshots\n\n", len(resp.Snapshots), resp.Total)
			return printSnapshotTable(resp.Snapshots)
		},
	}
	cmd.Flags().StringVar(&watchID, "watch", "", "watch ID filter")
	cmd.Flags().StringVar(&barcode, "barcode", "", "barcode filter")
	cmd.Flags().IntVar(&minQuality, "min-quality", 0, "minimum quality score")
	cmd.Flags().IntVar(&maxQuality, "max-quality", 0, "maximum quality score")
	cmd.Flags().BoolVar(&changedOnly, "changed-only", false, "only snapshots that recorded a change")
	cmd.Flags().StringVar(&since, "since", "", "only snapshots after this time (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 50, "number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "result offset")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "sort order (fetched_at, quality)")

	return cmd
}

func snapshotsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Short:   "Show snapshot details",
		Example: `  eansearch snapshots get abc123`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newServiceClient()
			s, err := c.GetSnapshot(context.Background(), args[0])
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(s)
			}

			return printSnapshotDetail(s)
		},
	}
}

func parseSince(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing --since %q: want RFC 3339 or YYYY-MM-DD", s)
	}
	return t, nil
}
