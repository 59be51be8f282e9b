package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/eansearch/eansearch-go/internal/config"
	"github.com/eansearch/eansearch-go/internal/store"
	"github.com/eansearch/eansearch-go/pkg/logger"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Run a single refresh cycle and exit",
	Long: `Refresh fetches current product data for every watch that is due,
stores a snapshot for each, and sends any resulting alerts. It is the
same cycle the scheduler runs inside serve, exposed for cron or
systemd timer setups that prefer one-shot execution.`,
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logg := log.NewWithOptions(os.Stderr, log.Options{
		Level: parseLogLevel(cfg.Logging.Level),
	})
	slogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()

	st, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to store: %w", err)
	}
	defer st.Close()

	esClient, limiter, err := newEANSearchClient(cfg)
	if err != nil {
		return fmt.Errorf("creating EAN-Search client: %w", err)
	}

	eng := buildEngine(cfg, st, esClient, limiter, slogger)

	logg.Info("starting refresh cycle")

	refreshed, err := eng.RunRefresh(ctx)
	if err != nil {
		return fmt.Errorf("running refresh: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "refreshed %d watches\n", refreshed)
	return nil
}
