package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	eansearch "github.com/eansearch/eansearch-go"
	"github.com/eansearch/eansearch-go/api/openapi"
	"github.com/eansearch/eansearch-go/internal/api/handlers"
	"github.com/eansearch/eansearch-go/internal/api/middleware"
	"github.com/eansearch/eansearch-go/internal/config"
	"github.com/eansearch/eansearch-go/internal/engine"
	"github.com/eansearch/eansearch-go/internal/notify"
	"github.com/eansearch/eansearch-go/internal/store"
	"github.com/eansearch/eansearch-go/pkg/logger"
	score "github.com/eansearch/eansearch-go/pkg/scorer"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and scheduler",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
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

	sched, err := engine.NewScheduler(
		eng, st, cfg.Refresh.Interval, cfg.Refresh.PruneInterval, slogger,
	)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	// Runs left behind by a crashed instance would otherwise show as
	// running forever.
	sched.RecoverStaleJobRuns(ctx)
	sched.Start()

	e := buildServer(cfg, st, esClient, eng, slogger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logg.Info("starting server", "addr", addr)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error("server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
		logg.Warn("scheduler jobs still running at shutdown deadline")
	}

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	logg.Info("server stopped")
	return nil
}

// newEANSearchClient builds the SDK client and the rate limiter it shares
// with the engine.
func newEANSearchClient(cfg *config.Config) (*eansearch.Client, *eansearch.RateLimiter, error) {
	es := cfg.EANSearch
	rl := eansearch.NewRateLimiter(
		es.RateLimit.PerSecond,
		es.RateLimit.Burst,
		es.RateLimit.DailyLimit,
	)

	client, err := eansearch.New(es.Token,
		eansearch.WithBaseURL(es.BaseURL),
		eansearch.WithTimeout(es.Timeout),
		eansearch.WithMaxAttempts(es.MaxAttempts),
		eansearch.WithRetryWait(es.RetryWait),
		eansearch.WithRateLimiter(rl),
	)
	if err != nil {
		return nil, nil, err
	}
	return client, rl, nil
}

func buildEngine(
	cfg *config.Config,
	st store.Store,
	esClient *eansearch.Client,
	limiter *eansearch.RateLimiter,
	slogger *slog.Logger,
) *engine.Engine {
	w := cfg.Quality.Weights

	return engine.NewEngine(st, esClient, buildNotifier(cfg, slogger),
		engine.WithLogger(slogger),
		engine.WithWeights(score.Weights{
			Name:     w.Name,
			Category: w.Category,
			Country:  w.Country,
			Checksum: w.Checksum,
		}),
		engine.WithMaxCallsPerCycle(cfg.Refresh.CallBudget),
		engine.WithRateLimiter(limiter),
		engine.WithStagger(cfg.Refresh.Stagger),
		engine.WithDueAfter(cfg.Refresh.Interval),
		engine.WithCreditFloor(cfg.Alerts.CreditFloor),
		engine.WithAlertCooldown(cfg.Alerts.ReAlertsCooldown),
		engine.WithRetentionDays(cfg.Refresh.RetentionDays),
	)
}

func buildNotifier(cfg *config.Config, slogger *slog.Logger) notify.Notifier {
	var targets []notify.Notifier

	if cfg.Notifications.Discord.Enabled {
		targets = append(targets, notify.NewDiscordNotifier(cfg.Notifications.Discord.WebhookURL))
	}
	if cfg.Notifications.Webhook.Enabled {
		var opts []notify.WebhookOption
		if len(cfg.Notifications.Webhook.Headers) > 0 {
			opts = append(opts, notify.WithWebhookHeaders(cfg.Notifications.Webhook.Headers))
		}
		targets = append(targets, notify.NewWebhookNotifier(cfg.Notifications.Webhook.URL, opts...))
	}

	switch len(targets) {
	case 0:
		return notify.NewNoOpNotifier(slogger)
	case 1:
		return targets[0]
	default:
		return notify.NewMultiNotifier(targets...)
	}
}

func buildServer(
	cfg *config.Config,
	st store.Store,
	esClient *eansearch.Client,
	eng *engine.Engine,
	slogger *slog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(middleware.Recovery(slogger))
	e.Use(middleware.RequestLog(slogger))
	e.Use(middleware.Metrics())

	healthH := handlers.NewHealthHandler(st)
	e.GET("/healthz", healthH.Healthz)
	e.GET("/readyz", healthH.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	watchH := handlers.NewWatchHandler(st)
	e.GET("/api/v1/watches", watchH.List)
	e.POST("/api/v1/watches", watchH.Create)
	e.GET("/api/v1/watches/:id", watchH.Get)
	e.PUT("/api/v1/watches/:id", watchH.Update)
	e.PUT("/api/v1/watches/:id/enabled", watchH.SetEnabled)
	e.DELETE("/api/v1/watches/:id", watchH.Delete)

	humaCfg := huma.DefaultConfig("ean-watch API", Version)
	humaCfg.DocsPath = "" // Swagger UI is served at /swagger instead
	api := humaecho.New(e, humaCfg)

	handlers.RegisterSnapshotRoutes(api, handlers.NewSnapshotsHandler(st))
	handlers.RegisterLookupRoutes(api, handlers.NewLookupHandler(esClient))
	handlers.RegisterCreditRoutes(api, handlers.NewCreditsHandler(esClient, st))
	handlers.RegisterSystemStateRoutes(api, handlers.NewSystemStateHandler(st, cfg.Refresh.StaleAfter))
	handlers.RegisterJobRoutes(api, handlers.NewJobsHandler(st))
	handlers.RegisterTriggerRoutes(api, handlers.NewRefreshHandler(eng), handlers.NewPruneHandler(eng))

	openapi.RegisterRoutes(e)

	return e
}

func parseLogLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
