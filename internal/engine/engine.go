package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	eansearch "github.com/eansearch/eansearch-go"
	"github.com/eansearch/eansearch-go/internal/metrics"
	"github.com/eansearch/eansearch-go/internal/notify"
	"github.com/eansearch/eansearch-go/internal/store"
	"github.com/eansearch/eansearch-go/pkg/gtin"
	score "github.com/eansearch/eansearch-go/pkg/scorer"
	domain "github.com/eansearch/eansearch-go/pkg/types"
)

const (
	defaultMaxCallsPerCycle = 500
	defaultDueAfter         = 6 * time.Hour
	defaultCreditFloor      = 100
	defaultAlertCooldown    = 24 * time.Hour
	defaultRetentionDays    = 180
)

// ProductClient is the slice of the EAN-Search client the engine depends on.
type ProductClient interface {
	GtinLookup(ctx context.Context, ean string, language int) (*eansearch.Product, error)
	CreditsRemaining() int64
}

// Engine orchestrates watch refresh, quality scoring, and alerting.
type Engine struct {
	store    store.Store
	client   ProductClient
	notifier notify.Notifier
	log      *slog.Logger
	limiter  *eansearch.RateLimiter

	weights          score.Weights
	maxCallsPerCycle int
	stagger          time.Duration
	dueAfter         time.Duration
	creditFloor      int64
	alertCooldown    time.Duration
	retentionDays    int
}

// NewEngine creates a new Engine with injected dependencies.
func NewEngine(
	s store.Store,
	c ProductClient,
	n notify.Notifier,
	opts ...EngineOption,
) *Engine {
	eng := &Engine{
		store:            s,
		client:           c,
		notifier:         n,
		log:              slog.Default(),
		weights:          score.DefaultWeights(),
		maxCallsPerCycle: defaultMaxCallsPerCycle,
		stagger:          2 * time.Second,
		dueAfter:         defaultDueAfter,
		creditFloor:      defaultCreditFloor,
		alertCooldown:    defaultAlertCooldown,
		retentionDays:    defaultRetentionDays,
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithStagger sets the delay between refreshing each watch.
func WithStagger(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.stagger = d
	}
}

// WithMaxCallsPerCycle sets the maximum API lookups per refresh cycle.
func WithMaxCallsPerCycle(n int) EngineOption {
	return func(e *Engine) {
		e.maxCallsPerCycle = n
	}
}

// WithRateLimiter attaches the limiter shared with the EAN-Search client so
// the engine can report daily API usage.
func WithRateLimiter(rl *eansearch.RateLimiter) EngineOption {
	return func(e *Engine) {
		e.limiter = rl
	}
}

// WithCreditFloor sets the balance below which a low_credits alert fires.
func WithCreditFloor(n int64) EngineOption {
	return func(e *Engine) {
		e.creditFloor = n
	}
}

// WithDueAfter sets how long after its last check a watch becomes due again.
func WithDueAfter(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.dueAfter = d
	}
}

// WithAlertCooldown sets the window during which a watch that already alerted
// will not alert again for the same kind.
func WithAlertCooldown(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.alertCooldown = d
	}
}

// WithWeights sets the quality scoring weights.
func WithWeights(w score.Weights) EngineOption {
	return func(e *Engine) {
		e.weights = w
	}
}

// WithRetentionDays sets the snapshot retention window used by RunPrune.
func WithRetentionDays(days int) EngineOption {
	return func(e *Engine) {
		e.retentionDays = days
	}
}

// RunRefresh executes one refresh cycle: every due watch is looked up,
// scored, diffed against its latest snapshot, and alerted on. Returns the
// number of watches refreshed.
func (eng *Engine) RunRefresh(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() {
		metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	}()

	cutoff := time.Now().Add(-eng.dueAfter)
	watches, err := eng.store.ListDueWatches(ctx, cutoff, eng.maxCallsPerCycle)
	if err != nil {
		return 0, fmt.Errorf("listing due watches: %w", err)
	}

	var refreshed int

	for i := range watches {
		if ctx.Err() != nil {
			return refreshed, ctx.Err()
		}

		w := &watches[i]
		eng.log.Info("refreshing watch", "barcode", w.Barcode, "id", w.ID)

		if err := eng.refreshWatch(ctx, w); err != nil {
			if errors.Is(err, eansearch.ErrDailyLimitReached) {
				metrics.APIDailyLimitHits.Inc()
				eng.log.Warn("daily API limit reached, stopping refresh",
					"barcode", w.Barcode,
					"refreshed", refreshed,
				)
				break
			}
			eng.log.Error("watch refresh failed", "barcode", w.Barcode, "error", err)
			metrics.RefreshErrorsTotal.Inc()
			continue
		}

		refreshed++

		// Stagger between watches to avoid API bursts.
		if i < len(watches)-1 && eng.stagger > 0 {
			select {
			case <-ctx.Done():
				return refreshed, ctx.Err()
			case <-time.After(eng.stagger):
			}
		}
	}

	eng.sampleCredits(ctx)

	// Always deliver alerts, even when the budget or daily limit was hit.
	if err := ProcessAlerts(ctx, eng.store, eng.notifier); err != nil {
		eng.log.Error("alert processing failed", "error", err)
	}

	return refreshed, nil
}

// RunPrune deletes snapshots past the retention window, keeping at least the
// latest snapshot per watch. Returns the number of rows deleted.
func (eng *Engine) RunPrune(ctx context.Context) (int, error) {
	deleted, err := eng.store.PruneSnapshots(ctx, eng.retentionDays)
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}

	eng.log.Info("snapshot prune complete",
		"deleted", deleted,
		"retention_days", eng.retentionDays,
	)
	return deleted, nil
}

func (eng *Engine) refreshWatch(ctx context.Context, w *domain.Watch) error {
	product, err := eng.client.GtinLookup(ctx, w.Barcode, w.Language)
	switch {
	case errors.Is(err, eansearch.ErrProductNotFound):
		// A miss is still an observation: the empty record scores low, and
		// a previously known name surfaces as a change.
		product = &eansearch.Product{EAN: w.Barcode}
	case err != nil:
		return fmt.Errorf("looking up %s: %w", w.Barcode, err)
	}

	metrics.APICallsTotal.Inc()

	breakdown := score.Score(score.ProductData{
		Name:           product.Name,
		CategoryID:     product.CategoryID,
		CategoryName:   product.CategoryName,
		IssuingCountry: product.IssuingCountry,
		ChecksumValid:  gtin.Valid(w.Barcode),
	}, eng.weights)

	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		return fmt.Errorf("marshaling quality breakdown: %w", err)
	}

	snap := &domain.Snapshot{
		WatchID:          w.ID,
		Barcode:          w.Barcode,
		Name:             product.Name,
		CategoryID:       product.CategoryID,
		CategoryName:     product.CategoryName,
		IssuingCountry:   product.IssuingCountry,
		Quality:          breakdown.Total,
		QualityBreakdown: breakdownJSON,
	}

	prev, err := eng.store.GetLatestSnapshot(ctx, w.ID)
	if err != nil {
		return fmt.Errorf("loading latest snapshot: %w", err)
	}

	snap.ChangedFields = snap.DiffFrom(prev)

	if err := eng.store.InsertSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}

	if err := eng.store.UpdateWatchLastChecked(ctx, w.ID, time.Now()); err != nil {
		return fmt.Errorf("updating last checked: %w", err)
	}

	metrics.RefreshWatchesTotal.Inc()
	metrics.QualityDistribution.Observe(float64(breakdown.Total))
	for _, f := range snap.ChangedFields {
		metrics.ChangesDetectedTotal.WithLabelValues(string(f)).Inc()
	}

	eng.evaluateAlert(ctx, w, snap, prev)

	return nil
}

func (eng *Engine) evaluateAlert(
	ctx context.Context,
	w *domain.Watch,
	snap *domain.Snapshot,
	prev *domain.Snapshot,
) {
	msg := changeMessage(w, snap, prev)
	if msg == "" {
		return
	}

	recent, err := eng.store.HasRecentAlert(ctx, w.ID, domain.AlertChange, eng.alertCooldown)
	if err != nil {
		eng.log.Error("checking alert cooldown failed", "watch", w.ID, "error", err)
		return
	}
	if recent {
		return
	}

	alert := &domain.Alert{
		WatchID:    w.ID,
		SnapshotID: snap.ID,
		Kind:       domain.AlertChange,
		Message:    msg,
	}
	if err := eng.store.CreateAlert(ctx, alert); err != nil {
		eng.log.Error("creating alert failed", "watch", w.ID, "error", err)
	}
}

// changeMessage describes what a refresh observed that is worth alerting on.
// An empty string means nothing alertable happened.
func changeMessage(w *domain.Watch, snap, prev *domain.Snapshot) string {
	var parts []string

	var tracked []string
	for _, f := range snap.ChangedFields {
		if w.Tracks(f) {
			tracked = append(tracked, string(f))
		}
	}
	if len(tracked) > 0 {
		parts = append(parts, "changed: "+strings.Join(tracked, ", "))
	}

	// Alert once when quality crosses below the threshold, not on every
	// cycle it stays there.
	if w.QualityThreshold > 0 && snap.Quality < w.QualityThreshold &&
		(prev == nil || prev.Quality >= w.QualityThreshold) {
		parts = append(parts, fmt.Sprintf(
			"quality %d below threshold %d", snap.Quality, w.QualityThreshold,
		))
	}

	return strings.Join(parts, "; ")
}

// sampleCredits records the daily API usage and credit balance observed
// during this cycle and raises a low_credits alert when the balance sinks
// below the configured floor.
func (eng *Engine) sampleCredits(ctx context.Context) {
	if eng.limiter != nil {
		metrics.APIDailyUsage.Set(float64(eng.limiter.DailyCount()))
	}

	credits := eng.client.CreditsRemaining()
	if credits == eansearch.CreditsUnknown {
		return
	}

	metrics.CreditsRemaining.Set(float64(credits))

	if err := eng.store.InsertCreditSample(ctx, credits); err != nil {
		eng.log.Error("recording credit sample failed", "error", err)
	}

	if credits >= eng.creditFloor {
		return
	}

	recent, err := eng.store.HasRecentAlert(ctx, "", domain.AlertLowCredits, eng.alertCooldown)
	if err != nil {
		eng.log.Error("checking credit alert cooldown failed", "error", err)
		return
	}
	if recent {
		return
	}

	alert := &domain.Alert{
		Kind: domain.AlertLowCredits,
		Message: fmt.Sprintf(
			"API credits low: %d remaining (floor %d)", credits, eng.creditFloor,
		),
	}
	if err := eng.store.CreateAlert(ctx, alert); err != nil {
		eng.log.Error("creating low-credit alert failed", "error", err)
	}
}
