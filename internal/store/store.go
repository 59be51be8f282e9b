// Package store defines the datastore abstraction for ean-watch.
// All business logic depends on the Store interface, never on concrete
// implementations. This enables fake-based testing without a running database.
package store

import (
	"context"
	"time"

	domain "github.com/eansearch/eansearch-go/pkg/types"
)

// SnapshotQuery defines optional filters for snapshot queries.
type SnapshotQuery struct {
	WatchID     *string
	Barcode     *string
	MinQuality  *int
	MaxQuality  *int
	ChangedOnly bool
	Since       *time.Time
	Limit       int // default 50
	Offset      int
	OrderBy     string // "fetched_at", "quality"
}

// Store defines all data access operations for ean-watch.
type Store interface {
	// Watches
	CreateWatch(ctx context.Context, w *domain.Watch) error
	GetWatch(ctx context.Context, id string) (*domain.Watch, error)
	GetWatchByBarcode(ctx context.Context, barcode string) (*domain.Watch, error)
	ListWatches(ctx context.Context, enabledOnly bool) ([]domain.Watch, error)
	ListDueWatches(ctx context.Context, checkedBefore time.Time, limit int) ([]domain.Watch, error)
	UpdateWatch(ctx context.Context, w *domain.Watch) error
	DeleteWatch(ctx context.Context, id string) error
	SetWatchEnabled(ctx context.Context, id string, enabled bool) error
	UpdateWatchLastChecked(ctx context.Context, watchID string, t time.Time) error

	// Snapshots
	InsertSnapshot(ctx context.Context, s *domain.Snapshot) error
	GetSnapshot(ctx context.Context, id string) (*domain.Snapshot, error)
	GetLatestSnapshot(ctx context.Context, watchID string) (*domain.Snapshot, error)
	ListSnapshots(ctx context.Context, opts *SnapshotQuery) ([]domain.Snapshot, int, error)
	PruneSnapshots(ctx context.Context, retentionDays int) (int, error)

	// Alerts
	CreateAlert(ctx context.Context, a *domain.Alert) error
	ListPendingAlerts(ctx context.Context) ([]domain.Alert, error)
	ListAlertsByWatch(ctx context.Context, watchID string, limit int) ([]domain.Alert, error)
	MarkAlertNotified(ctx context.Context, id string) error
	MarkAlertsNotified(ctx context.Context, ids []string) error
	HasRecentAlert(ctx context.Context, watchID string, kind domain.AlertKind, cooldown time.Duration) (bool, error)
	InsertNotificationAttempt(ctx context.Context, alertID string, succeeded bool, httpStatus int, errText string) error
	HasSuccessfulNotification(ctx context.Context, alertID string) (bool, error)

	// Credits
	InsertCreditSample(ctx context.Context, credits int64) error
	LatestCreditSample(ctx context.Context) (*domain.CreditSample, error)

	// System
	GetSystemState(ctx context.Context, staleAfter time.Duration) (*domain.SystemState, error)

	// Scheduler
	InsertJobRun(ctx context.Context, jobName string) (id string, err error)
	CompleteJobRun(ctx context.Context, id string, status string, errText string, rowsAffected int) error
	ListJobRuns(ctx context.Context, jobName string, limit int) ([]domain.JobRun, error)
	ListLatestJobRuns(ctx context.Context) ([]domain.JobRun, error)
	RecoverStaleJobRuns(ctx context.Context, olderThan time.Duration) (int, error)
	AcquireSchedulerLock(ctx context.Context, jobName string, holder string, ttl time.Duration) (bool, error)
	ReleaseSchedulerLock(ctx context.Context, jobName string, holder string) error

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
}
