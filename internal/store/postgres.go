package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/eansearch/eansearch-go/pkg/types"
)

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
// Pool sizing comes from the connection string (pool_max_conns).
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// exec runs a statement that needs no result rows, wrapping any error with a
// short action phrase.
func (s *PostgresStore) exec(ctx context.Context, action, query string, args ...any) error {
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	return nil
}

// CreateWatch inserts a new watch.
func (s *PostgresStore) CreateWatch(ctx context.Context, w *domain.Watch) error {
	fieldsJSON, err := json.Marshal(changeFields(w))
	if err != nil {
		return fmt.Errorf("marshaling change fields: %w", err)
	}

	args := pgx.NamedArgs{
		"barcode":           w.Barcode,
		"label":             w.Label,
		"language":          w.Language,
		"change_fields":     fieldsJSON,
		"quality_threshold": w.QualityThreshold,
		"enabled":           w.Enabled,
	}

	return s.pool.QueryRow(ctx, queryCreateWatch, args).Scan(
		&w.ID, &w.CreatedAt, &w.UpdatedAt,
	)
}

// GetWatch retrieves a watch by its ID.
func (s *PostgresStore) GetWatch(ctx context.Context, id string) (*domain.Watch, error) {
	return s.scanOneWatch(s.pool.QueryRow(ctx, queryGetWatch, id))
}

// GetWatchByBarcode retrieves a watch by its barcode.
func (s *PostgresStore) GetWatchByBarcode(
	ctx context.Context,
	barcode string,
) (*domain.Watch, error) {
	return s.scanOneWatch(s.pool.QueryRow(ctx, queryGetWatchByBarcode, barcode))
}

// ListWatches returns all watches, optionally filtered to enabled only.
func (s *PostgresStore) ListWatches(
	ctx context.Context,
	enabledOnly bool,
) ([]domain.Watch, error) {
	query := queryListWatchesAll
	if enabledOnly {
		query = queryListWatchesEnabled
	}
	return s.queryWatches(ctx, query)
}

// ListDueWatches returns enabled watches not checked since checkedBefore,
// oldest first. Watches never checked sort first.
func (s *PostgresStore) ListDueWatches(
	ctx context.Context,
	checkedBefore time.Time,
	limit int,
) ([]domain.Watch, error) {
	return s.queryWatches(ctx, queryListDueWatches, checkedBefore, limit)
}

// UpdateWatch updates an existing watch.
func (s *PostgresStore) UpdateWatch(ctx context.Context, w *domain.Watch) error {
	fieldsJSON, err := json.Marshal(changeFields(w))
	if err != nil {
		return fmt.Errorf("marshaling change fields: %w", err)
	}

	args := pgx.NamedArgs{
		"id":                w.ID,
		"barcode":           w.Barcode,
		"label":             w.Label,
		"language":          w.Language,
		"change_fields":     fieldsJSON,
		"quality_threshold": w.QualityThreshold,
		"enabled":           w.Enabled,
	}

	return s.exec(ctx, "updating watch", queryUpdateWatch, args)
}

// DeleteWatch removes a watch by its ID. Snapshots and alerts cascade.
func (s *PostgresStore) DeleteWatch(ctx context.Context, id string) error {
	return s.exec(ctx, "deleting watch", queryDeleteWatch, id)
}

// SetWatchEnabled enables or disables a watch.
func (s *PostgresStore) SetWatchEnabled(ctx context.Context, id string, enabled bool) error {
	return s.exec(ctx, "setting watch enabled", querySetWatchEnabled, id, enabled)
}

// UpdateWatchLastChecked sets the last_checked_at timestamp for a watch.
func (s *PostgresStore) UpdateWatchLastChecked(
	ctx context.Context,
	watchID string,
	t time.Time,
) error {
	return s.exec(ctx, "updating watch last_checked_at", queryUpdateWatchLastChecked, watchID, t)
}

// InsertSnapshot appends a new snapshot for a watch.
func (s *PostgresStore) InsertSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	changedJSON, err := json.Marshal(changedFields(snap))
	if err != nil {
		return fmt.Errorf("marshaling changed fields: %w", err)
	}

	breakdown := snap.QualityBreakdown
	if len(breakdown) == 0 {
		breakdown = json.RawMessage(`{}`)
	}

	args := pgx.NamedArgs{
		"watch_id":          snap.WatchID,
		"barcode":           snap.Barcode,
		"name":              snap.Name,
		"category_id":       snap.CategoryID,
		"category_name":     snap.CategoryName,
		"issuing_country":   snap.IssuingCountry,
		"quality":           snap.Quality,
		"quality_breakdown": breakdown,
		"changed_fields":    changedJSON,
	}

	return s.pool.QueryRow(ctx, queryInsertSnapshot, args).Scan(
		&snap.ID, &snap.FetchedAt,
	)
}

// GetSnapshot retrieves a snapshot by its ID.
func (s *PostgresStore) GetSnapshot(ctx context.Context, id string) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{}
	if err := scanSnapshot(s.pool.QueryRow(ctx, queryGetSnapshot, id), snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// GetLatestSnapshot returns the most recent snapshot for a watch, or nil if
// the watch has never been snapshotted.
func (s *PostgresStore) GetLatestSnapshot(
	ctx context.Context,
	watchID string,
) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{}
	err := scanSnapshot(s.pool.QueryRow(ctx, queryGetLatestSnapshot, watchID), snap)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ListSnapshots queries snapshots with optional filters, returning results
// and total count.
func (s *PostgresStore) ListSnapshots(
	ctx context.Context,
	opts *SnapshotQuery,
) ([]domain.Snapshot, int, error) {
	dataSQL, countSQL, args := opts.ToSQL()

	// The count uses the same filters so the total stays consistent with
	// the page being returned.
	var total int
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting snapshots: %w", err)
	}

	rows, err := s.pool.Query(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.Snapshot
	for rows.Next() {
		var snap domain.Snapshot
		if err := scanSnapshot(rows, &snap); err != nil {
			return nil, 0, fmt.Errorf("scanning snapshot: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating snapshots: %w", err)
	}

	return snapshots, total, nil
}

// PruneSnapshots deletes snapshots older than the retention window, always
// keeping the newest snapshot per watch. Returns the number of rows deleted.
func (s *PostgresStore) PruneSnapshots(ctx context.Context, retentionDays int) (int, error) {
	tag, err := s.pool.Exec(ctx, queryPruneSnapshots, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// CreateAlert inserts a new alert, silently ignoring duplicates (one pending
// alert per watch and kind).
func (s *PostgresStore) CreateAlert(ctx context.Context, a *domain.Alert) error {
	err := s.pool.QueryRow(ctx, queryCreateAlert,
		nullableID(a.WatchID), nullableID(a.SnapshotID), string(a.Kind), a.Message,
	).Scan(&a.ID, &a.CreatedAt)

	// ON CONFLICT DO NOTHING returns no rows; treat as success.
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}

// ListPendingAlerts returns all un-notified alerts.
func (s *PostgresStore) ListPendingAlerts(ctx context.Context) ([]domain.Alert, error) {
	return s.queryAlerts(ctx, queryListPendingAlerts)
}

// ListAlertsByWatch returns alerts for a specific watch.
func (s *PostgresStore) ListAlertsByWatch(
	ctx context.Context,
	watchID string,
	limit int,
) ([]domain.Alert, error) {
	return s.queryAlerts(ctx, queryListAlertsByWatch, watchID, limit)
}

// MarkAlertNotified marks a single alert as notified.
func (s *PostgresStore) MarkAlertNotified(ctx context.Context, id string) error {
	return s.exec(ctx, "marking alert notified", queryMarkAlertNotified, id)
}

// MarkAlertsNotified marks multiple alerts as notified.
func (s *PostgresStore) MarkAlertsNotified(ctx context.Context, ids []string) error {
	return s.exec(ctx, "marking alerts notified", queryMarkAlertsNotified, ids)
}

// HasRecentAlert returns true if a notified alert of the same kind for the
// same watch exists within the given cooldown window.
func (s *PostgresStore) HasRecentAlert(
	ctx context.Context,
	watchID string,
	kind domain.AlertKind,
	cooldown time.Duration,
) (bool, error) {
	cutoff := time.Now().Add(-cooldown)
	var exists bool
	if err := s.pool.QueryRow(ctx, queryHasRecentAlert, watchID, string(kind), cutoff).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking recent alert: %w", err)
	}
	return exists, nil
}

// InsertNotificationAttempt records the outcome of a notification send attempt.
func (s *PostgresStore) InsertNotificationAttempt(
	ctx context.Context,
	alertID string,
	succeeded bool,
	httpStatus int,
	errText string,
) error {
	return s.exec(ctx, "inserting notification attempt",
		queryInsertNotificationAttempt, alertID, succeeded, httpStatus, errText)
}

// HasSuccessfulNotification returns true if at least one successful notification
// attempt exists for the given alert.
func (s *PostgresStore) HasSuccessfulNotification(ctx context.Context, alertID string) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, queryHasSuccessfulNotification, alertID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking successful notification: %w", err)
	}
	return exists, nil
}

// InsertCreditSample records the credit balance observed after an API call.
func (s *PostgresStore) InsertCreditSample(ctx context.Context, credits int64) error {
	return s.exec(ctx, "inserting credit sample", queryInsertCreditSample, credits)
}

// LatestCreditSample returns the most recent credit sample, or nil if none
// has been recorded yet.
func (s *PostgresStore) LatestCreditSample(ctx context.Context) (*domain.CreditSample, error) {
	cs := &domain.CreditSample{}
	err := s.pool.QueryRow(ctx, queryLatestCreditSample).Scan(
		&cs.ID, &cs.Credits, &cs.SampledAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest credit sample: %w", err)
	}
	return cs, nil
}

// GetSystemState computes aggregate system metrics in a single round trip.
func (s *PostgresStore) GetSystemState(
	ctx context.Context,
	staleAfter time.Duration,
) (*domain.SystemState, error) {
	cutoff := time.Now().Add(-staleAfter)

	state := &domain.SystemState{}
	err := s.pool.QueryRow(ctx, queryGetSystemState, cutoff).Scan(
		&state.WatchesTotal, &state.WatchesEnabled, &state.WatchesStale,
		&state.SnapshotsTotal, &state.Snapshots24h, &state.AlertsPending,
		&state.CreditsRemaining, &state.LastRefreshAt,
	)
	if err != nil {
		return nil, fmt.Errorf("querying system state: %w", err)
	}
	return state, nil
}

// InsertJobRun records the start of a scheduled job and returns its UUID.
func (s *PostgresStore) InsertJobRun(ctx context.Context, jobName string) (string, error) {
	var id string
	if err := s.pool.QueryRow(ctx, queryInsertJobRun, jobName).Scan(&id); err != nil {
		return "", fmt.Errorf("inserting job run: %w", err)
	}
	return id, nil
}

// CompleteJobRun marks a job run as finished with the given status and metadata.
func (s *PostgresStore) CompleteJobRun(
	ctx context.Context,
	id string,
	status string,
	errText string,
	rowsAffected int,
) error {
	return s.exec(ctx, "completing job run", queryCompleteJobRun, id, status, errText, rowsAffected)
}

// ListJobRuns returns the most recent runs for a specific job, newest first.
func (s *PostgresStore) ListJobRuns(
	ctx context.Context,
	jobName string,
	limit int,
) ([]domain.JobRun, error) {
	return s.queryJobRuns(ctx, queryListJobRuns, jobName, limit)
}

// ListLatestJobRuns returns the single most recent run for each distinct job name.
func (s *PostgresStore) ListLatestJobRuns(ctx context.Context) ([]domain.JobRun, error) {
	return s.queryJobRuns(ctx, queryListLatestJobRuns)
}

// RecoverStaleJobRuns flips 'running' rows older than olderThan to 'crashed'
// and drops run history past its retention window. Returns how many rows were
// marked crashed.
func (s *PostgresStore) RecoverStaleJobRuns(
	ctx context.Context,
	olderThan time.Duration,
) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	tag, err := s.pool.Exec(ctx, queryMarkStaleJobRunsCrashed, cutoff)
	if err != nil {
		return 0, fmt.Errorf("marking stale job runs crashed: %w", err)
	}
	crashed := int(tag.RowsAffected())

	if _, err := s.pool.Exec(ctx, queryDeleteOldJobRuns); err != nil {
		return crashed, fmt.Errorf("deleting old job runs: %w", err)
	}

	return crashed, nil
}

// AcquireSchedulerLock attempts to acquire a distributed lock for the given job.
// Returns true if the lock was acquired, false if another holder already owns it.
func (s *PostgresStore) AcquireSchedulerLock(
	ctx context.Context,
	jobName string,
	holder string,
	ttl time.Duration,
) (bool, error) {
	expiresAt := time.Now().Add(ttl)

	var gotName string
	err := s.pool.QueryRow(ctx, queryAcquireSchedulerLock, jobName, holder, expiresAt).Scan(&gotName)
	if errors.Is(err, pgx.ErrNoRows) {
		// The upsert returned nothing: a live lock row for another holder won.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("acquiring scheduler lock: %w", err)
	}

	return true, nil
}

// ReleaseSchedulerLock deletes the lock row for the given job and holder.
func (s *PostgresStore) ReleaseSchedulerLock(
	ctx context.Context,
	jobName string,
	holder string,
) error {
	return s.exec(ctx, "releasing scheduler lock", queryReleaseSchedulerLock, jobName, holder)
}

// queryWatches is a helper for watch list queries.
func (s *PostgresStore) queryWatches(
	ctx context.Context,
	query string,
	args ...any,
) ([]domain.Watch, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying watches: %w", err)
	}
	defer rows.Close()

	var watches []domain.Watch
	for rows.Next() {
		var w domain.Watch
		if err := scanWatch(rows, &w); err != nil {
			return nil, fmt.Errorf("scanning watch: %w", err)
		}
		watches = append(watches, w)
	}

	return watches, rows.Err()
}

// queryAlerts is a helper for alert queries.
func (s *PostgresStore) queryAlerts(
	ctx context.Context,
	query string,
	args ...any,
) ([]domain.Alert, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var a domain.Alert
		if err := rows.Scan(
			&a.ID, &a.WatchID, &a.SnapshotID, &a.Kind, &a.Message,
			&a.Notified, &a.NotifiedAt, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

// queryJobRuns is a helper for job run list queries.
func (s *PostgresStore) queryJobRuns(
	ctx context.Context,
	query string,
	args ...any,
) ([]domain.JobRun, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying job runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.JobRun
	for rows.Next() {
		var r domain.JobRun
		if err := rows.Scan(
			&r.ID, &r.JobName, &r.StartedAt, &r.CompletedAt,
			&r.Status, &r.ErrorText, &r.RowsAffected,
		); err != nil {
			return nil, fmt.Errorf("scanning job run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *PostgresStore) scanOneWatch(row scannable) (*domain.Watch, error) {
	w := &domain.Watch{}
	if err := scanWatch(row, w); err != nil {
		return nil, err
	}
	return w, nil
}

// scannable abstracts pgx.Row and pgx.Rows for reuse.
type scannable interface {
	Scan(dest ...any) error
}

// scanWatch scans a full watch row, decoding the change_fields JSON column.
func scanWatch(row scannable, w *domain.Watch) error {
	var fieldsJSON []byte
	if err := row.Scan(
		&w.ID, &w.Barcode, &w.Label, &w.Language, &fieldsJSON,
		&w.QualityThreshold, &w.Enabled, &w.LastCheckedAt, &w.CreatedAt, &w.UpdatedAt,
	); err != nil {
		return err
	}

	if err := json.Unmarshal(fieldsJSON, &w.ChangeFields); err != nil {
		return fmt.Errorf("unmarshaling change fields: %w", err)
	}
	if len(w.ChangeFields) == 0 {
		w.ChangeFields = nil
	}
	return nil
}

// scanSnapshot scans a full snapshot row, decoding the changed_fields JSON column.
func scanSnapshot(row scannable, snap *domain.Snapshot) error {
	var changedJSON []byte
	if err := row.Scan(
		&snap.ID, &snap.WatchID, &snap.Barcode, &snap.Name, &snap.CategoryID,
		&snap.CategoryName, &snap.IssuingCountry, &snap.Quality,
		&snap.QualityBreakdown, &changedJSON, &snap.FetchedAt,
	); err != nil {
		return err
	}

	if err := json.Unmarshal(changedJSON, &snap.ChangedFields); err != nil {
		return fmt.Errorf("unmarshaling changed fields: %w", err)
	}
	if len(snap.ChangedFields) == 0 {
		snap.ChangedFields = nil
	}
	return nil
}

// changeFields normalizes a watch's tracked fields for storage; nil becomes
// an empty JSON array rather than SQL NULL.
func changeFields(w *domain.Watch) []domain.TrackedField {
	if w.ChangeFields == nil {
		return []domain.TrackedField{}
	}
	return w.ChangeFields
}

// changedFields normalizes a snapshot's changed fields for storage.
func changedFields(s *domain.Snapshot) []domain.TrackedField {
	if s.ChangedFields == nil {
		return []domain.TrackedField{}
	}
	return s.ChangedFields
}

// nullableID converts an empty string to nil so uuid columns store NULL.
func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}
