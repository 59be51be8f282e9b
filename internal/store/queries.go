package store

// SQL query constants organized by entity.
// All SQL lives here; PostgresStore methods reference these constants.

// Watch queries.
const (
	queryCreateWatch = `
		INSERT INTO watches (
			barcode, label, language, change_fields,
			quality_threshold, enabled, created_at, updated_at
		) VALUES (
			@barcode, @label, @language, @change_fields,
			@quality_threshold, @enabled, now(), now()
		)
		RETURNING id, created_at, updated_at`

	queryGetWatch = `
		SELECT id, barcode, label, language, change_fields,
			quality_threshold, enabled, last_checked_at, created_at, updated_at
		FROM watches
		WHERE id = $1`

	queryGetWatchByBarcode = `
		SELECT id, barcode, label, language, change_fields,
			quality_threshold, enabled, last_checked_at, created_at, updated_at
		FROM watches
		WHERE barcode = $1`

	queryListWatchesAll = `
		SELECT id, barcode, label, language, change_fields,
			quality_threshold, enabled, last_checked_at, created_at, updated_at
		FROM watches
		ORDER BY created_at DESC`

	queryListWatchesEnabled = `
		SELECT id, barcode, label, language, change_fields,
			quality_threshold, enabled, last_checked_at, created_at, updated_at
		FROM watches
		WHERE enabled = true
		ORDER BY created_at DESC`

	queryListDueWatches = `
		SELECT id, barcode, label, language, change_fields,
			quality_threshold, enabled, last_checked_at, created_at, updated_at
		FROM watches
		WHERE enabled = true
		  AND (last_checked_at IS NULL OR last_checked_at < $1)
		ORDER BY last_checked_at ASC NULLS FIRST
		LIMIT $2`

	queryUpdateWatch = `
		UPDATE watches SET
			barcode = @barcode,
			label = @label,
			language = @language,
			change_fields = @change_fields,
			quality_threshold = @quality_threshold,
			enabled = @enabled,
			updated_at = now()
		WHERE id = @id`

	queryDeleteWatch = `DELETE FROM watches WHERE id = $1`

	querySetWatchEnabled = `
		UPDATE watches SET
			enabled = $2,
			updated_at = now()
		WHERE id = $1`

	queryUpdateWatchLastChecked = `
		UPDATE watches SET last_checked_at = $2 WHERE id = $1`
)

// Snapshot queries.
const (
	queryInsertSnapshot = `
		INSERT INTO snapshots (
			watch_id, barcode, name, category_id, category_name,
			issuing_country, quality, quality_breakdown, changed_fields, fetched_at
		) VALUES (
			@watch_id, @barcode, @name, @category_id, @category_name,
			@issuing_country, @quality, @quality_breakdown, @changed_fields, now()
		)
		RETURNING id, fetched_at`

	queryGetSnapshot = `
		SELECT id, watch_id, barcode, name, category_id, category_name,
			issuing_country, quality, quality_breakdown, changed_fields, fetched_at
		FROM snapshots
		WHERE id = $1`

	queryGetLatestSnapshot = `
		SELECT id, watch_id, barcode, name, category_id, category_name,
			issuing_country, quality, quality_breakdown, changed_fields, fetched_at
		FROM snapshots
		WHERE watch_id = $1
		ORDER BY fetched_at DESC
		LIMIT 1`

	queryPruneSnapshots = `
		DELETE FROM snapshots
		WHERE fetched_at < now() - make_interval(days => $1)
		  AND id NOT IN (
			SELECT DISTINCT ON (watch_id) id
			FROM snapshots
			ORDER BY watch_id, fetched_at DESC
		  )`
)

// Scheduler queries.
const (
	queryInsertJobRun = `
		INSERT INTO job_runs (job_name)
		VALUES ($1)
		RETURNING id`

	queryCompleteJobRun = `
		UPDATE job_runs SET
			completed_at  = now(),
			status        = $2,
			error_text    = $3,
			rows_affected = $4
		WHERE id = $1`

	queryListJobRuns = `
		SELECT id, job_name, started_at, completed_at, status,
			COALESCE(error_text, ''), rows_affected
		FROM job_runs
		WHERE job_name = $1
		ORDER BY started_at DESC
		LIMIT $2`

	queryListLatestJobRuns = `
		SELECT DISTINCT ON (job_name)
			id, job_name, started_at, completed_at, status,
			COALESCE(error_text, ''), rows_affected
		FROM job_runs
		ORDER BY job_name, started_at DESC`

	queryMarkStaleJobRunsCrashed = `
		UPDATE job_runs SET
			status       = 'crashed',
			completed_at = now()
		WHERE status = 'running' AND started_at < $1`

	queryDeleteOldJobRuns = `
		DELETE FROM job_runs WHERE started_at < now() - interval '30 days'`

	queryAcquireSchedulerLock = `
		INSERT INTO scheduler_locks (job_name, lock_holder, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (job_name) DO UPDATE
			SET locked_at   = now(),
				lock_holder = EXCLUDED.lock_holder,
				expires_at  = EXCLUDED.expires_at
			WHERE scheduler_locks.expires_at < now()
		RETURNING job_name`

	queryReleaseSchedulerLock = `
		DELETE FROM scheduler_locks WHERE job_name = $1 AND lock_holder = $2`
)

// Alert queries.
const (
	queryCreateAlert = `
		INSERT INTO alerts (watch_id, snapshot_id, kind, message, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT ((COALESCE(watch_id::text, '')), kind) WHERE notified = false DO NOTHING
		RETURNING id, created_at`

	queryListPendingAlerts = `
		SELECT id, COALESCE(watch_id::text, ''), COALESCE(snapshot_id::text, ''),
			kind, message, notified, notified_at, created_at
		FROM alerts
		WHERE notified = false
		ORDER BY created_at DESC`

	queryListAlertsByWatch = `
		SELECT id, COALESCE(watch_id::text, ''), COALESCE(snapshot_id::text, ''),
			kind, message, notified, notified_at, created_at
		FROM alerts
		WHERE watch_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	queryMarkAlertNotified = `
		UPDATE alerts SET
			notified = true,
			notified_at = now()
		WHERE id = $1`

	queryMarkAlertsNotified = `
		UPDATE alerts SET
			notified = true,
			notified_at = now()
		WHERE id = ANY($1)`

	queryHasRecentAlert = `
		SELECT EXISTS (
			SELECT 1 FROM alerts
			WHERE COALESCE(watch_id::text, '') = $1
			  AND kind = $2
			  AND notified = true
			  AND notified_at > $3
		)`

	queryInsertNotificationAttempt = `
		INSERT INTO notification_attempts (alert_id, succeeded, http_status, error_text)
		VALUES ($1, $2, $3, NULLIF($4, ''))`

	queryHasSuccessfulNotification = `
		SELECT EXISTS (
			SELECT 1 FROM notification_attempts
			WHERE alert_id = $1
			  AND succeeded = true
		)`
)

// Credit queries.
const (
	queryInsertCreditSample = `
		INSERT INTO credit_samples (credits)
		VALUES ($1)`

	queryLatestCreditSample = `
		SELECT id, credits, sampled_at
		FROM credit_samples
		ORDER BY sampled_at DESC
		LIMIT 1`
)

// System state query. Scalar subqueries keep this a single round trip.
const queryGetSystemState = `
	SELECT
		(SELECT COUNT(*) FROM watches) AS watches_total,
		(SELECT COUNT(*) FROM watches WHERE enabled = true) AS watches_enabled,
		(SELECT COUNT(*) FROM watches
			WHERE enabled = true
			  AND (last_checked_at IS NULL OR last_checked_at < $1)) AS watches_stale,
		(SELECT COUNT(*) FROM snapshots) AS snapshots_total,
		(SELECT COUNT(*) FROM snapshots
			WHERE fetched_at > now() - interval '24 hours') AS snapshots_24h,
		(SELECT COUNT(*) FROM alerts WHERE notified = false) AS alerts_pending,
		COALESCE(
			(SELECT credits FROM credit_samples ORDER BY sampled_at DESC LIMIT 1),
			-1) AS credits_remaining,
		(SELECT MAX(started_at) FROM job_runs
			WHERE job_name = 'refresh' AND status = 'ok') AS last_refresh_at`
