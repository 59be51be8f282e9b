// Package domain defines the core business types for the barcode watch
// service.
package domain

import (
	"encoding/json"
	"slices"
	"time"
)

// TrackedField names a product attribute a watch can monitor for changes.
type TrackedField string

// Tracked field constants.
const (
	FieldName     TrackedField = "name"
	FieldCategory TrackedField = "category"
	FieldCountry  TrackedField = "issuing_country"
)

// AllTrackedFields lists every field a watch may track, in display order.
var AllTrackedFields = []TrackedField{FieldName, FieldCategory, FieldCountry}

// ValidTrackedField reports whether f is a known tracked field.
func ValidTrackedField(f TrackedField) bool {
	return slices.Contains(AllTrackedFields, f)
}

// Watch represents a barcode kept under periodic observation.
type Watch struct {
	ID               string         `json:"id"                        db:"id"`
	Barcode          string         `json:"barcode"                   db:"barcode"`
	Label            string         `json:"label,omitempty"           db:"label"`
	Language         int            `json:"language"                  db:"language"`
	Enabled          bool           `json:"enabled"                   db:"enabled"`
	ChangeFields     []TrackedField `json:"change_fields,omitempty"   db:"change_fields"`
	QualityThreshold int            `json:"quality_threshold"         db:"quality_threshold"`
	LastCheckedAt    *time.Time     `json:"last_checked_at,omitempty" db:"last_checked_at"`
	CreatedAt        time.Time      `json:"created_at"                db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"                db:"updated_at"`
}

// Tracks reports whether the watch monitors the given field. A watch with
// no explicit change fields tracks everything.
func (w *Watch) Tracks(field TrackedField) bool {
	if len(w.ChangeFields) == 0 {
		return true
	}
	return slices.Contains(w.ChangeFields, field)
}

// Snapshot is one observed state of a watched barcode. Snapshots are
// append-only; the newest one per watch is the current state.
type Snapshot struct {
	ID               string          `json:"id"                          db:"id"`
	WatchID          string          `json:"watch_id"                    db:"watch_id"`
	Barcode          string          `json:"barcode"                     db:"barcode"`
	Name             string          `json:"name"                        db:"name"`
	CategoryID       string          `json:"category_id,omitempty"       db:"category_id"`
	CategoryName     string          `json:"category_name,omitempty"     db:"category_name"`
	IssuingCountry   string          `json:"issuing_country,omitempty"   db:"issuing_country"`
	Quality          int             `json:"quality"                     db:"quality"`
	QualityBreakdown json.RawMessage `json:"quality_breakdown,omitempty" db:"quality_breakdown"`
	ChangedFields    []TrackedField  `json:"changed_fields,omitempty"    db:"changed_fields"`
	FetchedAt        time.Time       `json:"fetched_at"                  db:"fetched_at"`
}

// FieldValue returns the snapshot's value for a tracked field.
func (s *Snapshot) FieldValue(field TrackedField) string {
	switch field {
	case FieldName:
		return s.Name
	case FieldCategory:
		return s.CategoryName
	case FieldCountry:
		return s.IssuingCountry
	default:
		return ""
	}
}

// DiffFrom returns the tracked fields whose values differ between prev and
// s. A nil prev means the snapshot is the first observation and nothing is
// reported as changed.
func (s *Snapshot) DiffFrom(prev *Snapshot) []TrackedField {
	if prev == nil {
		return nil
	}

	var changed []TrackedField
	for _, field := range AllTrackedFields {
		if s.FieldValue(field) != prev.FieldValue(field) {
			changed = append(changed, field)
		}
	}
	return changed
}

// AlertKind distinguishes the reasons an alert is raised.
type AlertKind string

// Alert kind constants.
const (
	AlertChange     AlertKind = "change"
	AlertLowCredits AlertKind = "low_credits"
)

// Alert represents a triggered notification.
type Alert struct {
	ID         string     `json:"id"                    db:"id"`
	WatchID    string     `json:"watch_id,omitempty"    db:"watch_id"`
	SnapshotID string     `json:"snapshot_id,omitempty" db:"snapshot_id"`
	Kind       AlertKind  `json:"kind"                  db:"kind"`
	Message    string     `json:"message"               db:"message"`
	Notified   bool       `json:"notified"              db:"notified"`
	NotifiedAt *time.Time `json:"notified_at,omitempty" db:"notified_at"`
	CreatedAt  time.Time  `json:"created_at"            db:"created_at"`
}

// CreditSample records the API credit balance observed after a refresh.
type CreditSample struct {
	ID        string    `json:"id"         db:"id"`
	Credits   int64     `json:"credits"    db:"credits"`
	SampledAt time.Time `json:"sampled_at" db:"sampled_at"`
}

// JobRun records a single execution of a scheduled job.
type JobRun struct {
	ID           string     `json:"id"                      db:"id"`
	JobName      string     `json:"job_name"                db:"job_name"`
	StartedAt    time.Time  `json:"started_at"              db:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"  db:"completed_at"`
	Status       string     `json:"status"                  db:"status"`
	ErrorText    string     `json:"error_text,omitempty"    db:"error_text"`
	RowsAffected *int       `json:"rows_affected,omitempty" db:"rows_affected"`
}

// SystemState holds a precomputed snapshot of aggregate system metrics.
type SystemState struct {
	WatchesTotal     int        `json:"watches_total"               db:"watches_total"`
	WatchesEnabled   int        `json:"watches_enabled"             db:"watches_enabled"`
	WatchesStale     int        `json:"watches_stale"               db:"watches_stale"`
	SnapshotsTotal   int        `json:"snapshots_total"             db:"snapshots_total"`
	Snapshots24h     int        `json:"snapshots_24h"               db:"snapshots_24h"`
	AlertsPending    int        `json:"alerts_pending"              db:"alerts_pending"`
	CreditsRemaining int64      `json:"credits_remaining"           db:"credits_remaining"`
	LastRefreshAt    *time.Time `json:"last_refresh_at,omitempty"   db:"last_refresh_at"`
}
