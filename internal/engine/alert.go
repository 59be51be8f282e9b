package engine

import (
	"context"
	"fmt"

	"github.com/eansearch/eansearch-go/internal/metrics"
	"github.com/eansearch/eansearch-go/internal/notify"
	"github.com/eansearch/eansearch-go/internal/store"
	domain "github.com/eansearch/eansearch-go/pkg/types"
)

const batchThreshold = 5

// ProcessAlerts delivers pending alerts and marks them notified. When a cycle
// produced batchThreshold or more alerts they go out as one digest message
// instead of individual pings. Failed sends stay pending for the next cycle,
// and every attempt is recorded in the delivery log.
func ProcessAlerts(
	ctx context.Context,
	s store.Store,
	n notify.Notifier,
) error {
	pending, err := s.ListPendingAlerts(ctx)
	if err != nil {
		return fmt.Errorf("listing pending alerts: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	payloads, ready := buildPayloads(ctx, s, pending)
	if len(ready) == 0 {
		return nil
	}

	if len(ready) >= batchThreshold {
		if err := sendDigest(ctx, s, n, payloads, ready); err != nil {
			metrics.NotificationFailuresTotal.Inc()
			return err
		}
		return nil
	}

	for i := range ready {
		if err := sendSingle(ctx, s, n, payloads[i], &ready[i]); err != nil {
			metrics.NotificationFailuresTotal.Inc()
			// Later alerts still get their chance this cycle.
			continue
		}
	}

	return nil
}

// buildPayloads resolves each pending alert against its watch and snapshot.
// Alerts whose watch vanished mid-cycle are skipped; the cascade delete will
// collect them.
func buildPayloads(
	ctx context.Context,
	s store.Store,
	pending []domain.Alert,
) ([]notify.AlertPayload, []domain.Alert) {
	payloads := make([]notify.AlertPayload, 0, len(pending))
	ready := make([]domain.Alert, 0, len(pending))

	for i := range pending {
		a := &pending[i]

		payload := notify.AlertPayload{
			Kind:    string(a.Kind),
			Message: a.Message,
		}

		if a.WatchID != "" {
			watch, err := s.GetWatch(ctx, a.WatchID)
			if err != nil {
				continue
			}
			payload.WatchLabel = watch.Label
			payload.Barcode = watch.Barcode
		}

		if a.SnapshotID != "" {
			if snap, err := s.GetSnapshot(ctx, a.SnapshotID); err == nil {
				payload.ProductName = snap.Name
				payload.Quality = snap.Quality
			}
		}

		payloads = append(payloads, payload)
		ready = append(ready, *a)
	}

	return payloads, ready
}

func sendSingle(
	ctx context.Context,
	s store.Store,
	n notify.Notifier,
	payload notify.AlertPayload,
	alert *domain.Alert,
) error {
	if err := n.SendAlert(ctx, payload); err != nil {
		recordAttempt(ctx, s, alert.ID, false, err)
		return fmt.Errorf("sending alert: %w", err)
	}
	recordAttempt(ctx, s, alert.ID, true, nil)

	metrics.AlertsFiredTotal.WithLabelValues(string(alert.Kind)).Inc()

	return s.MarkAlertNotified(ctx, alert.ID)
}

func sendDigest(
	ctx context.Context,
	s store.Store,
	n notify.Notifier,
	payloads []notify.AlertPayload,
	alerts []domain.Alert,
) error {
	alertIDs := make([]string, len(alerts))
	for i := range alerts {
		alertIDs[i] = alerts[i].ID
	}

	if err := n.SendBatchAlert(ctx, payloads, "ean-watch digest"); err != nil {
		for _, id := range alertIDs {
			recordAttempt(ctx, s, id, false, err)
		}
		return fmt.Errorf("sending batch alert: %w", err)
	}

	for i := range alerts {
		recordAttempt(ctx, s, alertIDs[i], true, nil)
		metrics.AlertsFiredTotal.WithLabelValues(string(alerts[i].Kind)).Inc()
	}

	return s.MarkAlertsNotified(ctx, alertIDs)
}

// recordAttempt appends to the delivery log. A logging failure must not block
// delivery, so the error is dropped.
func recordAttempt(ctx context.Context, s store.Store, alertID string, ok bool, sendErr error) {
	errText := ""
	if sendErr != nil {
		errText = sendErr.Error()
	}
	_ = s.InsertNotificationAttempt(ctx, alertID, ok, 0, errText)
}
