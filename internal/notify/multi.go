package notify

import (
	"context"
	"errors"
)

// MultiNotifier fans alerts out to every configured backend. Delivery is
// attempted on all backends even when one fails; the errors are joined.
type MultiNotifier struct {
	targets []Notifier
}

// NewMultiNotifier creates a notifier that delivers to all targets.
func NewMultiNotifier(targets ...Notifier) *MultiNotifier {
	return &MultiNotifier{targets: targets}
}

// SendAlert delivers a single alert to every backend.
func (m *MultiNotifier) SendAlert(ctx context.Context, alert AlertPayload) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.SendAlert(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SendBatchAlert delivers a batch to every backend.
func (m *MultiNotifier) SendBatchAlert(ctx context.Context, alerts []AlertPayload, title string) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.SendBatchAlert(ctx, alerts, title); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
