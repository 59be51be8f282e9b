// Package notify defines the notification interface and implementations
// for alert delivery.
package notify

import "context"

// AlertPayload contains the data needed to render an alert notification.
// Barcode and Quality are empty for system-level alerts such as low_credits.
type AlertPayload struct {
	Kind        string
	WatchLabel  string
	Barcode     string
	ProductName string
	Quality     int
	Message     string
}

// Notifier defines the interface for delivering alerts.
type Notifier interface {
	SendAlert(ctx context.Context, alert AlertPayload) error
	SendBatchAlert(ctx context.Context, alerts []AlertPayload, title string) error
}
