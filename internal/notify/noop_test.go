package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoOpNotifier_SendAlert(t *testing.T) {
	t.Parallel()

	n := NewNoOpNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := n.SendAlert(context.Background(), AlertPayload{
		Kind:       "change",
		WatchLabel: "Thriller (CD)",
		Barcode:    "5099750442227",
		Message:    "changed: name",
		Quality:    78,
	})
	require.NoError(t, err)
}

func TestNoOpNotifier_SendBatchAlert(t *testing.T) {
	t.Parallel()

	n := NewNoOpNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
	alerts := []AlertPayload{
		{Kind: "change", WatchLabel: "Thriller (CD)", Barcode: "5099750442227", Quality: 78},
		{Kind: "change", WatchLabel: "Back in Black", Barcode: "5099751076520", Quality: 64},
	}

	err := n.SendBatchAlert(context.Background(), alerts, "ean-watch digest")
	require.NoError(t, err)
}

func TestNoOpNotifier_SendBatchAlert_Empty(t *testing.T) {
	t.Parallel()

	n := NewNoOpNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := n.SendBatchAlert(context.Background(), nil, "empty digest")
	require.NoError(t, err)
}

// compile-time interface check.
var _ Notifier = (*NoOpNotifier)(nil)
