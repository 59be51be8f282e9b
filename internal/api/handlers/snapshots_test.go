package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eansearch/eansearch-go/internal/api/handlers"
	"github.com/eansearch/eansearch-go/internal/store"
	domain "github.com/eansearch/eansearch-go/pkg/types"
)

// mockSnapshotsProvider is a test double for SnapshotsProvider.
type mockSnapshotsProvider struct {
	snapshots []domain.Snapshot
	total     int
	snap      *domain.Snapshot
	err       error

	query *store.SnapshotQuery
}

func (m *mockSnapshotsProvider) ListSnapshots(_ context.Context, opts *store.SnapshotQuery) ([]domain.Snapshot, int, error) {
	m.query = opts
	return m.snapshots, m.total, m.err
}

func (m *mockSnapshotsProvider) GetSnapshot(_ context.Context, _ string) (*domain.Snapshot, error) {
	return m.snap, m.err
}

func newSnapshotsAPI(t *testing.T, provider *mockSnapshotsProvider) humatest.TestAPI {
	t.Helper()

	_, api := humatest.New(t)
	handlers.RegisterSnapshotRoutes(api, handlers.NewSnapshotsHandler(provider))
	return api
}

func TestListSnapshots_Success(t *testing.T) {
	t.Parallel()

	provider := &mockSnapshotsProvider{
		snapshots: []domain.Snapshot{
			{ID: "s1", WatchID: "w1", Barcode: "5099902895529", Name: "Thriller", Quality: 94},
		},
		total: 1,
	}
	api := newSnapshotsAPI(t, provider)

	resp := api.Get("/api/v1/snapshots")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"Thriller"`)
	assert.Contains(t, resp.Body.String(), `"total":1`)

	require.NotNil(t, provider.query)
	assert.Nil(t, provider.query.WatchID)
	assert.Nil(t, provider.query.Barcode)
	assert.False(t, provider.query.ChangedOnly)
}

func TestListSnapshots_Filters(t *testing.T) {
	t.Parallel()

	provider := &mockSnapshotsProvider{}
	api := newSnapshotsAPI(t, provider)

	resp := api.Get("/api/v1/snapshots" +
		"?watch_id=w1&barcode=5099902895529&min_quality=40&max_quality=90" +
		"&changed_only=true&since=2026-08-01T00:00:00Z&limit=10&offset=20&order_by=quality")
	require.Equal(t, http.StatusOK, resp.Code)

	q := provider.query
	require.NotNil(t, q)
	require.NotNil(t, q.WatchID)
	assert.Equal(t, "w1", *q.WatchID)
	require.NotNil(t, q.Barcode)
	assert.Equal(t, "5099902895529", *q.Barcode)
	require.NotNil(t, q.MinQuality)
	assert.Equal(t, 40, *q.MinQuality)
	require.NotNil(t, q.MaxQuality)
	assert.Equal(t, 90, *q.MaxQuality)
	assert.True(t, q.ChangedOnly)
	require.NotNil(t, q.Since)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), q.Since.UTC())
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, 20, q.Offset)
	assert.Equal(t, "quality", q.OrderBy)
}

func TestListSnapshots_Error(t *testing.T) {
	t.Parallel()

	api := newSnapshotsAPI(t, &mockSnapshotsProvider{err: errors.New("db error")})

	resp := api.Get("/api/v1/snapshots")
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "snapshot query failed")
}

func TestGetSnapshot_Success(t *testing.T) {
	t.Parallel()

	provider := &mockSnapshotsProvider{
		snap: &domain.Snapshot{ID: "s1", WatchID: "w1", Barcode: "5099902895529", Quality: 94},
	}
	api := newSnapshotsAPI(t, provider)

	resp := api.Get("/api/v1/snapshots/s1")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"s1"`)
}

func TestGetSnapshot_NotFound(t *testing.T) {
	t.Parallel()

	api := newSnapshotsAPI(t, &mockSnapshotsProvider{err: errors.New("no rows")})

	resp := api.Get("/api/v1/snapshots/s-missing")
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "snapshot not found")
}
