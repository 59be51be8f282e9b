package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/eansearch/eansearch-go/internal/store"
	domain "github.com/eansearch/eansearch-go/pkg/types"
)

// SnapshotsProvider defines the store methods required by the snapshots handler.
type SnapshotsProvider interface {
	ListSnapshots(ctx context.Context, opts *store.SnapshotQuery) ([]domain.Snapshot, int, error)
	GetSnapshot(ctx context.Context, id string) (*domain.Snapshot, error)
}

// SnapshotsHandler handles snapshot query endpoints.
type SnapshotsHandler struct {
	store SnapshotsProvider
}

// NewSnapshotsHandler creates a new SnapshotsHandler.
func NewSnapshotsHandler(s SnapshotsProvider) *SnapshotsHandler {
	return &SnapshotsHandler{store: s}
}

// --- Input/Output types ---

// ListSnapshotsInput is the input for listing snapshots with optional filters.
type ListSnapshotsInput struct {
	WatchID     string    `query:"watch_id"     doc:"Filter by watch UUID"`
	Barcode     string    `query:"barcode"      doc:"Filter by barcode"`
	MinQuality  int       `query:"min_quality"  doc:"Minimum quality score"                             minimum:"0" maximum:"100"`
	MaxQuality  int       `query:"max_quality"  doc:"Maximum quality score"                             minimum:"0" maximum:"100"`
	ChangedOnly bool      `query:"changed_only" doc:"Only snapshots where a tracked field changed"`
	Since       time.Time `query:"since"        doc:"Only snapshots fetched at or after this time"`
	Limit       int       `query:"limit"        doc:"Number of results (default 50)"                    minimum:"1" maximum:"1000"`
	Offset      int       `query:"offset"       doc:"Pagination offset"                                 minimum:"0"`
	OrderBy     string    `query:"order_by"     doc:"Sort field"                                        enum:"fetched_at,quality,"`
}

// ListSnapshotsOutput is the response for listing snapshots.
type ListSnapshotsOutput struct {
	Body struct {
		Snapshots []domain.Snapshot `json:"snapshots"`
		Total     int               `json:"total"`
		Limit     int               `json:"limit"`
		Offset    int               `json:"offset"`
	}
}

// GetSnapshotInput is the input for getting a single snapshot.
type GetSnapshotInput struct {
	ID string `path:"id" doc:"Snapshot UUID"`
}

// GetSnapshotOutput is the response for getting a single snapshot.
type GetSnapshotOutput struct {
	Body domain.Snapshot
}

// --- Handlers ---

// ListSnapshots returns snapshots with optional filters for watch, barcode,
// quality range, and pagination.
func (h *SnapshotsHandler) ListSnapshots(
	ctx context.Context,
	input *ListSnapshotsInput,
) (*ListSnapshotsOutput, error) {
	q := &store.SnapshotQuery{
		ChangedOnly: input.ChangedOnly,
		Offset:      input.Offset,
		OrderBy:     input.OrderBy,
	}

	if input.WatchID != "" {
		q.WatchID = &input.WatchID
	}

	if input.Barcode != "" {
		q.Barcode = &input.Barcode
	}

	if input.MinQuality != 0 {
		q.MinQuality = &input.MinQuality
	}

	if input.MaxQuality != 0 {
		q.MaxQuality = &input.MaxQuality
	}

	if !input.Since.IsZero() {
		q.Since = &input.Since
	}

	if input.Limit != 0 {
		q.Limit = input.Limit
	}

	snapshots, total, err := h.store.ListSnapshots(ctx, q)
	if err != nil {
		return nil, huma.Error500InternalServerError("snapshot query failed: " + err.Error())
	}

	resp := &ListSnapshotsOutput{}
	resp.Body.Snapshots = snapshots
	resp.Body.Total = total
	resp.Body.Limit = q.Limit
	resp.Body.Offset = q.Offset

	return resp, nil
}

// GetSnapshot returns a single snapshot by ID.
func (h *SnapshotsHandler) GetSnapshot(
	ctx context.Context,
	input *GetSnapshotInput,
) (*GetSnapshotOutput, error) {
	snap, err := h.store.GetSnapshot(ctx, input.ID)
	if err != nil {
		return nil, huma.Error404NotFound("snapshot not found")
	}

	return &GetSnapshotOutput{Body: *snap}, nil
}

// RegisterSnapshotRoutes registers snapshot endpoints with the Huma API.
func RegisterSnapshotRoutes(api huma.API, h *SnapshotsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-snapshots",
		Method:      http.MethodGet,
		Path:        "/api/v1/snapshots",
		Summary:     "List snapshots",
		Description: "Returns snapshots with optional filters for watch, barcode, quality range, and pagination.",
		Tags:        []string{"snapshots"},
	}, h.ListSnapshots)

	huma.Register(api, huma.Operation{
		OperationID: "get-snapshot",
		Method:      http.MethodGet,
		Path:        "/api/v1/snapshots/{id}",
		Summary:     "Get a snapshot by ID",
		Description: "Returns a single snapshot by its UUID.",
		Tags:        []string{"snapshots"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetSnapshot)
}
