package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	domain "github.com/eansearch/eansearch-go/pkg/types"
)

// SnapshotsResponse wraps a paginated snapshots response.
type SnapshotsResponse struct {
	Snapshots []domain.Snapshot `json:"snapshots"`
	Total     int               `json:"total"`
}

// ListSnapshotsParams defines query parameters for snapshot queries.
type ListSnapshotsParams struct {
	WatchID     string
	Barcode     string
	MinQuality  int
	MaxQuality  int
	ChangedOnly bool
	Since       time.Time
	Limit       int
	Offset      int
	OrderBy     string
}

// ListSnapshots returns snapshots matching the given parameters.
func (c *Client) ListSnapshots(
	ctx context.Context,
	params *ListSnapshotsParams,
) (*SnapshotsResponse, error) {
	q := url.Values{}
	if params.WatchID != "" {
		q.Set("watch_id", params.WatchID)
	}
	if params.Barcode != "" {
		q.Set("barcode", params.Barcode)
	}
	if params.MinQuality > 0 {
		q.Set("min_quality", strconv.Itoa(params.MinQuality))
	}
	if params.MaxQuality > 0 {
		q.Set("max_quality", strconv.Itoa(params.MaxQuality))
	}
	if params.ChangedOnly {
		q.Set("changed_only", "true")
	}
	if !params.Since.IsZero() {
		q.Set("since", params.Since.Format(time.RFC3339))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		q.Set("offset", strconv.Itoa(params.Offset))
	}
	if params.OrderBy != "" {
		q.Set("order_by", params.OrderBy)
	}

	path := "/api/v1/snapshots"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp SnapshotsResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSnapshot returns a single snapshot by ID.
func (c *Client) GetSnapshot(ctx context.Context, id string) (*domain.Snapshot, error) {
	var s domain.Snapshot
	if err := c.get(ctx, fmt.Sprintf("/api/v1/snapshots/%s", id), &s); err != nil {
		return nil, err
	}
	return &s, nil
}
