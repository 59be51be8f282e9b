package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Refresher defines the interface for triggering a refresh cycle.
type Refresher interface {
	RunRefresh(ctx context.Context) (int, error)
}

// Pruner defines the interface for triggering snapshot pruning.
type Pruner interface {
	RunPrune(ctx context.Context) (int, error)
}

// RefreshHandler handles manual refresh trigger requests.
type RefreshHandler struct {
	refresher Refresher
}

// NewRefreshHandler creates a new RefreshHandler.
func NewRefreshHandler(r Refresher) *RefreshHandler {
	return &RefreshHandler{refresher: r}
}

// TriggerRefreshOutput is the response body for the refresh endpoint.
type TriggerRefreshOutput struct {
	Body struct {
		Status    string `json:"status" example:"refresh completed" doc:"Refresh status"`
		Refreshed int    `json:"refreshed" example:"12" doc:"Watches refreshed in this cycle"`
	}
}

// Refresh runs one refresh cycle over all due watches.
func (h *RefreshHandler) Refresh(ctx context.Context, _ *struct{}) (*TriggerRefreshOutput, error) {
	refreshed, err := h.refresher.RunRefresh(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("refresh failed: " + err.Error())
	}

	resp := &TriggerRefreshOutput{}
	resp.Body.Status = "refresh completed"
	resp.Body.Refreshed = refreshed
	return resp, nil
}

// PruneHandler handles manual snapshot prune requests.
type PruneHandler struct {
	pruner Pruner
}

// NewPruneHandler creates a new PruneHandler.
func NewPruneHandler(p Pruner) *PruneHandler {
	return &PruneHandler{pruner: p}
}

// TriggerPruneOutput is the response body for the prune endpoint.
type TriggerPruneOutput struct {
	Body struct {
		Status string `json:"status" example:"prune completed" doc:"Prune status"`
		Pruned int    `json:"pruned" example:"340" doc:"Snapshots deleted"`
	}
}

// Prune deletes unchanged snapshots past the retention window.
func (h *PruneHandler) Prune(ctx context.Context, _ *struct{}) (*TriggerPruneOutput, error) {
	pruned, err := h.pruner.RunPrune(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("prune failed: " + err.Error())
	}

	resp := &TriggerPruneOutput{}
	resp.Body.Status = "prune completed"
	resp.Body.Pruned = pruned
	return resp, nil
}

// RegisterTriggerRoutes registers trigger endpoints with the Huma API.
func RegisterTriggerRoutes(api huma.API, refreshH *RefreshHandler, pruneH *PruneHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "trigger-refresh",
		Method:      http.MethodPost,
		Path:        "/api/v1/refresh",
		Summary:     "Trigger a refresh cycle",
		Description: "Runs one refresh cycle immediately: look up every due watch, " +
			"snapshot the results, score them, and raise alerts.",
		Tags:   []string{"scheduler"},
		Errors: []int{http.StatusInternalServerError},
	}, refreshH.Refresh)

	huma.Register(api, huma.Operation{
		OperationID: "trigger-prune",
		Method:      http.MethodPost,
		Path:        "/api/v1/prune",
		Summary:     "Prune old snapshots",
		Description: "Deletes unchanged snapshots older than the retention window.",
		Tags:        []string{"scheduler"},
		Errors:      []int{http.StatusInternalServerError},
	}, pruneH.Prune)
}
