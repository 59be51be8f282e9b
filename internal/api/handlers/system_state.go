package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/eansearch/eansearch-go/pkg/types"
)

// SystemStateProvider queries aggregate system counts.
type SystemStateProvider interface {
	GetSystemState(ctx context.Context, staleAfter time.Duration) (*domain.SystemState, error)
}

// SystemStateHandler handles GET /api/v1/system/state.
type SystemStateHandler struct {
	store      SystemStateProvider
	staleAfter time.Duration
}

// NewSystemStateHandler creates a SystemStateHandler. staleAfter is the age
// past which an enabled watch counts as stale, normally the refresh interval
// plus slack.
func NewSystemStateHandler(s SystemStateProvider, staleAfter time.Duration) *SystemStateHandler {
	return &SystemStateHandler{store: s, staleAfter: staleAfter}
}

// SystemStateOutput is the response for GET /api/v1/system/state.
type SystemStateOutput struct {
	Body *domain.SystemState
}

// GetSystemState returns current aggregate counts for watches, snapshots,
// alerts, and credits.
func (h *SystemStateHandler) GetSystemState(
	ctx context.Context,
	_ *struct{},
) (*SystemStateOutput, error) {
	state, err := h.store.GetSystemState(ctx, h.staleAfter)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get system state")
	}
	return &SystemStateOutput{Body: state}, nil
}

// RegisterSystemStateRoutes registers the system state route on the Huma API.
func RegisterSystemStateRoutes(api huma.API, h *SystemStateHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-system-state",
		Method:      http.MethodGet,
		Path:        "/api/v1/system/state",
		Summary:     "Get system state",
		Description: "Returns aggregate counts for watches, snapshots, alerts, and credits.",
		Tags:        []string{"system"},
	}, h.GetSystemState)
}
