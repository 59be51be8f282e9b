package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/eansearch/eansearch-go/pkg/types"
)

// CreditsSource reports the live credit balance observed by the API client.
type CreditsSource interface {
	CreditsRemaining() int64
}

// CreditsProvider defines the store methods required by the credits handler.
type CreditsProvider interface {
	LatestCreditSample(ctx context.Context) (*domain.CreditSample, error)
}

// CreditsHandler provides the EAN-Search credit status endpoint.
type CreditsHandler struct {
	client CreditsSource
	store  CreditsProvider
}

// NewCreditsHandler creates a new CreditsHandler.
func NewCreditsHandler(client CreditsSource, s CreditsProvider) *CreditsHandler {
	return &CreditsHandler{client: client, store: s}
}

// CreditsOutput is the response body for the credits endpoint.
type CreditsOutput struct {
	Body struct {
		Remaining  int64                `json:"remaining"             example:"9480" doc:"Credits left per the most recent API response (-1 before the first call)"`
		LastSample *domain.CreditSample `json:"last_sample,omitempty"                doc:"Most recent persisted credit sample"`
	}
}

// GetCredits returns the current EAN-Search credit status.
func (h *CreditsHandler) GetCredits(ctx context.Context, _ *struct{}) (*CreditsOutput, error) {
	sample, err := h.store.LatestCreditSample(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("fetching credit sample failed: " + err.Error())
	}

	resp := &CreditsOutput{}
	resp.Body.Remaining = h.client.CreditsRemaining()
	resp.Body.LastSample = sample
	return resp, nil
}

// RegisterCreditRoutes registers the credits endpoint with the Huma API.
func RegisterCreditRoutes(api huma.API, h *CreditsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-credits",
		Method:      http.MethodGet,
		Path:        "/api/v1/credits",
		Summary:     "Get EAN-Search credit status",
		Description: "Returns the live credit balance from response headers and the most recent persisted sample.",
		Tags:        []string{"credits"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.GetCredits)
}
