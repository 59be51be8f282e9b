package client

import (
	"context"

	domain "github.com/eansearch/eansearch-go/pkg/types"
)

// CreditsStatus mirrors the credits endpoint response.
type CreditsStatus struct {
	Remaining  int64                `json:"remaining"`
	LastSample *domain.CreditSample `json:"last_sample,omitempty"`
}

// GetSystemState returns aggregate system counts.
func (c *Client) GetSystemState(ctx context.Context) (*domain.SystemState, error) {
	var state domain.SystemState
	if err := c.get(ctx, "/api/v1/system/state", &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// GetCredits returns the current EAN-Search credit status.
func (c *Client) GetCredits(ctx context.Context) (*CreditsStatus, error) {
	var status CreditsStatus
	if err := c.get(ctx, "/api/v1/credits", &status); err != nil {
		return nil, err
	}
	return &status, nil
}
