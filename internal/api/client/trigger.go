package client

import "context"

// TriggerRefresh runs one refresh cycle immediately and returns the number
// of watches refreshed.
func (c *Client) TriggerRefresh(ctx context.Context) (int, error) {
	var resp struct {
		Refreshed int `json:"refreshed"`
	}
	if err := c.post(ctx, "/api/v1/refresh", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Refreshed, nil
}

// TriggerPrune deletes unchanged snapshots past the retention window and
// returns the number deleted.
func (c *Client) TriggerPrune(ctx context.Context) (int, error) {
	var resp struct {
		Pruned int `json:"pruned"`
	}
	if err := c.post(ctx, "/api/v1/prune", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Pruned, nil
}
