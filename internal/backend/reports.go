package backend

import (
	"context"
	"net/url"
	"strconv"

	"github.com/dockside/receiving/internal/model"
)

// NeedsReceipting fetches allocations still waiting for a goods receipt.
func (c *Client) NeedsReceipting(ctx context.Context) (*model.ReceiptingSummary, error) {
	var resp struct {
		Error string `json:"error"`
		model.ReceiptingSummary
	}
	if err := c.get(ctx, "/api/needs-receipting", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, rejected(resp.Error)
	}
	summary := resp.ReceiptingSummary
	return &summary, nil
}

// SearchMysteryBox searches past deliveries by free text.
func (c *Client) SearchMysteryBox(ctx context.Context, query string) ([]model.MysteryResult, error) {
	var resp struct {
		Error   string                `json:"error"`
		Results []model.MysteryResult `json:"results"`
		Count   int                   `json:"count"`
	}
	if err := c.get(ctx, "/api/search-mystery-box", url.Values{"q": {query}}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, rejected(resp.Error)
	}
	if resp.Count == 0 {
		return nil, nil
	}
	return resp.Results, nil
}

// AllocationLogs fetches the newest allocation history entries.
func (c *Client) AllocationLogs(ctx context.Context, limit int) ([]model.AllocationLog, error) {
	var resp struct {
		Logs  *[]model.AllocationLog `json:"logs"`
		Error string                 `json:"error"`
	}
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.get(ctx, "/api/logs", q, &resp); err != nil {
		return nil, err
	}
	if resp.Logs == nil {
		return nil, rejected(resp.Error)
	}
	return *resp.Logs, nil
}
