package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dockside/receiving/internal/model"
	"github.com/dockside/receiving/internal/service"
)

// StorageLocations lists the storage devices items can be allocated to.
// The endpoint serves a reference file that is either a bare array or an
// object wrapping one.
func (c *Client) StorageLocations(ctx context.Context) ([]model.StorageLocation, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/storage-locations", nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to load storage locations: %w", err)
	}
	return decodeLocations(raw)
}

func decodeLocations(raw json.RawMessage) ([]model.StorageLocation, error) {
	var list []model.StorageLocation
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Error            string                  `json:"error"`
		Locations        []model.StorageLocation `json:"locations"`
		StorageLocations []model.StorageLocation `json:"storageLocations"`
		Snake            []model.StorageLocation `json:"storage_locations"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode storage locations: %w", err)
	}
	if wrapped.Error != "" {
		return nil, rejected(wrapped.Error)
	}
	if len(wrapped.Locations) > 0 {
		return wrapped.Locations, nil
	}
	if len(wrapped.StorageLocations) > 0 {
		return wrapped.StorageLocations, nil
	}
	return wrapped.Snake, nil
}

// StockAt lists the stock held at a storage location.
func (c *Client) StockAt(ctx context.Context, locationID int) ([]model.StockRecord, error) {
	var resp struct {
		Error string              `json:"error"`
		Items []model.StockRecord `json:"items"`
	}
	if err := c.get(ctx, "/api/storage/"+strconv.Itoa(locationID)+"/stock", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, rejected(resp.Error)
	}
	return resp.Items, nil
}

// Relocate moves stock between storage locations.
func (c *Client) Relocate(ctx context.Context, req service.RelocateRequest) (*service.RelocateResult, error) {
	var res service.RelocateResult
	if err := c.send(ctx, http.MethodPost, "/api/relocate", req, &res, c.idempotency(req.IdempotencyKey)); err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, rejected(res.Error)
	}
	return &res, nil
}

// PickList fetches the orders awaiting picking.
func (c *Client) PickList(ctx context.Context) (*model.PickList, error) {
	var resp struct {
		Error string `json:"error"`
		model.PickList
	}
	if err := c.get(ctx, "/api/stock-pick-list", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" && len(resp.Items) == 0 {
		return nil, rejected(resp.Error)
	}
	list := resp.PickList
	if list.Count == 0 {
		list.Count = len(list.Items)
	}
	return &list, nil
}
