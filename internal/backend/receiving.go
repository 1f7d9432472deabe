package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dockside/receiving/internal/model"
	"github.com/dockside/receiving/internal/service"
)

// LookupPO fetches a purchase order by number.
func (c *Client) LookupPO(ctx context.Context, poNumber string) (*model.PurchaseOrder, error) {
	var resp struct {
		Error string `json:"error"`
		model.PurchaseOrder
	}
	if err := c.get(ctx, "/api/po/"+url.PathEscape(poNumber), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, rejected(resp.Error)
	}
	po := resp.PurchaseOrder
	return &po, nil
}

// Allocate commits received items to a storage location.
func (c *Client) Allocate(ctx context.Context, req service.AllocationRequest) (*service.AllocationResult, error) {
	var res service.AllocationResult
	if err := c.send(ctx, http.MethodPost, "/api/allocate", req, &res, c.idempotency(req.IdempotencyKey)); err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, rejected(res.Error)
	}
	return &res, nil
}

// SaveBackorder records lines that were not delivered.
func (c *Client) SaveBackorder(ctx context.Context, req service.BackorderRequest) error {
	return c.post(ctx, "/api/backorder", req)
}

// SaveDocketData stores the fields recognized on the delivery docket.
func (c *Client) SaveDocketData(ctx context.Context, req service.DocketDataRequest) error {
	return c.post(ctx, "/api/docket-data", req)
}

// UploadPhotos attaches delivery photos to jobs and the PO.
func (c *Client) UploadPhotos(ctx context.Context, req service.PhotoUploadRequest) (*service.PhotoUploadResult, error) {
	var res service.PhotoUploadResult
	if err := c.send(ctx, http.MethodPost, "/api/upload-photos", req, &res, nil); err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, rejected(res.Error)
	}
	return &res, nil
}

// GeneratePickingSlip asks the backend to produce and file a picking slip.
func (c *Client) GeneratePickingSlip(ctx context.Context, req service.PickingSlipRequest) (*service.PickingSlipResult, error) {
	var res service.PickingSlipResult
	if err := c.send(ctx, http.MethodPost, "/api/picking-slip/generate", req, &res, nil); err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, rejected(res.Error)
	}
	return &res, nil
}

// post sends a best-effort record and only checks the error field.
func (c *Client) post(ctx context.Context, path string, body any) error {
	var env envelope
	if err := c.send(ctx, http.MethodPost, path, body, &env, nil); err != nil {
		return fmt.Errorf("failed to post %s: %w", path, err)
	}
	if env.Error != "" {
		return rejected(env.Error)
	}
	return nil
}

func (c *Client) idempotency(key string) http.Header {
	if key == "" {
		key = c.newKey()
	}
	h := make(http.Header)
	h.Set(IdempotencyHeader, key)
	return h
}
