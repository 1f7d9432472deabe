package backend

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dockside/receiving/internal/model"
	"github.com/dockside/receiving/internal/service"
)

// ListStaff fetches every staff account.
func (c *Client) ListStaff(ctx context.Context) ([]model.StaffRecord, error) {
	var resp struct {
		Staff *[]model.StaffRecord `json:"staff"`
		Error string               `json:"error"`
	}
	if err := c.get(ctx, "/api/staff", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Staff == nil {
		return nil, rejected(resp.Error)
	}
	return *resp.Staff, nil
}

// CreateStaff adds an account.
func (c *Client) CreateStaff(ctx context.Context, req service.CreateStaffRequest) error {
	var resp struct {
		Staff any `json:"staff"`
		envelope
	}
	if err := c.send(ctx, http.MethodPost, "/api/staff", req, &resp, nil); err != nil {
		return err
	}
	if !resp.Success && resp.Staff == nil {
		return rejected(resp.Error)
	}
	return nil
}

// UpdateStaff changes an account.
func (c *Client) UpdateStaff(ctx context.Context, id int, req service.UpdateStaffRequest) error {
	var resp struct {
		Staff any `json:"staff"`
		envelope
	}
	if err := c.send(ctx, http.MethodPut, "/api/staff/"+strconv.Itoa(id), req, &resp, nil); err != nil {
		return err
	}
	if !resp.Success && resp.Staff == nil {
		return rejected(resp.Error)
	}
	return nil
}
