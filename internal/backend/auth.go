package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dockside/receiving/internal/model"
	"github.com/dockside/receiving/internal/service"
)

// AuthStatus checks whether the current session is authenticated.
func (c *Client) AuthStatus(ctx context.Context) (*service.AuthStatus, error) {
	var status service.AuthStatus
	if err := c.get(ctx, "/api/auth/status", nil, &status); err != nil {
		return nil, fmt.Errorf("failed to check auth status: %w", err)
	}
	return &status, nil
}

// Login exchanges credentials for a session cookie.
func (c *Client) Login(ctx context.Context, username, password string) (*model.Identity, error) {
	var resp struct {
		Staff *model.Identity `json:"staff"`
		envelope
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.send(ctx, http.MethodPost, "/api/auth/login", body, &resp, nil); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Staff == nil {
		return nil, rejected(resp.Error)
	}
	return resp.Staff, nil
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	return c.send(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
}
