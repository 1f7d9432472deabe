// Package storage persists the offline cache and session state in SQLite.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dockside/receiving/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidPath   = errors.New("invalid cache path")
	ErrInvalidCookie = errors.New("invalid cookie")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateResponse(resp *model.CachedResponse) error {
	if resp == nil {
		return fmt.Errorf("%w: response", ErrNilParameter)
	}
	if !strings.HasPrefix(resp.Path, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, resp.Path)
	}
	if resp.Status < 100 || resp.Status > 599 {
		return fmt.Errorf("%w: status %d for %s", ErrInvalidPath, resp.Status, resp.Path)
	}
	return nil
}

func validateCookie(c model.StoredCookie) error {
	if c.Host == "" || c.Name == "" {
		return fmt.Errorf("%w: host and name are required", ErrInvalidCookie)
	}
	return nil
}
