package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dockside/receiving/internal/model"
)

// SaveCookies replaces the stored cookies for a host.
func (s *SQLiteStorage) SaveCookies(ctx context.Context, host string, cookies []model.StoredCookie) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(host, "host"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_cookies WHERE host = ?`, host); err != nil {
		return fmt.Errorf("failed to clear cookies for %s: %w", host, err)
	}

	for _, c := range cookies {
		c.Host = host
		if err := validateCookie(c); err != nil {
			return err
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		var expires sql.NullTime
		if !c.Expires.IsZero() {
			expires = sql.NullTime{Time: c.Expires.UTC(), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO session_cookies (host, name, value, path, expires, secure, http_only)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			host, c.Name, c.Value, path, expires, c.Secure, c.HTTPOnly); err != nil {
			return fmt.Errorf("failed to save cookie %s: %w", c.Name, err)
		}
	}

	return tx.Commit()
}

// LoadCookies returns the unexpired cookies stored for a host.
func (s *SQLiteStorage) LoadCookies(ctx context.Context, host string) ([]model.StoredCookie, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, value, path, expires, secure, http_only
		FROM session_cookies
		WHERE host = ?
		ORDER BY name`, host)
	if err != nil {
		return nil, fmt.Errorf("failed to load cookies for %s: %w", host, err)
	}
	defer func() { _ = rows.Close() }()

	now := time.Now()
	var cookies []model.StoredCookie
	for rows.Next() {
		var (
			c       model.StoredCookie
			expires sql.NullTime
		)
		if err := rows.Scan(&c.Name, &c.Value, &c.Path, &expires, &c.Secure, &c.HTTPOnly); err != nil {
			return nil, fmt.Errorf("failed to scan cookie: %w", err)
		}
		if expires.Valid {
			if expires.Time.Before(now) {
				continue
			}
			c.Expires = expires.Time
		}
		c.Host = host
		cookies = append(cookies, c)
	}
	return cookies, rows.Err()
}

// ClearCookies forgets every stored cookie for a host.
func (s *SQLiteStorage) ClearCookies(ctx context.Context, host string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_cookies WHERE host = ?`, host); err != nil {
		return fmt.Errorf("failed to clear cookies for %s: %w", host, err)
	}
	return nil
}
