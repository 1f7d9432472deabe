package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dockside/receiving/internal/common"
	"github.com/dockside/receiving/internal/model"
)

// CreateGeneration registers a cache generation if it does not exist yet.
func (s *SQLiteStorage) CreateGeneration(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO cache_generations (name, installed_at) VALUES (?, ?)`,
		name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to create cache generation %s: %w", name, err)
	}
	return nil
}

// PutResponse stores or replaces the cached response for a path.
func (s *SQLiteStorage) PutResponse(ctx context.Context, generation string, resp *model.CachedResponse) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(generation, "generation"); err != nil {
		return err
	}
	if err := validateResponse(resp); err != nil {
		return err
	}

	storedAt := resp.StoredAt
	if storedAt.IsZero() {
		storedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO cache_generations (name, installed_at) VALUES (?, ?)`,
		generation, storedAt); err != nil {
		return fmt.Errorf("failed to ensure cache generation: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO cache_entries (generation, path, status, content_type, body, stored_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(generation, path) DO UPDATE SET
			status = excluded.status,
			content_type = excluded.content_type,
			body = excluded.body,
			stored_at = excluded.stored_at`,
		generation, resp.Path, resp.Status, resp.ContentType, resp.Body, storedAt); err != nil {
		return fmt.Errorf("failed to store %s: %w", resp.Path, err)
	}

	return tx.Commit()
}

// GetResponse returns the cached response for a path, or common.ErrNotCached.
func (s *SQLiteStorage) GetResponse(ctx context.Context, generation, path string) (*model.CachedResponse, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		resp        model.CachedResponse
		contentType sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT path, status, content_type, body, stored_at
		FROM cache_entries
		WHERE generation = ? AND path = ?`,
		generation, path).Scan(&resp.Path, &resp.Status, &contentType, &resp.Body, &resp.StoredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", common.ErrNotCached, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached %s: %w", path, err)
	}
	resp.ContentType = contentType.String

	return &resp, nil
}

// ActivateGeneration makes name the only generation. Every other
// generation and its entries is removed in the same transaction, so readers
// never observe a mix of old and new entries. It returns the removed names.
func (s *SQLiteStorage) ActivateGeneration(ctx context.Context, name string) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cache_generations WHERE name = ?`, name).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check generation: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: cache generation %s", common.ErrNotFound, name)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT name FROM cache_generations WHERE name != ? ORDER BY name`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale generations: %w", err)
	}
	var stale []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		stale = append(stale, n)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	queries := []string{
		`DELETE FROM cache_entries WHERE generation != ?`,
		`DELETE FROM cache_generations WHERE name != ?`,
		`UPDATE cache_generations SET active = 1 WHERE name = ?`,
	}
	for _, query := range queries {
		if _, err := tx.ExecContext(ctx, query, name); err != nil {
			return nil, fmt.Errorf("failed to activate generation %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit activation: %w", err)
	}
	return stale, nil
}

// ListGenerations reports every generation with its entry count.
func (s *SQLiteStorage) ListGenerations(ctx context.Context) ([]model.CacheGeneration, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT g.name, g.active, g.installed_at, COUNT(e.path)
		FROM cache_generations g
		LEFT JOIN cache_entries e ON e.generation = g.name
		GROUP BY g.name
		ORDER BY g.installed_at DESC, g.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var gens []model.CacheGeneration
	for rows.Next() {
		var g model.CacheGeneration
		if err := rows.Scan(&g.Name, &g.Active, &g.InstalledAt, &g.Entries); err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		gens = append(gens, g)
	}
	return gens, rows.Err()
}

// Purge removes every cached response and generation.
func (s *SQLiteStorage) Purge(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, query := range []string{`DELETE FROM cache_entries`, `DELETE FROM cache_generations`} {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to purge cache: %w", err)
		}
	}
	return tx.Commit()
}

// DeleteResponses removes cached responses whose path starts with prefix in
// every generation and returns how many were removed.
func (s *SQLiteStorage) DeleteResponses(ctx context.Context, prefix string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if !strings.HasPrefix(prefix, "/") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPath, prefix)
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE substr(path, 1, length(?)) = ?`,
		prefix, prefix)
	if err != nil {
		return 0, fmt.Errorf("failed to delete responses under %s: %w", prefix, err)
	}
	return res.RowsAffected()
}
