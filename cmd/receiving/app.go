package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/dockside/receiving/internal/backend"
	"github.com/dockside/receiving/internal/config"
	"github.com/dockside/receiving/internal/model"
	"github.com/dockside/receiving/internal/offline"
	"github.com/dockside/receiving/internal/storage"
)

// app holds the collaborators shared by every command.
type app struct {
	cfg       *config.Config
	store     *storage.SQLiteStorage
	jar       *offline.Jar
	transport *offline.Transport
	client    *backend.Client
}

// openStore opens and migrates the offline cache database.
func openStore(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// openApp builds the backend client. With the cache enabled, reads go
// through the offline transport and the session cookie survives restarts.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg}

	base, err := url.Parse(cfg.Backend.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}

	hc := &http.Client{Timeout: cfg.Backend.Timeout}
	if cfg.Cache.Enabled {
		if a.store, err = openStore(ctx, cfg); err != nil {
			return nil, err
		}
		if a.jar, err = offline.NewJar(ctx, a.store, base); err != nil {
			a.Close()
			return nil, err
		}
		a.transport = offline.NewTransport(nil, a.store, cfg.Policy())
		hc.Transport = a.transport
		hc.Jar = a.jar
	} else {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		hc.Jar = jar
	}

	a.client, err = backend.New(cfg.Backend.URL,
		backend.WithHTTPClient(hc),
		backend.WithRetry(cfg.RetryOptions()),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the cache database.
func (a *app) Close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		slog.Error("failed to close cache", "error", err)
	}
}

// forget drops the persisted session and every cached backend response.
func (a *app) forget(ctx context.Context) error {
	err := a.forgetResponses(ctx)
	if a.jar != nil {
		err = errors.Join(err, a.jar.Forget(ctx))
	}
	return err
}

// forgetResponses drops cached backend responses so they are never served
// to a different user.
func (a *app) forgetResponses(ctx context.Context) error {
	if a.transport == nil {
		return nil
	}
	return a.transport.ForgetSession(ctx)
}

// sessionBackend keeps the offline cache in step with who is signed in.
type sessionBackend struct {
	*backend.Client
	app *app
}

// Login signs in and drops responses cached for the previous user.
func (b sessionBackend) Login(ctx context.Context, username, password string) (*model.Identity, error) {
	staff, err := b.Client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if ferr := b.app.forgetResponses(ctx); ferr != nil {
		slog.Warn("Failed to clear cached responses", "error", ferr)
	}
	return staff, nil
}

// Logout ends the backend session and forgets the local session even when
// the backend could not be reached.
func (b sessionBackend) Logout(ctx context.Context) error {
	err := b.Client.Logout(ctx)
	if ferr := b.app.forget(ctx); ferr != nil {
		slog.Warn("Failed to clear stored session", "error", ferr)
	}
	return err
}
