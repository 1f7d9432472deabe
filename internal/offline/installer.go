package offline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/dockside/receiving/internal/model"
)

// GenerationStore manages cache generations.
type GenerationStore interface {
	Cache
	CreateGeneration(ctx context.Context, name string) error
	ActivateGeneration(ctx context.Context, name string) ([]string, error)
}

// ProgressFunc is called after each asset is stored.
type ProgressFunc func(done, total int, path string)

// Installer precaches a policy's assets and activates its generation.
type Installer struct {
	Store       GenerationStore
	Policy      *Policy
	Client      *http.Client
	BaseURL     *url.URL
	Concurrency int
}

// Install fetches every asset into the policy's generation. Any failure
// aborts the install and leaves the active generation untouched.
func (i *Installer) Install(ctx context.Context, progress ProgressFunc) error {
	if err := i.Store.CreateGeneration(ctx, i.Policy.Version); err != nil {
		return err
	}

	client := i.Client
	if client == nil {
		client = http.DefaultClient
	}
	workers := i.Concurrency
	if workers <= 0 {
		workers = 4
	}

	assets := i.Policy.Assets()
	var (
		mu   sync.Mutex
		done int
	)

	p := pool.New().WithMaxGoroutines(workers).WithContext(ctx).WithCancelOnError()
	for _, path := range assets {
		p.Go(func(ctx context.Context) error {
			resp, err := i.fetch(ctx, client, path)
			if err != nil {
				return err
			}
			if err := i.Store.PutResponse(ctx, i.Policy.Version, resp); err != nil {
				return err
			}

			mu.Lock()
			done++
			n := done
			mu.Unlock()
			if progress != nil {
				progress(n, len(assets), path)
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return fmt.Errorf("failed to install cache %s: %w", i.Policy.Version, err)
	}

	slog.Info("Installed offline cache", "version", i.Policy.Version, "assets", len(assets))
	return nil
}

// Activate makes the policy's generation current and deletes all others.
func (i *Installer) Activate(ctx context.Context) ([]string, error) {
	removed, err := i.Store.ActivateGeneration(ctx, i.Policy.Version)
	if err != nil {
		return nil, err
	}
	for _, name := range removed {
		slog.Info("Deleted stale cache generation", "name", name)
	}
	return removed, nil
}

func (i *Installer) fetch(ctx context.Context, client *http.Client, path string) (*model.CachedResponse, error) {
	target := i.BaseURL.ResolveReference(&url.URL{Path: path})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", path, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return &model.CachedResponse{
		Path:        path,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		Status:      resp.StatusCode,
	}, nil
}
