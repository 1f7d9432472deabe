// Package webshell hosts the browser front end: static assets, the
// generated service worker and a proxy from /api to the backend.
package webshell

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/proxy"

	"github.com/dockside/receiving/internal/common"
	"github.com/dockside/receiving/internal/offline"
)

// Options configures the web shell.
type Options struct {
	Policy      *offline.Policy
	Logger      *slog.Logger
	BackendURL  string
	Dir         string
	CORSOrigins []string
}

// locationsFile is the reference data also served at /api/storage-locations.
const locationsFile = "storage-locations.json"

// New builds the fiber app.
func New(opts Options) (*fiber.App, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("%w: web directory is required", common.ErrMissingConfig)
	}
	if opts.Policy == nil {
		return nil, fmt.Errorf("%w: cache policy is required", common.ErrMissingConfig)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	backend := strings.TrimRight(opts.BackendURL, "/")

	worker, err := offline.ServiceWorker(opts.Policy)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:               "receiving",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(opts.Logger),
	})

	if len(opts.CORSOrigins) > 0 {
		origins := make([]string, len(opts.CORSOrigins))
		for i, o := range opts.CORSOrigins {
			origins[i] = strings.TrimSpace(o)
		}
		app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(origins, ","),
			AllowHeaders:     "Origin, Content-Type, Accept, Idempotency-Key",
			AllowMethods:     "GET,POST,PUT,OPTIONS",
			AllowCredentials: !slices.Contains(origins, "*"),
		}))
	}
	app.Use(requestLogger(opts.Logger))
	app.Use(cacheHeaders(opts.Policy))

	app.Get(offline.ServiceWorkerPath, func(c *fiber.Ctx) error {
		c.Type("js", "utf-8")
		return c.Send(worker)
	})

	app.Get("/api/storage-locations", func(c *fiber.Ctx) error {
		return c.SendFile(filepath.Join(opts.Dir, locationsFile))
	})

	app.All("/api/*", func(c *fiber.Ctx) error {
		if backend == "" {
			return fiber.NewError(fiber.StatusServiceUnavailable, "backend not configured")
		}
		if err := proxy.Do(c, backend+c.OriginalURL()); err != nil {
			opts.Logger.Warn("proxy request failed", "path", c.Path(), "error", err)
			return fiber.NewError(fiber.StatusBadGateway, "backend unavailable")
		}
		c.Response().Header.Del(fiber.HeaderServer)
		return nil
	})

	app.Static("/", opts.Dir, fiber.Static{
		Index:         "index.html",
		CacheDuration: 10 * time.Second,
	})

	return app, nil
}

// Serve listens on addr until ctx is cancelled. A non-nil cert switches the
// listener to HTTPS.
func Serve(ctx context.Context, app *fiber.App, addr string, cert *tls.Certificate) error {
	errCh := make(chan error, 1)
	go func() {
		if cert != nil {
			errCh <- app.ListenTLSWithCertificate(addr, *cert)
			return
		}
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down web shell: %w", err)
		}
		return nil
	}
}

func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var e *fiber.Error
		if errors.As(err, &e) {
			return c.Status(e.Code).JSON(fiber.Map{
				"error": e.Message,
			})
		}
		logger.Error("unexpected error", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
}

func requestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Debug("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start),
		)
		return err
	}
}

// cacheHeaders applies the offline policy's Cache-Control to every
// non-API response.
func cacheHeaders(p *offline.Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		path := c.Path()
		if !strings.HasPrefix(path, "/api/") {
			c.Set(fiber.HeaderCacheControl, p.CacheControl(path))
		}
		return err
	}
}
