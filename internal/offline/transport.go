package offline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dockside/receiving/internal/model"
)

// CacheHeader marks responses served from the offline cache.
const CacheHeader = "X-Receiving-Cache"

// Cache stores responses per generation.
type Cache interface {
	GetResponse(ctx context.Context, generation, path string) (*model.CachedResponse, error)
	PutResponse(ctx context.Context, generation string, resp *model.CachedResponse) error
	DeleteResponses(ctx context.Context, prefix string) (int64, error)
}

// Transport is an http.RoundTripper that applies a Policy to GET requests.
// Other methods always go straight to the network.
type Transport struct {
	Base   http.RoundTripper
	Cache  Cache
	Policy *Policy
}

// NewTransport wraps base with the offline policy.
func NewTransport(base http.RoundTripper, cache Cache, policy *Policy) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base, Cache: cache, Policy: policy}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet || t.Cache == nil || t.Policy == nil {
		return t.Base.RoundTrip(req)
	}

	key := cacheKey(req)
	switch t.Policy.Classify(req.URL.Path) {
	case NetworkOnly:
		return t.Base.RoundTrip(req)

	case NetworkFirst:
		resp, err := t.Base.RoundTrip(req)
		if err == nil {
			return t.store(req, key, resp)
		}
		if cached, cacheErr := t.Cache.GetResponse(req.Context(), t.Policy.Version, key); cacheErr == nil {
			slog.Debug("Serving cached response after network failure", "path", key, "error", err)
			return synthesize(req, cached), nil
		}
		return nil, err

	default:
		if cached, err := t.Cache.GetResponse(req.Context(), t.Policy.Version, key); err == nil {
			return synthesize(req, cached), nil
		}
		resp, err := t.Base.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		return t.store(req, key, resp)
	}
}

// ForgetSession drops every cached backend response. Call it when the signed
// in user changes so one user's data is never replayed to another.
func (t *Transport) ForgetSession(ctx context.Context) error {
	if t.Cache == nil {
		return nil
	}
	n, err := t.Cache.DeleteResponses(ctx, apiPrefix)
	if err != nil {
		return fmt.Errorf("failed to clear cached responses: %w", err)
	}
	slog.Debug("Cleared cached backend responses", "count", n)
	return nil
}

// store copies a successful response into the cache and hands back an
// equivalent response with a fresh body.
func (t *Transport) store(req *http.Request, key string, resp *http.Response) (*http.Response, error) {
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	entry := &model.CachedResponse{
		Path:        key,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		Status:      resp.StatusCode,
	}
	if err := t.Cache.PutResponse(req.Context(), t.Policy.Version, entry); err != nil {
		slog.Warn("Failed to cache response", "path", key, "error", err)
	}
	return resp, nil
}

func cacheKey(req *http.Request) string {
	if req.URL.RawQuery == "" {
		return req.URL.Path
	}
	return req.URL.Path + "?" + req.URL.RawQuery
}

func synthesize(req *http.Request, cached *model.CachedResponse) *http.Response {
	header := make(http.Header)
	if cached.ContentType != "" {
		header.Set("Content-Type", cached.ContentType)
	}
	header.Set(CacheHeader, "hit")
	header.Set("Content-Length", strconv.Itoa(len(cached.Body)))

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", cached.Status, http.StatusText(cached.Status)),
		StatusCode:    cached.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(cached.Body)),
		ContentLength: int64(len(cached.Body)),
		Request:       req,
	}
}
