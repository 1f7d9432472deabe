// Package offline applies the versioned offline cache policy to HTTP traffic.
package offline

import (
	"slices"
	"sort"
	"strings"
)

// Strategy is how a request path is served with respect to the cache.
type Strategy int

const (
	// CacheFirst serves from cache and goes to the network only on a miss.
	CacheFirst Strategy = iota
	// NetworkFirst goes to the network and falls back to cache when it fails.
	NetworkFirst
	// NetworkOnly always goes to the network and is never served stale.
	NetworkOnly
)

func (s Strategy) String() string {
	switch s {
	case CacheFirst:
		return "cache-first"
	case NetworkFirst:
		return "network-first"
	case NetworkOnly:
		return "network-only"
	default:
		return "unknown"
	}
}

// DefaultAssets are the static files precached on install.
var DefaultAssets = []string{
	"/styles.css",
	"/storage-locations.json",
	"/pick_list_data.json",
	"/icons/icon-192.png",
	"/icons/icon-512.png",
}

// Paths that must always come from the network. Documents fall back to the
// cache when offline; the app script and worker never do.
var (
	documentPaths = []string{"/", "/index.html"}
	scriptPaths   = []string{"/app.js", "/sw.js"}
)

const (
	apiPrefix = "/api/"
	// Session endpoints describe who is signed in and are never replayed.
	authPrefix = "/api/auth/"
)

// Policy classifies request paths for one cache version.
type Policy struct {
	assets  map[string]struct{}
	Version string
}

// NewPolicy creates a policy for a cache version and its precached assets.
func NewPolicy(version string, assets []string) *Policy {
	set := make(map[string]struct{}, len(assets))
	for _, a := range assets {
		set[a] = struct{}{}
	}
	return &Policy{Version: version, assets: set}
}

// Classify returns the strategy for a request path.
func (p *Policy) Classify(path string) Strategy {
	if strings.HasPrefix(path, authPrefix) {
		return NetworkOnly
	}
	if strings.HasPrefix(path, apiPrefix) || slices.Contains(documentPaths, path) {
		return NetworkFirst
	}
	if slices.Contains(scriptPaths, path) {
		return NetworkOnly
	}
	return CacheFirst
}

// IsAsset reports whether path is precached on install.
func (p *Policy) IsAsset(path string) bool {
	_, ok := p.assets[path]
	return ok
}

// Assets returns the precached paths in a stable order.
func (p *Policy) Assets() []string {
	out := make([]string, 0, len(p.assets))
	for a := range p.assets {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// CacheControl is the header the web shell sends for path so browsers and
// the service worker agree on freshness.
func (p *Policy) CacheControl(path string) string {
	switch p.Classify(path) {
	case NetworkOnly, NetworkFirst:
		return "no-cache"
	default:
		if p.IsAsset(path) {
			return "public, max-age=86400"
		}
		return "no-cache"
	}
}
