package offline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"
)

// ServiceWorkerPath is where the browser worker is served from.
const ServiceWorkerPath = "/sw.js"

var swTemplate = template.Must(template.New("sw").Parse(`const CACHE_NAME = {{.Version}};
const urlsToCache = {{.Assets}};
const networkFirst = {{.NetworkFirst}};
const networkOnly = {{.NetworkOnly}};

self.addEventListener('install', event => {
  event.waitUntil(caches.open(CACHE_NAME).then(cache => cache.addAll(urlsToCache)));
  self.skipWaiting();
});

self.addEventListener('activate', event => {
  event.waitUntil(
    caches.keys().then(names => Promise.all(
      names.filter(name => name !== CACHE_NAME).map(name => caches.delete(name))
    )).then(() => self.clients.claim())
  );
});

self.addEventListener('fetch', event => {
  const url = new URL(event.request.url);
  const path = url.pathname;

  if (networkOnly.includes(path) || path.startsWith('{{.AuthPrefix}}')) {
    event.respondWith(fetch(event.request));
    return;
  }

  if (path.startsWith('{{.APIPrefix}}') || networkFirst.includes(path)) {
    event.respondWith(
      fetch(event.request)
        .then(response => {
          if (event.request.method === 'GET' && response.ok) {
            const copy = response.clone();
            caches.open(CACHE_NAME).then(cache => cache.put(event.request, copy));
          }
          return response;
        })
        .catch(() => caches.match(event.request))
    );
    return;
  }

  event.respondWith(
    caches.match(event.request).then(response => response || fetch(event.request))
  );
});
`))

// ServiceWorker renders the browser worker script for the policy.
func ServiceWorker(p *Policy) ([]byte, error) {
	enc := func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	}

	version, err := enc(p.Version)
	if err != nil {
		return nil, err
	}
	assets, err := enc(p.Assets())
	if err != nil {
		return nil, err
	}
	first, err := enc(documentPaths)
	if err != nil {
		return nil, err
	}
	only, err := enc(scriptPaths)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = swTemplate.Execute(&buf, map[string]string{
		"Version":      version,
		"Assets":       assets,
		"NetworkFirst": first,
		"NetworkOnly":  only,
		"APIPrefix":    apiPrefix,
		"AuthPrefix":   authPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render service worker: %w", err)
	}
	return buf.Bytes(), nil
}
