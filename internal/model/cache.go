package model

import "time"

// CachedResponse is a stored copy of an HTTP response body.
type CachedResponse struct {
	StoredAt    time.Time
	Path        string
	ContentType string
	Body        []byte
	Status      int
}

// CacheGeneration is one versioned set of cached responses.
type CacheGeneration struct {
	InstalledAt time.Time
	Name        string
	Entries     int
	Active      bool
}

// StoredCookie is a session cookie persisted between runs.
type StoredCookie struct {
	Expires  time.Time
	Host     string
	Name     string
	Value    string
	Path     string
	Secure   bool
	HTTPOnly bool
}
