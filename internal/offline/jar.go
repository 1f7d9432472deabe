package offline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/dockside/receiving/internal/model"
)

// SessionStore persists cookies between runs.
type SessionStore interface {
	SaveCookies(ctx context.Context, host string, cookies []model.StoredCookie) error
	LoadCookies(ctx context.Context, host string) ([]model.StoredCookie, error)
}

// Jar is an http.CookieJar that writes the backend's session cookies
// through to a SessionStore, so a restart resumes the same session.
type Jar struct {
	inner   *cookiejar.Jar
	store   SessionStore
	base    *url.URL
	cookies map[string]model.StoredCookie
	now     func() time.Time
	mu      sync.Mutex
}

// NewJar creates a jar for base and restores its stored cookies.
func NewJar(ctx context.Context, store SessionStore, base *url.URL) (*Jar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	j := &Jar{
		inner:   inner,
		store:   store,
		base:    base,
		cookies: make(map[string]model.StoredCookie),
		now:     time.Now,
	}

	stored, err := store.LoadCookies(ctx, base.Host)
	if err != nil {
		return nil, err
	}
	restored := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		j.cookies[c.Name] = c
		restored = append(restored, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		})
	}
	inner.SetCookies(base, restored)

	return j, nil
}

// SetCookies implements http.CookieJar.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.inner.SetCookies(u, cookies)
	if u.Host != j.base.Host {
		return
	}

	j.mu.Lock()
	now := j.now()
	for _, c := range cookies {
		expires := c.Expires
		if c.MaxAge > 0 {
			expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		if c.MaxAge < 0 || (!expires.IsZero() && expires.Before(now)) {
			delete(j.cookies, c.Name)
			continue
		}
		j.cookies[c.Name] = model.StoredCookie{
			Host:     j.base.Host,
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Expires:  expires,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		}
	}
	snapshot := make([]model.StoredCookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		snapshot = append(snapshot, c)
	}
	j.mu.Unlock()

	if err := j.store.SaveCookies(context.Background(), j.base.Host, snapshot); err != nil {
		slog.Warn("Failed to persist session cookies", "error", err)
	}
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

// Forget drops every cookie for the backend, used on logout.
func (j *Jar) Forget(ctx context.Context) error {
	j.mu.Lock()
	expired := make([]*http.Cookie, 0, len(j.cookies))
	for name, c := range j.cookies {
		expired = append(expired, &http.Cookie{Name: name, Path: c.Path, MaxAge: -1})
	}
	j.cookies = make(map[string]model.StoredCookie)
	j.mu.Unlock()

	j.inner.SetCookies(j.base, expired)
	return j.store.SaveCookies(ctx, j.base.Host, nil)
}
