package offline

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockside/receiving/internal/testutil"
)

func TestJar_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	base, err := url.Parse("http://receiving.local:8000")
	require.NoError(t, err)

	jar, err := NewJar(ctx, store, base)
	require.NoError(t, err)
	jar.SetCookies(base, []*http.Cookie{{Name: "session", Value: "abc123", Path: "/"}})

	restored, err := NewJar(ctx, store, base)
	require.NoError(t, err)

	cookies := restored.Cookies(&url.URL{Scheme: "http", Host: "receiving.local:8000", Path: "/api/auth/status"})
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Equal(t, "abc123", cookies[0].Value)
}

func TestJar_ExpiredCookieIsDropped(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	base, err := url.Parse("http://receiving.local")
	require.NoError(t, err)

	jar, err := NewJar(ctx, store, base)
	require.NoError(t, err)
	jar.SetCookies(base, []*http.Cookie{{Name: "session", Value: "abc", Path: "/"}})
	jar.SetCookies(base, []*http.Cookie{{Name: "session", Path: "/", MaxAge: -1}})

	stored, err := store.LoadCookies(ctx, base.Host)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestJar_Forget(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	base, err := url.Parse("http://receiving.local")
	require.NoError(t, err)

	jar, err := NewJar(ctx, store, base)
	require.NoError(t, err)
	jar.SetCookies(base, []*http.Cookie{{Name: "session", Value: "abc", Path: "/"}})

	require.NoError(t, jar.Forget(ctx))
	assert.Empty(t, jar.Cookies(base))

	stored, err := store.LoadCookies(ctx, base.Host)
	require.NoError(t, err)
	assert.Empty(t, stored)
}
