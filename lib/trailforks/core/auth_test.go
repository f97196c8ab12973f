package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"trailforks-scraper/lib/trailforks/tferrors"

	"github.com/stretchr/testify/require"
)

const loginPage = `<html><body>
<form method="post" action="/login/">
	<input type="hidden" name="token" value="abc123">
	<input type="hidden" name="return" value="/">
	<input type="text" name="username">
	<input type="password" name="password">
</form>
<form action="/search/"><input type="hidden" name="unrelated" value="x"></form>
</body></html>`

type fakeSite struct {
	mu       sync.Mutex
	password string
	posted   map[string]string
}

func (s *fakeSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case r.URL.Path == "/login/" && r.Method == http.MethodGet:
		w.Write([]byte(loginPage))
	case r.URL.Path == "/login/" && r.Method == http.MethodPost:
		r.ParseForm()
		s.posted = map[string]string{}
		for key := range r.PostForm {
			s.posted[key] = r.PostForm.Get(key)
		}
		if r.PostForm.Get("password") == s.password {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok", Path: "/"})
		}
		w.Write([]byte("<html></html>"))
	case r.URL.Path == "/":
		_, err := r.Cookie("session")
		if err != nil {
			w.Write([]byte(`<html><a href="/login/">log in</a></html>`))
			return
		}
		w.Write([]byte(`<html><a href="/logout/?token=1">log out</a></html>`))
	default:
		http.NotFound(w, r)
	}
}

func TestLogin(t *testing.T) {
	site := &fakeSite{password: "hunter2"}
	client, _ := newTestClient(t, site, ClientOptions{Username: "rider", Password: "hunter2"})

	require.ErrorIs(t, client.CheckCookie(), tferrors.ErrNoCookie)

	err := client.Login(context.Background())
	require.NoError(t, err)
	require.True(t, client.HasCookie())
	require.NoError(t, client.CheckCookie())

	require.Equal(t, map[string]string{
		"token":    "abc123",
		"return":   "/",
		"username": "rider",
		"password": "hunter2",
	}, site.posted)
}

func TestLoginFailed(t *testing.T) {
	site := &fakeSite{password: "hunter2"}
	client, _ := newTestClient(t, site, ClientOptions{Username: "rider", Password: "wrong"})

	err := client.Login(context.Background())
	require.ErrorIs(t, err, tferrors.ErrLoginFailed)
	require.False(t, client.HasCookie())
}

func TestLoginMissingCredentials(t *testing.T) {
	client, _ := newTestClient(t, &fakeSite{}, ClientOptions{})
	err := client.Login(context.Background())
	require.ErrorIs(t, err, tferrors.ErrMissingCredentials)
}

func TestLoginMissingAppCredentials(t *testing.T) {
	site := &fakeSite{password: "hunter2"}
	srv := httptest.NewServer(site)
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientOptions{BaseUrl: srv.URL, Username: "rider", Password: "hunter2"})
	require.NoError(t, err)

	err = client.Login(context.Background())
	require.ErrorIs(t, err, tferrors.ErrMissingAppCredentials)
	require.False(t, client.HasCookie())
	require.Nil(t, site.posted)
}

func TestRequireAuth(t *testing.T) {
	site := &fakeSite{password: "hunter2"}
	client, _ := newTestClient(t, site, ClientOptions{Username: "rider", Password: "hunter2"})

	err := client.RequireAuth(context.Background())
	require.NoError(t, err)
	require.True(t, client.HasCookie())

	anonymous, _ := newTestClient(t, site, ClientOptions{})
	require.NoError(t, anonymous.RequireAuth(context.Background()))
	require.False(t, anonymous.HasCookie())

	noApp, err := NewClient(ClientOptions{})
	require.NoError(t, err)
	err = noApp.RequireAuth(context.Background())
	require.ErrorIs(t, err, tferrors.ErrMissingAppCredentials)
}

func TestSetCookies(t *testing.T) {
	client, _ := newTestClient(t, &fakeSite{}, ClientOptions{})
	require.False(t, client.HasCookie())

	client.SetCookies([]*http.Cookie{{Name: "session", Value: "copied", Path: "/"}})
	require.True(t, client.HasCookie())
	require.Equal(t, "copied", client.Cookies()[0].Value)
}
