package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"trailforks-scraper/lib/telemetry"
	"trailforks-scraper/lib/trailforks/core"
)

const (
	AppId     = "app"
	AppSecret = "secret"
)

type ClientParams struct {
	Name string
	// Handler serves every request of the client.
	Handler http.Handler
	// Options are passed on to core.NewClient, BaseUrl is always the test
	// server and the app credentials default to AppId and AppSecret.
	Options core.ClientOptions
	// NoAppCredentials leaves the app credentials empty.
	NoAppCredentials bool
}

type ClientResult struct {
	Client *core.Client
	Server *httptest.Server
}

// SetupClient starts a test server and a client pointed at it, both are
// torn down with the test.
func SetupClient(t testing.TB, params ClientParams) ClientResult {
	t.Helper()
	cleanup := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))
	t.Cleanup(cleanup)

	srv := httptest.NewServer(params.Handler)
	t.Cleanup(srv.Close)

	opts := params.Options
	opts.BaseUrl = srv.URL
	if !params.NoAppCredentials {
		if opts.AppId == "" {
			opts.AppId = AppId
		}
		if opts.AppSecret == "" {
			opts.AppSecret = AppSecret
		}
	}

	client, err := core.NewClient(opts)
	if err != nil {
		t.Fatal(err)
	}
	return ClientResult{
		Client: client,
		Server: srv,
	}
}
