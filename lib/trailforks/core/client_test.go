package core

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"trailforks-scraper/lib/telemetry"
	"trailforks-scraper/lib/trailforks/tferrors"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler, opts ClientOptions) (*Client, *httptest.Server) {
	t.Helper()
	cleanup := telemetry.SetupForTesting(t, "test:trailforks/core")
	t.Cleanup(cleanup)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts.BaseUrl = srv.URL
	if opts.AppId == "" {
		opts.AppId = "app"
	}
	if opts.AppSecret == "" {
		opts.AppSecret = "secret"
	}
	client, err := NewClient(opts)
	if err != nil {
		t.Fatal(err)
	}
	return client, srv
}

type regionRow struct {
	Rid   Number `json:"rid"`
	Alias string `json:"alias"`
}

func TestGetAPISignsAndDecodes(t *testing.T) {
	var path, rawQuery string
	var query map[string][]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		rawQuery = r.URL.RawQuery
		query = r.URL.Query()
		w.Write([]byte(`{"error":0,"message":"","data":[{"rid":"3194","alias":"buck-hill"}]}`))
	}), ClientOptions{})

	rows, err := GetAPI[[]regionRow](context.Background(), client, "test", "/api/1/regions", map[string]string{
		"filter": FilterExpr("alias", "buck-hill"),
		"fields": Fields("rid", "alias"),
	})
	require.NoError(t, err)
	require.Equal(t, []regionRow{{Rid: "3194", Alias: "buck-hill"}}, rows)
	require.Equal(t, int64(3194), rows[0].Rid.Int64())

	require.Equal(t, "/api/1/regions", path)
	require.Contains(t, rawQuery, "filter=alias%3A%3Abuck-hill")
	require.Contains(t, rawQuery, "fields=rid%2Calias")
	require.Equal(t, []string{"app"}, query["app_id"])
	require.Equal(t, []string{"secret"}, query["app_secret"])
}

func TestGetAPIStatuses(t *testing.T) {
	status := http.StatusUnauthorized
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"error":   1,
			"message": "insufficient privileges",
			"data":    []any{},
		})
	}), ClientOptions{})

	ctx := context.Background()

	_, err := GetAPI[[]regionRow](ctx, client, "ridelogs", "/api/1/ridelogs", nil)
	require.ErrorIs(t, err, tferrors.ErrLockedAPI)
	var locked *tferrors.LockedAPIError
	require.True(t, errors.As(err, &locked))
	require.Equal(t, "insufficient privileges", locked.Message)

	status = http.StatusNotFound
	_, err = GetAPI[[]regionRow](ctx, client, "region", "/api/1/region", nil)
	require.ErrorIs(t, err, tferrors.ErrNotFound)
	require.NotErrorIs(t, err, tferrors.ErrLockedAPI)

	status = http.StatusInternalServerError
	_, err = GetAPI[[]regionRow](ctx, client, "region", "/api/1/region", nil)
	var apiErr *tferrors.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, 500, apiErr.StatusCode)
	require.NotErrorIs(t, err, tferrors.ErrNotFound)
}

func TestGetAPITransportError(t *testing.T) {
	client, srv := newTestClient(t, http.NotFoundHandler(), ClientOptions{Timeout: time.Second})
	srv.Close()

	_, err := GetAPI[[]regionRow](context.Background(), client, "regions", "/api/1/regions", nil)
	var transport *tferrors.TransportError
	require.True(t, errors.As(err, &transport))
	require.Equal(t, "regions", transport.Op)
}

func TestUserPath(t *testing.T) {
	client, err := NewClient(ClientOptions{Username: "some rider"})
	require.NoError(t, err)
	require.Equal(t, "/profile/some%20rider/ridelog/", client.UserPath("ridelog"))
	require.Equal(t, "/profile/some%20rider/", client.UserPath())
	require.Equal(t, DefaultBaseUrl, client.BaseUrl.String())
}

func TestNumber(t *testing.T) {
	var row struct {
		A Number `json:"a"`
		B Number `json:"b"`
		C Number `json:"c"`
		D Number `json:"d"`
	}
	err := json.Unmarshal([]byte(`{"a": "12", "b": 1662249831.5, "c": null, "d": true}`), &row)
	require.NoError(t, err)
	require.Equal(t, int64(12), row.A.Int64())
	require.Equal(t, 1662249831.5, row.B.Float64())
	require.Equal(t, int64(1662249831), row.B.Int64())
	require.Equal(t, Number(""), row.C)
	require.Equal(t, int64(0), row.C.Int64())
	require.Equal(t, "true", row.D.String())
}
