package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
	"trailforks-scraper/lib/regiondb"
	"trailforks-scraper/lib/trailforks/tferrors"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trailforks.json5")
	err := os.WriteFile(path, []byte(`{
		// shared settings
		app_id: "file-app",
		app_secret: "file-secret",
		username: "rider",
		page_concurrency: 4,
		timezone: "UTC",
	}`), 0666)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "trailforks.local.json5"), []byte(`{password: "hunter2"}`), 0666)
	require.NoError(t, err)

	t.Setenv("TRAILFORKS_APP_SECRET", "env-secret")
	t.Setenv("TRAILFORKS_USERNAME", "")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, Config{
		AppId:           "file-app",
		AppSecret:       "env-secret",
		Username:        "rider",
		Password:        "hunter2",
		PageConcurrency: 4,
		RegionDb:        DefaultRegionDb,
		Timezone:        "UTC",
	}, cfg)

	opts, err := cfg.clientOptions()
	require.NoError(t, err)
	require.Equal(t, 4, opts.PageConcurrency)
	require.Nil(t, opts.DumpOutput)
	require.Equal(t, time.UTC, opts.Location)
}

func TestLoadConfigMissing(t *testing.T) {
	t.Setenv("TRAILFORKS_APP_ID", "env-app")
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.json5"))
	require.NoError(t, err)
	require.Equal(t, "env-app", cfg.AppId)
}

func TestRenderCSV(t *testing.T) {
	var buf bytes.Buffer
	output = &buf
	format = "csv"
	t.Cleanup(func() {
		output = os.Stdout
		format = "table"
	})

	err := render(table.Row{"brand", "model"}, []table.Row{{"Trek", "Fuel EX"}, {"Salsa", "Timberjack"}})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "Trek,Fuel EX\nSalsa,Timberjack")

	format = "xml"
	require.Error(t, render(table.Row{"a"}, nil))
}

func TestLookupMiss(t *testing.T) {
	var buf bytes.Buffer
	output = &buf
	t.Cleanup(func() {
		output = os.Stdout
		format = "table"
	})
	store := regiondb.MapLookup{"buck-hill": 3194, "lebanon-hills": 6021}
	lookupErr := &tferrors.LookupError{Alias: "buck-hil"}

	format = "csv"
	err := lookupMiss(context.Background(), store, "buck-hil", lookupErr)
	require.ErrorIs(t, err, tferrors.ErrLookup)
	require.Contains(t, buf.String(), "buck-hill")

	format = "xml"
	err = lookupMiss(context.Background(), store, "buck-hil", lookupErr)
	require.ErrorIs(t, err, tferrors.ErrLookup)
	require.ErrorContains(t, err, "unknown output format")
}
