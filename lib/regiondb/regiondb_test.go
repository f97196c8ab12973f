package regiondb

import (
	"context"
	"path/filepath"
	"testing"
	"trailforks-scraper/lib/trailforks/tferrors"

	"github.com/stretchr/testify/require"
)

var fixture = []Region{
	{ID: 3194, Alias: "buck-hill", Title: "Buck Hill"},
	{ID: 9341, Alias: "theodore-wirth-park", Title: "Theodore Wirth Park"},
	{ID: 6021, Alias: "lebanon-hills", Title: "Lebanon Hills"},
	{ID: 1, Alias: "", Title: "no alias"},
}

func openTestStore(t *testing.T) Store {
	t.Helper()
	store, err := OpenStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestImportAndLookup(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	written, err := store.Import(ctx, fixture)
	require.NoError(t, err)
	require.Equal(t, 3, written)

	id, err := store.RegionID(ctx, "buck-hill")
	require.NoError(t, err)
	require.Equal(t, int64(3194), id)

	_, err = store.RegionID(ctx, "nowhere")
	require.ErrorIs(t, err, tferrors.ErrLookup)

	// a second import updates rows in place
	written, err = store.Import(ctx, []Region{{ID: 3194, Alias: "buck-hill", Title: "Buck Hill Ski Area"}})
	require.NoError(t, err)
	require.Equal(t, 1, written)

	region, err := store.Region(ctx, "buck-hill")
	require.NoError(t, err)
	require.Equal(t, Region{ID: 3194, Alias: "buck-hill", Title: "Buck Hill Ski Area"}, region)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	aliases, err := store.Aliases(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"buck-hill", "lebanon-hills", "theodore-wirth-park"}, aliases)
}

func TestOpenOnDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "regions.db")

	store, err := OpenStore(path)
	require.NoError(t, err)
	_, err = store.Import(ctx, fixture)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := OpenStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	id, err := reopened.RegionID(ctx, "lebanon-hills")
	require.NoError(t, err)
	require.Equal(t, int64(6021), id)
}

func TestSuggest(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	_, err := store.Import(ctx, fixture)
	require.NoError(t, err)

	suggestions, err := store.Suggest(ctx, "buck-hil", 3)
	require.NoError(t, err)
	require.Equal(t, []string{"buck-hill"}, suggestions)

	suggestions, err = store.Suggest(ctx, "zzzzzz", 3)
	require.NoError(t, err)
	require.Empty(t, suggestions)
}

func TestMapLookup(t *testing.T) {
	ctx := context.Background()
	lookup := MapLookup{"buck-hill": 3194, "lebanon-hills": 6021}

	id, err := lookup.RegionID(ctx, "lebanon-hills")
	require.NoError(t, err)
	require.Equal(t, int64(6021), id)

	_, err = lookup.RegionID(ctx, "buck")
	require.ErrorIs(t, err, tferrors.ErrLookup)

	suggestions, err := lookup.Suggest(ctx, "Lebanon-Hils", 1)
	require.NoError(t, err)
	require.Equal(t, []string{"lebanon-hills"}, suggestions)
}
