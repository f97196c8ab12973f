package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	require.Equal(t, "Lebanon Hills", CleanText("\n\t Lebanon   Hills ​\n"))
	require.Equal(t, "", CleanText(" \n "))
}

func TestNormalizeColumn(t *testing.T) {
	testCases := map[string]string{
		"Location":     "location",
		" Bike  Model": "bike_model",
		"brand":        "brand",
	}
	for in, expected := range testCases {
		require.Equal(t, expected, NormalizeColumn(in))
	}
}

func TestUnique(t *testing.T) {
	require.Equal(
		t,
		[]string{"Lebanon Hills", "Murphy Hanrehan"},
		Unique([]string{"Lebanon Hills", "", "Murphy Hanrehan", "Lebanon Hills"}),
	)
	require.Equal(t, []string{}, Unique(nil))
}
