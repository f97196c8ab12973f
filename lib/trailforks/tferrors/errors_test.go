package tferrors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMatching(t *testing.T) {
	invalid := fmt.Errorf("ride counts: %w", &InvalidRegionError{Region: "buck-hil", Suggestions: []string{"buck-hill"}})
	require.ErrorIs(t, invalid, ErrInvalidRegion)
	require.Contains(t, invalid.Error(), "did you mean: buck-hill?")
	require.NotContains(t, (&InvalidRegionError{Region: "x"}).Error(), "did you mean")

	require.ErrorIs(t, &LockedAPIError{Op: "trails"}, ErrLockedAPI)
	require.ErrorIs(t, &LookupError{Alias: "x"}, ErrLookup)
	require.ErrorIs(t, &AuthError{Op: "login", Err: ErrLoginFailed}, ErrLoginFailed)

	transport := &TransportError{Op: "regions", URL: "/api/1/regions", Err: io.ErrUnexpectedEOF}
	require.ErrorIs(t, transport, io.ErrUnexpectedEOF)

	require.ErrorIs(t, &APIError{Op: "region", StatusCode: 404}, ErrNotFound)
	require.False(t, errors.Is(&APIError{Op: "region", StatusCode: 500}, ErrNotFound))
}
