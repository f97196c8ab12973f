// Package tferrors defines the error values returned by the trailforks clients.
//
// Every failure that used to end the process (unknown region, locked api) is
// returned as a value instead, callers decide whether it is fatal.
package tferrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRegion         = errors.New("invalid region")
	ErrLockedAPI             = errors.New("locked api")
	ErrLookup                = errors.New("region alias not found in lookup table")
	ErrNotFound              = errors.New("not found")
	ErrLoginFailed           = errors.New("failed to login to your account")
	ErrNoCookie              = errors.New("no authentication cookie, login first")
	ErrMissingAppCredentials = errors.New("app_id and app_secret are required")
	ErrMissingCredentials    = errors.New("username and password are required")
	ErrMissingUsername       = errors.New("no username configured")
)

// InvalidRegionError is returned when the api does not know a region alias.
type InvalidRegionError struct {
	Region string
	// Suggestions holds similar aliases from the local lookup table, if any.
	Suggestions []string
}

func (e *InvalidRegionError) Error() string {
	msg := fmt.Sprintf("%s is not a valid trailforks region", e.Region)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean: %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *InvalidRegionError) Unwrap() error {
	return ErrInvalidRegion
}

// LockedAPIError is returned on HTTP 401, the app or user lacks the
// privileges for the requested scope.
type LockedAPIError struct {
	Op      string
	Message string
}

func (e *LockedAPIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("locked api during %s", e.Op)
	}
	return fmt.Sprintf("locked api during %s: %s", e.Op, e.Message)
}

func (e *LockedAPIError) Unwrap() error {
	return ErrLockedAPI
}

// LookupError is returned when an alias is missing from the local
// alias -> id table.
type LookupError struct {
	Alias string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup region id of %q: %s", e.Alias, ErrLookup.Error())
}

func (e *LookupError) Unwrap() error {
	return ErrLookup
}

// TransportError wraps network level failures.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("transport error during %s to %s: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx response that is neither 401 nor a transport failure.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error during %s: status code %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error during %s: status code %d", e.Op, e.StatusCode)
}

// Is makes a 404 match ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}

// AuthError indicates a login or session failure.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error during %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
