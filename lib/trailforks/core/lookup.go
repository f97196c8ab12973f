package core

import "context"

// RegionLookup resolves a region alias to its numeric id from local
// reference data. A missing alias is reported as a *tferrors.LookupError.
type RegionLookup interface {
	RegionID(ctx context.Context, alias string) (int64, error)
}

// RegionSuggester is optionally implemented by a RegionLookup that can
// propose similar aliases for a misspelled one.
type RegionSuggester interface {
	Suggest(ctx context.Context, alias string, n int) ([]string, error)
}
