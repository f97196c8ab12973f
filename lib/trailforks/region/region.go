// Package region implements the region operations of the trailforks api:
// validating aliases, region details and the paginated ride log, ride count,
// trail and region listings.
package region

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"trailforks-scraper/lib/telemetry"
	"trailforks-scraper/lib/trailforks/core"
	"trailforks-scraper/lib/trailforks/tferrors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("trailforks.lib.trailforks.region")

const (
	// MetersToMiles converts the metric distances of the api.
	MetersToMiles = 0.000621371
	// SuggestionCount is the amount of similar aliases attached to an
	// InvalidRegionError.
	SuggestionCount = 3
)

type Client struct {
	core   *core.Client
	lookup core.RegionLookup
}

func NewClient(client *core.Client, lookup core.RegionLookup) Client {
	return Client{
		core:   client,
		lookup: lookup,
	}
}

// IsValidRegion reports whether the api knows a region with the given alias.
func (c Client) IsValidRegion(ctx context.Context, region string) (bool, error) {
	ctx, span := tracer.Start(ctx, "IsValidRegion")
	defer span.End()
	span.SetAttributes(attribute.String("region", region))

	data, err := core.GetAPI[[]json.RawMessage](ctx, c.core, "is-valid-region", "/api/1/regions", map[string]string{
		"filter": core.FilterExpr("alias", region),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}
	return len(data) > 0, nil
}

// CheckRegion returns an *tferrors.InvalidRegionError when the region does
// not exist, carrying similar aliases when the lookup can suggest them.
func (c Client) CheckRegion(ctx context.Context, region string) error {
	valid, err := c.IsValidRegion(ctx, region)
	if err != nil {
		return err
	}
	if valid {
		return nil
	}

	invalid := &tferrors.InvalidRegionError{Region: region}
	suggester, ok := c.lookup.(core.RegionSuggester)
	if ok {
		suggestions, err := suggester.Suggest(ctx, region, SuggestionCount)
		if err != nil {
			slog.WarnContext(ctx, "failed to suggest region aliases", "region", region, "err", err)
		}
		invalid.Suggestions = suggestions
	}
	return invalid
}

// RegionIDByAlias resolves an alias through the local lookup table.
func (c Client) RegionIDByAlias(ctx context.Context, alias string) (int64, error) {
	if c.lookup == nil {
		return 0, &tferrors.LookupError{Alias: alias}
	}
	return c.lookup.RegionID(ctx, alias)
}

// resolve is the common prologue of the authenticated region operations.
func (c Client) resolve(ctx context.Context, region string) (int64, error) {
	err := c.core.RequireAuth(ctx)
	if err != nil {
		return 0, err
	}
	err = c.CheckRegion(ctx, region)
	if err != nil {
		return 0, err
	}
	return c.RegionIDByAlias(ctx, region)
}

type RegionInfo struct {
	RegionTitle   string `json:"region_title"`
	TotalRidelogs int64  `json:"total_ridelogs"`
	TotalTrails   int64  `json:"total_trails"`
	// TotalDistance, TotalDescent and HighestTrailhead are in miles.
	TotalDistance    float64 `json:"total_distance"`
	TotalDescent     float64 `json:"total_descent"`
	HighestTrailhead float64 `json:"highest_trailhead"`
	Reports          int64   `json:"reports"`
	Photos           int64   `json:"photos"`
	Ridden           int64   `json:"ridden"`
	Country          string  `json:"country"`
	StateProvince    string  `json:"state_province"`
	City             string  `json:"city"`
	Links            string  `json:"links"`
	Favorites        int64   `json:"favorites"`
	Rating           float64 `json:"rating"`
	// RegionCreated is a unix timestamp.
	RegionCreated int64 `json:"region_created"`
}

type regionInfoRow struct {
	Title                string      `json:"title"`
	TotalRidelogs        core.Number `json:"total_ridelogs"`
	TotalTrails          core.Number `json:"total_trails"`
	TotalDistance        core.Number `json:"total_distance"`
	TotalDescentDistance core.Number `json:"total_descent_distance"`
	HighestTrailhead     core.Number `json:"highest_trailhead"`
	TotalReports         core.Number `json:"total_reports"`
	TotalPhotos          core.Number `json:"total_photos"`
	Ridden               core.Number `json:"ridden"`
	CountryTitle         string      `json:"country_title"`
	ProvTitle            string      `json:"prov_title"`
	CityTitle            string      `json:"city_title"`
	Links                core.Number `json:"links"`
	Faved                core.Number `json:"faved"`
	Rating               core.Number `json:"rating"`
	Created              core.Number `json:"created"`
}

func (r regionInfoRow) info() RegionInfo {
	return RegionInfo{
		RegionTitle:      r.Title,
		TotalRidelogs:    r.TotalRidelogs.Int64(),
		TotalTrails:      r.TotalTrails.Int64(),
		TotalDistance:    r.TotalDistance.Float64() * MetersToMiles,
		TotalDescent:     r.TotalDescentDistance.Float64() * MetersToMiles,
		HighestTrailhead: r.HighestTrailhead.Float64() * MetersToMiles,
		Reports:          r.TotalReports.Int64(),
		Photos:           r.TotalPhotos.Int64(),
		Ridden:           r.Ridden.Int64(),
		Country:          r.CountryTitle,
		StateProvince:    r.ProvTitle,
		City:             r.CityTitle,
		Links:            r.Links.String(),
		Favorites:        r.Faved.Int64(),
		Rating:           r.Rating.Float64(),
		RegionCreated:    r.Created.Int64(),
	}
}

// RegionInfo fetches the detailed metrics of a region.
func (c Client) RegionInfo(ctx context.Context, region string) (RegionInfo, error) {
	ctx, span := tracer.Start(ctx, "RegionInfo")
	defer span.End()
	span.SetAttributes(attribute.String("region", region))

	id, err := c.resolve(ctx, region)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return RegionInfo{}, err
	}
	info, err := c.regionInfo(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return RegionInfo{}, err
	}
	return info, nil
}

func (c Client) regionInfo(ctx context.Context, id int64) (RegionInfo, error) {
	row, err := core.GetAPI[regionInfoRow](ctx, c.core, "region-info", "/api/1/region", map[string]string{
		"id":    strconv.FormatInt(id, 10),
		"scope": "detailed",
	})
	if err != nil {
		return RegionInfo{}, err
	}
	return row.info(), nil
}
