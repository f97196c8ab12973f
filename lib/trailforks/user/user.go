// Package user scrapes the profile pages of the configured trailforks user.
// Pages that fail to parse degrade to "unknown" values or empty lists.
package user

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"trailforks-scraper/lib/htmlutil"
	"trailforks-scraper/lib/telemetry"
	"trailforks-scraper/lib/textutil"
	"trailforks-scraper/lib/trailforks/core"
	"trailforks-scraper/lib/trailforks/tferrors"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("trailforks.lib.trailforks.user")

const (
	Unknown        = "unknown"
	DefaultCountry = "USA"
)

var rideIdRegex = regexp.MustCompile(`view/(\d{8})/$`)

type Client struct {
	core *core.Client
}

func NewClient(client *core.Client) Client {
	return Client{core: client}
}

func (c Client) requireUsername(op string) error {
	if strings.TrimSpace(c.core.Username()) == "" {
		return &tferrors.AuthError{Op: op, Err: tferrors.ErrMissingUsername}
	}
	return nil
}

type Profile struct {
	Username            string   `json:"username"`
	ProfileLink         string   `json:"profile_link"`
	City                string   `json:"city"`
	State               string   `json:"state"`
	Country             string   `json:"country"`
	RecentRideLocations []string `json:"recent_ride_locations"`
}

// UserInfo collects the location and recent ride locations of the user.
func (c Client) UserInfo(ctx context.Context) (Profile, error) {
	ctx, span := tracer.Start(ctx, "UserInfo")
	defer span.End()

	err := c.requireUsername("user-info")
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Profile{}, err
	}

	// only the first word of a display name is part of the profile url
	username := strings.Fields(c.core.Username())[0]
	profile := Profile{
		Username:            username,
		ProfileLink:         c.core.BaseUrl.JoinPath("profile", username).String(),
		RecentRideLocations: c.recentRides(ctx),
	}
	profile.City, profile.State, profile.Country = c.location(ctx)

	span.SetAttributes(
		attribute.String("city", profile.City),
		attribute.Int("recent_rides", len(profile.RecentRideLocations)),
	)
	return profile, nil
}

func (c Client) location(ctx context.Context) (city, state, country string) {
	doc, err := c.core.GetDocument(ctx, "user-profile", c.core.UserPath(), nil)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch user profile", "err", err)
		return Unknown, Unknown, Unknown
	}
	return LocationOf(doc)
}

// LocationOf reads the location of a profile page, every part is "unknown"
// when the page has none.
func LocationOf(doc *goquery.Document) (city, state, country string) {
	li := doc.Find("li.location").First()
	if li.Length() == 0 {
		return Unknown, Unknown, Unknown
	}
	return ParseLocation(li.Text())
}

// ParseLocation splits a profile location:
//
//	"City, State"          -> (City, State, USA)
//	"City, State, Country" -> (City, unknown, Country)
//	anything else          -> (unknown, <raw>, unknown)
func ParseLocation(raw string) (city, state, country string) {
	raw = strings.TrimSpace(raw)
	parts := strings.Split(raw, ",")
	switch len(parts) {
	case 2:
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), DefaultCountry
	case 3:
		// the state of a three part location is dropped
		return strings.TrimSpace(parts[0]), Unknown, strings.TrimSpace(parts[2])
	default:
		return Unknown, raw, Unknown
	}
}

func ridelogQuery(withRace bool) map[string]string {
	query := map[string]string{
		"sort":         "l.timestamp",
		"activitytype": "1",
		"year":         "0",
		"bikeid":       "0",
	}
	if withRace {
		query["raceid"] = "0"
	}
	return query
}

// recentRides lists the distinct locations of the user's ride log.
func (c Client) recentRides(ctx context.Context) []string {
	doc, err := c.core.GetDocument(ctx, "user-recent-rides", c.core.UserPath("ridelog"), ridelogQuery(false))
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch recent rides", "err", err)
		return []string{}
	}
	table, ok := htmlutil.FirstTable(doc)
	if !ok {
		return []string{}
	}
	locations, ok := table.ColumnValues("location")
	if !ok {
		return []string{}
	}
	return textutil.Unique(locations)
}

type Ridelogs struct {
	Table htmlutil.Table
	// Links are the distinct ride log links of the table, RideIDs the ids
	// that could be read out of them. Neither lines up with Table.Rows.
	Links   []string
	RideIDs []string
}

// UserRidelogs scrapes the ride log table of the user.
func (c Client) UserRidelogs(ctx context.Context) (Ridelogs, error) {
	ctx, span := tracer.Start(ctx, "UserRidelogs")
	defer span.End()

	err := c.requireUsername("user-ridelogs")
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Ridelogs{}, err
	}

	doc, err := c.core.GetDocument(ctx, "user-ridelogs", c.core.UserPath("ridelog"), ridelogQuery(true))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Ridelogs{}, err
	}
	return ParseRidelogs(ctx, doc), nil
}

// ParseRidelogs reads the first table of a ride log page.
func ParseRidelogs(ctx context.Context, doc *goquery.Document) Ridelogs {
	table, ok := htmlutil.FirstTable(doc)
	if !ok {
		slog.DebugContext(ctx, "ride log page has no table")
		return Ridelogs{Links: []string{}, RideIDs: []string{}}
	}

	var links []string
	for _, row := range table.RowNodes {
		row.ChildrenFiltered("td").Each(func(_ int, cell *goquery.Selection) {
			anchors := htmlutil.GetAnchors(ctx, cell.Find("a").First())
			for _, a := range anchors {
				if strings.Contains(a.Href, "ridelog/view") && !strings.Contains(a.Href, "achievements") {
					links = append(links, a.Href)
				}
			}
		})
	}
	links = textutil.Unique(links)

	return Ridelogs{
		Table:   table,
		Links:   links,
		RideIDs: ParseRideIDs(links),
	}
}

// ParseRideIDs reads the 8 digit ride id out of every ride log link, links
// without one are skipped.
func ParseRideIDs(links []string) []string {
	ids := []string{}
	for _, link := range links {
		match := rideIdRegex.FindStringSubmatch(link)
		if match == nil {
			continue
		}
		ids = append(ids, match[1])
	}
	return ids
}

// RescanRidelogsForBadges asks the site to re-evaluate badges for each ride,
// one after another. The first failing request stops the rescan and false
// is returned with its error.
func (c Client) RescanRidelogsForBadges(ctx context.Context, ids []string) (bool, error) {
	ctx, span := tracer.Start(ctx, "RescanRidelogsForBadges")
	defer span.End()
	span.SetAttributes(attribute.Int("rides", len(ids)))

	err := c.core.CheckCookie()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	for _, id := range ids {
		path := "/ridelog/view/" + strings.TrimSpace(id) + "/rescanbadges/"
		err = c.core.Touch(ctx, "rescan-badges", path)
		if err != nil {
			slog.ErrorContext(ctx, "failed to rescan ride", "ride_id", id, "err", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return false, err
		}
		slog.DebugContext(ctx, "rescanned ride", "ride_id", id)
	}
	return true, nil
}

type Gear struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
}

// UserGear lists the bikes on the user's profile, it needs a login cookie.
func (c Client) UserGear(ctx context.Context) ([]Gear, error) {
	ctx, span := tracer.Start(ctx, "UserGear")
	defer span.End()

	err := c.core.CheckCookie()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	doc, err := c.core.GetDocument(ctx, "user-gear", c.core.UserPath("bikes"), nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return ParseGear(doc), nil
}

// ParseGear reads (brand, model) pairs out of the first table of a bikes
// page, rows without a model are skipped.
func ParseGear(doc *goquery.Document) []Gear {
	gear := []Gear{}
	table, ok := htmlutil.FirstTable(doc)
	if !ok {
		return gear
	}
	if table.Column("brand") < 0 || table.Column("model") < 0 {
		return gear
	}
	for i := range table.Rows {
		model := table.Value(i, "model")
		if model == "" {
			continue
		}
		gear = append(gear, Gear{
			Brand: table.Value(i, "brand"),
			Model: model,
		})
	}
	return gear
}
