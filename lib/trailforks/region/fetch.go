package region

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"time"
	"trailforks-scraper/lib/regiondb"
	"trailforks-scraper/lib/timezone"
	"trailforks-scraper/lib/trailforks/core"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	RideCountPageSize = 500
	RidelogPageSize   = 100
	RegionPageSize    = 500
	TrailRows         = 100
	// RegionCountEstimate bounds the bulk region listing, the api does not
	// report how many regions exist.
	RegionCountEstimate = 40_000

	DateLayout    = "2006-01-02"
	RidelogLayout = "01/02/2006"
)

func ridelogParams(fields string, pageSize int, rid int64, page int) map[string]string {
	return map[string]string{
		"fields": fields,
		"filter": core.FilterExpr("rid", strconv.FormatInt(rid, 10)),
		"rows":   strconv.Itoa(pageSize),
		"page":   strconv.Itoa(page),
		"order":  "desc",
		"sort":   "created",
	}
}

type RideCount struct {
	Date  string `json:"date"`
	Rides int    `json:"rides"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Day   int    `json:"day"`
	// WeekdayNum counts from Monday = 0.
	WeekdayNum int    `json:"weekday_num"`
	Weekday    string `json:"weekday"`
	MonthName  string `json:"month_name"`
}

type createdRow struct {
	Created core.Number `json:"created"`
}

// countRides groups rides by their UTC day, latest day first.
func countRides(rows []createdRow) []RideCount {
	counts := map[string]int{}
	for _, row := range rows {
		day := timezone.FromEpoch(row.Created.Float64()).UTC().Format(DateLayout)
		counts[day]++
	}

	out := make([]RideCount, 0, len(counts))
	for day, rides := range counts {
		t, _ := time.Parse(DateLayout, day)
		out = append(out, RideCount{
			Date:       day,
			Rides:      rides,
			Year:       t.Year(),
			Month:      int(t.Month()),
			Day:        t.Day(),
			WeekdayNum: timezone.WeekdayIndex(t.Weekday()),
			Weekday:    t.Weekday().String(),
			MonthName:  t.Month().String()[:3],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out
}

// RideCounts returns the amount of rides logged in a region per day. Pages
// are requested until the region's `ridden` total is covered.
func (c Client) RideCounts(ctx context.Context, region string) ([]RideCount, error) {
	ctx, span := tracer.Start(ctx, "RideCounts")
	defer span.End()
	span.SetAttributes(attribute.String("region", region))

	id, err := c.resolve(ctx, region)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	info, err := c.regionInfo(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	fields := core.Fields("created")
	paginator := core.Paginator[createdRow]{
		Op:          "ride-counts",
		PageSize:    RideCountPageSize,
		Continue:    core.WhileBelow(int(info.Ridden)),
		Concurrency: c.core.PageConcurrency(),
		Fetch: func(ctx context.Context, page int) ([]createdRow, error) {
			return core.GetAPI[[]createdRow](ctx, c.core, "ride-counts", "/api/1/ridelogs",
				ridelogParams(fields, RideCountPageSize, id, page),
			)
		},
	}
	rows, err := paginator.Collect(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return countRides(rows), nil
}

type Ridelog struct {
	Note         string      `json:"note"`
	Created      core.Number `json:"created"`
	LocationName string      `json:"location_name"`
	LocationID   core.Number `json:"location_id"`
	Year         core.Number `json:"year"`
	DeviceName   string      `json:"device_name"`
	Username     string      `json:"username"`
	// Date is Created rendered in the client's location.
	Date string `json:"date"`
}

// Ridelogs fetches exactly `pages` pages of the latest ride logs of a
// region, pages past the end of the data come back empty.
func (c Client) Ridelogs(ctx context.Context, region string, pages int) ([]Ridelog, error) {
	ctx, span := tracer.Start(ctx, "Ridelogs")
	defer span.End()
	span.SetAttributes(
		attribute.String("region", region),
		attribute.Int("pages", pages),
	)

	id, err := c.resolve(ctx, region)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	fields := core.Fields("note", "created", "location_name", "location_id", "year", "device_name", "username")
	paginator := core.Paginator[Ridelog]{
		Op:          "ridelogs",
		PageSize:    RidelogPageSize,
		Continue:    core.FixedPages(pages),
		Concurrency: c.core.PageConcurrency(),
		Fetch: func(ctx context.Context, page int) ([]Ridelog, error) {
			return core.GetAPI[[]Ridelog](ctx, c.core, "ridelogs", "/api/1/ridelogs",
				ridelogParams(fields, RidelogPageSize, id, page),
			)
		},
	}
	logs, err := paginator.Collect(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	location := c.core.Location()
	for i := range logs {
		logs[i].Date = timezone.FromEpoch(logs[i].Created.Float64()).In(location).Format(RidelogLayout)
	}
	return logs, nil
}

// Stats is the nested `stats` object of a trail. The api sends an empty
// json array instead of an empty object.
type Stats map[string]core.Number

func (s *Stats) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		*s = Stats{}
		return nil
	}
	var m map[string]core.Number
	err := json.Unmarshal(b, &m)
	if err != nil {
		return err
	}
	*s = m
	return nil
}

type Trail struct {
	Title          string      `json:"title"`
	Alias          string      `json:"alias"`
	Created        core.Number `json:"created"`
	Difficulty     core.Number `json:"difficulty"`
	PhysicalRating core.Number `json:"physical_rating"`
	TotalJumps     core.Number `json:"total_jumps"`
	TotalPOI       core.Number `json:"total_poi"`
	Faved          core.Number `json:"faved"`
	Stats          Stats       `json:"stats"`
}

// TrailColumns is every column of a trail listing, the stats object is
// flattened into "stats.<name>" columns.
func TrailColumns(trails []Trail) []string {
	columns := []string{
		"created", "title", "difficulty", "physical_rating",
		"total_jumps", "total_poi", "alias", "faved",
	}
	seen := map[string]bool{}
	var stats []string
	for _, t := range trails {
		for key := range t.Stats {
			if seen[key] {
				continue
			}
			seen[key] = true
			stats = append(stats, key)
		}
	}
	sort.Strings(stats)
	for _, key := range stats {
		columns = append(columns, "stats."+key)
	}
	return columns
}

// Record flattens a trail into column -> value.
func (t Trail) Record() map[string]string {
	record := map[string]string{
		"created":         t.Created.String(),
		"title":           t.Title,
		"difficulty":      t.Difficulty.String(),
		"physical_rating": t.PhysicalRating.String(),
		"total_jumps":     t.TotalJumps.String(),
		"total_poi":       t.TotalPOI.String(),
		"alias":           t.Alias,
		"faved":           t.Faved.String(),
	}
	for key, value := range t.Stats {
		record["stats."+key] = value.String()
	}
	return record
}

// Trails lists the trails of a region, a single page of TrailRows rows.
func (c Client) Trails(ctx context.Context, region string) ([]Trail, error) {
	ctx, span := tracer.Start(ctx, "Trails")
	defer span.End()
	span.SetAttributes(attribute.String("region", region))

	id, err := c.resolve(ctx, region)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	trails, err := core.GetAPI[[]Trail](ctx, c.core, "trails", "/api/1/trails", map[string]string{
		"scope":  "full",
		"fields": core.Fields("created", "title", "difficulty", "physical_rating", "total_jumps", "total_poi", "alias", "faved", "stats"),
		"filter": core.FilterExpr("rid", strconv.FormatInt(id, 10)),
		"rows":   strconv.Itoa(TrailRows),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return trails, nil
}

type regionRow struct {
	Rid   core.Number `json:"rid"`
	Title string      `json:"title"`
	Alias string      `json:"alias"`
}

// AllRegions lists every region the api knows about. onPage, when set, is
// told about every page that arrived.
func (c Client) AllRegions(ctx context.Context, onPage core.PageFunc) ([]regiondb.Region, error) {
	ctx, span := tracer.Start(ctx, "AllRegions")
	defer span.End()

	err := c.core.RequireAuth(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	fields := core.Fields("rid", "title", "alias")
	paginator := core.Paginator[regionRow]{
		Op:          "all-regions",
		PageSize:    RegionPageSize,
		Continue:    core.WhileAtMost(RegionCountEstimate),
		Concurrency: c.core.PageConcurrency(),
		OnPage:      onPage,
		Fetch: func(ctx context.Context, page int) ([]regionRow, error) {
			return core.GetAPI[[]regionRow](ctx, c.core, "all-regions", "/api/1/regions", map[string]string{
				"scope":  "basic",
				"fields": fields,
				"rows":   strconv.Itoa(RegionPageSize),
				"page":   strconv.Itoa(page),
			})
		},
	}
	rows, err := paginator.Collect(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	regions := make([]regiondb.Region, len(rows))
	for i, row := range rows {
		regions[i] = regiondb.Region{
			ID:    row.Rid.Int64(),
			Alias: row.Alias,
			Title: row.Title,
		}
	}
	span.SetAttributes(attribute.Int("regions", len(regions)))
	return regions, nil
}

// RegionPages is the amount of pages AllRegions requests.
func RegionPages() int {
	n, _ := core.Paginator[regionRow]{
		PageSize: RegionPageSize,
		Continue: core.WhileAtMost(RegionCountEstimate),
	}.Pages()
	return n
}
