// Package regiondb is the local alias -> region id table, stored in sqlite
// and filled from the bulk region listing of the api.
package regiondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"trailforks-scraper/lib/telemetry"
	"trailforks-scraper/lib/trailforks/tferrors"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	_ "modernc.org/sqlite"
)

var tracer = telemetry.Tracer("trailforks.lib.regiondb")

// MinSimilarity is the lowest jaro-winkler score an alias needs to be
// suggested.
const MinSimilarity = 0.8

type Region struct {
	ID    int64  `json:"rid"`
	Alias string `json:"alias"`
	Title string `json:"title"`
}

func wrapOpen(err error) error {
	return fmt.Errorf("open region db: %w", err)
}

// Open opens (and creates if needed) the database at `path` and applies the
// schema, ":memory:" gives a throwaway database.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, wrapOpen(err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapOpen(err)
	}

	// sqlite does not handle concurrent writers, a single connection also
	// keeps a :memory: database alive between queries
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, wrapOpen(err)
	}
	_, err = db.Exec(Schema)
	if err != nil {
		db.Close()
		return nil, wrapOpen(err)
	}

	return db, nil
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) Store {
	return Store{db: db}
}

// OpenStore is Open followed by NewStore.
func OpenStore(path string) (Store, error) {
	db, err := Open(path)
	if err != nil {
		return Store{}, err
	}
	return NewStore(db), nil
}

func (s Store) Close() error {
	return s.db.Close()
}

// Import upserts every region in a single transaction and returns the
// amount of rows written, regions without an alias are skipped.
func (s Store) Import(ctx context.Context, regions []Region) (int, error) {
	ctx, span := tracer.Start(ctx, "Import")
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		insert into region(rid, alias, title) values (?, ?, ?)
		on conflict(rid) do update set alias = excluded.alias, title = excluded.title`)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	defer stmt.Close()

	written := 0
	for _, r := range regions {
		if r.Alias == "" {
			continue
		}
		_, err = stmt.ExecContext(ctx, r.ID, r.Alias, r.Title)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return 0, fmt.Errorf("import region %d (%s): %w", r.ID, r.Alias, err)
		}
		written++
	}

	err = tx.Commit()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	span.SetAttributes(attribute.Int("regions", written))
	return written, nil
}

func (s Store) RegionID(ctx context.Context, alias string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"select rid from region where alias = ? order by rid limit 1",
		alias,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &tferrors.LookupError{Alias: alias}
	}
	if err != nil {
		return 0, fmt.Errorf("lookup region id of %q: %w", alias, err)
	}
	return id, nil
}

// Region returns the full row of an alias.
func (s Store) Region(ctx context.Context, alias string) (Region, error) {
	var r Region
	err := s.db.QueryRowContext(ctx,
		"select rid, alias, title from region where alias = ? order by rid limit 1",
		alias,
	).Scan(&r.ID, &r.Alias, &r.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return Region{}, &tferrors.LookupError{Alias: alias}
	}
	if err != nil {
		return Region{}, err
	}
	return r, nil
}

func (s Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "select count(*) from region").Scan(&n)
	return n, err
}

func (s Store) Aliases(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "select distinct alias from region order by alias")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aliases []string
	for rows.Next() {
		var alias string
		err = rows.Scan(&alias)
		if err != nil {
			return nil, err
		}
		aliases = append(aliases, alias)
	}
	return aliases, rows.Err()
}

func (s Store) Suggest(ctx context.Context, alias string, n int) ([]string, error) {
	aliases, err := s.Aliases(ctx)
	if err != nil {
		return nil, err
	}
	return Suggest(aliases, alias, n), nil
}

// Suggest returns up to `n` of `candidates` most similar to `alias`, best
// match first.
func Suggest(candidates []string, alias string, n int) []string {
	type scored struct {
		alias string
		score float64
	}

	target := strings.ToLower(strings.TrimSpace(alias))
	var matches []scored
	for _, candidate := range candidates {
		if candidate == alias {
			continue
		}
		score := matchr.JaroWinkler(target, strings.ToLower(candidate), false)
		if score < MinSimilarity {
			continue
		}
		matches = append(matches, scored{alias: candidate, score: score})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if n > 0 && len(matches) > n {
		matches = matches[:n]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.alias
	}
	return out
}

// MapLookup is an in-memory alias -> id table.
type MapLookup map[string]int64

func (m MapLookup) RegionID(_ context.Context, alias string) (int64, error) {
	id, ok := m[alias]
	if !ok {
		return 0, &tferrors.LookupError{Alias: alias}
	}
	return id, nil
}

func (m MapLookup) Suggest(_ context.Context, alias string, n int) ([]string, error) {
	aliases := make([]string, 0, len(m))
	for a := range m {
		aliases = append(aliases, a)
	}
	sort.Strings(aliases)
	return Suggest(aliases, alias, n), nil
}
