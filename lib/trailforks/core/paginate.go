package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

// MaxPages is the ceiling on how many pages a single paginated call may plan.
const MaxPages = 10_000

var ErrUnboundedPagination = errors.New("pagination predicate did not stop")

// ContinueFunc reports whether `page` should be requested, `requested` is
// the amount of rows asked for by all the pages before it
// (page * page size), not the amount that actually came back. The api
// never signals a last page so every predicate must be bounded by its own
// arguments.
type ContinueFunc func(page, requested int) bool

// WhileBelow continues while fewer than `total` rows have been requested.
func WhileBelow(total int) ContinueFunc {
	return func(_, requested int) bool {
		return requested < total
	}
}

// WhileAtMost continues while no more than `estimate` rows have been
// requested, which asks for one page past the estimate.
func WhileAtMost(estimate int) ContinueFunc {
	return func(_, requested int) bool {
		return requested <= estimate
	}
}

// FixedPages requests exactly `pages` pages, whatever they contain.
func FixedPages(pages int) ContinueFunc {
	return func(page, _ int) bool {
		return page < pages
	}
}

type FetchFunc[T any] func(ctx context.Context, page int) ([]T, error)

// PageFunc is told about every page that arrived, it may be called from
// several goroutines at once.
type PageFunc func(page, rows int)

type Paginator[T any] struct {
	Op       string
	PageSize int
	Continue ContinueFunc
	// Concurrency is the amount of pages in flight at once, values below 2
	// mean one page at a time.
	Concurrency int
	Fetch       FetchFunc[T]
	OnPage      PageFunc
}

// Pages plans the page numbers the paginator will request.
func (p Paginator[T]) Pages() (int, error) {
	n := 0
	for p.Continue(n, n*p.PageSize) {
		n++
		if n > MaxPages {
			return 0, fmt.Errorf("%s: %w (over %d pages)", p.Op, ErrUnboundedPagination, MaxPages)
		}
	}
	return n, nil
}

// Collect fetches every planned page and concatenates the rows in ascending
// page order. The first failing page cancels the pages still in flight and
// the rows of every page are discarded.
func (p Paginator[T]) Collect(ctx context.Context) ([]T, error) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("paginate:%s", p.Op))
	defer span.End()

	pages, err := p.Pages()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("pages", pages),
		attribute.Int("page_size", p.PageSize),
	)

	limit := p.Concurrency
	if limit < 1 {
		limit = 1
	}

	results := make([][]T, pages)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)

	for page := 0; page < pages; page++ {
		group.Go(func() error {
			// pages queued behind a failure are never requested
			err := groupCtx.Err()
			if err != nil {
				return err
			}

			rows, err := p.Fetch(groupCtx, page)
			if err != nil {
				return err
			}
			results[page] = rows

			pageCounter.Add(groupCtx, 1, metric.WithAttributes(attribute.String("op", p.Op)))
			slog.DebugContext(groupCtx, "fetched page", "op", p.Op, "page", page, "rows", len(rows))
			if p.OnPage != nil {
				p.OnPage(page, len(rows))
			}
			return nil
		})
	}

	err = group.Wait()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	total := 0
	for _, rows := range results {
		total += len(rows)
	}
	out := make([]T, 0, total)
	for _, rows := range results {
		out = append(out, rows...)
	}
	return out, nil
}
