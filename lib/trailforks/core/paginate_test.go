package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPredicatePages(t *testing.T) {
	testCases := []struct {
		name     string
		pageSize int
		cont     ContinueFunc
		expected int
	}{
		{name: "while below total", pageSize: 500, cont: WhileBelow(1001), expected: 3},
		{name: "while below exact multiple", pageSize: 500, cont: WhileBelow(1000), expected: 2},
		{name: "while below nothing", pageSize: 500, cont: WhileBelow(0), expected: 0},
		{name: "while at most estimate", pageSize: 500, cont: WhileAtMost(40000), expected: 81},
		{name: "fixed pages", pageSize: 100, cont: FixedPages(4), expected: 4},
		{name: "fixed zero pages", pageSize: 100, cont: FixedPages(0), expected: 0},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			p := Paginator[int]{Op: "test", PageSize: test.pageSize, Continue: test.cont}
			pages, err := p.Pages()
			require.NoError(t, err)
			require.Equal(t, test.expected, pages)
		})
	}
}

func TestUnboundedPagination(t *testing.T) {
	p := Paginator[int]{
		Op:       "forever",
		PageSize: 10,
		Continue: func(int, int) bool { return true },
		Fetch: func(context.Context, int) ([]int, error) {
			t.Fatal("no page should be fetched")
			return nil, nil
		},
	}
	_, err := p.Collect(context.Background())
	require.ErrorIs(t, err, ErrUnboundedPagination)
}

func TestCollectKeepsPageOrder(t *testing.T) {
	for _, concurrency := range []int{0, 1, 4} {
		var inFlight, maxInFlight atomic.Int32
		var mu sync.Mutex
		seen := map[int]int{}

		p := Paginator[int]{
			Op:          "ordered",
			PageSize:    2,
			Continue:    FixedPages(6),
			Concurrency: concurrency,
			Fetch: func(ctx context.Context, page int) ([]int, error) {
				n := inFlight.Add(1)
				defer inFlight.Add(-1)
				for {
					current := maxInFlight.Load()
					if n <= current || maxInFlight.CompareAndSwap(current, n) {
						break
					}
				}
				// later pages finish first
				time.Sleep(time.Duration(6-page) * time.Millisecond)
				return []int{page * 2, page*2 + 1}, nil
			},
			OnPage: func(page, rows int) {
				mu.Lock()
				defer mu.Unlock()
				seen[page] = rows
			},
		}

		rows, err := p.Collect(context.Background())
		require.NoError(t, err)
		require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, rows)
		require.Len(t, seen, 6)

		limit := int32(concurrency)
		if limit < 1 {
			limit = 1
		}
		require.LessOrEqual(t, maxInFlight.Load(), limit)
	}
}

func TestCollectFailsFast(t *testing.T) {
	boom := errors.New("boom")
	var fetched atomic.Int32

	p := Paginator[int]{
		Op:       "failing",
		PageSize: 10,
		Continue: FixedPages(5),
		Fetch: func(ctx context.Context, page int) ([]int, error) {
			fetched.Add(1)
			if page == 1 {
				return nil, boom
			}
			return []int{page}, nil
		},
	}

	rows, err := p.Collect(context.Background())
	require.ErrorIs(t, err, boom)
	require.Nil(t, rows)
	require.Equal(t, int32(2), fetched.Load())
}

func TestCollectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Paginator[int]{
		Op:       "cancelled",
		PageSize: 10,
		Continue: FixedPages(3),
		Fetch: func(context.Context, int) ([]int, error) {
			t.Fatal("no page should be fetched")
			return nil, nil
		},
	}
	_, err := p.Collect(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
