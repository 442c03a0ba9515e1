package yt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakePages serves the given pages in order and counts the fetches
func fakePages(pages [][]SearchResult, calls *int) PageFunc {
	return func(ctx context.Context) ([]SearchResult, bool, error) {
		*calls++
		if *calls > len(pages) {
			return nil, false, nil
		}
		return pages[*calls-1], *calls < len(pages), nil
	}
}

func results(ids ...string) []SearchResult {
	out := make([]SearchResult, len(ids))
	for i, id := range ids {
		out[i] = SearchResult{ID: id, URL: WatchURL(id), Title: "title " + id}
	}
	return out
}

func TestSearchIterator_Lazy(t *testing.T) {
	calls := 0
	it := NewSearchIterator(fakePages([][]SearchResult{results("a", "b"), results("c")}, &calls), 0)

	assert.Equal(t, 0, calls)

	first, ok := it.Next(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "a", first.ID)
	assert.Equal(t, 1, calls)

	it.Next(context.Background())
	assert.Equal(t, 1, calls)

	third, ok := it.Next(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "c", third.ID)
	assert.Equal(t, 2, calls)

	_, ok = it.Next(context.Background())
	assert.False(t, ok)
	assert.NoError(t, it.Err())
}

func TestSearchIterator_MaxPages(t *testing.T) {
	calls := 0
	it := NewSearchIterator(fakePages([][]SearchResult{results("a"), results("b"), results("c")}, &calls), 2)

	got := Take(context.Background(), it, 10)

	assert.Len(t, got, 2)
	assert.Equal(t, 2, calls)
}

func TestSearchIterator_Error(t *testing.T) {
	boom := errors.New("boom")
	it := NewSearchIterator(func(ctx context.Context) ([]SearchResult, bool, error) {
		return nil, false, boom
	}, 0)

	_, ok := it.Next(context.Background())

	assert.False(t, ok)
	assert.ErrorIs(t, it.Err(), boom)
}

func TestSearchIterator_CancelledContext(t *testing.T) {
	calls := 0
	it := NewSearchIterator(fakePages([][]SearchResult{results("a")}, &calls), 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := it.Next(ctx)

	assert.False(t, ok)
	assert.Equal(t, 0, calls)
	assert.ErrorIs(t, it.Err(), context.Canceled)
}

func TestTake(t *testing.T) {
	calls := 0
	it := NewSearchIterator(fakePages([][]SearchResult{results("a", "b", "c", "d", "e", "f"), results("g", "h")}, &calls), 0)

	got := Take(context.Background(), it, 7)

	assert.Len(t, got, 7)
	assert.Equal(t, "g", got[6].ID)
}

func TestFirst(t *testing.T) {
	calls := 0
	it := NewSearchIterator(fakePages([][]SearchResult{results("a", "b"), results("c")}, &calls), 0)

	got, ok := First(context.Background(), it, func(r SearchResult) bool { return r.ID == "c" })

	assert.True(t, ok)
	assert.Equal(t, "c", got.ID)

	_, ok = First(context.Background(), it, nil)
	assert.False(t, ok)
}
