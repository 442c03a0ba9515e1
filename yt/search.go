package yt

import (
	"context"
	"strings"

	"github.com/ppalone/ytsearch"
	"github.com/raitonoberu/ytmusic"
)

// PageFunc fetches the next page of a search. more is false once the provider has no further pages.
type PageFunc func(ctx context.Context) (results []SearchResult, more bool, err error)

// SearchIterator is a lazy, finite sequence of search results.
// Pages are only requested when the buffered results run out.
type SearchIterator struct {
	fetch    PageFunc
	buf      []SearchResult
	pages    int
	maxPages int
	done     bool
	err      error
}

// NewSearchIterator wraps a page source. maxPages <= 0 means no page limit.
func NewSearchIterator(fetch PageFunc, maxPages int) *SearchIterator {
	return &SearchIterator{fetch: fetch, maxPages: maxPages}
}

// Next returns the next result, fetching a new page if needed
func (it *SearchIterator) Next(ctx context.Context) (SearchResult, bool) {
	for len(it.buf) == 0 {
		if it.done {
			return SearchResult{}, false
		}
		if err := ctx.Err(); err != nil {
			it.err = err
			it.done = true
			return SearchResult{}, false
		}

		results, more, err := it.fetch(ctx)
		it.pages++
		if err != nil {
			it.err = err
			it.done = true
			return SearchResult{}, false
		}
		if !more || len(results) == 0 || (it.maxPages > 0 && it.pages >= it.maxPages) {
			it.done = true
		}
		it.buf = append(it.buf, results...)
	}

	result := it.buf[0]
	it.buf = it.buf[1:]
	return result, true
}

// Err returns the error that ended the sequence, if any
func (it *SearchIterator) Err() error {
	return it.err
}

// Take drains at most n results
func Take(ctx context.Context, it *SearchIterator, n int) []SearchResult {
	var out []SearchResult
	for len(out) < n {
		result, ok := it.Next(ctx)
		if !ok {
			break
		}
		out = append(out, result)
	}
	return out
}

// First returns the first result accepted by match
func First(ctx context.Context, it *SearchIterator, match func(SearchResult) bool) (SearchResult, bool) {
	for {
		result, ok := it.Next(ctx)
		if !ok {
			return SearchResult{}, false
		}
		if match == nil || match(result) {
			return result, true
		}
	}
}

// songPages searches YouTube Music tracks, falling back to a plain YouTube search
// when the first music page comes back empty.
func songPages(query string) PageFunc {
	music := ytmusic.TrackSearch(query)
	first := true
	return func(ctx context.Context) ([]SearchResult, bool, error) {
		results, err := musicTrackPage(music)
		if first {
			first = false
			if err != nil || len(results) == 0 {
				fallback, ferr := videoSearchPage(ctx, query)
				return fallback, false, ferr
			}
		}
		if err != nil {
			return nil, false, err
		}
		return results, len(results) > 0, nil
	}
}

func musicTrackPage(search *ytmusic.SearchClient) ([]SearchResult, error) {
	page, err := search.Next()
	if err != nil {
		return nil, err
	}

	var out []SearchResult
	for _, track := range page.Tracks {
		if track.VideoID == "" {
			continue
		}
		title := track.Title
		if len(track.Artists) > 0 {
			title += " - " + track.Artists[0].Name
		}
		out = append(out, SearchResult{
			ID:    track.VideoID,
			URL:   WatchURL(track.VideoID),
			Title: title,
		})
	}
	return out, nil
}

func videoSearchPage(ctx context.Context, query string) ([]SearchResult, error) {
	client := ytsearch.NewClient(nil)
	page, err := client.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	var out []SearchResult
	for _, video := range page.Results {
		if video.VideoID == "" {
			continue
		}
		out = append(out, SearchResult{
			ID:    video.VideoID,
			URL:   WatchURL(video.VideoID),
			Title: video.Title,
		})
	}
	return out, nil
}

// playlistPages searches YouTube Music playlists
func playlistPages(query string) PageFunc {
	search := ytmusic.PlaylistSearch(query)
	return func(ctx context.Context) ([]SearchResult, bool, error) {
		page, err := search.Next()
		if err != nil {
			return nil, false, err
		}

		var out []SearchResult
		for _, playlist := range page.Playlists {
			id := strings.TrimPrefix(playlist.BrowseID, "VL")
			if id == "" {
				continue
			}
			out = append(out, SearchResult{
				ID:    id,
				URL:   PlaylistURL(id),
				Title: playlist.Title,
			})
		}
		return out, len(out) > 0, nil
	}
}
