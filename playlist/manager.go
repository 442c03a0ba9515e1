package playlist

import (
	"context"
	"fmt"
	"strings"

	"Cadence/yt"

	"github.com/Strum355/log"
)

// Catalog is the part of the YouTube manager needed to build playlists
type Catalog interface {
	SearchPlaylists(ctx context.Context, term string) *yt.SearchIterator
	GetPlaylist(ctx context.Context, urlOrID string) (*yt.PlaylistInfo, error)
	Resolve(ctx context.Context, urlOrID string) (*yt.VideoRef, error)
}

type PlaylistManager struct {
	catalog     Catalog
	concurrency int // max videos resolved at once while filling durations
}

// NewManager returns a new instance of PlaylistManager
func NewManager(catalog Catalog, concurrency int) *PlaylistManager {
	if concurrency < 1 {
		concurrency = 1
	}
	return &PlaylistManager{
		catalog:     catalog,
		concurrency: concurrency,
	}
}

// Find builds a playlist request from a playlist URL, a playlist id or a search term
func (pm *PlaylistManager) Find(ctx context.Context, query, requester string) (*yt.PlaylistRef, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty playlist query", yt.ErrNotFound)
	}

	target := query
	if _, ok := yt.ExtractPlaylistID(query); !ok {
		result, err := pm.searchPlaylist(ctx, query)
		if err != nil {
			return nil, err
		}
		target = result.URL
	}

	info, err := pm.catalog.GetPlaylist(ctx, target)
	if err != nil {
		return nil, err
	}
	if len(info.Videos) == 0 {
		return nil, fmt.Errorf("%w: '%s', %s", yt.ErrEmptyPlaylist, info.Title, info.URL)
	}

	videos := pm.fillDurations(ctx, info.Videos)

	log.WithFields(log.Fields{
		"playlist_id": info.ID,
		"title":       info.Title,
		"items":       len(videos),
	}).Info("Resolved playlist")

	return yt.NewPlaylistRef(info.URL, info.Title, requester, videos), nil
}

func (pm *PlaylistManager) searchPlaylist(ctx context.Context, term string) (yt.SearchResult, error) {
	it := pm.catalog.SearchPlaylists(ctx, term)
	result, ok := yt.First(ctx, it, func(r yt.SearchResult) bool { return r.ID != "" })
	if ok {
		return result, nil
	}
	if err := it.Err(); err != nil {
		return yt.SearchResult{}, fmt.Errorf("%w: playlist search %q: %v", yt.ErrNotFound, term, err)
	}
	return yt.SearchResult{}, fmt.Errorf("%w: playlist search %q", yt.ErrNotFound, term)
}
