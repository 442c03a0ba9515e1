package yt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Strum355/log"
	"github.com/kkdai/youtube/v2"
	"github.com/redis/go-redis/v9"
)

type YouTubeManager struct {
	client       *youtube.Client
	redis        *redis.Client
	cacheYoutube time.Duration
	cacheSearch  time.Duration
	searchPages  int

	mu      sync.Mutex
	pending map[string]*youtube.Video // videos whose formats were listed but not streamed yet

	songPages     func(query string) PageFunc
	playlistPages func(query string) PageFunc
}

// CacheOptions controls how long catalog lookups stay in Redis and how deep searches go
type CacheOptions struct {
	VideoTTL    time.Duration
	SearchTTL   time.Duration
	SearchPages int
}

// NewYouTubeManager creates a YouTubeManager with Redis cache. A nil client disables caching.
func NewYouTubeManager(rdb *redis.Client, opts CacheOptions) *YouTubeManager {
	return &YouTubeManager{
		client:        &youtube.Client{},
		redis:         rdb,
		cacheYoutube:  opts.VideoTTL,
		cacheSearch:   opts.SearchTTL,
		searchPages:   opts.SearchPages,
		pending:       make(map[string]*youtube.Video),
		songPages:     songPages,
		playlistPages: playlistPages,
	}
}

// Resolve returns the identity of a video given its URL or id
func (ym *YouTubeManager) Resolve(ctx context.Context, urlOrID string) (*VideoRef, error) {
	videoID, err := youtube.ExtractVideoID(urlOrID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, urlOrID)
	}

	// Try Redis
	var ref VideoRef
	if ym.getCached(ctx, "ytmeta:"+videoID, &ref) {
		return &ref, nil
	}

	// Fetch from Youtube
	video, err := fetchVideo(ctx, ym.client, videoID)
	if err != nil {
		return nil, err
	}
	resolved := toVideoRef(video)

	// Store in Redis
	ym.setCached(ctx, "ytmeta:"+videoID, resolved, ym.cacheYoutube)
	return resolved, nil
}

// ListAudioFormats returns the audio-only formats available for a video
func (ym *YouTubeManager) ListAudioFormats(ctx context.Context, videoID string) ([]AudioFormat, error) {
	video, err := fetchVideo(ctx, ym.client, videoID)
	if err != nil {
		return nil, err
	}

	return ym.remember(videoID, video), nil
}

// remember keeps a video until its stream is opened. Videos without audio are
// never streamed, so they are not kept.
func (ym *YouTubeManager) remember(videoID string, video *youtube.Video) []AudioFormat {
	formats := audioFormats(video.Formats)
	if len(formats) == 0 {
		return nil
	}

	ym.mu.Lock()
	ym.pending[videoID] = video
	ym.mu.Unlock()
	return formats
}

// OpenStream opens the audio byte stream of the given format
func (ym *YouTubeManager) OpenStream(ctx context.Context, videoID string, format AudioFormat) (io.ReadCloser, error) {
	ym.mu.Lock()
	video, ok := ym.pending[videoID]
	delete(ym.pending, videoID)
	ym.mu.Unlock()

	if !ok {
		var err error
		if video, err = fetchVideo(ctx, ym.client, videoID); err != nil {
			return nil, err
		}
	}
	return openFormatStream(ctx, ym.client, video, format.Itag)
}

// Search returns a lazy sequence of songs matching term
func (ym *YouTubeManager) Search(ctx context.Context, term string) *SearchIterator {
	return NewSearchIterator(ym.songPages(term), ym.searchPages)
}

// SearchPlaylists returns a lazy sequence of playlists matching term
func (ym *YouTubeManager) SearchPlaylists(ctx context.Context, term string) *SearchIterator {
	return NewSearchIterator(ym.playlistPages(term), ym.searchPages)
}

// FirstSong returns the best song match for a search term, cached per term
func (ym *YouTubeManager) FirstSong(ctx context.Context, term string) (*SearchResult, error) {
	var cached SearchResult
	if ym.getCached(ctx, "ytsearch:"+term, &cached) {
		log.WithFields(log.Fields{"term": term, "video_id": cached.ID}).Debug("Loaded search result from cache")
		return &cached, nil
	}

	it := ym.Search(ctx, term)
	result, ok := First(ctx, it, nil)
	if !ok {
		if err := it.Err(); err != nil {
			return nil, fmt.Errorf("%w: search %q: %v", ErrNotFound, term, err)
		}
		return nil, fmt.Errorf("%w: search %q", ErrNotFound, term)
	}

	ym.setCached(ctx, "ytsearch:"+term, result, ym.cacheSearch)
	return &result, nil
}

// GetPlaylist fetches a playlist given its URL or id
func (ym *YouTubeManager) GetPlaylist(ctx context.Context, urlOrID string) (*PlaylistInfo, error) {
	playlistID, ok := ExtractPlaylistID(urlOrID)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a playlist", ErrNotFound, urlOrID)
	}
	return fetchPlaylist(ctx, ym.client, playlistID)
}

func (ym *YouTubeManager) getCached(ctx context.Context, key string, v any) bool {
	if ym.redis == nil {
		return false
	}
	cached, err := ym.redis.Get(ctx, key).Result()
	if err != nil || cached == "" {
		return false
	}
	if err := json.Unmarshal([]byte(cached), v); err != nil {
		log.WithError(err).WithFields(log.Fields{"key": key}).Warn("Dropping unreadable cache entry")
		ym.redis.Del(ctx, key)
		return false
	}
	return true
}

func (ym *YouTubeManager) setCached(ctx context.Context, key string, v any, ttl time.Duration) {
	if ym.redis == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := ym.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		log.WithError(err).WithFields(log.Fields{"key": key}).Warn("Failed to write cache entry")
	}
}
