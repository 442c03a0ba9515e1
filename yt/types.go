package yt

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrEmptyPlaylist = errors.New("playlist has no playable entries")
)

// VideoRef is the identity of a playable video. It is never mutated once built.
type VideoRef struct {
	ID              string `json:"id"`
	URL             string `json:"url"`
	Title           string `json:"title"`
	DurationSeconds int    `json:"duration_seconds"`
}

// Duration returns the video length as a time.Duration
func (v VideoRef) Duration() time.Duration {
	return time.Duration(v.DurationSeconds) * time.Second
}

// PlaylistRef groups the videos queued by a single playlist request.
// Queue items share one PlaylistRef by pointer and it lives as long as any of them does.
type PlaylistRef struct {
	URL                  string
	Title                string
	Requester            string
	Items                []VideoRef
	TotalDurationSeconds int
}

// NewPlaylistRef builds a PlaylistRef and sums the durations of its items
func NewPlaylistRef(url, title, requester string, items []VideoRef) *PlaylistRef {
	total := 0
	for _, item := range items {
		total += item.DurationSeconds
	}
	return &PlaylistRef{
		URL:                  url,
		Title:                title,
		Requester:            requester,
		Items:                items,
		TotalDurationSeconds: total,
	}
}

// AudioFormat is one audio-only encoding a video is available in
type AudioFormat struct {
	Itag        int    // Provider specific format id
	BitrateKbps int    // Audio bitrate in kbps
	Codec       string // Codec name, e.g. "opus" or "mp4a.40.2"
}

func (f AudioFormat) String() string {
	return fmt.Sprintf("%s@%dkbps", f.Codec, f.BitrateKbps)
}

// PlaylistInfo is the raw playlist as returned by the catalog
type PlaylistInfo struct {
	ID     string
	URL    string
	Title  string
	Author string
	Videos []VideoRef
}

// SearchResult is one entry of a search page
type SearchResult struct {
	ID    string
	URL   string
	Title string
}

// WatchURL returns the canonical watch URL of a video id
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// PlaylistURL returns the canonical URL of a playlist id
func PlaylistURL(playlistID string) string {
	return "https://www.youtube.com/playlist?list=" + playlistID
}
