package yt

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/kkdai/youtube/v2"
)

var (
	isURLRegex      = regexp.MustCompile(`(http(s)?://.)?(www\.)?[-a-zA-Z0-9@:%._+~#=]{2,256}\.[a-z]{2,6}\b([-a-zA-Z0-9@:%_+.~#?&/=]*)`)
	playlistIDRegex = regexp.MustCompile(`[?&]list=([a-zA-Z0-9_-]+)`)
	bareListRegex   = regexp.MustCompile(`^(PL|OL|RD|UU|FL)[a-zA-Z0-9_-]{10,}$`)
	codecsRegex     = regexp.MustCompile(`codecs="([^"]+)"`)
)

// IsURL reports whether the input looks like a URL rather than a search term
func IsURL(s string) bool {
	return isURLRegex.MatchString(s)
}

// ExtractPlaylistID returns the playlist id of a playlist URL, or the input if it is already an id
func ExtractPlaylistID(s string) (string, bool) {
	if m := playlistIDRegex.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	if bareListRegex.MatchString(s) {
		return s, true
	}
	return "", false
}

// fetchVideo fetches a video with its format list from YouTube
func fetchVideo(ctx context.Context, client *youtube.Client, videoID string) (*youtube.Video, error) {
	video, err := client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("%w: video %s: %v", ErrNotFound, videoID, err)
	}
	return video, nil
}

// openFormatStream opens the byte stream of a single format of a video
func openFormatStream(ctx context.Context, client *youtube.Client, video *youtube.Video, itag int) (io.ReadCloser, error) {
	format, err := findFormat(video, itag)
	if err != nil {
		return nil, err
	}

	stream, _, err := client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, fmt.Errorf("opening stream for video %s: %w", video.ID, err)
	}
	return stream, nil
}

func findFormat(video *youtube.Video, itag int) (*youtube.Format, error) {
	formats := video.Formats.Itag(itag)
	if len(formats) == 0 {
		return nil, fmt.Errorf("format %d of video %s: %w", itag, video.ID, ErrNotFound)
	}
	return &formats[0], nil
}

// fetchPlaylist fetches a playlist and all its entries
func fetchPlaylist(ctx context.Context, client *youtube.Client, playlistID string) (*PlaylistInfo, error) {
	playlist, err := client.GetPlaylistContext(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("%w: playlist %s: %v", ErrNotFound, playlistID, err)
	}

	info := &PlaylistInfo{
		ID:     playlist.ID,
		URL:    PlaylistURL(playlist.ID),
		Title:  playlist.Title,
		Author: playlist.Author,
	}
	for _, entry := range playlist.Videos {
		if entry == nil || entry.ID == "" {
			continue
		}
		info.Videos = append(info.Videos, VideoRef{
			ID:              entry.ID,
			URL:             WatchURL(entry.ID),
			Title:           entry.Title,
			DurationSeconds: int(entry.Duration.Seconds()),
		})
	}
	return info, nil
}

func toVideoRef(video *youtube.Video) *VideoRef {
	return &VideoRef{
		ID:              video.ID,
		URL:             WatchURL(video.ID),
		Title:           video.Title,
		DurationSeconds: int(video.Duration.Seconds()),
	}
}

// audioFormats keeps the audio-only formats of a format list
func audioFormats(formats youtube.FormatList) []AudioFormat {
	var out []AudioFormat
	for _, f := range formats {
		if !strings.HasPrefix(f.MimeType, "audio/") {
			continue
		}
		bitrate := f.AverageBitrate
		if bitrate <= 0 {
			bitrate = f.Bitrate
		}
		out = append(out, AudioFormat{
			Itag:        f.ItagNo,
			BitrateKbps: bitrate / 1000,
			Codec:       parseCodec(f.MimeType),
		})
	}
	return out
}

// parseCodec extracts the codec from a mime type such as `audio/webm; codecs="opus"`
func parseCodec(mimeType string) string {
	if m := codecsRegex.FindStringSubmatch(mimeType); m != nil {
		return m[1]
	}
	return ""
}
