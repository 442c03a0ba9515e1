package music

import (
	"context"
	"fmt"
	"io"

	"Cadence/yt"

	"github.com/Strum355/log"
)

// Source lists and opens the audio encodings of a video
type Source interface {
	ListAudioFormats(ctx context.Context, videoID string) ([]yt.AudioFormat, error)
	OpenStream(ctx context.Context, videoID string, format yt.AudioFormat) (io.ReadCloser, error)
}

// OpenBestStream selects the best audio format for a video and opens its stream
func OpenBestStream(ctx context.Context, src Source, videoID string) (io.ReadCloser, error) {
	formats, err := src.ListAudioFormats(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("listing formats of %s: %w", videoID, err)
	}

	format, err := SelectAudioFormat(formats)
	if err != nil {
		return nil, fmt.Errorf("video %s: %w", videoID, err)
	}

	log.WithFields(log.Fields{
		"video_id": videoID,
		"codec":    format.Codec,
		"bitrate":  format.BitrateKbps,
	}).Info("Picked audio format")

	return src.OpenStream(ctx, videoID, format)
}
