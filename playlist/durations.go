package playlist

import (
	"context"

	"Cadence/yt"

	"github.com/Strum355/log"
	"golang.org/x/sync/errgroup"
)

// fillDurations resolves the videos whose duration the playlist listing left out,
// with at most pm.concurrency lookups in flight. Videos that fail to resolve keep
// a zero duration.
func (pm *PlaylistManager) fillDurations(ctx context.Context, videos []yt.VideoRef) []yt.VideoRef {
	filled := make([]yt.VideoRef, len(videos))
	copy(filled, videos)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pm.concurrency)

	// Loops over each video and resolves missing durations concurrently
	for idx, video := range filled {
		if video.DurationSeconds > 0 {
			continue
		}
		g.Go(func() error {
			ref, err := pm.catalog.Resolve(gctx, video.ID)
			if err != nil {
				log.WithError(err).WithFields(log.Fields{"video_id": video.ID}).Debug("Could not resolve playlist entry duration")
				return nil
			}
			// each goroutine writes its own index
			filled[idx].DurationSeconds = ref.DurationSeconds
			if filled[idx].Title == "" {
				filled[idx].Title = ref.Title
			}
			return nil
		})
	}
	g.Wait()

	return filled
}
