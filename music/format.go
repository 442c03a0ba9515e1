package music

import (
	"cmp"
	"errors"
	"slices"

	"Cadence/yt"
)

const (
	// PreferredCodec is picked over other codecs whenever it reaches MinBitrateKbps
	PreferredCodec = "opus"
	MinBitrateKbps = 64
)

var ErrNoAudioFormats = errors.New("no audio formats available")

// SelectAudioFormat picks the format to stream. Candidates are scanned by ascending
// bitrate and the scan stops at the first pick that is both preferred and good enough,
// so a higher bitrate in another codec is never considered past that point.
func SelectAudioFormat(formats []yt.AudioFormat) (yt.AudioFormat, error) {
	if len(formats) == 0 {
		return yt.AudioFormat{}, ErrNoAudioFormats
	}

	sorted := slices.Clone(formats)
	slices.SortStableFunc(sorted, func(a, b yt.AudioFormat) int {
		return cmp.Compare(a.BitrateKbps, b.BitrateKbps)
	})

	best := sorted[0]
	for _, candidate := range sorted {
		higher := candidate.BitrateKbps > best.BitrateKbps
		keepsCodec := isPreferred(candidate) || !isPreferred(best)
		if higher && keepsCodec {
			best = candidate
		}

		if best.BitrateKbps >= MinBitrateKbps && isPreferred(best) {
			break
		}
	}

	return best, nil
}

func isPreferred(f yt.AudioFormat) bool {
	return f.Codec == PreferredCodec
}
