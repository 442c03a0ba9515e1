package queue

import (
	"context"
	"errors"
	"io"
)

var ErrNoVoiceChannel = errors.New("no voice channel to join")

// Transport joins voice channels. Joining the channel a guild is already
// connected to returns the existing connection.
type Transport interface {
	Join(ctx context.Context, guildID, channelID string) (Connection, error)
}

// Connection is a live voice connection of one guild
type Connection interface {
	ChannelID() string
	// Play attaches the stream and starts playback, replacing any active stream.
	// The returned channel yields exactly one value once playback ends:
	// nil when the stream completed or was stopped, the error otherwise.
	Play(stream io.ReadCloser, gain float64) <-chan error
	SetGain(gain float64)
	Stop()
	Leave() error
}

// Announcer posts messages to a text channel
type Announcer interface {
	Announce(channelID, message string)
}

// SettingsStore persists per guild settings
type SettingsStore interface {
	LoadVolume(ctx context.Context, guildID string) (volume float64, found bool, err error)
	SaveVolume(ctx context.Context, guildID string, volume float64) error
}

// Recorder receives playback events for metrics
type Recorder interface {
	StreamStarted()
	StreamFailed()
}

type nopRecorder struct{}

func (nopRecorder) StreamStarted() {}
func (nopRecorder) StreamFailed()  {}

type nopAnnouncer struct{}

func (nopAnnouncer) Announce(string, string) {}
