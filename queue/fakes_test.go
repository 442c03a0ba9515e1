package queue

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"Cadence/yt"
)

type fakeSource struct {
	mu      sync.Mutex
	failing map[string]bool
	gate    chan struct{} // when set, ListAudioFormats blocks until it is closed
	opened  []string
}

func (f *fakeSource) ListAudioFormats(ctx context.Context, videoID string) ([]yt.AudioFormat, error) {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[videoID] {
		return nil, nil
	}
	return []yt.AudioFormat{{Itag: 251, BitrateKbps: 128, Codec: "opus"}}, nil
}

func (f *fakeSource) OpenStream(ctx context.Context, videoID string, format yt.AudioFormat) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, videoID)
	return io.NopCloser(strings.NewReader(videoID)), nil
}

// hold makes the following ListAudioFormats calls block until the returned channel is closed
func (f *fakeSource) hold() chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
	return f.gate
}

func (f *fakeSource) openedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.opened...)
}

type fakeTransport struct {
	mu    sync.Mutex
	joins int
	conn  *fakeConn
	err   error
}

func (t *fakeTransport) Join(ctx context.Context, guildID, channelID string) (Connection, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.joins++
	if t.err != nil {
		return nil, t.err
	}
	if t.conn == nil {
		t.conn = &fakeConn{}
	}
	t.conn.setChannel(channelID)
	return t.conn, nil
}

func (t *fakeTransport) joinCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.joins
}

func (t *fakeTransport) connection() *fakeConn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn
}

// fakeConn records transport calls. Streams only end when the test calls finish.
type fakeConn struct {
	mu        sync.Mutex
	channelID string
	plays     []string
	done      chan error
	gains     []float64
	stops     int
	leaves    int
}

func (c *fakeConn) setChannel(channelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channelID = channelID
}

func (c *fakeConn) ChannelID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channelID
}

func (c *fakeConn) Play(stream io.ReadCloser, gain float64) <-chan error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, _ := io.ReadAll(stream)
	if c.done != nil {
		c.done <- nil
		close(c.done)
	}
	c.plays = append(c.plays, string(data))
	c.gains = append(c.gains, gain)
	c.done = make(chan error, 1)
	return c.done
}

func (c *fakeConn) SetGain(gain float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gains = append(c.gains, gain)
}

func (c *fakeConn) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stops++
}

func (c *fakeConn) Leave() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leaves++
	return nil
}

// finish ends the active stream with err
func (c *fakeConn) finish(err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		return false
	}
	c.done <- err
	close(c.done)
	c.done = nil
	return true
}

func (c *fakeConn) playCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.plays)
}

func (c *fakeConn) played() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.plays...)
}

func (c *fakeConn) stopCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stops
}

func (c *fakeConn) leaveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.leaves
}

func (c *fakeConn) lastGain() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.gains) == 0 {
		return 0
	}
	return c.gains[len(c.gains)-1]
}

type fakeAnnouncer struct {
	mu       sync.Mutex
	messages []string
}

func (a *fakeAnnouncer) Announce(channelID, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, channelID+": "+message)
}

func (a *fakeAnnouncer) all() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.messages...)
}

type fakeSettings struct {
	mu      sync.Mutex
	volumes map[string]float64
	err     error
}

func (s *fakeSettings) LoadVolume(ctx context.Context, guildID string) (float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, false, s.err
	}
	v, ok := s.volumes[guildID]
	return v, ok, nil
}

func (s *fakeSettings) SaveVolume(ctx context.Context, guildID string, volume float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.volumes == nil {
		s.volumes = map[string]float64{}
	}
	s.volumes[guildID] = volume
	return nil
}

var errStream = errors.New("stream broke")

func song(id string) yt.VideoRef {
	return yt.VideoRef{ID: id, URL: yt.WatchURL(id), Title: "Song " + id, DurationSeconds: 90}
}

func item(id string) *QueueItem {
	return &QueueItem{Requester: "tester", Song: song(id)}
}

func ids(items []QueueItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Song.ID
	}
	return out
}
