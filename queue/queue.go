package queue

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"Cadence/music"
	"Cadence/utils"
	"Cadence/yt"

	"github.com/Strum355/log"
)

const (
	DefaultVolume    = 0.75
	MaxVolumePercent = 300

	joinTimeout = 10 * time.Second
)

var (
	errSuperseded = errors.New("item left the head of the queue before its stream started")
	errSkipped    = errors.New("item was skipped before its stream started")
)

// Mode tells whether an enqueue started playback
type Mode int

const (
	ModeQueued Mode = iota
	ModePlayed
)

func (m Mode) String() string {
	if m == ModePlayed {
		return "played"
	}
	return "queued"
}

type QueueItem struct {
	Requester string          // Username of who requested the song
	Song      yt.VideoRef     // Song to play
	Playlist  *yt.PlaylistRef // Playlist request the item came from, nil for single songs
}

type SkipResult struct {
	Success      bool
	SkippedCount int
	Title        string // Title of the item that was playing
}

type SkipListResult struct {
	Success      bool
	SkipCount    int
	SkippedTitle string // Title of the skipped playlist
}

type eventKind int

const (
	eventStart eventKind = iota
	eventCompleted
)

type event struct {
	kind eventKind
	item *QueueItem
	err  error
}

// GuildPlayer owns the play queue of one guild. queue[0] is the item that is
// streaming or about to stream. Commands only truncate the queue and signal the
// connection to stop; the head is popped and the next stream started solely by
// the event loop in run.
type GuildPlayer struct {
	ID string

	source    music.Source
	transport Transport
	announcer Announcer
	settings  SettingsStore
	recorder  Recorder
	maxVolume int

	ctx    context.Context
	events chan event

	mu           sync.Mutex
	volume       float64
	items        []*QueueItem
	voiceChannel string
	textChannel  string
	conn         Connection
	playing      *QueueItem // item whose stream is being started or is attached
	attached     bool       // playing has a stream attached to conn
	stopFor      *QueueItem // stop requested for this item before its stream attached
}

// Enqueue adds an item to the queue, at the tail or directly after the playing
// item when immediate is set. It returns ModePlayed if the queue was empty.
func (p *GuildPlayer) Enqueue(item *QueueItem, voiceChannel, textChannel string, immediate bool) Mode {
	p.mu.Lock()
	p.setChannelsLocked(voiceChannel, textChannel)
	mode := p.enqueueLocked(item, immediate)
	p.mu.Unlock()

	if mode == ModePlayed {
		p.post(event{kind: eventStart})
	}
	return mode
}

// EnqueuePlaylist queues every item of a playlist as one contiguous run.
// With immediate set the run is placed directly after the playing item in playlist order.
func (p *GuildPlayer) EnqueuePlaylist(playlist *yt.PlaylistRef, voiceChannel, textChannel string, immediate bool) Mode {
	p.mu.Lock()
	p.setChannelsLocked(voiceChannel, textChannel)

	songs := playlist.Items
	if immediate && len(p.items) > 0 {
		songs = make([]yt.VideoRef, len(playlist.Items))
		for i, song := range playlist.Items {
			songs[len(songs)-1-i] = song
		}
	} else {
		immediate = false
	}

	mode := ModeQueued
	for _, song := range songs {
		item := &QueueItem{Requester: playlist.Requester, Song: song, Playlist: playlist}
		if p.enqueueLocked(item, immediate) == ModePlayed {
			mode = ModePlayed
		}
	}
	p.mu.Unlock()

	if mode == ModePlayed {
		p.post(event{kind: eventStart})
	}
	return mode
}

func (p *GuildPlayer) enqueueLocked(item *QueueItem, immediate bool) Mode {
	if len(p.items) == 0 {
		p.items = append(p.items, item)
		p.stopFor = nil
		return ModePlayed
	}

	if immediate {
		p.items = slices.Insert(p.items, 1, item)
	} else {
		p.items = append(p.items, item)
	}
	return ModeQueued
}

func (p *GuildPlayer) setChannelsLocked(voiceChannel, textChannel string) {
	if voiceChannel != "" {
		p.voiceChannel = voiceChannel
	}
	if textChannel != "" {
		p.textChannel = textChannel
	}
}

// Skip drops up to count-1 items after the playing one and stops the playing stream.
// The playing item itself leaves the queue once its stream reports completion.
func (p *GuildPlayer) Skip(count int) SkipResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.items) == 0 {
		return SkipResult{}
	}
	if count < 1 {
		count = 1
	}

	skipped := min(count, len(p.items))
	p.items = slices.Delete(p.items, 1, skipped)
	title := p.items[0].Song.Title
	p.stopCurrentLocked()

	return SkipResult{Success: true, SkippedCount: skipped, Title: title}
}

// SkipList drops the run of items right after the playing one that share its
// playlist, then stops the playing stream. Items of the same playlist further
// down the queue are kept.
func (p *GuildPlayer) SkipList() SkipListResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.items) == 0 || p.items[0].Playlist == nil {
		return SkipListResult{}
	}

	playlist := p.items[0].Playlist
	end := 1
	for end < len(p.items) && p.items[end].Playlist == playlist {
		end++
	}
	p.items = slices.Delete(p.items, 1, end)
	p.stopCurrentLocked()

	return SkipListResult{Success: true, SkipCount: end - 1, SkippedTitle: playlist.Title}
}

// Stop clears the queue and stops the playing stream. It reports whether anything was playing.
func (p *GuildPlayer) Stop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.items) == 0 {
		return false
	}

	p.stopCurrentLocked()
	clear(p.items)
	p.items = p.items[:0]
	return true
}

// stopCurrentLocked stops the head's stream, or marks the head to be dropped
// when its stream is not attached yet. The attached stream may still be a
// previous head whose completion has not been handled.
func (p *GuildPlayer) stopCurrentLocked() {
	if p.attached && p.playing == p.items[0] && p.conn != nil {
		p.conn.Stop()
		return
	}
	p.stopFor = p.items[0]
}

// SetVolume clamps percent to [0, max], stores it and applies it to the playing stream.
// It returns the stored percentage.
func (p *GuildPlayer) SetVolume(ctx context.Context, percent int) int {
	percent = max(0, min(percent, p.maxVolume))
	volume := float64(percent) / 100

	p.mu.Lock()
	p.volume = volume
	if p.attached && p.conn != nil {
		p.conn.SetGain(volume)
	}
	p.mu.Unlock()

	if p.settings != nil {
		if err := p.settings.SaveVolume(ctx, p.ID, volume); err != nil {
			log.WithError(err).WithFields(log.Fields{"guild_id": p.ID}).Error("Failed to persist volume")
		}
	}
	return percent
}

// Volume returns the playback volume as a fraction, 1 being 100%
func (p *GuildPlayer) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Queue returns a copy of the queue, head first
func (p *GuildPlayer) Queue() []QueueItem {
	p.mu.Lock()
	defer p.mu.Unlock()

	items := make([]QueueItem, len(p.items))
	for i, item := range p.items {
		items[i] = *item
	}
	return items
}

// Len returns the number of items in the queue including the playing one
func (p *GuildPlayer) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

func (p *GuildPlayer) post(ev event) {
	select {
	case p.events <- ev:
	case <-p.ctx.Done():
	}
}

// run processes stream events one at a time until ctx is cancelled
func (p *GuildPlayer) run() {
	for {
		select {
		case <-p.ctx.Done():
			p.shutdown()
			return
		case ev := <-p.events:
			switch ev.kind {
			case eventStart:
				p.advance()
			case eventCompleted:
				p.complete(ev.item, ev.err)
			}
		}
	}
}

// complete retires item after its stream ended and moves on to the next one
func (p *GuildPlayer) complete(item *QueueItem, err error) {
	if err != nil {
		p.recorder.StreamFailed()
		log.WithError(err).WithFields(log.Fields{
			"guild_id": p.ID,
			"video_id": item.Song.ID,
		}).Error("Stream ended with error")
	}

	p.mu.Lock()
	if p.playing == item {
		p.playing = nil
		p.attached = false
	}
	p.popLocked(item)
	p.mu.Unlock()

	p.advance()
}

func (p *GuildPlayer) popLocked(item *QueueItem) {
	if len(p.items) > 0 && p.items[0] == item {
		p.items[0] = nil
		p.items = p.items[1:]
	}
}

// advance starts the head of the queue unless it is already playing, and leaves
// the voice channel once the queue is empty. Items whose stream cannot be
// started are dropped and the next one is tried.
func (p *GuildPlayer) advance() {
	for p.ctx.Err() == nil {
		p.mu.Lock()
		if len(p.items) == 0 {
			conn := p.conn
			p.conn = nil
			p.playing = nil
			p.attached = false
			p.stopFor = nil
			p.mu.Unlock()

			if conn != nil {
				if err := conn.Leave(); err != nil {
					log.WithError(err).WithFields(log.Fields{"guild_id": p.ID}).Error("Failed to leave voice channel")
				}
			}
			return
		}

		head := p.items[0]
		if p.playing == head {
			p.mu.Unlock()
			return
		}
		p.playing = head
		p.attached = false
		voiceChannel, textChannel := p.voiceChannel, p.textChannel
		p.mu.Unlock()

		err := p.startStream(head, voiceChannel, textChannel)
		if err == nil {
			return
		}

		if !errors.Is(err, errSuperseded) && !errors.Is(err, errSkipped) {
			p.recorder.StreamFailed()
			log.WithError(err).WithFields(log.Fields{
				"guild_id": p.ID,
				"video_id": head.Song.ID,
			}).Error("Could not start stream, skipping item")
		}

		p.mu.Lock()
		if p.playing == head {
			p.playing = nil
		}
		p.popLocked(head)
		p.mu.Unlock()
	}
}

// startStream resolves the audio of item, joins the voice channel and attaches the stream
func (p *GuildPlayer) startStream(item *QueueItem, voiceChannel, textChannel string) error {
	p.announcer.Announce(textChannel, fmt.Sprintf("Playing: %s | %s <%s>",
		utils.FormatDuration(item.Song.Duration()), item.Song.Title, item.Song.URL))

	// The stream outlives this call, so it is bound to the player's context
	stream, err := music.OpenBestStream(p.ctx, p.source, item.Song.ID)
	if err != nil {
		return err
	}

	joinCtx, cancel := context.WithTimeout(p.ctx, joinTimeout)
	defer cancel()
	conn, err := p.connect(joinCtx, voiceChannel)
	if err != nil {
		stream.Close()
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.items) == 0 || p.items[0] != item {
		stream.Close()
		return errSuperseded
	}
	if p.stopFor == item {
		p.stopFor = nil
		stream.Close()
		return errSkipped
	}

	done := conn.Play(stream, p.volume)
	p.attached = true
	p.recorder.StreamStarted()
	go func() {
		p.post(event{kind: eventCompleted, item: item, err: <-done})
	}()
	return nil
}

// connect reuses the guild's connection when it is already in voiceChannel
func (p *GuildPlayer) connect(ctx context.Context, voiceChannel string) (Connection, error) {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()

	if conn != nil && conn.ChannelID() == voiceChannel {
		return conn, nil
	}
	if voiceChannel == "" {
		return nil, ErrNoVoiceChannel
	}

	conn, err := p.transport.Join(ctx, p.ID, voiceChannel)
	if err != nil {
		return nil, fmt.Errorf("joining voice channel %s: %w", voiceChannel, err)
	}

	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()
	return conn, nil
}

// shutdown stops playback and leaves the voice channel
func (p *GuildPlayer) shutdown() {
	p.mu.Lock()
	conn := p.conn
	p.conn = nil
	p.items = nil
	p.playing = nil
	p.attached = false
	p.mu.Unlock()

	if conn != nil {
		conn.Stop()
		conn.Leave()
	}
}
