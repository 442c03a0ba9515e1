package commands

import (
	"context"
	"errors"
	"fmt"

	"Cadence/queue"
	"Cadence/yt"
)

type enqueued struct {
	item         *queue.QueueItem
	playlist     *yt.PlaylistRef
	voiceChannel string
	textChannel  string
	immediate    bool
}

type fakePlayer struct {
	mode     queue.Mode
	enqueued []enqueued
	skip     queue.SkipResult
	skipList queue.SkipListResult
	stopped  bool
	skips    []int
	volumes  []int
	calls    int
}

func (p *fakePlayer) Enqueue(item *queue.QueueItem, voiceChannel, textChannel string, immediate bool) queue.Mode {
	p.calls++
	p.enqueued = append(p.enqueued, enqueued{item: item, voiceChannel: voiceChannel, textChannel: textChannel, immediate: immediate})
	return p.mode
}

func (p *fakePlayer) EnqueuePlaylist(playlist *yt.PlaylistRef, voiceChannel, textChannel string, immediate bool) queue.Mode {
	p.calls++
	p.enqueued = append(p.enqueued, enqueued{playlist: playlist, voiceChannel: voiceChannel, textChannel: textChannel, immediate: immediate})
	return p.mode
}

func (p *fakePlayer) Skip(count int) queue.SkipResult {
	p.calls++
	p.skips = append(p.skips, count)
	return p.skip
}

func (p *fakePlayer) SkipList() queue.SkipListResult {
	p.calls++
	return p.skipList
}

func (p *fakePlayer) Stop() bool {
	p.calls++
	return p.stopped
}

func (p *fakePlayer) SetVolume(ctx context.Context, percent int) int {
	p.calls++
	p.volumes = append(p.volumes, percent)
	return max(0, min(percent, queue.MaxVolumePercent))
}

type fakeSongs struct {
	videos   map[string]yt.VideoRef // by URL or id
	searches map[string]yt.SearchResult
	results  []yt.SearchResult
	resolved []string
}

func (f *fakeSongs) Resolve(ctx context.Context, urlOrID string) (*yt.VideoRef, error) {
	f.resolved = append(f.resolved, urlOrID)
	v, ok := f.videos[urlOrID]
	if !ok {
		return nil, yt.ErrNotFound
	}
	return &v, nil
}

func (f *fakeSongs) FirstSong(ctx context.Context, term string) (*yt.SearchResult, error) {
	r, ok := f.searches[term]
	if !ok {
		return nil, yt.ErrNotFound
	}
	return &r, nil
}

func (f *fakeSongs) Search(ctx context.Context, term string) *yt.SearchIterator {
	return f.iterator()
}

func (f *fakeSongs) SearchPlaylists(ctx context.Context, term string) *yt.SearchIterator {
	return f.iterator()
}

func (f *fakeSongs) iterator() *yt.SearchIterator {
	results := f.results
	return yt.NewSearchIterator(func(ctx context.Context) ([]yt.SearchResult, bool, error) {
		return results, false, nil
	}, 1)
}

type fakePlaylists struct {
	playlists map[string]*yt.PlaylistRef
	empty     map[string]bool
}

func (f *fakePlaylists) Find(ctx context.Context, query, requester string) (*yt.PlaylistRef, error) {
	if f.empty[query] {
		return nil, fmt.Errorf("%w: %s", yt.ErrEmptyPlaylist, query)
	}
	pl, ok := f.playlists[query]
	if !ok {
		return nil, yt.ErrNotFound
	}
	return yt.NewPlaylistRef(pl.URL, pl.Title, requester, pl.Items), nil
}

type fakeRegistrar struct {
	guilds []string
	err    error
}

func (f *fakeRegistrar) RegisterGuild(guildID string) error {
	f.guilds = append(f.guilds, guildID)
	return f.err
}

type fakeRecorder struct {
	results map[string][]bool
}

func (f *fakeRecorder) CommandExecuted(command string, success bool) {
	if f.results == nil {
		f.results = map[string][]bool{}
	}
	f.results[command] = append(f.results[command], success)
}

var errRegister = errors.New("discord unavailable")

type testRouter struct {
	*Router
	player    *fakePlayer
	songs     *fakeSongs
	playlists *fakePlaylists
	registrar *fakeRegistrar
	recorder  *fakeRecorder
}

func newTestRouter() *testRouter {
	tr := &testRouter{
		player: &fakePlayer{},
		songs: &fakeSongs{
			videos:   map[string]yt.VideoRef{},
			searches: map[string]yt.SearchResult{},
		},
		playlists: &fakePlaylists{playlists: map[string]*yt.PlaylistRef{}, empty: map[string]bool{}},
		registrar: &fakeRegistrar{},
		recorder:  &fakeRecorder{},
	}
	tr.Router = NewRouter("!", Deps{
		Players:   func(guildID string) Player { return tr.player },
		Songs:     tr.songs,
		Playlists: tr.playlists,
		Registrar: tr.registrar,
		Recorder:  tr.recorder,
	})
	return tr
}

// voiceRequest is a request from a user in a voice channel the bot may join
func voiceRequest() Request {
	return Request{
		GuildID:        "guild",
		TextChannelID:  "text",
		UserID:         "user-id",
		Username:       "tester",
		VoiceChannelID: "voice",
		BotPermissions: voicePermissions,
	}
}

func video(id string, seconds int) yt.VideoRef {
	return yt.VideoRef{ID: id, URL: yt.WatchURL(id), Title: "Song " + id, DurationSeconds: seconds}
}
