package queue

import (
	"context"
	"sync"
	"time"

	"Cadence/music"

	"github.com/Strum355/log"
)

// RegistryConfig holds the collaborators shared by every guild player
type RegistryConfig struct {
	Source        music.Source
	Transport     Transport
	Announcer     Announcer
	Settings      SettingsStore // optional
	Recorder      Recorder      // optional
	DefaultVolume float64
	MaxVolume     int // percent
}

// Registry maps guild IDs to their players. Players are created on first use and
// live for the lifetime of the process.
type Registry struct {
	cfg    RegistryConfig
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	players map[string]*GuildPlayer
	wg      sync.WaitGroup
}

func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.Announcer == nil {
		cfg.Announcer = nopAnnouncer{}
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.MaxVolume <= 0 {
		cfg.MaxVolume = MaxVolumePercent
	}
	if cfg.DefaultVolume <= 0 {
		cfg.DefaultVolume = DefaultVolume
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
		players: make(map[string]*GuildPlayer),
	}
}

// Get returns the player of a guild, creating it with the stored or default volume
func (r *Registry) Get(guildID string) *GuildPlayer {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.players[guildID]; ok {
		return p
	}

	p := &GuildPlayer{
		ID:        guildID,
		source:    r.cfg.Source,
		transport: r.cfg.Transport,
		announcer: r.cfg.Announcer,
		settings:  r.cfg.Settings,
		recorder:  r.cfg.Recorder,
		maxVolume: r.cfg.MaxVolume,
		ctx:       r.ctx,
		events:    make(chan event, 16),
		volume:    r.loadVolume(guildID),
	}
	r.players[guildID] = p

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		p.run()
	}()
	return p
}

func (r *Registry) loadVolume(guildID string) float64 {
	if r.cfg.Settings == nil {
		return r.cfg.DefaultVolume
	}

	ctx, cancel := context.WithTimeout(r.ctx, 5*time.Second)
	defer cancel()

	volume, found, err := r.cfg.Settings.LoadVolume(ctx, guildID)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"guild_id": guildID}).Warn("Could not load stored volume, using default")
		return r.cfg.DefaultVolume
	}
	if !found {
		return r.cfg.DefaultVolume
	}
	return max(0, min(volume, float64(r.cfg.MaxVolume)/100))
}

// Players returns the number of guilds with a player
func (r *Registry) Players() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// QueuedItems returns the number of queued items across all guilds
func (r *Registry) QueuedItems() int {
	r.mu.Lock()
	players := make([]*GuildPlayer, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, p)
	}
	r.mu.Unlock()

	total := 0
	for _, p := range players {
		total += p.Len()
	}
	return total
}

// StopAll stops playback in every guild, leaves all voice channels and waits for the players to exit
func (r *Registry) StopAll() {
	r.cancel()
	r.wg.Wait()
}
