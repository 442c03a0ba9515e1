package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Cadence/commands"
	"Cadence/config"
	"Cadence/db_client"
	"Cadence/handlers"
	"Cadence/metrics"
	"Cadence/playlist"
	"Cadence/queue"
	"Cadence/redis_client"
	"Cadence/yt"

	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
)

var production *bool

func main() {
	// Sets Flag to Debug Mode
	production = flag.Bool("p", false, "enables production with json logging")
	flag.Parse()
	if *production {
		log.InitJSONLogger(&log.Config{Output: os.Stdout})
	} else {
		log.InitSimpleLogger(&log.Config{Output: os.Stdout})
	}

	// Sets up Configurations for Viper
	config.InitConfig()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := redis_client.Init(ctx, cfg.RedisAddress)

	var settings queue.SettingsStore
	if cfg.DatabaseDSN != "" {
		db, err := db_client.Init(ctx, cfg.DatabaseDSN)
		if err != nil {
			log.WithError(err).Error("Guild settings will not be persisted")
		} else {
			settings = db_client.NewSettingsStore(db)
		}
	}

	// Creates Discord Bot Session
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		log.WithError(err).Error("Failed to create Discord session")
		return
	}

	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.WithFields(log.Fields{"user": r.User.Username, "guilds": len(r.Guilds)}).Info("Bot is ready")
	})

	ytManager := yt.NewYouTubeManager(rdb, yt.CacheOptions{
		VideoTTL:    cfg.CacheYoutube,
		SearchTTL:   cfg.CacheSearch,
		SearchPages: cfg.SearchPages,
	})
	met := metrics.New()

	registry := queue.NewRegistry(queue.RegistryConfig{
		Source:        ytManager,
		Transport:     queue.NewVoiceTransport(s),
		Announcer:     &handlers.Announcer{Session: s},
		Settings:      settings,
		Recorder:      met,
		DefaultVolume: cfg.DefaultVolume,
		MaxVolume:     cfg.MaxVolume,
	})

	bot := commands.NewBot(s, cfg.AppID, cfg.DevGuildID)
	router := commands.NewRouter(cfg.Prefix, commands.Deps{
		Players:           func(guildID string) commands.Player { return registry.Get(guildID) },
		Songs:             ytManager,
		Playlists:         playlist.NewManager(ytManager, cfg.PlaylistConcurrency),
		Registrar:         bot,
		Recorder:          met,
		MaxVolume:         cfg.MaxVolume,
		AutocompleteRate:  cfg.AutocompleteRate,
		AutocompleteBurst: cfg.AutocompleteBurst,
	})
	bot.Router = router

	// Configuring Intents and Adding Handlers
	handlers.HandlerConfig(s, router)

	// Connecting to Discord Server Gateway
	if err := s.Open(); err != nil {
		log.WithError(err).Error("Failed to connect to Discord")
		return
	}
	log.Info("Bot is initialising")

	// Register Slash Commands
	if err := bot.RegisterSlashCommands(); err != nil {
		log.WithError(err).Error("Failed to register slash commands")
	}

	if cfg.MetricsAddress != "" {
		go func() {
			handler := metrics.Router(met, func() {
				met.SetQueuedItems(registry.QueuedItems())
				met.SetGuildPlayers(registry.Players())
			})
			if err := metrics.Serve(ctx, cfg.MetricsAddress, handler); err != nil {
				log.WithError(err).Error("Metrics server stopped")
			}
		}()
	}

	<-ctx.Done()
	gracefulShutdown(s, registry, rdb)
}

// gracefulShutdown handles cleaning up after the bot is shutdown
func gracefulShutdown(s *discordgo.Session, registry *queue.Registry, rdb *redis.Client) {
	log.Info("Starting graceful shutdown...")

	done := make(chan struct{})
	go func() {
		registry.StopAll()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		log.Warn("Timed out waiting for players to stop")
	}

	s.Close()
	rdb.Close()

	log.Info("Cleanly exiting")
}
