package config

import (
	"strings"
	"time"

	"github.com/Strum355/log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is a typed snapshot of the viper settings
type Config struct {
	Token      string
	AppID      string
	DevGuildID string
	Prefix     string

	DefaultVolume float64
	MaxVolume     int

	RedisAddress string
	CacheYoutube time.Duration
	CacheSearch  time.Duration

	DatabaseDSN string

	PlaylistConcurrency int
	SearchPages         int

	AutocompleteRate  float64
	AutocompleteBurst int

	MetricsAddress string
}

func InitConfig() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, proceeding with defaults.")
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	initDefaults()
	viper.AutomaticEnv()
}

// Load reads the current settings out of viper
func Load() Config {
	return Config{
		Token:      viper.GetString("discord.token"),
		AppID:      viper.GetString("discord.app.id"),
		DevGuildID: viper.GetString("discord.guild.id"),
		Prefix:     viper.GetString("prefix"),

		DefaultVolume: viper.GetFloat64("volume.default"),
		MaxVolume:     viper.GetInt("volume.max"),

		RedisAddress: viper.GetString("redis.address"),
		CacheYoutube: time.Duration(viper.GetInt("cache.youtube")) * time.Second,
		CacheSearch:  time.Duration(viper.GetInt("cache.search")) * time.Second,

		DatabaseDSN: viper.GetString("database.dsn"),

		PlaylistConcurrency: viper.GetInt("playlist.concurrency"),
		SearchPages:         viper.GetInt("search.pages"),

		AutocompleteRate:  viper.GetFloat64("autocomplete.rate"),
		AutocompleteBurst: viper.GetInt("autocomplete.burst"),

		MetricsAddress: viper.GetString("metrics.address"),
	}
}
