package config

import (
	"os"

	"github.com/spf13/viper"
)

func initDefaults() {
	viper.SetDefault("discord.token", os.Getenv("discord_token"))
	viper.SetDefault("discord.app.id", os.Getenv("discord_app_id"))
	viper.SetDefault("discord.guild.id", "")
	viper.SetDefault("prefix", "!")

	viper.SetDefault("volume.default", 0.75)
	viper.SetDefault("volume.max", 300)

	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("cache.youtube", 3600)
	viper.SetDefault("cache.search", 86400)

	viper.SetDefault("database.dsn", "")

	viper.SetDefault("playlist.concurrency", 4)
	viper.SetDefault("search.pages", 3)

	viper.SetDefault("autocomplete.rate", 2)
	viper.SetDefault("autocomplete.burst", 5)

	viper.SetDefault("metrics.address", "")
}
