package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

var minSkip = 1.0

func (r *Router) skipCommand() *Command {
	return &Command{
		Name:        "skip",
		Description: "Skip the current song, or several songs.",
		Usage:       "skip [amount]",
		Patterns: []Pattern{
			r.pattern(`(?:s|skip)(?: (?P<amount>\d+))?`, nil),
		},
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "amount",
				Description: "Number of songs to skip, the current one included",
				MinValue:    &minSkip,
			},
		},
		RequiresVoice: true,
		Slash:         true,
		Execute:       r.skipSong,
	}
}

// skipSong drops the requested number of songs, starting with the playing one
func (r *Router) skipSong(ctx context.Context, req *Request) Result {
	result := r.player(req.GuildID).Skip(req.Int("amount", 1))
	if !result.Success {
		return Fail("Nothing is playing right now 😶")
	}
	if result.SkippedCount == 1 {
		return Ok(fmt.Sprintf("⏭️ Skipped song: %s.", result.Title))
	}
	return Ok(fmt.Sprintf("⏭️ Skipped %d songs.", result.SkippedCount))
}

func (r *Router) skipListCommand() *Command {
	return &Command{
		Name:        "skip-list",
		Description: "Skip the rest of the playing playlist.",
		Usage:       "sl",
		Patterns: []Pattern{
			r.pattern(`(?:sl|skip list|skip[lL]ist)`, nil),
		},
		RequiresVoice: true,
		Slash:         true,
		Execute:       r.skipPlaylist,
	}
}

// skipPlaylist drops the playing song and the songs of its playlist queued right after it
func (r *Router) skipPlaylist(ctx context.Context, req *Request) Result {
	result := r.player(req.GuildID).SkipList()
	if !result.Success {
		return Fail("Cannot skip playlist as none is playing currently.")
	}
	// the playing song is skipped as well
	return Ok(fmt.Sprintf("⏭️ Skipped %d items from playlist '%s'.", result.SkipCount+1, result.SkippedTitle))
}

func (r *Router) stopCommand() *Command {
	return &Command{
		Name:        "stop",
		Description: "Stop playback and clear the queue.",
		Usage:       "stop",
		Patterns: []Pattern{
			r.pattern(`stop`, nil),
		},
		RequiresVoice: true,
		Slash:         true,
		Execute:       r.stopMusic,
	}
}

// stopMusic clears the queue. The bot leaves the voice channel once the stream has ended.
func (r *Router) stopMusic(ctx context.Context, req *Request) Result {
	if !r.player(req.GuildID).Stop() {
		return Fail("Nothing is playing right now 😶")
	}
	return Ok("⏹️ Stopped playing.")
}

func (r *Router) volumeCommand() *Command {
	minVolume, maxVolume := 0.0, float64(r.deps.MaxVolume)
	return &Command{
		Name:        "volume",
		Description: "Set the playback volume.",
		Usage:       "vol <level>",
		Patterns: []Pattern{
			r.pattern(`(?:v|vol|volume) (?P<level>-?\d+)`, nil),
		},
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "level",
				Description: "Volume in percent, 0 to " + strconv.Itoa(r.deps.MaxVolume),
				Required:    true,
				MinValue:    &minVolume,
				MaxValue:    maxVolume,
			},
		},
		RequiresVoice: true,
		Slash:         true,
		Execute:       r.setVolume,
	}
}

// setVolume stores the guild's volume, clamped to the allowed range
func (r *Router) setVolume(ctx context.Context, req *Request) Result {
	level, err := strconv.Atoi(req.String("level"))
	if err != nil {
		return Fail(fmt.Sprintf("❌ Volume must be a number between 0 and %d", r.deps.MaxVolume))
	}
	stored := r.player(req.GuildID).SetVolume(ctx, level)
	return Ok(fmt.Sprintf("🔊 Set playback volume to: %d%%", stored))
}

func (r *Router) registerCommand() *Command {
	return &Command{
		Name:        "register",
		Description: "Register the slash commands in this server.",
		Usage:       "register",
		Patterns: []Pattern{
			r.pattern(`register`, nil),
		},
		Execute: r.registerGuild,
	}
}

// registerGuild re-registers the slash commands of the invoking guild
func (r *Router) registerGuild(ctx context.Context, req *Request) Result {
	if err := r.deps.Registrar.RegisterGuild(req.GuildID); err != nil {
		return Fail("❌ Error during registering guild commands!")
	}
	return Ok("✨ Slash commands registered. Use **/play** from now on!")
}
