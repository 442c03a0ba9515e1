package commands

import (
	"context"
	"fmt"

	"Cadence/queue"
	"Cadence/utils"
	"Cadence/yt"

	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
)

func (r *Router) playCommand() *Command {
	return &Command{
		Name:        "play",
		Description: "Play a song from a YouTube URL or search term.",
		Usage:       "p <song>",
		Patterns: []Pattern{
			r.pattern(`(?:p|play) (?P<song>.+)`, nil),
			r.pattern(`(?:pn|playnext) (?P<song>.+)`, map[string]string{"next": "true"}),
		},
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         "song",
				Description:  "YouTube link or search term",
				Required:     true,
				Autocomplete: true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "next",
				Description: "Play right after the current song",
			},
		},
		RequiresVoice: true,
		Slash:         true,
		Execute:       r.playSong,
		Autocomplete: func(ctx context.Context, term string) []Choice {
			return searchChoices(ctx, r.deps.Songs.Search(ctx, term))
		},
	}
}

// playSong resolves the requested song and adds it to the guild's queue
func (r *Router) playSong(ctx context.Context, req *Request) Result {
	query := req.String("song")
	if query == "" {
		return Fail("❌ Tell me what to play!")
	}
	log.WithContext(ctx).WithFields(log.Fields{"query": query}).Info("Looking for song")

	song, err := r.findSong(ctx, query)
	if err != nil {
		log.WithContext(ctx).WithError(err).Info("Could not resolve song")
		return Fail("❌ Cannot find video: " + query)
	}

	immediate := req.Bool("next")
	mode := r.player(req.GuildID).Enqueue(
		&queue.QueueItem{Requester: req.Username, Song: *song},
		req.VoiceChannelID, req.TextChannelID, immediate,
	)

	duration := utils.FormatDuration(song.Duration())
	switch {
	case mode == queue.ModePlayed:
		return Ok(fmt.Sprintf("🎵 Starting **%s** (`%s`)", song.Title, duration))
	case immediate:
		return Ok(fmt.Sprintf("🎵 Queued next: **%s** (`%s`)", song.Title, duration))
	default:
		return Ok(fmt.Sprintf("🎵 Queued song: **%s** (`%s`)", song.Title, duration))
	}
}

// findSong resolves a URL directly and looks anything else up as a search term
func (r *Router) findSong(ctx context.Context, query string) (*yt.VideoRef, error) {
	if yt.IsURL(query) {
		return r.deps.Songs.Resolve(ctx, query)
	}
	result, err := r.deps.Songs.FirstSong(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.deps.Songs.Resolve(ctx, result.ID)
}
