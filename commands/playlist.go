package commands

import (
	"context"
	"errors"
	"fmt"

	"Cadence/utils"
	"Cadence/yt"

	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
)

func (r *Router) playlistCommand() *Command {
	return &Command{
		Name:        "playlist",
		Description: "Queue a YouTube playlist from a URL or search term.",
		Usage:       "pl <playlist>",
		Patterns: []Pattern{
			r.pattern(`(?:pl|play[lL]ist|play list) (?P<playlist>.+)`, nil),
			r.pattern(`(?:pln|playlistnext) (?P<playlist>.+)`, map[string]string{"next": "true"}),
		},
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         "playlist",
				Description:  "YouTube playlist link or search term",
				Required:     true,
				Autocomplete: true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "next",
				Description: "Play the playlist right after the current song",
			},
		},
		RequiresVoice: true,
		Slash:         true,
		Execute:       r.playPlaylist,
		Autocomplete: func(ctx context.Context, term string) []Choice {
			return searchChoices(ctx, r.deps.Songs.SearchPlaylists(ctx, term))
		},
	}
}

// playPlaylist resolves a playlist and queues all of its songs as one run
func (r *Router) playPlaylist(ctx context.Context, req *Request) Result {
	query := req.String("playlist")
	if query == "" {
		return Fail("❌ Tell me which playlist to play!")
	}
	log.WithContext(ctx).WithFields(log.Fields{"query": query}).Info("Looking for playlist")

	playlist, err := r.deps.Playlists.Find(ctx, query, req.Username)
	if errors.Is(err, yt.ErrEmptyPlaylist) {
		return Fail("❌ Could not find songs on playlist: " + query)
	}
	if err != nil {
		log.WithContext(ctx).WithError(err).Info("Could not resolve playlist")
		return Fail("❌ Could not find playlist: " + query)
	}

	r.player(req.GuildID).EnqueuePlaylist(playlist, req.VoiceChannelID, req.TextChannelID, req.Bool("next"))

	return Ok(fmt.Sprintf("📃 Queued playlist '%s' with %d items for a duration of %s.",
		playlist.Title, len(playlist.Items), utils.FormatSeconds(playlist.TotalDurationSeconds)))
}
