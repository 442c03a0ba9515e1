package handlers

import (
	"context"
	"strings"

	"Cadence/commands"

	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
)

// MessageHandler handles message commands
func MessageHandler(router *commands.Router) func(s *discordgo.Session, m *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		// If message is sent from a bot
		if m.Author == nil || m.Author.Bot || (s.State.User != nil && m.Author.ID == s.State.User.ID) {
			return
		}
		if !strings.HasPrefix(m.Content, router.Prefix()) {
			return
		}

		ctx := context.WithValue(context.Background(), log.Key, log.Fields{
			"author_id":        m.Author.ID,
			"channel_id":       m.ChannelID,
			"guild_id":         m.GuildID,
			"user":             m.Author.Username,
			"interaction_type": "message",
		})

		req := commands.NewRequest(s, m.GuildID, m.ChannelID, m.Author)
		reply, help := handleMessage(ctx, router, req, m.Content)
		if help {
			HelpEmbedding(s, m.ChannelID, router)
			return
		}
		if reply == "" {
			return
		}
		if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
			log.WithContext(ctx).WithError(err).Error("Failed to reply to message")
		}
	}
}

// handleMessage runs the command in a prefixed message and returns the reply to send.
// help is set when the help menu was asked for.
func handleMessage(ctx context.Context, router *commands.Router, req commands.Request, content string) (reply string, help bool) {
	prefix := router.Prefix()
	firstWord, _, _ := strings.Cut(strings.TrimSpace(content), " ")

	switch firstWord {
	case prefix:
		return "type `" + prefix + "help` to open help menu.", false // invalid prefix command
	case prefix + "help":
		return "", true
	}

	result, matched := router.HandleText(ctx, req, content)
	if !matched {
		return "", false
	}
	return result.Message, false
}
