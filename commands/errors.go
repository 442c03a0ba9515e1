package commands

import (
	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
)

type interactionError struct {
	err     error
	message string
}

// Handle handles responding to error messages within Discord
func (e *interactionError) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	log.WithError(e.err).WithFields(log.Fields{
		"guild_id":   i.GuildID,
		"channel_id": i.ChannelID,
	}).Error(e.message)
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:   discordgo.MessageFlagsEphemeral,
			Content: "❌ " + e.message,
		},
	})
}
