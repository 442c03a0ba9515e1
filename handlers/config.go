package handlers

import (
	"Cadence/commands"

	"github.com/bwmarrin/discordgo"
)

// HandlerConfig handles configs for intents and handlers
func HandlerConfig(s *discordgo.Session, router *commands.Router) {
	s.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentMessageContent
	s.AddHandler(MessageHandler(router))
}
