package handlers

import (
	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
)

// Announcer posts playback messages to guild text channels
type Announcer struct {
	Session *discordgo.Session
}

func (a *Announcer) Announce(channelID, message string) {
	if channelID == "" {
		return
	}
	if _, err := a.Session.ChannelMessageSend(channelID, message); err != nil {
		log.WithError(err).WithFields(log.Fields{"channel_id": channelID}).Warn("Failed to announce")
	}
}
