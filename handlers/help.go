package handlers

import (
	"fmt"

	"Cadence/commands"

	"github.com/bwmarrin/discordgo"
)

// HelpEmbedding sends the help menu
func HelpEmbedding(s *discordgo.Session, channelID string, router *commands.Router) {
	avatarURL := ""
	if s.State.User != nil {
		avatarURL = s.State.User.AvatarURL("64")
	}
	s.ChannelMessageSendEmbed(channelID, helpEmbed(router, avatarURL))
}

// helpEmbed lists every command in dispatch order
func helpEmbed(router *commands.Router, avatarURL string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "Cadence Help",
		Description: fmt.Sprintf("Use slash commands or type `%s<command>`.", router.Prefix()),
	}
	if avatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: avatarURL}
	}

	for _, c := range router.Commands() {
		name := router.Prefix() + c.Usage
		if c.Slash {
			name = "/" + c.Name + " · " + name
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  name,
			Value: c.Description,
		})
	}
	return embed
}
