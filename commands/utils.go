package commands

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// NewRequest describes an invocation by user in a guild text channel, looking up the
// user's voice channel and the bot's permissions in it from the session state
func NewRequest(s *discordgo.Session, guildID, channelID string, user *discordgo.User) Request {
	req := Request{GuildID: guildID, TextChannelID: channelID}
	if user != nil {
		req.UserID = user.ID
		req.Username = user.Username
	}
	if guildID == "" || user == nil || s == nil || s.State == nil {
		return req
	}

	vs, err := s.State.VoiceState(guildID, user.ID)
	if err != nil || vs == nil || vs.ChannelID == "" {
		return req
	}
	req.VoiceChannelID = vs.ChannelID

	if s.State.User != nil {
		if perms, err := s.State.UserChannelPermissions(s.State.User.ID, vs.ChannelID); err == nil {
			req.BotPermissions = perms
		}
	}
	return req
}

// optionValues flattens slash command options into request options
func optionValues(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]string {
	values := make(map[string]string, len(options))
	for _, opt := range options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionString:
			values[opt.Name] = opt.StringValue()
		case discordgo.ApplicationCommandOptionInteger:
			values[opt.Name] = strconv.FormatInt(opt.IntValue(), 10)
		case discordgo.ApplicationCommandOptionBoolean:
			values[opt.Name] = strconv.FormatBool(opt.BoolValue())
		}
	}
	return values
}

// focusedValue returns the option the user is typing in during autocomplete
func focusedValue(options []*discordgo.ApplicationCommandInteractionDataOption) (string, bool) {
	for _, opt := range options {
		if opt.Focused && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue(), true
		}
	}
	return "", false
}
