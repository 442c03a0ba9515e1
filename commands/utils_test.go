package commands

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestOptionValues(t *testing.T) {
	options := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "song", Type: discordgo.ApplicationCommandOptionString, Value: "never gonna"},
		{Name: "amount", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(3)},
		{Name: "next", Type: discordgo.ApplicationCommandOptionBoolean, Value: true},
	}

	assert.Equal(t, map[string]string{
		"song":   "never gonna",
		"amount": "3",
		"next":   "true",
	}, optionValues(options))
}

func TestFocusedValue(t *testing.T) {
	options := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "next", Type: discordgo.ApplicationCommandOptionBoolean, Value: true},
		{Name: "song", Type: discordgo.ApplicationCommandOptionString, Value: "rick", Focused: true},
	}

	value, ok := focusedValue(options)
	assert.True(t, ok)
	assert.Equal(t, "rick", value)

	_, ok = focusedValue(options[:1])
	assert.False(t, ok)
}

func TestSlashCommands(t *testing.T) {
	commands := SlashCommands(newTestRouter().Router)

	var names []string
	for _, c := range commands {
		names = append(names, c.Name)
		assert.NotEmpty(t, c.Description)
	}
	assert.Equal(t, []string{"playlist", "play", "skip-list", "skip", "stop", "volume"}, names)
	assert.True(t, commands[1].Options[0].Autocomplete)
	assert.Equal(t, float64(300), commands[5].Options[0].MaxValue)
}

func TestNewRequest_WithoutState(t *testing.T) {
	req := NewRequest(nil, "guild", "text", &discordgo.User{ID: "u1", Username: "tester"})

	assert.Equal(t, Request{GuildID: "guild", TextChannelID: "text", UserID: "u1", Username: "tester"}, req)
}

func TestNewRequest_VoiceState(t *testing.T) {
	s := &discordgo.Session{State: discordgo.NewState()}
	s.State.User = &discordgo.User{ID: "bot"}
	guild := &discordgo.Guild{
		ID:      "guild",
		OwnerID: "bot",
		Channels: []*discordgo.Channel{
			{ID: "voice", GuildID: "guild", Type: discordgo.ChannelTypeGuildVoice},
		},
		Members: []*discordgo.Member{
			{User: &discordgo.User{ID: "bot"}, GuildID: "guild"},
		},
		VoiceStates: []*discordgo.VoiceState{
			{GuildID: "guild", UserID: "u1", ChannelID: "voice"},
		},
	}
	assert.NoError(t, s.State.GuildAdd(guild))

	req := NewRequest(s, "guild", "text", &discordgo.User{ID: "u1", Username: "tester"})

	assert.Equal(t, "voice", req.VoiceChannelID)
	assert.Equal(t, int64(voicePermissions), req.BotPermissions&voicePermissions)
}
