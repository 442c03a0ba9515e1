package commands

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		content string
		command string
		options map[string]string
	}{
		{"!p never gonna", "play", map[string]string{"song": "never gonna"}},
		{"!play https://youtu.be/abc", "play", map[string]string{"song": "https://youtu.be/abc"}},
		{"!pn next one", "play", map[string]string{"song": "next one", "next": "true"}},
		{"!playnext next one", "play", map[string]string{"song": "next one", "next": "true"}},
		{"!pl chill", "playlist", map[string]string{"playlist": "chill"}},
		{"!playlist chill", "playlist", map[string]string{"playlist": "chill"}},
		{"!playList chill", "playlist", map[string]string{"playlist": "chill"}},
		{"!play list chill", "playlist", map[string]string{"playlist": "chill"}},
		{"!pln chill", "playlist", map[string]string{"playlist": "chill", "next": "true"}},
		{"!sl", "skip-list", map[string]string{}},
		{"!skip list", "skip-list", map[string]string{}},
		{"!skipList", "skip-list", map[string]string{}},
		{"!skip", "skip", map[string]string{}},
		{"!s", "skip", map[string]string{}},
		{"!skip 3", "skip", map[string]string{"amount": "3"}},
		{"!stop", "stop", map[string]string{}},
		{"!vol 50", "volume", map[string]string{"level": "50"}},
		{"!volume -10", "volume", map[string]string{"level": "-10"}},
		{"!v 450", "volume", map[string]string{"level": "450"}},
		{"!register", "register", map[string]string{}},
		{"  !stop  ", "stop", map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			command, options, ok := router.Match(tt.content)
			require.True(t, ok)
			assert.Equal(t, tt.command, command.Name)
			assert.Equal(t, tt.options, options)
		})
	}
}

func TestMatch_NoMatch(t *testing.T) {
	router := newTestRouter()

	for _, content := range []string{"", "!", "!help", "play song", "!skip abc", "!stopping", "!vol loud", "!p"} {
		_, _, ok := router.Match(content)
		assert.False(t, ok, content)
	}
}

func TestMatch_PrefixIsLiteral(t *testing.T) {
	router := NewRouter(".", Deps{})

	_, _, ok := router.Match("xp song")
	assert.False(t, ok)

	command, _, ok := router.Match(".p song")
	require.True(t, ok)
	assert.Equal(t, "play", command.Name)
}

func TestMatch_EarlierCommandShadowsLater(t *testing.T) {
	router := newTestRouter()
	router.Add(&Command{
		Name:     "podcast",
		Patterns: []Pattern{router.pattern(`p (?P<episode>.+)`, nil)},
	})

	command, _, ok := router.Match("!p episode 4")

	require.True(t, ok)
	assert.Equal(t, "play", command.Name)
}

func TestRouter_CommandOrder(t *testing.T) {
	router := newTestRouter()

	var names []string
	for _, c := range router.Commands() {
		names = append(names, c.Name)
	}

	assert.Equal(t, []string{"playlist", "play", "skip-list", "skip", "stop", "volume", "register"}, names)
}

func TestRouter_RegisterNeedsRegistrar(t *testing.T) {
	router := NewRouter("!", Deps{})

	_, _, ok := router.Match("!register")

	assert.False(t, ok)
}

func TestHandleText_Unmatched(t *testing.T) {
	router := newTestRouter()

	_, matched := router.HandleText(context.Background(), voiceRequest(), "hello there")

	assert.False(t, matched)
	assert.Zero(t, router.player.calls)
}

func TestPreconditions(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(req *Request)
		message string
	}{
		{
			name:    "direct message",
			modify:  func(req *Request) { req.GuildID = "" },
			message: "❌ This command is only available in a server",
		},
		{
			name:    "not in voice",
			modify:  func(req *Request) { req.VoiceChannelID = "" },
			message: "❌ You need to be in a voice channel to play music!",
		},
		{
			name:    "cannot speak",
			modify:  func(req *Request) { req.BotPermissions = discordgo.PermissionVoiceConnect },
			message: "❌ I need the permissions to join and speak in your voice channel!",
		},
		{
			name:    "cannot connect",
			modify:  func(req *Request) { req.BotPermissions = discordgo.PermissionVoiceSpeak },
			message: "❌ I need the permissions to join and speak in your voice channel!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter()
			req := voiceRequest()
			tt.modify(&req)

			result, matched := router.HandleText(context.Background(), req, "!stop")

			assert.True(t, matched)
			assert.False(t, result.Success)
			assert.Equal(t, tt.message, result.Message)
			assert.Zero(t, router.player.calls)
		})
	}
}

func TestPreconditions_RegisterSkipsVoiceChecks(t *testing.T) {
	router := newTestRouter()
	req := voiceRequest()
	req.VoiceChannelID = ""
	req.BotPermissions = 0

	result, _ := router.HandleText(context.Background(), req, "!register")

	assert.True(t, result.Success)
	assert.Equal(t, []string{"guild"}, router.registrar.guilds)
}

func TestExecute_UnknownCommand(t *testing.T) {
	router := newTestRouter()

	result := router.Execute(context.Background(), "dance", voiceRequest())

	assert.False(t, result.Success)
}

func TestExecute_RecordsResult(t *testing.T) {
	router := newTestRouter()
	router.player.stopped = true

	router.Execute(context.Background(), "stop", voiceRequest())
	router.player.stopped = false
	router.Execute(context.Background(), "stop", voiceRequest())

	assert.Equal(t, []bool{true, false}, router.recorder.results["stop"])
}

func TestRequestOptions(t *testing.T) {
	req := Request{Options: map[string]string{"amount": " 4 ", "next": "true", "bad": "x"}}

	assert.Equal(t, 4, req.Int("amount", 1))
	assert.Equal(t, 1, req.Int("bad", 1))
	assert.Equal(t, 7, req.Int("missing", 7))
	assert.True(t, req.Bool("next"))
	assert.False(t, req.Bool("bad"))
	assert.Equal(t, "", req.String("missing"))
}
