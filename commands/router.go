package commands

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"Cadence/queue"
	"Cadence/yt"

	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
)

const voicePermissions = discordgo.PermissionVoiceConnect | discordgo.PermissionVoiceSpeak

// Result is what a command reports back to the invoking user
type Result struct {
	Success bool
	Message string
}

func Ok(message string) Result {
	return Result{Success: true, Message: message}
}

func Fail(message string) Result {
	return Result{Message: message}
}

// Request describes one command invocation, independent of whether it came from
// a text message or a slash command
type Request struct {
	GuildID        string
	TextChannelID  string
	UserID         string
	Username       string
	VoiceChannelID string // voice channel the user is in, empty if none
	BotPermissions int64  // permissions of the bot in VoiceChannelID
	Options        map[string]string
}

func (r *Request) String(name string) string {
	return strings.TrimSpace(r.Options[name])
}

func (r *Request) Int(name string, fallback int) int {
	v, err := strconv.Atoi(r.String(name))
	if err != nil {
		return fallback
	}
	return v
}

func (r *Request) Bool(name string) bool {
	v, _ := strconv.ParseBool(r.String(name))
	return v
}

// Choice is one autocomplete suggestion
type Choice struct {
	Name  string
	Value string
}

// Pattern is a text trigger. Named groups of the expression become request options,
// fixed options are added on every match.
type Pattern struct {
	re    *regexp.Regexp
	fixed map[string]string
}

// Command is one entry of the dispatch table
type Command struct {
	Name          string
	Description   string
	Usage         string // text form, without the prefix
	Patterns      []Pattern
	Options       []*discordgo.ApplicationCommandOption
	RequiresVoice bool
	Slash         bool // registered as a slash command
	Execute       func(ctx context.Context, req *Request) Result
	Autocomplete  func(ctx context.Context, term string) []Choice
}

func (c *Command) match(content string) (map[string]string, bool) {
	for _, p := range c.Patterns {
		m := p.re.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		options := make(map[string]string, len(p.fixed)+len(m))
		for k, v := range p.fixed {
			options[k] = v
		}
		for i, name := range p.re.SubexpNames() {
			if name != "" && m[i] != "" {
				options[name] = m[i]
			}
		}
		return options, true
	}
	return nil, false
}

// Player is the playback state of one guild
type Player interface {
	Enqueue(item *queue.QueueItem, voiceChannel, textChannel string, immediate bool) queue.Mode
	EnqueuePlaylist(playlist *yt.PlaylistRef, voiceChannel, textChannel string, immediate bool) queue.Mode
	Skip(count int) queue.SkipResult
	SkipList() queue.SkipListResult
	Stop() bool
	SetVolume(ctx context.Context, percent int) int
}

// Songs looks up single videos
type Songs interface {
	Resolve(ctx context.Context, urlOrID string) (*yt.VideoRef, error)
	FirstSong(ctx context.Context, term string) (*yt.SearchResult, error)
	Search(ctx context.Context, term string) *yt.SearchIterator
	SearchPlaylists(ctx context.Context, term string) *yt.SearchIterator
}

// Playlists builds playlist requests
type Playlists interface {
	Find(ctx context.Context, query, requester string) (*yt.PlaylistRef, error)
}

// Registrar registers the slash commands of a guild
type Registrar interface {
	RegisterGuild(guildID string) error
}

// Recorder counts command executions
type Recorder interface {
	CommandExecuted(command string, success bool)
}

type Deps struct {
	Players   func(guildID string) Player
	Songs     Songs
	Playlists Playlists
	Registrar Registrar // optional
	Recorder  Recorder  // optional

	MaxVolume         int
	AutocompleteRate  float64
	AutocompleteBurst int
}

// Router dispatches invocations to an ordered list of commands. For text messages
// the first command with a matching pattern wins, so earlier commands shadow later
// ones whose patterns overlap.
type Router struct {
	prefix   string
	deps     Deps
	commands []*Command
	limiter  *guildLimiter
}

func NewRouter(prefix string, deps Deps) *Router {
	if deps.MaxVolume <= 0 {
		deps.MaxVolume = queue.MaxVolumePercent
	}
	r := &Router{
		prefix:  prefix,
		deps:    deps,
		limiter: newGuildLimiter(deps.AutocompleteRate, deps.AutocompleteBurst),
	}

	// playlist goes before play so "play list x" is not read as a song named "list x"
	r.Add(r.playlistCommand())
	r.Add(r.playCommand())
	r.Add(r.skipListCommand())
	r.Add(r.skipCommand())
	r.Add(r.stopCommand())
	r.Add(r.volumeCommand())
	if deps.Registrar != nil {
		r.Add(r.registerCommand())
	}
	return r
}

// Add appends a command to the end of the dispatch table
func (r *Router) Add(c *Command) {
	r.commands = append(r.commands, c)
}

// Commands returns the dispatch table in order
func (r *Router) Commands() []*Command {
	return r.commands
}

func (r *Router) Prefix() string {
	return r.prefix
}

// pattern anchors expr behind the command prefix
func (r *Router) pattern(expr string, fixed map[string]string) Pattern {
	return Pattern{
		re:    regexp.MustCompile(`^` + regexp.QuoteMeta(r.prefix) + expr + `$`),
		fixed: fixed,
	}
}

// Match returns the first command with a pattern matching content, along with the parsed options
func (r *Router) Match(content string) (*Command, map[string]string, bool) {
	content = strings.TrimSpace(content)
	for _, c := range r.commands {
		if options, ok := c.match(content); ok {
			return c, options, true
		}
	}
	return nil, nil, false
}

// HandleText runs the command matching a text message. matched is false when no command matched.
func (r *Router) HandleText(ctx context.Context, req Request, content string) (result Result, matched bool) {
	c, options, ok := r.Match(content)
	if !ok {
		return Result{}, false
	}
	req.Options = options
	return r.run(ctx, c, &req), true
}

// Execute runs a command by name
func (r *Router) Execute(ctx context.Context, name string, req Request) Result {
	c := r.find(name)
	if c == nil {
		return Fail("❌ Unknown command: " + name)
	}
	if req.Options == nil {
		req.Options = map[string]string{}
	}
	return r.run(ctx, c, &req)
}

// Autocomplete returns up to maxChoices suggestions for a partially typed option.
// Requests beyond the guild's rate limit get no suggestions.
func (r *Router) Autocomplete(ctx context.Context, name, guildID, term string) []Choice {
	c := r.find(name)
	if c == nil || c.Autocomplete == nil {
		return nil
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	if !r.limiter.allow(guildID) {
		log.WithContext(ctx).Debug("Autocomplete rate limited")
		return nil
	}

	choices := c.Autocomplete(ctx, term)
	if len(choices) > maxChoices {
		choices = choices[:maxChoices]
	}
	return choices
}

func (r *Router) find(name string) *Command {
	for _, c := range r.commands {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (r *Router) run(ctx context.Context, c *Command, req *Request) Result {
	result := checkPreconditions(c, req)
	if result.Success {
		result = c.Execute(ctx, req)
	}

	if r.deps.Recorder != nil {
		r.deps.Recorder.CommandExecuted(c.Name, result.Success)
	}
	log.WithContext(ctx).WithFields(log.Fields{
		"command": c.Name,
		"success": result.Success,
	}).Info("Command executed")
	return result
}

// checkPreconditions rejects invocations outside a guild and, for voice commands,
// users outside a voice channel or channels the bot cannot join and speak in
func checkPreconditions(c *Command, req *Request) Result {
	if req.GuildID == "" {
		return Fail("❌ This command is only available in a server")
	}
	if !c.RequiresVoice {
		return Ok("")
	}
	if req.VoiceChannelID == "" {
		return Fail("❌ You need to be in a voice channel to play music!")
	}
	if req.BotPermissions&voicePermissions != voicePermissions {
		return Fail("❌ I need the permissions to join and speak in your voice channel!")
	}
	return Ok("")
}

func (r *Router) player(guildID string) Player {
	return r.deps.Players(guildID)
}
