package commands

import (
	"context"
	"errors"

	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
)

// Bot connects the router to Discord interactions
type Bot struct {
	Session    *discordgo.Session
	Router     *Router
	AppID      string
	DevGuildID string // slash commands are registered to this guild only when set
}

func NewBot(s *discordgo.Session, appID, devGuildID string) *Bot {
	return &Bot{
		Session:    s,
		AppID:      appID,
		DevGuildID: devGuildID,
	}
}

// SlashCommands converts the router's slash commands into Discord application commands
func SlashCommands(r *Router) []*discordgo.ApplicationCommand {
	var commands []*discordgo.ApplicationCommand
	for _, c := range r.Commands() {
		if !c.Slash {
			continue
		}
		commands = append(commands, &discordgo.ApplicationCommand{
			Name:        c.Name,
			Description: c.Description,
			Options:     c.Options,
		})
	}
	return commands
}

// RegisterSlashCommands routes interactions to the router and registers all slash commands
func (b *Bot) RegisterSlashCommands() error {
	// Handles all interactions and routes them to the correct command handler
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			b.callCommandHandler(s, i)
		case discordgo.InteractionApplicationCommandAutocomplete:
			b.callAutocompleteHandler(s, i)
		}
	})

	return b.register(b.DevGuildID)
}

// RegisterGuild registers the slash commands to a single guild
func (b *Bot) RegisterGuild(guildID string) error {
	return b.register(guildID)
}

func (b *Bot) register(guildID string) error {
	if b.Router == nil {
		return errors.New("no router to register commands from")
	}
	if _, err := b.Session.ApplicationCommandBulkOverwrite(b.AppID, guildID, SlashCommands(b.Router)); err != nil {
		log.WithError(err).WithFields(log.Fields{"guild_id": guildID}).Error("Failed to create commands")
		return err
	}
	log.WithFields(log.Fields{"guild_id": guildID}).Info("Registered slash commands")
	return nil
}

// Cannot be an interaction through DMs
func checkDirectMessage(i *discordgo.InteractionCreate) (*discordgo.User, *interactionError) {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return nil, &interactionError{
			errors.New("command invoked outside of valid guild"),
			"This command is only available in a valid server",
		}
	}
	return i.Member.User, nil
}

// Slash command interactions
func (b *Bot) callCommandHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	commandAuthor, iError := checkDirectMessage(i)
	if iError != nil {
		iError.Handle(s, i)
		return
	}

	data := i.ApplicationCommandData()
	ctx := context.WithValue(context.Background(), log.Key, log.Fields{
		"author_id":        commandAuthor.ID,
		"channel_id":       i.ChannelID,
		"guild_id":         i.GuildID,
		"user":             commandAuthor.Username,
		"interaction_type": "application",
		"command":          data.Name,
	})
	log.WithContext(ctx).Info("Invoking application command")

	// Resolving songs can take longer than Discord waits for a response
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		(&interactionError{err, "Couldn't acknowledge command"}).Handle(s, i)
		return
	}

	req := NewRequest(s, i.GuildID, i.ChannelID, commandAuthor)
	req.Options = optionValues(data.Options)
	result := b.Router.Execute(ctx, data.Name, req)

	content := result.Message
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
		log.WithContext(ctx).WithError(err).Error("Failed to send command result")
	}
}

// Autocomplete interactions
func (b *Bot) callAutocompleteHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	term, ok := focusedValue(data.Options)
	if !ok {
		return
	}

	ctx := context.WithValue(context.Background(), log.Key, log.Fields{
		"channel_id":       i.ChannelID,
		"guild_id":         i.GuildID,
		"interaction_type": "autocomplete",
		"command":          data.Name,
	})

	suggestions := b.Router.Autocomplete(ctx, data.Name, i.GuildID, term)
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(suggestions))
	for _, c := range suggestions {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: c.Name, Value: c.Value})
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	}); err != nil {
		log.WithContext(ctx).WithError(err).Error("Failed to send autocomplete choices")
	}
}
