package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
)

// commandTimeout stays under Discord's three second interaction deadline
const commandTimeout = 2500 * time.Millisecond

// Config holds the bot credentials
type Config struct {
	Token string
	// AppID defaults to the bot user's ID
	AppID string
	// GuildID registers commands in a single guild, which applies instantly.
	// Empty registers them globally.
	GuildID string
}

// Bot connects the Handler to the Discord gateway
type Bot struct {
	session *discordgo.Session
	handler *Handler
	config  Config
	logger  *slog.Logger
}

// New creates a bot; nothing is opened until Start
func New(cfg Config, handler *Handler, logger *slog.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("discord token is required")
	}
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	return &Bot{
		session: session,
		handler: handler,
		config:  cfg,
		logger:  logger.With(slog.String("component", "discord")),
	}, nil
}

// Start opens the gateway connection and registers the slash commands
func (b *Bot) Start() error {
	b.session.AddHandler(b.onInteraction)
	b.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		b.logger.Info("discord bot ready", slog.String("user", r.User.Username), slog.Int("guilds", len(r.Guilds)))
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	appID := b.config.AppID
	if appID == "" && b.session.State != nil && b.session.State.User != nil {
		appID = b.session.State.User.ID
	}
	cmds, err := b.session.ApplicationCommandBulkOverwrite(appID, b.config.GuildID, Commands())
	if err != nil {
		_ = b.session.Close()
		return fmt.Errorf("register commands: %w", err)
	}
	b.logger.Info("slash commands registered", slog.Int("count", len(cmds)), slog.String("guild_id", b.config.GuildID))
	return nil
}

// Stop closes the gateway connection
func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	reply := b.handler.Handle(ctx, data.Name, argsFrom(data.Options))

	resp := &discordgo.InteractionResponseData{Content: reply.Content}
	if reply.Ephemeral {
		resp.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: resp,
	})
	if err != nil {
		b.logger.Error("failed to respond to interaction",
			slog.String("command", data.Name),
			slog.String("error", err.Error()),
		)
	}
}
