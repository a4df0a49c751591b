// Package discord connects the relay and watch list to the Discord gateway.
package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	pricewatchDomain "github.com/reshetovitsme/relaywatch/internal/modules/pricewatch/domain"
	"github.com/samber/oops"
)

// Bot owns the gateway session
type Bot struct {
	session *discordgo.Session
}

func NewBot(token string, handler *Handler) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, oops.With("context", "creating discord session").Wrap(err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("Discord bot connected", "user", r.User.Username, "guilds", len(r.Guilds))
	})
	session.AddHandler(handler.OnMessageCreate)

	return &Bot{session: session}, nil
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return oops.With("context", "opening discord gateway").Wrap(err)
	}
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

// Notifier delivers price alerts to the channel the subscriber watched from
type Notifier struct {
	replier Replier
}

func NewNotifier(replier Replier) *Notifier {
	return &Notifier{replier: replier}
}

// Notifier returns a notifier sending through this bot's session
func (b *Bot) Notifier() *Notifier {
	return NewNotifier(b.session)
}

func (n *Notifier) Notify(ctx context.Context, change pricewatchDomain.Change) error {
	content := fmt.Sprintf("<@%s>\n%s", change.Key.UserID, pricewatchDomain.FormatChange(change))
	if _, err := n.replier.ChannelMessageSend(change.Key.ChannelID, content, discordgo.WithContext(ctx)); err != nil {
		return oops.With("channel_id", change.Key.ChannelID, "appid", change.ItemID).Wrap(err)
	}
	return nil
}
