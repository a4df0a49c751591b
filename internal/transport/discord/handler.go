package discord

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	attachmentDomain "github.com/reshetovitsme/relaywatch/internal/modules/attachment/domain"
	relayDomain "github.com/reshetovitsme/relaywatch/internal/modules/relay/domain"
	watchDomain "github.com/reshetovitsme/relaywatch/internal/modules/watchlist/domain"
	"github.com/samber/lo"
)

const (
	commandPrefix  = "!watch"
	commandTimeout = 2 * time.Minute
	relayTimeout   = 5 * time.Minute
)

type Relay interface {
	Forward(ctx context.Context, msg relayDomain.InboundMessage) relayDomain.Result
}

type Watchlist interface {
	Add(ctx context.Context, key watchDomain.SubscriberKey, input string) watchDomain.Outcome
	Remove(ctx context.Context, key watchDomain.SubscriberKey, input string) watchDomain.Outcome
	List(ctx context.Context, key watchDomain.SubscriberKey) ([]watchDomain.Entry, error)
}

// Replier posts a message to a channel. *discordgo.Session satisfies it.
type Replier interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Handler turns gateway messages into relay calls and watch list commands
type Handler struct {
	relay     Relay
	watchlist Watchlist
}

func NewHandler(relay Relay, watchlist Watchlist) *Handler {
	return &Handler{relay: relay, watchlist: watchlist}
}

// OnMessageCreate is registered on the session
func (h *Handler) OnMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil || m.Author == nil {
		return
	}

	selfID := ""
	if s.State != nil && s.State.User != nil {
		selfID = s.State.User.ID
	}

	channelName := ""
	if s.State != nil {
		if ch, err := s.State.Channel(m.ChannelID); err == nil {
			channelName = ch.Name
		}
	}

	h.handleMessage(s, selfID, channelName, m.Message)
}

func (h *Handler) handleMessage(r Replier, selfID, channelName string, msg *discordgo.Message) {
	defer recoverEvent("message", msg.ChannelID)

	if msg.Author.ID == selfID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), relayTimeout)
	defer cancel()

	inbound := toInbound(msg, channelName)
	result := h.relay.Forward(ctx, inbound)
	slog.Debug("Message handled",
		"channel_id", msg.ChannelID, "skipped", result.Skipped, "text_sent", result.TextSent,
		"attachments_sent", result.AttachmentsSent, "attachments_failed", result.AttachmentsFailed)

	if !msg.Author.Bot && isCommand(msg.Content) {
		h.handleCommand(r, msg)
	}
}

// recoverEvent keeps a panicking event from taking the gateway goroutine down
func recoverEvent(kind, channelID string) {
	if r := recover(); r != nil {
		slog.Error("Recovered from panic in discord handler",
			"event", kind, "channel_id", channelID, "panic", r, "stack", string(debug.Stack()))
	}
}

func isCommand(content string) bool {
	fields := strings.Fields(content)
	return len(fields) > 0 && strings.EqualFold(fields[0], commandPrefix)
}

func (h *Handler) handleCommand(r Replier, msg *discordgo.Message) {
	defer recoverEvent("command", msg.ChannelID)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	key := watchDomain.SubscriberKey{UserID: msg.Author.ID, ChannelID: msg.ChannelID}
	sub, arg := parseCommand(msg.Content)

	var reply string
	switch sub {
	case "add":
		if arg == "" {
			reply = "Usage: `!watch add <game name or id>`"
			break
		}
		reply = outcomeText(h.watchlist.Add(ctx, key, arg))
	case "remove", "rm", "del":
		reply = outcomeText(h.watchlist.Remove(ctx, key, arg))
	case "list", "ls":
		entries, err := h.watchlist.List(ctx, key)
		if err != nil {
			slog.Error("Failed to list watch list", "subscriber", key.String(), "error", err)
			reply = "❌ The game list is still loading, try again shortly"
			break
		}
		reply = formatList(entries)
	default:
		reply = helpText
	}

	if _, err := r.ChannelMessageSend(msg.ChannelID, reply); err != nil {
		slog.Error("Failed to reply to command", "channel_id", msg.ChannelID, "error", err)
	}
}

const helpText = "**Price watch commands**\n" +
	"`!watch add <name|id>` start watching a game\n" +
	"`!watch remove [name|id]` stop watching a game, or everything when empty\n" +
	"`!watch list` show your watched games"

// parseCommand splits "!watch add portal 2" into ("add", "portal 2")
func parseCommand(content string) (string, string) {
	rest := strings.TrimSpace(content)
	rest = strings.TrimSpace(rest[len(strings.Fields(rest)[0]):])

	sub, arg, _ := strings.Cut(rest, " ")
	return strings.ToLower(sub), strings.TrimSpace(arg)
}

func outcomeText(out watchDomain.Outcome) string {
	if out.OK {
		return "✅ " + out.Message
	}
	if out.Err != nil {
		slog.Debug("Watch command rejected", "reason", out.Message, "error", out.Err)
	}
	return "❌ " + out.Message
}

func formatList(entries []watchDomain.Entry) string {
	if len(entries) == 0 {
		return "You are not watching any games"
	}

	var b strings.Builder
	b.WriteString("**Your watch list**\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s (%s) %s %s", i+1, e.Name, e.ItemID, e.LastPrice.StringFixed(2), e.Currency)
		if e.LastDiscount > 0 {
			fmt.Fprintf(&b, " -%d%%", e.LastDiscount)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func toInbound(msg *discordgo.Message, channelName string) relayDomain.InboundMessage {
	return relayDomain.InboundMessage{
		AuthorID:          msg.Author.ID,
		AuthorDisplayName: displayName(msg),
		IsBot:             msg.Author.Bot,
		ChannelID:         msg.ChannelID,
		ChannelName:       channelName,
		Text:              msg.Content,
		Attachments: lo.Map(msg.Attachments, func(a *discordgo.MessageAttachment, _ int) attachmentDomain.Attachment {
			return attachmentDomain.Attachment{
				URL:         a.URL,
				Filename:    a.Filename,
				ContentType: a.ContentType,
				SizeBytes:   int64(a.Size),
			}
		}),
	}
}

func displayName(msg *discordgo.Message) string {
	if msg.Member != nil && msg.Member.Nick != "" {
		return msg.Member.Nick
	}
	if msg.Author.GlobalName != "" {
		return msg.Author.GlobalName
	}
	return msg.Author.Username
}
