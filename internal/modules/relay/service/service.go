package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	attachmentDomain "github.com/reshetovitsme/relaywatch/internal/modules/attachment/domain"
	"github.com/reshetovitsme/relaywatch/internal/modules/relay/domain"
	"github.com/reshetovitsme/relaywatch/internal/shared/telemetry"
)

type Policy interface {
	ShouldForward(isBot bool) bool
	ResolveDestination(sourceChannelID string) (string, bool)
	Prefix() string
}

type Translator interface {
	Enabled() bool
	TranslateText(ctx context.Context, text string) string
}

type TextSender interface {
	SendText(ctx context.Context, channelID, text string) error
}

type AttachmentForwarder interface {
	Forward(ctx context.Context, channelID string, att attachmentDomain.Attachment) (bool, error)
}

// Service mirrors inbound source-platform messages to their mapped destination channel
type Service struct {
	policy      Policy
	translator  Translator
	sender      TextSender
	attachments AttachmentForwarder
}

// New creates the relay service
func New(policy Policy, translator Translator, sender TextSender, attachments AttachmentForwarder) *Service {
	return &Service{
		policy:      policy,
		translator:  translator,
		sender:      sender,
		attachments: attachments,
	}
}

// Forward relays msg. It never panics; a failure in one part of the message
// does not stop the others.
func (s *Service) Forward(ctx context.Context, msg domain.InboundMessage) (result domain.Result) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.RelayMessages.WithLabelValues("panic").Inc()
			slog.Error("Relay panicked", "channel_id", msg.ChannelID, "panic", r, "stack", string(debug.Stack()))
		}
	}()

	if !s.policy.ShouldForward(msg.IsBot) {
		result.Skipped = domain.SkipBotAuthor
		telemetry.RelayMessages.WithLabelValues("skipped").Inc()
		return result
	}

	dst, ok := s.policy.ResolveDestination(msg.ChannelID)
	if !ok {
		result.Skipped = domain.SkipNoRule
		telemetry.RelayMessages.WithLabelValues("skipped").Inc()
		return result
	}
	result.DestChannelID = dst

	if text := s.BuildText(ctx, msg); text != "" {
		if err := s.sender.SendText(ctx, dst, text); err != nil {
			slog.Error("Failed to relay message text", "source_channel", msg.ChannelID, "dest_channel", dst, "error", err)
		} else {
			result.TextSent = true
		}
	}

	for _, att := range msg.Attachments {
		if s.forwardAttachment(ctx, dst, att) {
			result.AttachmentsSent++
		} else {
			result.AttachmentsFailed++
		}
	}

	outcome := "failed"
	if result.Success() {
		outcome = "forwarded"
	}
	telemetry.RelayMessages.WithLabelValues(outcome).Inc()

	slog.Info("Message relayed",
		"source_channel", msg.ChannelName,
		"dest_channel", dst,
		"author", msg.AuthorDisplayName,
		"text_sent", result.TextSent,
		"attachments_sent", result.AttachmentsSent,
		"attachments_failed", result.AttachmentsFailed,
	)
	return result
}

// BuildText renders the outbound text: prefix, author and message, plus the
// translation when it differs from the original
func (s *Service) BuildText(ctx context.Context, msg domain.InboundMessage) string {
	content := msg.Text
	if content == "" && len(msg.Attachments) > 0 {
		content = domain.AttachmentPlaceholder
	}
	if content == "" {
		return ""
	}

	prefix := s.policy.Prefix()

	if s.translator != nil && s.translator.Enabled() {
		translated := s.translator.TranslateText(ctx, content)
		if translated != content && strings.TrimSpace(translated) != "" {
			return fmt.Sprintf("%s %s:\n%s\n\n%s\n%s",
				prefix, msg.AuthorDisplayName, strings.TrimSpace(content), domain.TranslationMarker, strings.TrimSpace(translated))
		}
	}

	return fmt.Sprintf("%s %s: %s", prefix, msg.AuthorDisplayName, content)
}

func (s *Service) forwardAttachment(ctx context.Context, dst string, att attachmentDomain.Attachment) (sent bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Attachment relay panicked", "file", att.Filename, "panic", r)
			sent = false
		}
		result := "failed"
		if sent {
			result = "forwarded"
		}
		telemetry.RelayAttachments.WithLabelValues(result).Inc()
	}()

	ok, err := s.attachments.Forward(ctx, dst, att)
	if err != nil {
		slog.Warn("Attachment not relayed", "file", att.Filename, "dest_channel", dst, "error", err)
	}
	return ok
}
