package domain

import (
	attachmentDomain "github.com/reshetovitsme/relaywatch/internal/modules/attachment/domain"
)

// AttachmentPlaceholder stands in for the text of attachment-only messages
const AttachmentPlaceholder = "[attachment]"

// TranslationMarker introduces the translated copy below the original text
const TranslationMarker = "🔤 Translation:"

// InboundMessage is a message event received from the source platform
type InboundMessage struct {
	AuthorID          string                        `json:"author_id"`
	AuthorDisplayName string                        `json:"author_display_name"`
	IsBot             bool                          `json:"is_bot"`
	ChannelID         string                        `json:"channel_id"`
	ChannelName       string                        `json:"channel_name"`
	Text              string                        `json:"text"`
	Attachments       []attachmentDomain.Attachment `json:"attachments"`
}

// SkipReason explains why a message was not relayed
type SkipReason string

const (
	SkipNone      SkipReason = ""
	SkipBotAuthor SkipReason = "bot_author"
	SkipNoRule    SkipReason = "no_rule"
)

// Result summarizes one relay attempt
type Result struct {
	Skipped           SkipReason
	DestChannelID     string
	TextSent          bool
	AttachmentsSent   int
	AttachmentsFailed int
}

// Success is true when the text or at least one attachment reached the destination
func (r Result) Success() bool {
	return r.TextSent || r.AttachmentsSent > 0
}
