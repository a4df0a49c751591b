package kook

import (
	"context"
	"log/slog"

	attachmentDomain "github.com/reshetovitsme/relaywatch/internal/modules/attachment/domain"
	"github.com/reshetovitsme/relaywatch/internal/modules/delivery/domain"
	"github.com/samber/oops"
)

// Client is the platform-level destination: it resolves the channel first
// and sends files as typed media messages rather than cards
type Client struct {
	api *API
}

func NewClient(api *API) *Client {
	return &Client{api: api}
}

func (c *Client) SendText(ctx context.Context, channelID, text string) error {
	if _, err := c.api.ChannelView(ctx, channelID); err != nil {
		return oops.With("context", "resolving destination channel").Wrap(err)
	}
	return c.api.CreateMessage(ctx, channelID, text, domain.MessageTypeText)
}

func (c *Client) SendFile(ctx context.Context, channelID, path, filename string) error {
	ch, err := c.api.ChannelView(ctx, channelID)
	if err != nil {
		return oops.With("context", "resolving destination channel").Wrap(err)
	}

	url, err := c.api.CreateAsset(ctx, path, filename)
	if err != nil {
		return err
	}

	msgType := domain.MessageTypeFile
	switch attachmentDomain.CategoryForFilename(filename) {
	case attachmentDomain.CategoryImage:
		msgType = domain.MessageTypeImage
	case attachmentDomain.CategoryVideo:
		msgType = domain.MessageTypeVideo
	}

	slog.Debug("Sending file message", "channel", ch.Name, "file", filename, "type", int(msgType))
	if err := c.api.CreateMessage(ctx, channelID, url, msgType); err != nil {
		return &domain.UploadedError{URL: url, Err: err}
	}
	return nil
}
