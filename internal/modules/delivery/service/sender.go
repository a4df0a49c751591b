package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/reshetovitsme/relaywatch/internal/modules/delivery/domain"
	"github.com/reshetovitsme/relaywatch/internal/shared/telemetry"
	"github.com/samber/oops"
)

const (
	defaultAttempts   = 3
	defaultRetryDelay = time.Second
)

// Sender delivers messages to the destination platform. Text goes through
// the platform client first and falls back to the direct API with retries.
type Sender struct {
	native     domain.Destination
	api        domain.DirectAPI
	attempts   int
	retryDelay time.Duration
}

type Option func(*Sender)

// WithRetry overrides the direct API attempt count and the fixed delay between attempts
func WithRetry(attempts int, delay time.Duration) Option {
	return func(s *Sender) {
		if attempts > 0 {
			s.attempts = attempts
		}
		s.retryDelay = delay
	}
}

// New creates a sender. native may be nil, in which case every send uses the direct API.
func New(native domain.Destination, api domain.DirectAPI, opts ...Option) *Sender {
	s := &Sender{
		native:     native,
		api:        api,
		attempts:   defaultAttempts,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendText sends plain text to channelID
func (s *Sender) SendText(ctx context.Context, channelID, text string) error {
	if s.native != nil {
		err := s.native.SendText(ctx, channelID, text)
		if err == nil {
			telemetry.DeliveryAttempts.WithLabelValues("native", "ok").Inc()
			return nil
		}
		telemetry.DeliveryAttempts.WithLabelValues("native", "error").Inc()
		slog.Warn("Native send failed, falling back to direct API", "channel_id", channelID, "error", err)
	}

	attempt := 0
	op := func() error {
		attempt++
		return s.api.CreateMessage(ctx, channelID, text, domain.MessageTypeText)
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.retryDelay), uint64(s.attempts-1)),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		slog.Warn("Direct send attempt failed",
			"channel_id", channelID, "attempt", attempt, "max_attempts", s.attempts, "retry_in", wait, "error", err)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		telemetry.DeliveryAttempts.WithLabelValues("direct", "error").Inc()
		slog.Error("All send attempts failed", "channel_id", channelID, "attempts", attempt, "error", err)
		return oops.With("channel_id", channelID, "attempts", attempt).Wrap(err)
	}

	telemetry.DeliveryAttempts.WithLabelValues("direct", "ok").Inc()
	return nil
}

// SendCard sends a card message, a JSON array of card objects. One attempt only.
func (s *Sender) SendCard(ctx context.Context, channelID, card string) error {
	if err := s.api.CreateMessage(ctx, channelID, card, domain.MessageTypeCard); err != nil {
		return oops.With("channel_id", channelID, "context", "sending card").Wrap(err)
	}
	return nil
}

// SendNativeFile hands a local file to the platform client
func (s *Sender) SendNativeFile(ctx context.Context, channelID, path, filename string) error {
	if s.native == nil {
		return oops.Errorf("no native destination client")
	}
	return s.native.SendFile(ctx, channelID, path, filename)
}

// UploadAsset uploads a local file through the direct API and returns its URL
func (s *Sender) UploadAsset(ctx context.Context, path, filename string) (string, error) {
	url, err := s.api.CreateAsset(ctx, path, filename)
	if err != nil {
		return "", oops.With("file", filename, "context", "uploading asset").Wrap(err)
	}
	return url, nil
}
