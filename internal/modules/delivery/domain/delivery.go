package domain

import (
	"context"
	"fmt"
)

// MessageType is the destination platform's message kind
type MessageType int

const (
	MessageTypeText  MessageType = 1
	MessageTypeImage MessageType = 2
	MessageTypeVideo MessageType = 3
	MessageTypeFile  MessageType = 4
	MessageTypeCard  MessageType = 10
)

// Destination is the destination platform's own client
type Destination interface {
	SendText(ctx context.Context, channelID, text string) error
	SendFile(ctx context.Context, channelID, path, filename string) error
}

// DirectAPI is the destination's documented HTTP API, used when the
// platform client fails
type DirectAPI interface {
	CreateMessage(ctx context.Context, targetID, content string, msgType MessageType) error
	CreateAsset(ctx context.Context, path, filename string) (string, error)
}

// UploadedError is returned by a file send that re-hosted the file but could
// not post the message. URL points at the already uploaded asset.
type UploadedError struct {
	URL string
	Err error
}

func (e *UploadedError) Error() string {
	return fmt.Sprintf("file uploaded to %s but message failed: %v", e.URL, e.Err)
}

func (e *UploadedError) Unwrap() error {
	return e.Err
}
