package errors

import "errors"

var (
	ErrMissingKookToken = errors.New("KOOK_BOT_TOKEN environment variable is required")

	// Resolution misses surfaced to callers with a human-readable reason.
	ErrNotFound       = errors.New("not found")
	ErrAlreadyTracked = errors.New("item already tracked")
	ErrNotTracked     = errors.New("item not tracked")
	ErrNoSubscription = errors.New("no tracked items for subscriber")

	// Price source failures, treated as skip by the scheduler.
	ErrNoPrice            = errors.New("no price available")
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// Attachment rejections that degrade to a text notice.
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")

	ErrNotReady = errors.New("service not initialized")
)

// Is is re-exported so callers importing this package under the errors name
// don't also need the standard library one.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}
