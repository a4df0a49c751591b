package domain

import "context"

// Config controls whether and how relayed text is translated
type Config struct {
	Enabled    bool
	Provider   ProviderName
	SourceLang string
	TargetLang string
	// A message containing any of these substrings is never translated
	Whitelist []string
}

// Provider is a single translation backend. Configured reports whether its
// credentials are present; Translate is only called on configured providers.
type Provider interface {
	Name() ProviderName
	Configured() bool
	Translate(ctx context.Context, text, source, target string) (string, error)
}
