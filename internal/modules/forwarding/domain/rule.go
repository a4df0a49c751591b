package domain

// Rule maps one source channel to exactly one destination channel
type Rule struct {
	SourceChannelID string `json:"source_channel_id"`
	DestChannelID   string `json:"dest_channel_id"`
}

// Settings is the process-wide forwarding policy. A value is never mutated
// after it has been published; reloads replace it whole.
type Settings struct {
	Rules              map[string]string
	ForwardBotMessages bool
	MessagePrefix      string
}
