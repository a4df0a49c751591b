package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SubscriberKey identifies one watch list: a user in a channel
type SubscriberKey struct {
	UserID    string
	ChannelID string
}

func (k SubscriberKey) String() string {
	return k.UserID + "_" + k.ChannelID
}

// ParseSubscriberKey splits a stored key back into user and channel
func ParseSubscriberKey(s string) (SubscriberKey, bool) {
	user, channel, ok := strings.Cut(s, "_")
	if !ok || user == "" || channel == "" {
		return SubscriberKey{}, false
	}
	return SubscriberKey{UserID: user, ChannelID: channel}, true
}

// Entry is one tracked item with the last price seen for it
type Entry struct {
	ItemID       string          `json:"appid"`
	Name         string          `json:"name"`
	LastPrice    decimal.Decimal `json:"last_price"`
	LastDiscount int             `json:"last_discount"`
	Currency     string          `json:"currency"`
	AddedAt      time.Time       `json:"added_time"`
}

// Store is the persisted form: subscriber key to item id to entry
type Store map[string]map[string]Entry

// Target is a copy of one entry together with the key that owns it
type Target struct {
	Key   SubscriberKey
	Entry Entry
}

// PriceUpdate replaces an entry's price fields. It is applied only when the
// entry still holds the Old values it was computed from.
type PriceUpdate struct {
	Key         SubscriberKey
	ItemID      string
	OldPrice    decimal.Decimal
	OldDiscount int
	NewPrice    decimal.Decimal
	NewDiscount int
	Currency    string
}

// Outcome is the result of a watch list command, with a message meant for the user
type Outcome struct {
	OK      bool
	Message string
	Entry   *Entry
	Err     error
}
