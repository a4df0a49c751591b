package domain

import (
	"fmt"
	"strings"

	watchDomain "github.com/reshetovitsme/relaywatch/internal/modules/watchlist/domain"
	"github.com/shopspring/decimal"
)

const StoreURL = "https://store.steampowered.com/app/"

// Change is a favorable price movement for one subscriber
type Change struct {
	Key         watchDomain.SubscriberKey
	ItemID      string
	Name        string
	OldPrice    decimal.Decimal
	NewPrice    decimal.Decimal
	OldDiscount int
	NewDiscount int
	Currency    string
}

// Favorable reports whether moving from the old to the new values is worth a notification
func Favorable(oldPrice, newPrice decimal.Decimal, oldDiscount, newDiscount int) bool {
	return newPrice.LessThan(oldPrice) || newDiscount > oldDiscount
}

func (c Change) PriceDropped() bool {
	return c.NewPrice.LessThan(c.OldPrice)
}

func (c Change) DiscountRaised() bool {
	return c.NewDiscount > c.OldDiscount
}

// Link is the store page of the item
func (c Change) Link() string {
	return StoreURL + c.ItemID
}

// FormatChange renders the notification sent to the subscriber
func FormatChange(c Change) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🎮 **%s** price alert!\n\n", c.Name)

	if c.PriceDropped() {
		drop := c.OldPrice.Sub(c.NewPrice)
		fmt.Fprintf(&b, "💰 Price: ~~%s %s~~ → **%s %s**\n",
			c.OldPrice.StringFixed(2), c.Currency, c.NewPrice.StringFixed(2), c.Currency)
		if c.OldPrice.IsPositive() {
			percent := drop.Div(c.OldPrice).Mul(decimal.NewFromInt(100))
			fmt.Fprintf(&b, "📉 Drop: **%s %s** (-%s%%)\n", drop.StringFixed(2), c.Currency, percent.StringFixed(1))
		} else {
			fmt.Fprintf(&b, "📉 Drop: **%s %s**\n", drop.StringFixed(2), c.Currency)
		}
	}

	if c.DiscountRaised() {
		fmt.Fprintf(&b, "🏷️ Discount: ~~%d%%~~ → **%d%%**\n", c.OldDiscount, c.NewDiscount)
	}

	fmt.Fprintf(&b, "\n🔗 Store: %s\n", c.Link())
	return b.String()
}
