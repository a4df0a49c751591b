package domain

import (
	"time"

	pricewatchDomain "github.com/reshetovitsme/relaywatch/internal/modules/pricewatch/domain"
)

// MaxDeals is how many recent changes the feed keeps
const MaxDeals = 100

// Deal is a favorable price change as published in the feed
type Deal struct {
	Change     pricewatchDomain.Change
	DetectedAt time.Time
}
