package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/reshetovitsme/relaywatch/internal/modules/feed/domain"
	pricewatchDomain "github.com/reshetovitsme/relaywatch/internal/modules/pricewatch/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func change(id string, newPrice int64) pricewatchDomain.Change {
	return pricewatchDomain.Change{
		ItemID:      id,
		Name:        "Game " + id,
		OldPrice:    decimal.NewFromInt(100),
		NewPrice:    decimal.NewFromInt(newPrice),
		NewDiscount: 20,
		Currency:    "USD",
	}
}

func TestNotifyKeepsNewestFirstAndCaps(t *testing.T) {
	svc := New()
	ctx := context.Background()

	for i := 0; i < domain.MaxDeals+5; i++ {
		require.NoError(t, svc.Notify(ctx, change(strconv.Itoa(i), 80)))
	}

	deals := svc.Deals()
	require.Len(t, deals, domain.MaxDeals)
	assert.Equal(t, strconv.Itoa(domain.MaxDeals+4), deals[0].Change.ItemID)
	assert.Equal(t, "5", deals[len(deals)-1].Change.ItemID)
}

func TestNotifyDeduplicatesSubscribers(t *testing.T) {
	svc := New()
	ctx := context.Background()

	require.NoError(t, svc.Notify(ctx, change("620", 80)))
	require.NoError(t, svc.Notify(ctx, change("620", 80)))
	require.NoError(t, svc.Notify(ctx, change("620", 60)))

	assert.Len(t, svc.Deals(), 2)
}

func TestGenerateFeedRendersRSS(t *testing.T) {
	svc := New()
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, svc.Notify(context.Background(), change("620", 80)))

	feed := svc.GenerateFeed("http://localhost:8080")
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "Game 620: 80.00 USD (-20%)", feed.Items[0].Title)
	assert.Equal(t, "https://store.steampowered.com/app/620", feed.Items[0].Link.Href)

	rss, err := feed.ToRss()
	require.NoError(t, err)
	assert.Contains(t, rss, "<rss")
	assert.Contains(t, rss, "Game 620")
}
