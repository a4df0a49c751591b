package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/feeds"
	"github.com/reshetovitsme/relaywatch/internal/modules/feed/domain"
	pricewatchDomain "github.com/reshetovitsme/relaywatch/internal/modules/pricewatch/domain"
)

// Service keeps the most recent deals in memory and renders them as a feed.
// Deals are shared by every subscriber; the subscriber key is not published.
type Service struct {
	mu    sync.RWMutex
	deals []domain.Deal
	now   func() time.Time
}

func New() *Service {
	return &Service{now: time.Now}
}

// Notify records a change. The oldest deal is dropped past domain.MaxDeals.
func (s *Service) Notify(_ context.Context, change pricewatchDomain.Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.deals {
		if d.Change.ItemID == change.ItemID && d.Change.NewPrice.Equal(change.NewPrice) && d.Change.NewDiscount == change.NewDiscount {
			return nil
		}
	}

	s.deals = append(s.deals, domain.Deal{Change: change, DetectedAt: s.now()})
	if len(s.deals) > domain.MaxDeals {
		s.deals = s.deals[len(s.deals)-domain.MaxDeals:]
	}
	return nil
}

// Deals returns the recorded deals, newest first
func (s *Service) Deals() []domain.Deal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Deal, len(s.deals))
	for i, d := range s.deals {
		out[len(s.deals)-1-i] = d
	}
	return out
}

// GenerateFeed builds the deals feed
func (s *Service) GenerateFeed(baseURL string) *feeds.Feed {
	deals := s.Deals()

	feed := &feeds.Feed{
		Title:       "Price drops",
		Link:        &feeds.Link{Href: baseURL + "/rss/deals"},
		Description: "Favorable price changes of watched games",
		Created:     s.now(),
	}
	if len(deals) > 0 {
		feed.Updated = deals[0].DetectedAt
	}

	for _, d := range deals {
		feed.Items = append(feed.Items, dealToFeedItem(d))
	}
	return feed
}

func dealToFeedItem(d domain.Deal) *feeds.Item {
	c := d.Change
	title := c.Name
	if c.PriceDropped() {
		title = fmt.Sprintf("%s: %s %s", c.Name, c.NewPrice.StringFixed(2), c.Currency)
	}
	if c.NewDiscount > 0 {
		title += fmt.Sprintf(" (-%d%%)", c.NewDiscount)
	}

	description := pricewatchDomain.FormatChange(c)
	lines := strings.Split(strings.TrimSpace(description), "\n")
	var content strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		content.WriteString("<p>" + html.EscapeString(line) + "</p>")
	}

	return &feeds.Item{
		Title:       title,
		Link:        &feeds.Link{Href: c.Link()},
		Description: description,
		Content:     content.String(),
		Created:     d.DetectedAt,
		Id:          fmt.Sprintf("%s-%d", c.ItemID, d.DetectedAt.Unix()),
	}
}
