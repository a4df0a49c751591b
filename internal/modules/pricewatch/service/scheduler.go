package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	catalogDomain "github.com/reshetovitsme/relaywatch/internal/modules/catalog/domain"
	"github.com/reshetovitsme/relaywatch/internal/modules/pricewatch/domain"
	watchDomain "github.com/reshetovitsme/relaywatch/internal/modules/watchlist/domain"
	"github.com/reshetovitsme/relaywatch/internal/shared/task"
	"github.com/reshetovitsme/relaywatch/internal/shared/telemetry"
)

const defaultInterval = 30 * time.Minute

type Watchlist interface {
	Targets(ctx context.Context) ([]watchDomain.Target, error)
	ApplyPriceUpdates(updates []watchDomain.PriceUpdate) ([]watchDomain.PriceUpdate, error)
}

type PriceSource interface {
	Price(ctx context.Context, id string) (catalogDomain.Price, error)
}

// Notifier receives every favorable change found by a run
type Notifier interface {
	Notify(ctx context.Context, change domain.Change) error
}

type Scheduler struct {
	watchlist Watchlist
	prices    PriceSource
	interval  time.Duration
	notifiers []Notifier

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(watchlist Watchlist, prices PriceSource, interval time.Duration, notifiers ...Notifier) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		watchlist: watchlist,
		prices:    prices,
		interval:  interval,
		notifiers: notifiers,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// RunOnce checks the price of every tracked entry and returns the favorable
// changes it stored. Prices are fetched without holding the watch list lock;
// items whose price cannot be fetched are skipped until the next run.
func (s *Scheduler) RunOnce(ctx context.Context) ([]domain.Change, error) {
	targets, err := s.watchlist.Targets(ctx)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		slog.Debug("No watched items, skipping price check")
		return nil, nil
	}

	prices := make(map[string]catalogDomain.Price)
	var updates []watchDomain.PriceUpdate
	favorable := make(map[string]bool)

	for _, target := range targets {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		entry := target.Entry
		price, ok := prices[entry.ItemID]
		if !ok {
			price, err = s.prices.Price(ctx, entry.ItemID)
			if err != nil {
				telemetry.PriceChecks.WithLabelValues("error").Inc()
				slog.Warn("Failed to fetch price, skipping", "appid", entry.ItemID, "name", entry.Name, "error", err)
				continue
			}
			telemetry.PriceChecks.WithLabelValues("ok").Inc()
			prices[entry.ItemID] = price
		}

		update := watchDomain.PriceUpdate{
			Key:         target.Key,
			ItemID:      entry.ItemID,
			OldPrice:    entry.LastPrice,
			OldDiscount: entry.LastDiscount,
			NewPrice:    price.Current,
			NewDiscount: price.Discount,
			Currency:    price.Currency,
		}

		if currencyChanged(entry.Currency, price.Currency) {
			slog.Warn("Currency changed, resetting baseline",
				"appid", entry.ItemID, "from", entry.Currency, "to", price.Currency)
			updates = append(updates, update)
			continue
		}

		if domain.Favorable(entry.LastPrice, price.Current, entry.LastDiscount, price.Discount) {
			updates = append(updates, update)
			favorable[changeKey(update)] = true
		}
	}

	applied, err := s.watchlist.ApplyPriceUpdates(updates)
	if err != nil {
		slog.Error("Failed to save price updates", "error", err)
	}

	names := make(map[string]string, len(targets))
	for _, target := range targets {
		names[target.Entry.ItemID] = target.Entry.Name
	}

	var changes []domain.Change
	for _, u := range applied {
		if !favorable[changeKey(u)] {
			continue
		}
		changes = append(changes, domain.Change{
			Key:         u.Key,
			ItemID:      u.ItemID,
			Name:        names[u.ItemID],
			OldPrice:    u.OldPrice,
			NewPrice:    u.NewPrice,
			OldDiscount: u.OldDiscount,
			NewDiscount: u.NewDiscount,
			Currency:    u.Currency,
		})
	}

	telemetry.PriceChanges.Add(float64(len(changes)))
	slog.Info("Price check finished", "targets", len(targets), "changes", len(changes))
	return changes, nil
}

func (s *Scheduler) run(ctx context.Context) error {
	changes, err := s.RunOnce(ctx)
	if err != nil {
		return err
	}

	for _, change := range changes {
		for _, n := range s.notifiers {
			if err := n.Notify(ctx, change); err != nil {
				slog.Error("Failed to deliver price notification",
					"subscriber", change.Key.String(), "appid", change.ItemID, "error", err)
			}
		}
	}
	return nil
}

// Start checks prices every interval until Stop
func (s *Scheduler) Start() {
	loop := task.Loop{
		Name:     "price-watch",
		Interval: s.interval,
		Fn:       s.run,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		loop.Run(s.ctx)
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// currencyChanged is true when both sides carry a real currency and they differ.
// Moves to or from a free price are compared normally.
func currencyChanged(old, current string) bool {
	if old == "" || current == "" {
		return false
	}
	if old == catalogDomain.FreeCurrency || current == catalogDomain.FreeCurrency {
		return false
	}
	return old != current
}

func changeKey(u watchDomain.PriceUpdate) string {
	return u.Key.String() + "/" + u.ItemID
}
