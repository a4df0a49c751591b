package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	catalogDomain "github.com/reshetovitsme/relaywatch/internal/modules/catalog/domain"
	"github.com/reshetovitsme/relaywatch/internal/modules/watchlist/domain"
	"github.com/reshetovitsme/relaywatch/internal/modules/watchlist/repository"
	"github.com/reshetovitsme/relaywatch/internal/shared/errors"
	"github.com/reshetovitsme/relaywatch/internal/shared/fuzzy"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Catalog resolves names and ids and quotes prices
type Catalog interface {
	WaitReady(ctx context.Context) error
	ResolveID(ctx context.Context, name string, threshold float64, scorer fuzzy.Scorer) (catalogDomain.Item, error)
	ResolveName(ctx context.Context, id string) (string, error)
	LookupID(name string) (string, bool)
	Price(ctx context.Context, id string) (catalogDomain.Price, error)
}

// Service owns the per-subscriber watch lists. Every mutation is written
// through to the repository while the lock is held.
type Service struct {
	repo    repository.Repository
	catalog Catalog
	now     func() time.Time

	mu    sync.Mutex
	store domain.Store

	ready     chan struct{}
	readyOnce sync.Once
}

func New(repo repository.Repository, catalog Catalog) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		now:     time.Now,
		store:   domain.Store{},
		ready:   make(chan struct{}),
	}
}

// Initialize waits for the catalog and loads the persisted lists. A missing or
// unreadable file starts an empty store.
func (s *Service) Initialize(ctx context.Context) error {
	if err := s.catalog.WaitReady(ctx); err != nil {
		return err
	}

	store, err := s.repo.Load()
	if err != nil {
		slog.Warn("Starting with an empty watch list", "error", err)
		store = domain.Store{}
	}

	s.mu.Lock()
	s.store = store
	s.mu.Unlock()

	s.readyOnce.Do(func() { close(s.ready) })
	slog.Info("Watch list loaded", "subscribers", len(store))
	return nil
}

// WaitReady blocks until Initialize completed
func (s *Service) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return oops.With("context", "waiting for watch list").Wrap(errors.ErrNotReady)
	}
}

// Add resolves input to a catalog item and starts tracking it for key.
// Numeric input is taken as an id, anything else as a name.
func (s *Service) Add(ctx context.Context, key domain.SubscriberKey, input string) domain.Outcome {
	if err := s.WaitReady(ctx); err != nil {
		return failure("The game list is still loading, try again shortly", err)
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return failure("Please provide a game name or id", errors.ErrNotFound)
	}

	item, err := s.resolve(ctx, input)
	if err != nil {
		return failure(fmt.Sprintf("No game matching '%s' was found, try a more precise name", input), err)
	}

	price, err := s.catalog.Price(ctx, item.ID)
	if err != nil {
		return failure(fmt.Sprintf("Could not fetch the price of '%s'", item.Name), err)
	}

	entry := domain.Entry{
		ItemID:       item.ID,
		Name:         item.Name,
		LastPrice:    price.Current,
		LastDiscount: price.Discount,
		Currency:     price.Currency,
		AddedAt:      s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key.String()
	if _, ok := s.store[k][item.ID]; ok {
		return failure(fmt.Sprintf("'%s' is already on your watch list", item.Name),
			oops.With("appid", item.ID, "subscriber", k).Wrap(errors.ErrAlreadyTracked))
	}

	entries, existed := s.store[k]
	if !existed {
		entries = make(map[string]domain.Entry)
		s.store[k] = entries
	}
	entries[item.ID] = entry

	if err := s.repo.Save(s.store); err != nil {
		delete(entries, item.ID)
		if !existed {
			delete(s.store, k)
		}
		return failure("Failed to save your watch list", err)
	}

	slog.Info("Watch added", "subscriber", k, "appid", item.ID, "name", item.Name)
	return domain.Outcome{OK: true, Message: fmt.Sprintf("Added '%s' to your watch list", item.Name), Entry: &entry}
}

func (s *Service) resolve(ctx context.Context, input string) (catalogDomain.Item, error) {
	if isDigits(input) {
		name, err := s.catalog.ResolveName(ctx, input)
		if err != nil {
			return catalogDomain.Item{}, err
		}
		return catalogDomain.Item{ID: input, Name: name}, nil
	}
	return s.catalog.ResolveID(ctx, input, catalogDomain.AddMatchThreshold, fuzzy.TokenSortRatio)
}

// Remove stops tracking one item for key, or every item when input is empty.
// A miss leaves the store and its file untouched.
func (s *Service) Remove(ctx context.Context, key domain.SubscriberKey, input string) domain.Outcome {
	if err := s.WaitReady(ctx); err != nil {
		return failure("The game list is still loading, try again shortly", err)
	}

	input = strings.TrimSpace(input)
	k := key.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.store[k]
	if len(entries) == 0 {
		return failure("You are not watching any games", oops.With("subscriber", k).Wrap(errors.ErrNoSubscription))
	}

	if input == "" {
		delete(s.store, k)
		if err := s.repo.Save(s.store); err != nil {
			s.store[k] = entries
			return failure("Failed to save your watch list", err)
		}
		slog.Info("Watch list cleared", "subscriber", k, "count", len(entries))
		return domain.Outcome{OK: true, Message: "Removed all games from your watch list"}
	}

	id, ok := s.matchTracked(entries, input)
	if !ok {
		return failure(fmt.Sprintf("'%s' is not on your watch list", input),
			oops.With("subscriber", k, "input", input).Wrap(errors.ErrNotTracked))
	}

	removed := entries[id]
	delete(entries, id)
	if len(entries) == 0 {
		delete(s.store, k)
	}
	if err := s.repo.Save(s.store); err != nil {
		entries[id] = removed
		s.store[k] = entries
		return failure("Failed to save your watch list", err)
	}

	slog.Info("Watch removed", "subscriber", k, "appid", id)
	return domain.Outcome{OK: true, Message: fmt.Sprintf("Stopped watching '%s'", removed.Name), Entry: &removed}
}

// matchTracked finds input among entries by id, then by exact catalog name,
// then by a fuzzy match over the tracked names only
func (s *Service) matchTracked(entries map[string]domain.Entry, input string) (string, bool) {
	if _, ok := entries[input]; ok {
		return input, true
	}

	if id, ok := s.catalog.LookupID(input); ok {
		_, tracked := entries[id]
		return id, tracked
	}

	tracked := sortedEntries(entries)
	names := lo.Map(tracked, func(e domain.Entry, _ int) string { return e.Name })
	match, ok := fuzzy.ExtractOne(input, names, fuzzy.TokenSetRatio)
	if !ok || match.Score < catalogDomain.LookupMatchThreshold {
		return "", false
	}
	return tracked[match.Index].ItemID, true
}

// List returns the entries tracked for key ordered by name
func (s *Service) List(ctx context.Context, key domain.SubscriberKey) ([]domain.Entry, error) {
	if err := s.WaitReady(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedEntries(s.store[key.String()]), nil
}

// Targets copies every tracked entry so callers can work without the lock
func (s *Service) Targets(ctx context.Context) ([]domain.Target, error) {
	if err := s.WaitReady(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var targets []domain.Target
	for k, entries := range s.store {
		key, ok := domain.ParseSubscriberKey(k)
		if !ok {
			slog.Warn("Skipping malformed subscriber key", "key", k)
			continue
		}
		for _, e := range sortedEntries(entries) {
			targets = append(targets, domain.Target{Key: key, Entry: e})
		}
	}
	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].Key.String() < targets[j].Key.String()
	})
	return targets, nil
}

// ApplyPriceUpdates stores new prices for entries that still exist and were
// not changed since the update was computed. The store is saved once when
// anything was applied. The applied updates are returned.
func (s *Service) ApplyPriceUpdates(updates []domain.PriceUpdate) ([]domain.PriceUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var applied []domain.PriceUpdate
	for _, u := range updates {
		entries := s.store[u.Key.String()]
		entry, ok := entries[u.ItemID]
		if !ok {
			continue
		}
		if !entry.LastPrice.Equal(u.OldPrice) || entry.LastDiscount != u.OldDiscount {
			continue
		}

		entry.LastPrice = u.NewPrice
		entry.LastDiscount = u.NewDiscount
		entry.Currency = u.Currency
		entries[u.ItemID] = entry
		applied = append(applied, u)
	}

	if len(applied) == 0 {
		return nil, nil
	}
	if err := s.repo.Save(s.store); err != nil {
		return applied, err
	}
	return applied, nil
}

func sortedEntries(entries map[string]domain.Entry) []domain.Entry {
	list := lo.Values(entries)
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ItemID < list[j].ItemID
	})
	return list
}

func failure(message string, err error) domain.Outcome {
	return domain.Outcome{Message: message, Err: err}
}

func isDigits(s string) bool {
	return s != "" && strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }) < 0
}
