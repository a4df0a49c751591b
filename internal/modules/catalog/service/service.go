package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/reshetovitsme/relaywatch/internal/modules/catalog/domain"
	"github.com/reshetovitsme/relaywatch/internal/modules/catalog/repository"
	"github.com/reshetovitsme/relaywatch/internal/shared/errors"
	"github.com/reshetovitsme/relaywatch/internal/shared/fuzzy"
	"github.com/reshetovitsme/relaywatch/internal/shared/task"
	"github.com/reshetovitsme/relaywatch/internal/shared/telemetry"
	"github.com/samber/oops"
)

const (
	defaultRefreshInterval = 24 * time.Hour
	refreshRecoveryDelay   = 10 * time.Minute
)

// Source is the external catalog
type Source interface {
	FetchAppList(ctx context.Context) ([]domain.Item, error)
	FetchName(ctx context.Context, id string) (string, error)
	FetchPrice(ctx context.Context, id string) (domain.Price, error)
}

// index is an immutable name/id view of the catalog
type index struct {
	byName map[string]string
	byID   map[string]string
	names  []string
}

func newIndex(byName map[string]string) *index {
	idx := &index{
		byName: byName,
		byID:   make(map[string]string, len(byName)),
		names:  make([]string, 0, len(byName)),
	}
	for name, id := range byName {
		idx.byID[id] = name
		idx.names = append(idx.names, name)
	}
	sort.Strings(idx.names)
	return idx
}

// Service is the catalog snapshot cache. Lookups read an index that is
// replaced whole on refresh and on backfill, never modified in place.
type Service struct {
	source   Source
	snapshot repository.Snapshot
	interval time.Duration

	current    atomic.Pointer[index]
	backfillMu sync.Mutex

	ready     chan struct{}
	readyOnce sync.Once

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates the catalog service. It stays not ready until Initialize returns.
func New(source Source, snapshot repository.Snapshot, interval time.Duration) *Service {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		source:   source,
		snapshot: snapshot,
		interval: interval,
		ready:    make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.current.Store(newIndex(map[string]string{}))
	return s
}

// Initialize performs the first refresh and opens the ready gate whatever the outcome
func (s *Service) Initialize(ctx context.Context) {
	defer s.readyOnce.Do(func() { close(s.ready) })

	if err := s.Refresh(ctx); err != nil {
		slog.Warn("Initial catalog refresh failed", "error", err, "items", s.Size())
	}
}

// Ready is closed once the first catalog load has finished
func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

// WaitReady blocks until the first load finished or ctx is done
func (s *Service) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return oops.With("context", "waiting for catalog").Wrap(errors.ErrNotReady)
	}
}

// Refresh reloads the full catalog. On failure the current index is kept, or
// the last snapshot is loaded when nothing is in memory yet.
func (s *Service) Refresh(ctx context.Context) error {
	items, err := s.source.FetchAppList(ctx)
	if err == nil && len(items) == 0 {
		err = oops.Errorf("catalog returned no items")
	}

	if err != nil {
		telemetry.CatalogRefreshes.WithLabelValues("error").Inc()
		if len(s.current.Load().byName) == 0 {
			s.loadSnapshot()
		}
		return oops.With("context", "catalog refresh").Wrap(err)
	}

	byName := make(map[string]string, len(items))
	for _, item := range items {
		byName[item.Name] = item.ID
	}

	s.backfillMu.Lock()
	s.current.Store(newIndex(byName))
	s.backfillMu.Unlock()

	telemetry.CatalogRefreshes.WithLabelValues("ok").Inc()
	telemetry.CatalogSize.Set(float64(len(byName)))
	slog.Info("Catalog refreshed", "items", len(byName))

	if err := s.snapshot.Save(byName); err != nil {
		slog.Error("Failed to save catalog snapshot", "error", err)
	}
	return nil
}

func (s *Service) loadSnapshot() {
	byName, err := s.snapshot.Load()
	if err != nil {
		slog.Warn("Catalog snapshot unavailable, lookups will miss until the next refresh", "error", err)
		return
	}

	s.backfillMu.Lock()
	s.current.Store(newIndex(byName))
	s.backfillMu.Unlock()

	telemetry.CatalogSize.Set(float64(len(byName)))
	slog.Info("Catalog loaded from snapshot", "items", len(byName))
}

// Size returns the number of known names
func (s *Service) Size() int {
	return len(s.current.Load().byName)
}

// ResolveID maps a name to an item. An exact name wins; otherwise the best
// fuzzy candidate is accepted when scorer rates it at least threshold.
func (s *Service) ResolveID(ctx context.Context, name string, threshold float64, scorer fuzzy.Scorer) (domain.Item, error) {
	if err := s.WaitReady(ctx); err != nil {
		return domain.Item{}, err
	}

	idx := s.current.Load()
	if id, ok := idx.byName[name]; ok {
		return domain.Item{ID: id, Name: name}, nil
	}
	if len(idx.names) == 0 {
		return domain.Item{}, oops.With("name", name).Wrap(errors.ErrCatalogUnavailable)
	}

	match, ok := fuzzy.ExtractOne(name, idx.names, scorer)
	if !ok || match.Score < threshold {
		return domain.Item{}, oops.With("name", name, "best", match.Choice, "score", match.Score).Wrap(errors.ErrNotFound)
	}
	return domain.Item{ID: idx.byName[match.Choice], Name: match.Choice}, nil
}

// ResolveName maps an id to its name, asking the catalog directly on a miss
// and remembering the answer
func (s *Service) ResolveName(ctx context.Context, id string) (string, error) {
	if err := s.WaitReady(ctx); err != nil {
		return "", err
	}

	if name, ok := s.current.Load().byID[id]; ok {
		return name, nil
	}

	name, err := s.source.FetchName(ctx, id)
	if err != nil {
		return "", oops.With("appid", id).Wrap(err)
	}

	s.backfill(id, name)
	return name, nil
}

// LookupName returns a cached name without contacting the catalog
func (s *Service) LookupName(id string) (string, bool) {
	name, ok := s.current.Load().byID[id]
	return name, ok
}

// LookupID returns the id cached under an exact name
func (s *Service) LookupID(name string) (string, bool) {
	id, ok := s.current.Load().byName[name]
	return id, ok
}

// Price fetches the current price of an item
func (s *Service) Price(ctx context.Context, id string) (domain.Price, error) {
	return s.source.FetchPrice(ctx, id)
}

func (s *Service) backfill(id, name string) {
	s.backfillMu.Lock()
	defer s.backfillMu.Unlock()

	cur := s.current.Load()
	byName := make(map[string]string, len(cur.byName)+1)
	for n, i := range cur.byName {
		if i != id {
			byName[n] = i
		}
	}
	byName[name] = id
	s.current.Store(newIndex(byName))
}

// Start loads the catalog and refreshes it every interval
func (s *Service) Start() {
	loop := task.Loop{
		Name:          "catalog-refresh",
		Interval:      s.interval,
		RecoveryDelay: refreshRecoveryDelay,
		Fn:            s.Refresh,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Initialize(s.ctx)
		loop.Run(s.ctx)
	}()
}

// Stop ends periodic refreshes
func (s *Service) Stop() {
	s.cancel()
	s.wg.Wait()
}
