package service

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	catalogDomain "github.com/reshetovitsme/relaywatch/internal/modules/catalog/domain"
	"github.com/reshetovitsme/relaywatch/internal/modules/pricewatch/domain"
	watchDomain "github.com/reshetovitsme/relaywatch/internal/modules/watchlist/domain"
	"github.com/reshetovitsme/relaywatch/internal/modules/watchlist/repository"
	watchService "github.com/reshetovitsme/relaywatch/internal/modules/watchlist/service"
	"github.com/reshetovitsme/relaywatch/internal/shared/errors"
	"github.com/reshetovitsme/relaywatch/internal/shared/fuzzy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalog serves a fixed name index and prices that tests change between runs
type fakeCatalog struct {
	mu     sync.Mutex
	names  map[string]string
	prices map[string]catalogDomain.Price
}

func (c *fakeCatalog) WaitReady(context.Context) error { return nil }

func (c *fakeCatalog) ResolveID(_ context.Context, name string, _ float64, _ fuzzy.Scorer) (catalogDomain.Item, error) {
	if id, ok := c.names[name]; ok {
		return catalogDomain.Item{ID: id, Name: name}, nil
	}
	return catalogDomain.Item{}, errors.ErrNotFound
}

func (c *fakeCatalog) ResolveName(_ context.Context, id string) (string, error) {
	for n, i := range c.names {
		if i == id {
			return n, nil
		}
	}
	return "", errors.ErrNotFound
}

func (c *fakeCatalog) LookupID(name string) (string, bool) {
	id, ok := c.names[name]
	return id, ok
}

func (c *fakeCatalog) Price(_ context.Context, id string) (catalogDomain.Price, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.prices[id]; ok {
		return p, nil
	}
	return catalogDomain.Price{}, errors.ErrNoPrice
}

func (c *fakeCatalog) setPrice(id string, p catalogDomain.Price) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[id] = p
}

func price(current int64, discount int, currency string) catalogDomain.Price {
	return catalogDomain.Price{Current: decimal.NewFromInt(current), Discount: discount, Currency: currency}
}

type recordingNotifier struct {
	changes []domain.Change
}

func (n *recordingNotifier) Notify(_ context.Context, c domain.Change) error {
	n.changes = append(n.changes, c)
	return nil
}

var alice = watchDomain.SubscriberKey{UserID: "1", ChannelID: "9"}

func setup(t *testing.T) (*Scheduler, *watchService.Service, *fakeCatalog, *repository.FileStorage) {
	t.Helper()

	catalog := &fakeCatalog{
		names: map[string]string{"Portal 2": "620", "Hades": "1145360"},
		prices: map[string]catalogDomain.Price{
			"620":     price(100, 0, "CNY"),
			"1145360": price(50, 0, "CNY"),
		},
	}
	storage, err := repository.NewFileStorage(t.TempDir())
	require.NoError(t, err)

	watchlist := watchService.New(storage, catalog)
	require.NoError(t, watchlist.Initialize(context.Background()))
	require.True(t, watchlist.Add(context.Background(), alice, "Portal 2").OK)
	require.True(t, watchlist.Add(context.Background(), alice, "Hades").OK)

	return New(watchlist, catalog, time.Hour), watchlist, catalog, storage
}

func TestRunOnceDetectsFavorableChange(t *testing.T) {
	scheduler, watchlist, catalog, _ := setup(t)
	ctx := context.Background()

	catalog.setPrice("620", price(80, 20, "CNY"))

	changes, err := scheduler.RunOnce(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 1)

	c := changes[0]
	assert.Equal(t, alice, c.Key)
	assert.Equal(t, "Portal 2", c.Name)
	assert.True(t, c.OldPrice.Equal(decimal.NewFromInt(100)))
	assert.True(t, c.NewPrice.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, 0, c.OldDiscount)
	assert.Equal(t, 20, c.NewDiscount)

	entries, err := watchlist.List(ctx, alice)
	require.NoError(t, err)
	for _, e := range entries {
		if e.ItemID == "620" {
			assert.True(t, e.LastPrice.Equal(decimal.NewFromInt(80)))
			assert.Equal(t, 20, e.LastDiscount)
		}
	}

	changes, err = scheduler.RunOnce(ctx)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestRunOnceUnchangedDoesNotPersist(t *testing.T) {
	scheduler, _, _, storage := setup(t)

	before, err := os.ReadFile(storage.Path())
	require.NoError(t, err)

	changes, err := scheduler.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, changes)

	after, err := os.ReadFile(storage.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRunOnceSkipsFailedFetches(t *testing.T) {
	scheduler, _, catalog, _ := setup(t)

	catalog.mu.Lock()
	delete(catalog.prices, "620")
	catalog.mu.Unlock()
	catalog.setPrice("1145360", price(40, 0, "CNY"))

	changes, err := scheduler.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "1145360", changes[0].ItemID)
}

func TestRunOncePriceIncreaseRebaselinesSilently(t *testing.T) {
	scheduler, watchlist, catalog, _ := setup(t)
	ctx := context.Background()

	catalog.setPrice("620", price(120, 0, "CNY"))
	changes, err := scheduler.RunOnce(ctx)
	require.NoError(t, err)
	assert.Empty(t, changes)

	// an increase is not stored, so returning to 100 is not a drop
	catalog.setPrice("620", price(100, 0, "CNY"))
	changes, err = scheduler.RunOnce(ctx)
	require.NoError(t, err)
	assert.Empty(t, changes)

	entries, err := watchlist.List(ctx, alice)
	require.NoError(t, err)
	assert.True(t, entries[1].LastPrice.Equal(decimal.NewFromInt(100)))
}

func TestRunOnceCurrencyChangeResetsBaseline(t *testing.T) {
	scheduler, watchlist, catalog, _ := setup(t)
	ctx := context.Background()

	catalog.setPrice("620", price(15, 0, "USD"))
	changes, err := scheduler.RunOnce(ctx)
	require.NoError(t, err)
	assert.Empty(t, changes)

	entries, err := watchlist.List(ctx, alice)
	require.NoError(t, err)
	portal := entries[1]
	assert.Equal(t, "USD", portal.Currency)
	assert.True(t, portal.LastPrice.Equal(decimal.NewFromInt(15)))

	catalog.setPrice("620", price(10, 33, "USD"))
	changes, err = scheduler.RunOnce(ctx)
	require.NoError(t, err)
	assert.Len(t, changes, 1)
}

func TestRunNotifiesEveryNotifier(t *testing.T) {
	_, watchlist, catalog, _ := setup(t)
	first, second := &recordingNotifier{}, &recordingNotifier{}
	scheduler := New(watchlist, catalog, time.Hour, first, second)

	catalog.setPrice("1145360", price(25, 50, "CNY"))
	require.NoError(t, scheduler.run(context.Background()))

	assert.Len(t, first.changes, 1)
	assert.Len(t, second.changes, 1)
}

func TestCurrencyChanged(t *testing.T) {
	assert.True(t, currencyChanged("CNY", "USD"))
	assert.False(t, currencyChanged("CNY", "CNY"))
	assert.False(t, currencyChanged(catalogDomain.FreeCurrency, "USD"))
	assert.False(t, currencyChanged("", "USD"))
}
