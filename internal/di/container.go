package di

import (
	"context"
	"log/slog"

	attachmentService "github.com/reshetovitsme/relaywatch/internal/modules/attachment/service"
	catalogClient "github.com/reshetovitsme/relaywatch/internal/modules/catalog/client"
	catalogRepo "github.com/reshetovitsme/relaywatch/internal/modules/catalog/repository"
	catalogService "github.com/reshetovitsme/relaywatch/internal/modules/catalog/service"
	deliveryService "github.com/reshetovitsme/relaywatch/internal/modules/delivery/service"
	feedService "github.com/reshetovitsme/relaywatch/internal/modules/feed/service"
	forwardingService "github.com/reshetovitsme/relaywatch/internal/modules/forwarding/service"
	pricewatchService "github.com/reshetovitsme/relaywatch/internal/modules/pricewatch/service"
	relayService "github.com/reshetovitsme/relaywatch/internal/modules/relay/service"
	translationProvider "github.com/reshetovitsme/relaywatch/internal/modules/translation/provider"
	translationService "github.com/reshetovitsme/relaywatch/internal/modules/translation/service"
	watchlistRepo "github.com/reshetovitsme/relaywatch/internal/modules/watchlist/repository"
	watchlistService "github.com/reshetovitsme/relaywatch/internal/modules/watchlist/service"
	"github.com/reshetovitsme/relaywatch/internal/shared/config"
	"github.com/reshetovitsme/relaywatch/internal/transport/discord"
	httpServer "github.com/reshetovitsme/relaywatch/internal/transport/http"
	"github.com/reshetovitsme/relaywatch/internal/transport/kook"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Relay settings, swapped on reload
	do.Provide(injector, func(i do.Injector) (*forwardingService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return forwardingService.NewFromConfig(cfg), nil
	})

	do.Provide(injector, func(i do.Injector) (*translationService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return translationService.NewFromConfig(cfg), nil
	})

	// KOOK delivery
	do.Provide(injector, func(i do.Injector) (*kook.API, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return kook.NewAPI(cfg.KookAPIURL, cfg.KookBotToken), nil
	})

	do.Provide(injector, func(i do.Injector) (*deliveryService.Sender, error) {
		api := do.MustInvoke[*kook.API](i)
		return deliveryService.New(kook.NewClient(api), api), nil
	})

	do.Provide(injector, func(i do.Injector) (*attachmentService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		sender := do.MustInvoke[*deliveryService.Sender](i)
		forwarding := do.MustInvoke[*forwardingService.Service](i)
		return attachmentService.New(attachmentService.ConfigFromAppConfig(cfg), sender, forwarding.Prefix), nil
	})

	do.Provide(injector, func(i do.Injector) (*relayService.Service, error) {
		forwarding := do.MustInvoke[*forwardingService.Service](i)
		translation := do.MustInvoke[*translationService.Service](i)
		sender := do.MustInvoke[*deliveryService.Sender](i)
		attachments := do.MustInvoke[*attachmentService.Service](i)
		return relayService.New(forwarding, translation, sender, attachments), nil
	})

	// Price watch
	do.Provide(injector, func(i do.Injector) (*catalogService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		snapshot, err := catalogRepo.NewFileSnapshot(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize catalog snapshot").Wrap(err)
		}
		steam := catalogClient.NewSteam(cfg.SteamAPIURL, cfg.SteamStoreURL, cfg.SteamRegion)
		return catalogService.New(steam, snapshot, cfg.CatalogRefreshInterval()), nil
	})

	do.Provide(injector, func(i do.Injector) (*watchlistService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := watchlistRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize watch list repository").Wrap(err)
		}
		return watchlistService.New(repo, do.MustInvoke[*catalogService.Service](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (*feedService.Service, error) {
		return feedService.New(), nil
	})

	// Discord gateway
	do.Provide(injector, func(i do.Injector) (*discord.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		relay := do.MustInvoke[*relayService.Service](i)
		watchlist := do.MustInvoke[*watchlistService.Service](i)

		bot, err := discord.NewBot(cfg.DiscordBotToken, discord.NewHandler(relay, watchlist))
		if err != nil {
			return nil, oops.With("context", "failed to create discord bot").Wrap(err)
		}
		return bot, nil
	})

	do.Provide(injector, func(i do.Injector) (*pricewatchService.Scheduler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		watchlist := do.MustInvoke[*watchlistService.Service](i)
		catalog := do.MustInvoke[*catalogService.Service](i)
		bot := do.MustInvoke[*discord.Bot](i)
		feed := do.MustInvoke[*feedService.Service](i)
		return pricewatchService.New(watchlist, catalog, cfg.PriceCheckInterval(), bot.Notifier(), feed), nil
	})

	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		feed := do.MustInvoke[*feedService.Service](i)
		catalog := do.MustInvoke[*catalogService.Service](i)
		server := httpServer.New(cfg, feed, catalog)
		server.SetLogger(slog.Default())
		return server, nil
	})

	return injector, nil
}

// Reload re-reads configuration and swaps relay settings and translation
// state in place. Tokens, paths and intervals need a restart.
func Reload(injector do.Injector) error {
	cfg, err := config.Reload()
	if err != nil {
		return oops.With("context", "failed to reload config").Wrap(err)
	}

	forwarding := do.MustInvoke[*forwardingService.Service](injector)
	forwarding.Reload(forwardingService.SettingsFromConfig(cfg))

	translation := do.MustInvoke[*translationService.Service](injector)
	translation.Reload(translationService.ConfigFromAppConfig(cfg), translationProvider.FromConfig(cfg))

	slog.Info("Configuration reloaded", "rules", len(forwarding.Rules()), "translation_enabled", translation.Enabled())
	return nil
}

// Shutdown gracefully shuts down all services
func Shutdown(injector do.Injector) error {
	ctx := context.Background()

	if server, err := do.Invoke[*httpServer.Server](injector); err == nil && server != nil {
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Failed to stop HTTP server", "error", err)
		}
	}

	if bot, err := do.Invoke[*discord.Bot](injector); err == nil && bot != nil {
		if err := bot.Stop(); err != nil {
			slog.Error("Failed to close discord session", "error", err)
		}
	}

	if scheduler, err := do.Invoke[*pricewatchService.Scheduler](injector); err == nil && scheduler != nil {
		scheduler.Stop()
	}

	if catalog, err := do.Invoke[*catalogService.Service](injector); err == nil && catalog != nil {
		catalog.Stop()
	}

	if attachments, err := do.Invoke[*attachmentService.Service](injector); err == nil && attachments != nil {
		attachments.Stop()
	}

	return nil
}
