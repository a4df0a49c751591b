package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/reshetovitsme/relaywatch/internal/di"
	attachmentService "github.com/reshetovitsme/relaywatch/internal/modules/attachment/service"
	catalogService "github.com/reshetovitsme/relaywatch/internal/modules/catalog/service"
	pricewatchService "github.com/reshetovitsme/relaywatch/internal/modules/pricewatch/service"
	watchlistService "github.com/reshetovitsme/relaywatch/internal/modules/watchlist/service"
	"github.com/reshetovitsme/relaywatch/internal/shared/config"
	"github.com/reshetovitsme/relaywatch/internal/transport/discord"
	httpServer "github.com/reshetovitsme/relaywatch/internal/transport/http"
	"github.com/samber/do/v2"
	slogmulti "github.com/samber/slog-multi"
)

func main() {
	// Bootstrap logger until the configured level is known
	slog.SetDefault(newLogger(slog.LevelInfo))

	injector, err := di.Setup()
	if err != nil {
		slog.Error("Failed to setup dependency injection", "error", err)
		os.Exit(1)
	}

	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.SlogLevel()))

	defer func() {
		if err := di.Shutdown(injector); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	catalog := do.MustInvoke[*catalogService.Service](injector)
	watchlist := do.MustInvoke[*watchlistService.Service](injector)
	attachments := do.MustInvoke[*attachmentService.Service](injector)
	scheduler := do.MustInvoke[*pricewatchService.Scheduler](injector)
	server := do.MustInvoke[*httpServer.Server](injector)
	bot := do.MustInvoke[*discord.Bot](injector)

	catalog.Start()
	go func() {
		if err := watchlist.Initialize(ctx); err != nil {
			slog.Error("Watch list not initialized", "error", err)
		}
	}()
	attachments.Start()
	scheduler.Start()

	go func() {
		if err := server.Start(); err != nil {
			slog.Error("Failed to start HTTP server", "error", err)
			cancel()
		}
	}()

	if err := bot.Start(); err != nil {
		slog.Error("Failed to connect to Discord", "error", err)
		return
	}

	watchReload(ctx, injector)

	slog.Info("Application started", "port", cfg.HTTPPort, "env", cfg.AppEnv.String())
	slog.Info("Press Ctrl+C to stop")

	<-ctx.Done()
	slog.Info("Shutting down...")
}

func newLogger(level slog.Level) *slog.Logger {
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})
	return slog.New(slogmulti.Fanout(textHandler, jsonHandler))
}

// watchReload reapplies configuration on SIGHUP and when config files change
func watchReload(ctx context.Context, injector do.Injector) {
	reload := func() {
		if err := di.Reload(injector); err != nil {
			slog.Error("Failed to reload configuration", "error", err)
		}
	}

	if err := config.Watch(ctx, reload); err != nil {
		slog.Warn("Config file watching disabled", "error", err)
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		defer signal.Stop(hup)
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				slog.Info("SIGHUP received, reloading configuration")
				reload()
			}
		}
	}()
}
