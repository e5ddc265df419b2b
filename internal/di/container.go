package di

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	deliveryService "github.com/reshetovitsme/keyword-share-bot/internal/modules/delivery/service"
	feedService "github.com/reshetovitsme/keyword-share-bot/internal/modules/feed/service"
	filterService "github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/service"
	flowService "github.com/reshetovitsme/keyword-share-bot/internal/modules/flow/service"
	intakeService "github.com/reshetovitsme/keyword-share-bot/internal/modules/intake/service"
	keepaliveService "github.com/reshetovitsme/keyword-share-bot/internal/modules/keepalive/service"
	membershipDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/membership/domain"
	membershipService "github.com/reshetovitsme/keyword-share-bot/internal/modules/membership/service"
	settingsService "github.com/reshetovitsme/keyword-share-bot/internal/modules/settings/service"
	stateRepo "github.com/reshetovitsme/keyword-share-bot/internal/modules/state/repository"
	stateService "github.com/reshetovitsme/keyword-share-bot/internal/modules/state/service"
	userService "github.com/reshetovitsme/keyword-share-bot/internal/modules/user/service"
	"github.com/reshetovitsme/keyword-share-bot/internal/shared/config"
	httpServer "github.com/reshetovitsme/keyword-share-bot/internal/transport/http"
	telegramHandler "github.com/reshetovitsme/keyword-share-bot/internal/transport/telegram"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Setup initializes the dependency injection container.
// Providers are lazy; the first Invoke builds the chain.
func Setup(ctx context.Context) (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Register State Store
	do.Provide(injector, func(i do.Injector) (stateRepo.Store, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return newStore(ctx, cfg.Store)
	})

	// Register State Service, loaded once at startup
	do.Provide(injector, func(i do.Injector) (*stateService.Service, error) {
		store := do.MustInvoke[stateRepo.Store](i)
		state := stateService.New(store)
		if err := state.Load(ctx); err != nil {
			return nil, oops.With("context", "failed to load bot state").Wrap(err)
		}
		return state, nil
	})

	// Register Bot. Updates are routed to the handler lazily so the
	// handler can depend on services that need the bot.
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)

		b, err := telegramHandler.NewBot(cfg.TelegramBotToken, cfg.TelegramAPIURL,
			func(ctx context.Context, b *bot.Bot, update *models.Update) {
				do.MustInvoke[*telegramHandler.Handler](i).HandleUpdate(ctx, b, update)
			})
		if err != nil {
			return nil, err
		}

		if cfg.BotUsername == "" {
			me, err := b.GetMe(ctx)
			if err != nil {
				return nil, oops.With("context", "failed to resolve bot username").Wrap(err)
			}
			cfg.BotUsername = me.Username
		}
		return b, nil
	})

	// Register Messenger
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Messenger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		b := do.MustInvoke[*bot.Bot](i)
		return telegramHandler.NewMessenger(b, cfg.LogChannelID), nil
	})

	// Register Filter Service
	do.Provide(injector, func(i do.Injector) (*filterService.Service, error) {
		return filterService.New(do.MustInvoke[*stateService.Service](i)), nil
	})

	// Register User Service
	do.Provide(injector, func(i do.Injector) (*userService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return userService.New(do.MustInvoke[*stateService.Service](i), cfg.AdminID), nil
	})

	// Register Settings Service
	do.Provide(injector, func(i do.Injector) (*settingsService.Service, error) {
		return settingsService.New(do.MustInvoke[*stateService.Service](i)), nil
	})

	// Register Intake Service
	do.Provide(injector, func(i do.Injector) (*intakeService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		messenger := do.MustInvoke[*telegramHandler.Messenger](i)
		return intakeService.New(do.MustInvoke[*stateService.Service](i), messenger, cfg.BotUsername), nil
	})

	// Register Membership Service
	do.Provide(injector, func(i do.Injector) (*membershipService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		messenger := do.MustInvoke[*telegramHandler.Messenger](i)
		channels := lo.Map(cfg.RequiredChannels, func(ch config.RequiredChannel, _ int) membershipDomain.Channel {
			return membershipDomain.Channel{ID: ch.ID, Name: ch.Name, Link: ch.Link}
		})
		return membershipService.New(messenger, channels), nil
	})

	// Register Delivery Service
	do.Provide(injector, func(i do.Injector) (*deliveryService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		messenger := do.MustInvoke[*telegramHandler.Messenger](i)
		settings := do.MustInvoke[*settingsService.Service](i)
		return deliveryService.New(messenger, settings, cfg.SourceChannelID, cfg.SendInterval), nil
	})

	// Register Flow Engine
	do.Provide(injector, func(i do.Injector) (*flowService.Engine, error) {
		return flowService.New(
			do.MustInvoke[*stateService.Service](i),
			do.MustInvoke[*filterService.Service](i),
			do.MustInvoke[*userService.Service](i),
			do.MustInvoke[*settingsService.Service](i),
			do.MustInvoke[*deliveryService.Service](i),
		), nil
	})

	// Register Telegram Handler and its routes
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Handler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		b := do.MustInvoke[*bot.Bot](i)
		handler := telegramHandler.New(
			cfg,
			do.MustInvoke[*filterService.Service](i),
			do.MustInvoke[*intakeService.Service](i),
			do.MustInvoke[*membershipService.Service](i),
			do.MustInvoke[*flowService.Engine](i),
			do.MustInvoke[*deliveryService.Service](i),
			do.MustInvoke[*userService.Service](i),
			do.MustInvoke[*settingsService.Service](i),
			do.MustInvoke[*telegramHandler.Messenger](i),
		)
		handler.RegisterCommands(b)
		return handler, nil
	})

	// Register Feed Service
	do.Provide(injector, func(i do.Injector) (*feedService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		do.MustInvoke[*bot.Bot](i) // resolves cfg.BotUsername
		return feedService.New(do.MustInvoke[*filterService.Service](i), cfg.BotUsername), nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		server := httpServer.New(cfg, do.MustInvoke[*feedService.Service](i), do.MustInvoke[*filterService.Service](i))
		server.SetLogger(slog.Default())
		return server, nil
	})

	// Register Keep-alive
	do.Provide(injector, func(i do.Injector) (*keepaliveService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return keepaliveService.New(cfg.KeepAlive.URL, cfg.KeepAlive.Interval), nil
	})

	return injector, nil
}

func newStore(ctx context.Context, cfg config.StoreConfig) (stateRepo.Store, error) {
	switch cfg.Driver {
	case config.StoreDriverMongo:
		return stateRepo.NewMongoStorage(ctx, cfg.MongoURI, cfg.Database, cfg.Collection, cfg.DocumentID)
	case config.StoreDriverFirestore:
		return stateRepo.NewFirestoreStorage(ctx, cfg.FirestoreProject, cfg.CredentialsFile, cfg.Collection, cfg.DocumentID)
	case config.StoreDriverFile:
		store, err := stateRepo.NewFileStorage(cfg.FilePath)
		if err != nil {
			return nil, oops.With("file_path", cfg.FilePath, "context", "failed to initialize file store").Wrap(err)
		}
		return store, nil
	case config.StoreDriverMemory:
		slog.Warn("Using in-memory store; state is lost on restart")
		return stateRepo.NewMemoryStorage(), nil
	default:
		return nil, oops.With("store_driver", cfg.Driver).Errorf("unsupported store driver: %s", cfg.Driver)
	}
}

// Shutdown gracefully shuts down all services
func Shutdown(ctx context.Context, injector do.Injector) error {
	// Shutdown keep-alive if it exists
	if keepalive, err := do.Invoke[*keepaliveService.Service](injector); err == nil && keepalive != nil {
		keepalive.Stop()
	}

	if server, err := do.Invoke[*httpServer.Server](injector); err == nil && server != nil {
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("HTTP server shutdown failed", "error", err)
		}
	}

	// Every mutation was already saved; this only releases the store
	if state, err := do.Invoke[*stateService.Service](injector); err == nil && state != nil {
		if err := state.Close(ctx); err != nil {
			return oops.With("context", "failed to close state store").Wrap(err)
		}
	}

	return nil
}
