package app

import (
	"context"
	"time"

	"go.uber.org/fx"

	"osrsloottracker.dev/plugin-core/internal/app/appconfig"
	"osrsloottracker.dev/plugin-core/internal/app/appcontext"
	"osrsloottracker.dev/plugin-core/internal/auth"
	"osrsloottracker.dev/plugin-core/internal/dedup"
	"osrsloottracker.dev/plugin-core/internal/host"
	"osrsloottracker.dev/plugin-core/internal/normalizer"
	"osrsloottracker.dev/plugin-core/internal/pkg/logger"
	"osrsloottracker.dev/plugin-core/internal/settings"
	"osrsloottracker.dev/plugin-core/internal/submit"
	"osrsloottracker.dev/plugin-core/internal/transport"
	"osrsloottracker.dev/plugin-core/internal/workers/submitwkr"
)

// Options assembles the core object graph. Host capability implementations
// (config store, item resolver, companion resolver, frame capturer) are not
// provided here: the embedding host adapter, or the replay harness, supplies
// them through additionalOpts.
func Options(ctx appcontext.Ctx, additionalOpts ...fx.Option) []fx.Option {
	conf, err := appconfig.Parse(ctx)
	if err != nil {
		panic(err)
	}

	// logger and configuration are the only two things that are not in the fx
	// graph because some other packages need them to be initialized before fx
	// starts
	logger.Configure(conf)

	baseOpts := []fx.Option{
		// fx meta
		fx.WithLogger(logger.Fx),

		// Misc
		fx.Supply(conf),

		// Inbound signal bus
		fx.Provide(host.NewBus),

		// Settings document & session
		fx.Provide(func(conf *appconfig.Config, store host.ConfigStore) *settings.Service {
			return settings.New(store, conf.SettingsKey)
		}),

		// Backend transport
		fx.Provide(func(conf *appconfig.Config, s *settings.Service) transport.Client {
			return transport.NewHTTPClient(conf, s)
		}),
		fx.Provide(func(s *settings.Service, client transport.Client) *auth.Manager {
			return auth.NewManager(s, client)
		}),

		// Pipeline stages
		fx.Provide(normalizer.New),
		fx.Provide(dedup.New),
		fx.Provide(func(frames host.FrameCapturer, client transport.Client) submit.ScreenshotProvider {
			return submit.NewScreenshotter(frames, client)
		}),
		fx.Provide(func(conf *appconfig.Config) *submit.RecentDrops {
			return submit.NewRecentDrops(conf.RecentDropsCap)
		}),
		fx.Provide(submit.NewStatsRefresher),
		fx.Provide(submit.NewOrchestrator),

		// Session restore happens before workers start consuming so the
		// authentication gate reflects the stored credentials from the first
		// signal onwards.
		fx.Invoke(func(m *auth.Manager) {
			m.CheckStoredAuth(context.Background())
		}),

		// Workers
		fx.Invoke(submitwkr.Start),

		// fx Extra Options
		fx.StartTimeout(10 * time.Second),
		fx.StopTimeout(1 * time.Minute),
	}

	return append(baseOpts, additionalOpts...)
}

func New(ctx appcontext.Ctx, additionalOpts ...fx.Option) *fx.App {
	return fx.New(Options(ctx, additionalOpts...)...)
}
