package replay

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"osrsloottracker.dev/plugin-core/internal/app"
	"osrsloottracker.dev/plugin-core/internal/app/appcontext"
	"osrsloottracker.dev/plugin-core/internal/host"
	replayhost "osrsloottracker.dev/plugin-core/internal/host/replay"
	"osrsloottracker.dev/plugin-core/internal/pkg/async"
	"osrsloottracker.dev/plugin-core/internal/submit"
)

const defaultDrain = 3 * time.Second

// Run feeds the recorded file through the assembled pipeline and reports
// what got dispatched. The config store is the same file-backed one the
// standalone mode uses, so replays exercise real persisted settings.
func Run(file, configDir string, drain time.Duration) error {
	store, err := replayhost.NewFileStore(configDir)
	if err != nil {
		return err
	}

	f, err := os.Open(file)
	if err != nil {
		return errors.Wrap(err, "open replay file")
	}
	defer f.Close()

	var (
		bus    *host.Bus
		recent *submit.RecentDrops
	)
	fxApp := app.New(appcontext.Declare(appcontext.EnvReplay),
		fx.Provide(
			func() host.ConfigStore { return store },
			func() host.ItemResolver { return replayhost.ItemTable{} },
			func() host.CompanionResolver { return replayhost.NoFollower{} },
			func() host.FrameCapturer {
				return replayhost.StaticCapturer{Err: errors.New("no frames in replay mode")}
			},
		),
		fx.Populate(&bus, &recent),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStart()
	if err := fxApp.Start(startCtx); err != nil {
		return errors.Wrap(err, "start app")
	}

	feedErr := <-async.Errable(func() error {
		n, err := replayhost.Feed(f, bus)
		log.Info().Int("signals", n).Msg("replay file exhausted")
		return err
	})

	// workers keep draining buffered signals after the file ends; the grace
	// period covers in-flight submissions before shutdown
	bus.Close()
	time.Sleep(drain)

	for _, rec := range recent.List() {
		log.Info().
			Str("item", rec.ItemName).
			Int("quantity", rec.Quantity).
			Int("value", rec.Value).
			Str("kind", string(rec.Kind)).
			Msg("dispatched")
	}
	log.Info().Int64("droppedSignals", bus.Dropped()).Msg("replay finished")

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStop()
	if stopErr := fxApp.Stop(stopCtx); stopErr != nil {
		return errors.Wrap(stopErr, "stop app")
	}
	return feedErr
}
