package plugin

import (
	"go.uber.org/fx"

	"osrsloottracker.dev/plugin-core/internal/app"
	"osrsloottracker.dev/plugin-core/internal/app/appcontext"
	"osrsloottracker.dev/plugin-core/internal/host"
	"osrsloottracker.dev/plugin-core/internal/host/replay"
)

// Run starts the core standalone: the signal bus is live but idle, and the
// host capabilities are development fixtures. Embedded production use wires
// the real client adapter through app.Options instead.
func Run(configDir string) error {
	store, err := replay.NewFileStore(configDir)
	if err != nil {
		return err
	}

	app.New(appcontext.Declare(appcontext.EnvPlugin),
		fx.Provide(
			func() host.ConfigStore { return store },
			func() host.ItemResolver { return replay.ItemTable{} },
			func() host.CompanionResolver { return replay.NoFollower{} },
			func() host.FrameCapturer { return replay.StaticCapturer{} },
		),
	).Run()
	return nil
}
