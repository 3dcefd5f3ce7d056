package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"osrsloottracker.dev/plugin-core/cmd/app/plugin"
	"osrsloottracker.dev/plugin-core/cmd/app/replay"
	"osrsloottracker.dev/plugin-core/internal/pkg/bininfo"
)

func Run() {
	app := &cli.App{
		Name:        "loottracker",
		Description: "The OSRS loot tracker plugin core: normalizes in-game drop signals, routes them against per-channel destination config, and relays qualifying drops to the loot tracker backend. Built with Go and go.uber.org/fx.",
		Version:     fmt.Sprintf("%s (built %s)", bininfo.Version, bininfo.BuildTime),
		Commands: []*cli.Command{
			plugin.Command(),
			replay.Command(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run app")
	}
}
