package replay

import "github.com/urfave/cli/v2"

func Command() *cli.Command {
	return &cli.Command{
		Name:  "replay",
		Usage: "feed a recorded JSONL signal file through the full pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Usage:    "path to the JSONL replay file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "config-dir",
				Usage: "directory for the file-backed config store",
				Value: ".loottracker",
			},
			&cli.DurationFlag{
				Name:  "drain",
				Usage: "grace period for in-flight submissions after the file is exhausted",
				Value: defaultDrain,
			},
		},
		Action: func(c *cli.Context) error {
			return Run(c.String("file"), c.String("config-dir"), c.Duration("drain"))
		},
	}
}
