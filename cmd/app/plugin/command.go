package plugin

import "github.com/urfave/cli/v2"

func Command() *cli.Command {
	return &cli.Command{
		Name:  "start",
		Usage: "start the plugin core with a file-backed development host",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config-dir",
				Usage: "directory for the file-backed config store",
				Value: ".loottracker",
			},
		},
		Action: func(c *cli.Context) error {
			return Run(c.String("config-dir"))
		},
	}
}
