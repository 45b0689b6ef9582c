package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "hft-backend"
	app.Usage = "HaloFunTime community backend"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Load configuration from a toml file before the environment",
		},
	}
	app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start the api service",
			Category:    "Api",
			Description: `Serves the reputation and Xbox Live endpoints over HTTP.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate database tables",
			Category:    "Database",
			Description: `Creates or updates every table the service reads and writes.`,
		},
		{
			Action:   s.startTokenIssue,
			Name:     "token",
			Usage:    "Issue a service token",
			Category: "Database",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Usage:    "Name of the service account, e.g. discord-bot",
					Required: true,
				},
			},
			Description: `Prints the plain token once; only its hash is stored.`,
		},
	}

	s.app = app
}
