// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand initializes the config file and database schema
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and run database migrations",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration instead",
			},
		},
		Action: r.SetupDatabase,
	}
}

// serveCommand runs the web server and the background sync scheduler
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server and background sync scheduler",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// syncCommand runs a single fetch + reconcile cycle
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Fetch tracked artists from Spotify and reconcile them into the database",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.SyncOnce,
	}
}

// tokenCommand inspects and refreshes the stored credential
func tokenCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "token",
		Aliases: []string{"tok"},
		Usage:   "Credential operations",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the stored credential",
				Flags:  []cli.Flag{configFlag(), &cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output"}},
				Action: r.TokenShow,
			},
			{
				Name:   "refresh",
				Usage:  "Refresh the stored credential",
				Flags:  []cli.Flag{configFlag(), &cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output"}},
				Action: r.TokenRefresh,
			},
		},
	}
}

// artistsCommand reads stored artist records
func artistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "artists",
		Aliases: []string{"art"},
		Usage:   "Stored artist operations",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all stored artists",
				Flags:  []cli.Flag{configFlag(), &cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output"}},
				Action: r.ArtistsList,
			},
			{
				Name:  "get",
				Usage: "Print a single stored artist",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Artist ID to print",
						Required: true,
					},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output"},
				},
				Action: r.ArtistsGet,
			},
		},
	}
}
