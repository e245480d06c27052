// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for the configuration file and database.
func setupCommand(r *Runner) *cli.Command {
	configFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   defaultConfigPath,
		}
	}

	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example configuration file",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupRollback,
			},
		},
	}
}

// importCommand imports top artists and their albums for one or more tags
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import top artists and albums for Last.fm tags",
		ArgsUsage: "<tag> [tag...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of artists per tag (default from config)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Abort the import after this long (0 disables)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Import,
	}
}

// catalogCommand reads the local catalog
func catalogCommand(r *Runner) *cli.Command {
	jsonFlag := func() cli.Flag {
		return &cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		}
	}

	return &cli.Command{
		Name:    "catalog",
		Aliases: []string{"cat"},
		Usage:   "Browse the local catalog",
		Commands: []*cli.Command{
			{
				Name:  "artists",
				Usage: "List artists, optionally filtered by tag",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "tag",
						Aliases: []string{"t"},
						Usage:   "Only list artists linked to this tag",
					},
					jsonFlag(),
				},
				Action: r.CatalogArtists,
			},
			{
				Name:      "artist",
				Usage:     "Show an artist with its albums",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.CatalogArtist,
			},
			{
				Name:   "tags",
				Usage:  "List tags with their artist counts",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.CatalogTags,
			},
			{
				Name:   "stats",
				Usage:  "Count catalog rows",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.CatalogStats,
			},
			{
				Name:  "export",
				Usage: "Export all artists with their albums",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (json, csv, markdown, txt)",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: catalog_export.<ext>)",
					},
				},
				Action: r.CatalogExport,
			},
		},
	}
}

// serveCommand runs the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the catalog and import endpoints over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind (default from config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (default from config)",
			},
		},
		Action: r.Serve,
	}
}

// apiCommand handles direct Last.fm API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct Last.fm API calls",
		Commands: []*cli.Command{
			{
				Name:      "call",
				Usage:     "Call a Last.fm method, prints raw JSON",
				ArgsUsage: "<method>",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "param",
						Usage: "Query parameter as key=value (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APICall,
			},
		},
	}
}
