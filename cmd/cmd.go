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

// serveCommand runs both front-ends until interrupted
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP and gRPC front-ends",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: r.Serve,
	}
}

// searchCommand performs a one-off catalog search
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the Spotify catalog for tracks",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results (1-50)",
				Value: 20,
			},
			&cli.IntFlag{
				Name:  "offset",
				Usage: "Pagination offset (0-1000)",
			},
			&cli.BoolFlag{
				Name:  "features",
				Usage: "Join audio features and embeddings onto each result",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
			},
		},
		Action: r.Search,
	}
}

// tracksCommand fetches tracks by id with features and embeddings
func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tracks",
		Usage: "Fetch tracks by id with audio features and embeddings",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "ids",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
			},
			&cli.BoolFlag{
				Name:  "csv",
				Usage: "Output CSV",
			},
		},
		Action: r.Tracks,
	}
}

// setupCommand writes a starter config file
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a starter config.toml",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: r.Setup,
	}
}
