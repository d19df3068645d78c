// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// dataCommand handles listening-data cache operations
func dataCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "data",
		Usage: "Manage cached listening data",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Ensure usable data exists, fetching only when the cache is stale",
				Flags: []cli.Flag{
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
				Action: r.DataInit,
			},
			{
				Name:   "refresh",
				Usage:  "Force a full fetch cycle regardless of cache freshness",
				Action: r.DataRefresh,
			},
			{
				Name:  "status",
				Usage: "Show cache age, freshness, and headline counts",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.DataStatus,
			},
			{
				Name:  "show",
				Usage: "Print the cached bundle or one of its projections",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Projection to print (full, summary, roasting)",
						Value:   "summary",
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
				Action: r.DataShow,
			},
			{
				Name:  "export",
				Usage: "Write the cached bundle to CSV and Markdown files",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Base path for exported files",
					},
				},
				Action: r.DataExport,
			},
			{
				Name:   "clear",
				Usage:  "Delete all cached listening data",
				Action: r.DataClear,
			},
		},
	}
}

// roastCommand generates a persona-voiced roast from cached data
func roastCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "roast",
		Usage: "Roast your music taste",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "persona",
				Aliases: []string{"p"},
				Usage:   "Roast persona (mohanlal, fahadh, suresh, prithviraj, suraj)",
				Value:   "mohanlal",
			},
			&cli.StringFlag{
				Name:    "severity",
				Aliases: []string{"s"},
				Usage:   "Roast severity (gentle, funny, harsh)",
				Value:   "funny",
			},
		},
		Action: r.Roast,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate with Spotify using OAuth2",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check current authentication state",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored Spotify token",
				Action: r.AuthLogout,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and storage.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and local storage",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// tuiCommand returns the top-level TUI command for browsing cached data.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive browser for your listening data",
		Action:  r.TUI,
	}
}
