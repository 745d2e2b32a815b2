// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/desertthunder/flow/internal/models"
	"github.com/urfave/cli/v3"
)

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

func fetchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "cache",
			Usage: "Store the fetched playlist in the local cache",
		},
		&cli.BoolFlag{
			Name:  "offline",
			Usage: "Read the playlist from the local cache instead of the API",
		},
	}
}

func playlistFlags(extra ...cli.Flag) []cli.Flag {
	flags := append(jsonFlags(), fetchFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Render as csv, markdown, txt, m3u or json",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum number of tracks to print",
		},
	)
	return append(flags, extra...)
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}

	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example config.toml",
				Flags:  []cli.Flag{configFlag},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the most recent migration",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles authorization and stored sessions
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authorization",
		Commands: []*cli.Command{
			{
				Name:   "url",
				Usage:  "Print the authorization page address",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
				Action: r.AuthURL,
			},
			{
				Name:  "login",
				Usage: "Authorize in the browser using a local callback server",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the redirect",
						Value: 2 * time.Minute,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "token",
				Usage: "Store the tokens from a pasted redirect address",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "url",
						Aliases:  []string{"u"},
						Usage:    "Address the browser was redirected to after authorizing",
						Required: true,
					},
				},
				Action: r.AuthToken,
			},
			{
				Name:   "status",
				Usage:  "Show the session used by playlist commands",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Delete stored sessions",
				Action: r.AuthLogout,
			},
		},
	}
}

// playlistCommand fetches playlists from the four audio endpoints
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Fetch and print a playlist",
		Commands: []*cli.Command{
			{
				Name:    "mine",
				Aliases: []string{"my", "user"},
				Usage:   "Tracks saved to your page",
				Flags:   playlistFlags(),
				Action:  r.Playlist(models.KindUser),
			},
			{
				Name:    "suggested",
				Aliases: []string{"recommendations"},
				Usage:   "Recommendations for your account",
				Flags:   playlistFlags(),
				Action:  r.Playlist(models.KindSuggested),
			},
			{
				Name:  "popular",
				Usage: "Popular tracks in a genre",
				Flags: playlistFlags(&cli.StringFlag{
					Name:    "genre",
					Aliases: []string{"g"},
					Usage:   "Genre name (see 'flow genres')",
				}),
				Action: r.Playlist(models.KindPopular),
			},
			{
				Name:      "search",
				Usage:     "Search tracks",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags: playlistFlags(&cli.BoolFlag{
					Name:    "artist",
					Aliases: []string{"a"},
					Usage:   "Match the performer only",
				}),
				Action: r.Playlist(models.KindSearch),
			},
		},
	}
}

// genresCommand lists the genre map
func genresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "genres",
		Usage:  "List genres for popular playlists",
		Flags:  jsonFlags(),
		Action: r.Genres,
	}
}

func popularAllCommand(r *Runner, save bool, format string) *cli.Command {
	return &cli.Command{
		Name:  "popular-all",
		Usage: "Fetch the popular playlist of every genre concurrently",
		Flags: append(jsonFlags(),
			&cli.StringSliceFlag{
				Name:    "genre",
				Aliases: []string{"g"},
				Usage:   "Limit to these genres (repeatable)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: csv, markdown, txt, m3u or json",
				Value:   format,
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: flow_popular_{timestamp})",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Concurrent workers (max 8)",
				Value:   4,
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Requests per second (default: vk.rate_limit)",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Store every playlist in the local cache",
				Value: save,
			},
		),
		Action: r.PopularAll,
	}
}

// exportCommand writes playlists to files
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a playlist to files",
		ArgsUsage: "<mine|suggested|popular:GENRE|search:TEXT|artist:TEXT>",
		Arguments: []cli.Argument{&cli.StringArg{Name: "ref"}},
		Flags: append(fetchFlags(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: csv, markdown, txt, m3u or json",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"o"},
				Usage:   "Output directory",
			},
			&cli.BoolFlag{
				Name:  "cached",
				Usage: "Treat the argument as a cached playlist sequence number or id",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the written files as JSON",
			},
		),
		Action: r.Export,
		Commands: []*cli.Command{
			popularAllCommand(r, false, "json"),
		},
	}
}

// diffCommand compares two playlists
func diffCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "Compare two playlists and show missing tracks",
		ArgsUsage: "<source> <dest>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "source"},
			&cli.StringArg{Name: "dest"},
		},
		Flags: append(jsonFlags(), &cli.BoolFlag{
			Name:  "offline",
			Usage: "Compare cached playlists",
		}),
		Action: r.Diff,
	}
}

// cacheCommand handles the local playlist cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the local playlist cache",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List cached playlists",
				Flags:   jsonFlags(),
				Action:  r.CacheList,
			},
			{
				Name:      "show",
				Usage:     "Print a cached playlist",
				ArgsUsage: "<sequence|id>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "ref"}},
				Flags:     playlistFlags(),
				Action:    r.CacheShow,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a cached playlist",
				ArgsUsage: "<sequence|id>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "ref"}},
				Action:    r.CacheDelete,
			},
			popularAllCommand(r, true, ""),
		},
	}
}

// apiCommand handles raw API method calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Raw API method calls",
		Commands: []*cli.Command{
			{
				Name:      "call",
				Usage:     "Call a method with key=value parameters and print the raw response",
				ArgsUsage: "<method> [key=value...]",
				Action:    r.APICall,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing playlists",
		Flags: append(fetchFlags(), &cli.StringFlag{
			Name:  "log-file",
			Usage: "Where to write logs while the TUI is running",
			Value: "./tmp/flow-tui.log",
		}),
		Action: r.TUI,
	}
}
