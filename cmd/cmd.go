// submodule cmd contains command definitions
package main

import (
	"fmt"
	"strings"

	"github.com/desertthunder/setlistx/internal/formatter"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/urfave/cli/v3"
)

func serviceNames() string {
	names := make([]string, len(models.ServiceKinds))
	for i, kind := range models.ServiceKinds {
		names[i] = string(kind)
	}
	return strings.Join(names, ", ")
}

func formatNames() string {
	names := make([]string, len(formatter.Formats))
	for i, f := range formatter.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func serviceFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "service",
		Aliases: []string{"s"},
		Usage:   fmt.Sprintf("Target service (%s)", serviceNames()),
		Value:   string(models.Spotify),
	}
}

func pipelineFlags() []cli.Flag {
	return []cli.Flag{
		serviceFlag(),
		&cli.BoolFlag{
			Name:  "rollback-empty",
			Usage: "Delete the playlist again when none of the songs could be added",
		},
		&cli.BoolFlag{
			Name:  "public",
			Usage: "Create a public playlist",
		},
	}
}

// createCommand builds a playlist from an artist's latest setlist
func createCommand(r *Runner) *cli.Command {
	flags := append(pipelineFlags(),
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output the outcome as JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Hide progress output",
		},
	)

	return &cli.Command{
		Name:      "create",
		Aliases:   []string{"playlist"},
		Usage:     "Create a playlist from an artist's latest setlist",
		ArgsUsage: "<artist>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "artist"},
		},
		Flags:  flags,
		Action: r.Create,
	}
}

// setlistCommand fetches and exports a setlist without touching a streaming service
func setlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "setlist",
		Usage:     "Show or export an artist's latest setlist",
		ArgsUsage: "<artist>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "artist"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   fmt.Sprintf("Output format (%s)", formatNames()),
				Value:   string(formatter.Text),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the export to a file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Write the export to <artist>_<date>.<ext>",
			},
		},
		Action: r.Setlist,
	}
}

// authCommand runs the OAuth2 flow for a streaming service
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "auth",
		Usage:     "Connect a streaming service account",
		ArgsUsage: "<service>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "service"},
		},
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long to wait for the browser callback",
				Value: authTimeout,
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show which services have a stored token",
				Action: r.AuthStatus,
			},
		},
		Action: r.Auth,
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist creation.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Aliases:   []string{"interactive", "ui"},
		Usage:     "Launch the interactive TUI",
		ArgsUsage: "[artist]",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "artist"},
		},
		Flags: append(pipelineFlags(),
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI is running",
				Value: "./tmp/setlistx-tui.log",
			},
		),
		Action: r.TUI,
	}
}

// configCommand manages the configuration file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the configuration file",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write an example config.toml to the --config path",
				Action: r.ConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration with secrets masked",
				Action: r.ConfigShow,
			},
		},
	}
}
