package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "kwatch",
		Usage: "Watchlist dashboard flagging K(9,3,3) buy/sell signals",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config `FILE`",
				Value:   "configs/config.yaml",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the scheduler, Telegram bot and HTTP API",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "run-on-start",
						Usage:   "Refresh the watchlist immediately on start",
						Sources: cli.EnvVars("RUN_ON_START"),
					},
				},
				Action: serveAction,
			},
			{
				Name:      "check",
				Usage:     "Print the K value dashboard once and exit",
				ArgsUsage: "[SYMBOL...]",
				Action:    checkAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
