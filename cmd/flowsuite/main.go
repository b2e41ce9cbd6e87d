// Package main provides the flowsuite command line client for the workflow API.
package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
)

func newCommand() *cli.Command {
	return &cli.Command{
		Name:                  "flowsuite",
		Usage:                 "Edit, run and inspect workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a flowsuite.yaml configuration file",
				Sources: cli.EnvVars("FLOWSUITE_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "api-url",
				Usage: "Base URL of the workflow API, e.g. http://localhost:8080/api",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format (text, json)",
			},
			&cli.BoolFlag{
				Name:  "otel",
				Usage: "Export request traces over OTLP/HTTP",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output format (table, json)",
				Value:   outputTable,
			},
		},
		Commands: []*cli.Command{
			workflowsCommand(),
			executeCommand(),
			executionsCommand(),
			overviewCommand(),
			aiCommand(),
		},
	}
}

func main() {
	err := newCommand().Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "flowsuite:", err)
		os.Exit(1)
	}
}
