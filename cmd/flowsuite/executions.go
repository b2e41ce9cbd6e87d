package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dukex/flowsuite/pkg/execution"
	"github.com/dukex/flowsuite/pkg/models"
	cli "github.com/urfave/cli/v3"
)

func executeCommand() *cli.Command {
	return &cli.Command{
		Name:      "execute",
		Aliases:   []string{"run"},
		Usage:     "Request a run of a workflow",
		ArgsUsage: "<workflow-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "Input JSON; blank means {}"},
			&cli.StringFlag{Name: "input-file", Usage: "Read the input JSON from a file"},
		},
		Action: action(func(ctx context.Context, command *cli.Command, s *session) error {
			id, err := requireArg(command, "workflow-id")
			if err != nil {
				return err
			}

			input := command.String("input")

			if path := command.String("input-file"); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read input file: %w", err)
				}

				input = string(data)
			}

			ack, err := execution.NewService(s.client, s.logger).Execute(ctx, models.ID(id), input)
			if err != nil {
				return err
			}

			return s.printer.Ack(ack)
		}),
	}
}

func executionsCommand() *cli.Command {
	return &cli.Command{
		Name:      "executions",
		Aliases:   []string{"history"},
		Usage:     "List the executions of a workflow",
		ArgsUsage: "<workflow-id>",
		Action: action(func(ctx context.Context, command *cli.Command, s *session) error {
			id, err := requireArg(command, "workflow-id")
			if err != nil {
				return err
			}

			executions, err := execution.NewService(s.client, s.logger).List(ctx, models.ID(id))
			if err != nil {
				return err
			}

			return s.printer.Executions(executions)
		}),
	}
}

func overviewCommand() *cli.Command {
	return &cli.Command{
		Name:  "overview",
		Usage: "Summarize workflows and executions",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "days", Usage: "Days covered by the daily trend", Value: execution.DefaultTrendDays},
		},
		Action: action(func(ctx context.Context, command *cli.Command, s *session) error {
			summary, err := execution.NewService(s.client, s.logger).Overview(ctx, int(command.Int("days")))
			if err != nil {
				return err
			}

			return s.printer.Summary(summary)
		}),
	}
}
