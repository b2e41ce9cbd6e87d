package main

import (
	"context"

	"github.com/dukex/flowsuite/pkg/assistant"
	"github.com/dukex/flowsuite/pkg/models"
	cli "github.com/urfave/cli/v3"
)

func aiCommand() *cli.Command {
	return &cli.Command{
		Name:  "ai",
		Usage: "Ask the AI service directly",
		Commands: []*cli.Command{
			{
				Name:  "process",
				Usage: "Answer a free-form prompt",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "prompt", Aliases: []string{"p"}, Usage: "Prompt text", Required: true},
					&cli.StringFlag{Name: "context", Usage: "Context as a JSON object"},
				},
				Action: action(func(ctx context.Context, command *cli.Command, s *session) error {
					resp, err := assistant.NewConsole(s.client, s.logger).
						Process(ctx, command.String("prompt"), command.String("context"))
					if err != nil {
						return err
					}

					return s.printer.Text("Result", resp.Result, resp)
				}),
			},
			{
				Name:  "analyze",
				Usage: "Analyze a block of data",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "data", Aliases: []string{"d"}, Usage: "Data to analyze", Required: true},
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Analysis type (general, financial, performance, risk)"},
				},
				Action: action(func(ctx context.Context, command *cli.Command, s *session) error {
					analysis, err := assistant.NewConsole(s.client, s.logger).
						Analyze(ctx, command.String("data"), models.AnalysisType(command.String("type")))
					if err != nil {
						return err
					}

					return s.printer.Analysis(analysis)
				}),
			},
			{
				Name:  "decide",
				Usage: "Ask for a decision on a scenario",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "scenario", Aliases: []string{"s"}, Usage: "Scenario description", Required: true},
					&cli.StringFlag{Name: "parameters", Usage: "Parameters as a JSON object"},
				},
				Action: action(func(ctx context.Context, command *cli.Command, s *session) error {
					resp, err := assistant.NewConsole(s.client, s.logger).
						Decide(ctx, command.String("scenario"), command.String("parameters"))
					if err != nil {
						return err
					}

					return s.printer.Text("Decision", resp.Decision, resp)
				}),
			},
		},
	}
}
