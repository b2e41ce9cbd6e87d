package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dukex/flowsuite/pkg/editor"
	"github.com/dukex/flowsuite/pkg/models"
	cli "github.com/urfave/cli/v3"
)

func workflowsCommand() *cli.Command {
	return &cli.Command{
		Name:    "workflows",
		Aliases: []string{"wf"},
		Usage:   "Manage workflow definitions",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List every workflow",
				Action: action(func(ctx context.Context, _ *cli.Command, s *session) error {
					workflows, err := s.client.ListWorkflows(ctx)
					if err != nil {
						return err
					}

					return s.printer.Workflows(workflows)
				}),
			},
			{
				Name:      "get",
				Usage:     "Show one workflow and its steps",
				ArgsUsage: "<workflow-id>",
				Action: action(func(ctx context.Context, command *cli.Command, s *session) error {
					id, err := requireArg(command, "workflow-id")
					if err != nil {
						return err
					}

					ed := editor.New(s.client, s.logger)
					if err := ed.Load(ctx, models.ID(id)); err != nil {
						return err
					}

					return s.printer.Workflow(ed.Workflow())
				}),
			},
			{
				Name:  "create",
				Usage: "Create an empty workflow",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Workflow name", Required: true},
					&cli.StringFlag{Name: "description", Usage: "Workflow description"},
					&cli.StringFlag{Name: "status", Usage: "Initial status", Value: string(models.WorkflowStatusDraft)},
				},
				Action: action(func(ctx context.Context, command *cli.Command, s *session) error {
					ed := editor.New(s.client, s.logger)
					if err := ed.Create(); err != nil {
						return err
					}

					commands := []models.WorkflowCommand{
						models.SetWorkflowName{Name: command.String("name")},
						models.SetDescription{Description: command.String("description")},
						models.SetStatus{Status: models.WorkflowStatus(command.String("status"))},
					}

					for _, cmd := range commands {
						if err := ed.UpdateWorkflow(cmd); err != nil {
							return err
						}
					}

					saved, err := ed.Commit(ctx)
					if err != nil {
						return err
					}

					return s.printer.Workflow(saved)
				}),
			},
			{
				Name:      "apply",
				Usage:     "Apply an edit script to a new or existing workflow",
				ArgsUsage: "<script.yaml>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "workflow", Aliases: []string{"w"}, Usage: "Workflow to edit; overrides the script's workflow field"},
					&cli.BoolFlag{Name: "dry-run", Usage: "Apply the script locally and print the result without saving"},
				},
				Action: action(applyScript),
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a workflow",
				ArgsUsage: "<workflow-id>",
				Action: action(func(ctx context.Context, command *cli.Command, s *session) error {
					id, err := requireArg(command, "workflow-id")
					if err != nil {
						return err
					}

					if err := s.client.DeleteWorkflow(ctx, models.ID(id)); err != nil {
						return err
					}

					_, err = fmt.Fprintf(command.Root().Writer, "Workflow %s deleted\n", id)

					return err
				}),
			},
		},
	}
}

func applyScript(ctx context.Context, command *cli.Command, s *session) error {
	path, err := requireArg(command, "script.yaml")
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	script, err := editor.ParseScript(data)
	if err != nil {
		return err
	}

	target := script.Workflow
	if command.IsSet("workflow") {
		target = models.ID(command.String("workflow"))
	}

	ed := editor.New(s.client, s.logger)
	defer ed.Close()

	if target.IsZero() {
		err = ed.Create()
	} else {
		err = ed.Load(ctx, target)
	}

	if err != nil {
		return err
	}

	if err := script.Apply(ed); err != nil {
		return err
	}

	if command.Bool("dry-run") {
		return s.printer.Workflow(ed.Workflow())
	}

	saved, err := ed.Commit(ctx)
	if err != nil {
		return err
	}

	return s.printer.Workflow(saved)
}
