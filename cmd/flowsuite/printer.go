package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dukex/flowsuite/pkg/execution"
	"github.com/dukex/flowsuite/pkg/models"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

const timeLayout = "2006-01-02 15:04:05"

type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) (*printer, error) {
	format = strings.ToLower(strings.TrimSpace(format))

	switch format {
	case "":
		format = outputTable
	case outputTable, outputJSON:
	default:
		return nil, fmt.Errorf("unknown output format %q (want table or json)", format)
	}

	return &printer{w: w, format: format}, nil
}

func (p *printer) json(v any) error {
	encoder := json.NewEncoder(p.w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}

func (p *printer) table(fn func(tw *tabwriter.Writer)) error {
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fn(tw)

	return tw.Flush()
}

func (p *printer) Workflows(workflows []*models.Workflow) error {
	if p.format == outputJSON {
		return p.json(workflows)
	}

	return p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tSTEPS\tLAST EXECUTED")

		for _, w := range workflows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", w.ID, w.Name, w.Status, len(w.Steps), formatTime(w.LastExecutedAt))
		}
	})
}

func (p *printer) Workflow(workflow *models.Workflow) error {
	if p.format == outputJSON {
		return p.json(workflow)
	}

	return p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "ID:\t%s\n", workflow.ID)
		fmt.Fprintf(tw, "Name:\t%s\n", workflow.Name)
		fmt.Fprintf(tw, "Description:\t%s\n", workflow.Description)
		fmt.Fprintf(tw, "Status:\t%s\n", workflow.Status)
		fmt.Fprintf(tw, "Created:\t%s\n", formatTime(workflow.CreatedAt))
		fmt.Fprintf(tw, "Updated:\t%s\n", formatTime(workflow.UpdatedAt))
		fmt.Fprintf(tw, "Last executed:\t%s\n", formatTime(workflow.LastExecutedAt))
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "#\tSTEP\tTYPE\tSTATUS")

		for _, step := range workflow.Steps {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", step.StepOrder, step.Name, step.Type, step.Status)
		}
	})
}

func (p *printer) Executions(executions []*models.Execution) error {
	if p.format == outputJSON {
		return p.json(executions)
	}

	return p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tSTATUS\tSTARTED\tDURATION\tERROR")

		for _, e := range executions {
			duration := "-"
			if d, ok := e.Duration(); ok {
				duration = d.String()
			}

			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Status, formatTime(e.StartedAt), duration, e.ErrorMessage)
		}
	})
}

func (p *printer) Ack(ack *models.ExecutionAck) error {
	if p.format == outputJSON {
		if ack.Execution != nil {
			return p.json(ack.Execution)
		}

		return p.json(map[string]any{"workflowId": ack.WorkflowID, "accepted": true})
	}

	if ack.Execution == nil {
		_, err := fmt.Fprintf(p.w, "Execution of workflow %s accepted\n", ack.WorkflowID)

		return err
	}

	_, err := fmt.Fprintf(p.w, "Execution %s of workflow %s accepted (%s)\n", ack.Execution.ID, ack.WorkflowID, ack.Execution.Status)

	return err
}

func (p *printer) Summary(summary *execution.Summary) error {
	if p.format == outputJSON {
		return p.json(summary)
	}

	return p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Workflows:\t%d (%d active)\n", summary.TotalWorkflows, summary.ActiveWorkflows)
		fmt.Fprintf(tw, "Executions:\t%d\n", summary.TotalExecutions)

		for _, status := range models.ExecutionStatuses {
			fmt.Fprintf(tw, "  %s:\t%d\n", status, summary.ByStatus[status])
		}

		fmt.Fprintf(tw, "Success rate:\t%.1f%%\n", summary.SuccessRate)
		fmt.Fprintf(tw, "Average time:\t%.0f ms\n", summary.AverageExecutionTimeMs)
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "DAY\tEXECUTIONS\tSUCCESSES")

		for _, day := range summary.Trend {
			fmt.Fprintf(tw, "%s\t%d\t%d\n", day.Day, day.Executions, day.Successes)
		}
	})
}

func (p *printer) Text(label, text string, v any) error {
	if p.format == outputJSON {
		return p.json(v)
	}

	_, err := fmt.Fprintf(p.w, "%s: %s\n", label, text)

	return err
}

func (p *printer) Analysis(analysis *models.Analysis) error {
	if p.format == outputJSON {
		return p.json(analysis)
	}

	if !analysis.Structured() {
		_, err := fmt.Fprintln(p.w, analysis.RawResponse)

		return err
	}

	return p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Summary:\t%s\n", analysis.Summary)
		fmt.Fprintf(tw, "Risk level:\t%s\n", analysis.RiskLevel)
		fmt.Fprintf(tw, "Key findings:\t%s\n", analysis.KeyFindings.String())
		fmt.Fprintf(tw, "Recommendations:\t%s\n", analysis.Recommendations.String())
	})
}

func formatTime(t *models.Timestamp) string {
	if t == nil {
		return "-"
	}

	return t.Local().Format(timeLayout)
}
