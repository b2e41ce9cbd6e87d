package execution

import (
	"time"

	"github.com/dukex/flowsuite/pkg/models"
)

// DefaultTrendDays is the window used when a caller asks for a non-positive number of days.
const DefaultTrendDays = 7

const dayLayout = "2006-01-02"

// Summary aggregates workflows and executions for a dashboard-style overview.
type Summary struct {
	TotalWorkflows         int                            `json:"totalWorkflows"`
	ActiveWorkflows        int                            `json:"activeWorkflows"`
	TotalExecutions        int                            `json:"totalExecutions"`
	ByStatus               map[models.ExecutionStatus]int `json:"byStatus"`
	SuccessRate            float64                        `json:"successRate"`
	AverageExecutionTimeMs float64                        `json:"averageExecutionTimeMs"`
	Trend                  []DailyCount                   `json:"trend"`
}

// DailyCount is the number of executions started on one UTC day and how many of them completed.
type DailyCount struct {
	Day        string `json:"day"`
	Executions int    `json:"executions"`
	Successes  int    `json:"successes"`
}

// Summarize computes a Summary. SuccessRate is the percentage of finished executions
// that completed and is zero when none has finished; AverageExecutionTimeMs covers
// executions that report a duration. Trend holds one entry per day for the days
// days ending at now, oldest first.
func Summarize(workflows []*models.Workflow, executions []*models.Execution, now time.Time, days int) Summary {
	if days <= 0 {
		days = DefaultTrendDays
	}

	summary := Summary{
		TotalWorkflows:  len(workflows),
		TotalExecutions: len(executions),
		ByStatus:        make(map[models.ExecutionStatus]int, len(models.ExecutionStatuses)),
		Trend:           make([]DailyCount, days),
	}

	for _, status := range models.ExecutionStatuses {
		summary.ByStatus[status] = 0
	}

	for _, workflow := range workflows {
		if workflow.Status == models.WorkflowStatusActive {
			summary.ActiveWorkflows++
		}
	}

	today := now.UTC().Truncate(24 * time.Hour)
	first := today.AddDate(0, 0, -(days - 1))
	index := make(map[string]int, days)

	for i := range days {
		day := first.AddDate(0, 0, i).Format(dayLayout)
		summary.Trend[i] = DailyCount{Day: day}
		index[day] = i
	}

	var (
		finished, completed int
		timed               int
		totalMs             int64
	)

	for _, execution := range executions {
		summary.ByStatus[execution.Status]++

		if execution.Status.Finished() {
			finished++
		}

		if execution.Status == models.ExecutionStatusCompleted {
			completed++
		}

		if execution.ExecutionTimeMs != nil {
			timed++
			totalMs += *execution.ExecutionTimeMs
		}

		if execution.StartedAt == nil {
			continue
		}

		if i, ok := index[execution.StartedAt.UTC().Format(dayLayout)]; ok {
			summary.Trend[i].Executions++

			if execution.Status == models.ExecutionStatusCompleted {
				summary.Trend[i].Successes++
			}
		}
	}

	if finished > 0 {
		summary.SuccessRate = float64(completed) / float64(finished) * 100
	}

	if timed > 0 {
		summary.AverageExecutionTimeMs = float64(totalMs) / float64(timed)
	}

	return summary
}
