package checks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charlesng35/chattu/internal/monitoring"
)

// Maintenance reports the presence reconcile and message retention jobs.
// A job whose latest run failed marks the check down. A job that has not
// succeeded within maxAge degrades it; retention runs daily, so callers
// should pass a window longer than its schedule.
func Maintenance(maxAge time.Duration) monitoring.Check {
	if maxAge <= 0 {
		maxAge = 26 * time.Hour
	}

	return monitoring.NewCheck("maintenance", func(context.Context) monitoring.ProbeResult {
		start := time.Now()
		jobs := monitoring.Snapshot().Maintenance.Jobs

		result := monitoring.ProbeResult{Component: "maintenance", Status: monitoring.StatusUp}
		var notes []string
		for _, job := range jobs {
			switch {
			case job.TotalRuns == 0:
				notes = append(notes, job.Job+" pending")
			case job.ConsecutiveFailures > 0:
				result.Status = monitoring.StatusDown
				notes = append(notes, fmt.Sprintf("%s failed %d time(s): %s", job.Job, job.ConsecutiveFailures, job.LastError))
			case time.Since(job.LastSuccessAt) > maxAge:
				if result.Status == monitoring.StatusUp {
					result.Status = monitoring.StatusDegraded
				}
				notes = append(notes, job.Job+" last succeeded "+job.LastSuccessAt.UTC().Format(time.RFC3339))
			}
		}
		if len(jobs) == 0 {
			notes = append(notes, "no maintenance jobs registered")
		}

		result.Details = strings.Join(notes, "; ")
		result.Duration = time.Since(start)
		return result
	})
}
