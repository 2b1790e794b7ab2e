package transfer

import (
	"errors"
	"time"

	"github.com/temirov/glmigrate/internal/gitlab"
)

// TaskStatus is the terminal state of one task.
type TaskStatus string

// Task states.
const (
	TaskStatusSucceeded TaskStatus = "succeeded"
	TaskStatusSkipped   TaskStatus = "skipped"
	TaskStatusFailed    TaskStatus = "failed"
)

// TaskResult describes the outcome for one project.
type TaskResult struct {
	Project  *gitlab.Project
	Status   TaskStatus
	Err      error
	Duration time.Duration
}

// Report summarizes one orchestrator run. Results follow the order of the
// submitted projects, not completion order.
type Report struct {
	Operation string
	Excluded  []*gitlab.Project
	Results   []TaskResult
}

// Attempted reports how many tasks were dispatched.
func (report Report) Attempted() int {
	return len(report.Results)
}

// Count reports how many tasks ended in the given status.
func (report Report) Count(status TaskStatus) int {
	count := 0
	for _, result := range report.Results {
		if result.Status == status {
			count++
		}
	}
	return count
}

// Failures returns the failed task results.
func (report Report) Failures() []TaskResult {
	return report.withStatus(TaskStatusFailed)
}

// Skipped returns the task results whose preconditions were not met.
func (report Report) Skipped() []TaskResult {
	return report.withStatus(TaskStatusSkipped)
}

// Succeeded returns the projects whose task completed.
func (report Report) Succeeded() []*gitlab.Project {
	var projects []*gitlab.Project
	for _, result := range report.withStatus(TaskStatusSucceeded) {
		projects = append(projects, result.Project)
	}
	return projects
}

// Err joins every task failure. Skipped tasks are not errors.
func (report Report) Err() error {
	failures := report.Failures()
	joined := make([]error, 0, len(failures))
	for _, failure := range failures {
		joined = append(joined, failure.Err)
	}
	return errors.Join(joined...)
}

func (report Report) withStatus(status TaskStatus) []TaskResult {
	var selected []TaskResult
	for _, result := range report.Results {
		if result.Status == status {
			selected = append(selected, result)
		}
	}
	return selected
}
