package transfer

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/thoas/go-funk"
	"go.uber.org/zap"

	"github.com/temirov/glmigrate/internal/gitlab"
)

const (
	transferStartedMessageConstant   = "Starting transfer"
	projectExcludedMessageConstant   = "Project excluded from transfer"
	taskSucceededMessageConstant     = "Transfer task succeeded"
	taskSkippedMessageConstant       = "Transfer task skipped"
	taskFailedMessageConstant        = "Transfer task failed"
	transferCompletedMessageConstant = "Transfer completed"
	logFieldOperationConstant        = "operation"
	logFieldProjectConstant          = "project"
	logFieldTaskCountConstant        = "task_count"
	logFieldConcurrencyConstant      = "concurrency"
	logFieldDurationConstant         = "duration"
	logFieldSucceededConstant        = "succeeded"
	logFieldSkippedConstant          = "skipped"
	logFieldFailedConstant           = "failed"
	logFieldExcludedConstant         = "excluded"
)

// Operation is a unit of per-project work.
//
// Prepare, when set, runs once over the whole task set before any Execute
// call and may mutate the projects. Execute runs concurrently for distinct
// projects and must not touch shared state.
type Operation struct {
	Name    string
	Prepare func(projects []*gitlab.Project)
	Execute func(executionContext context.Context, project *gitlab.Project) error
}

// OrchestratorOptions bounds the worker pool and individual tasks.
type OrchestratorOptions struct {
	Concurrency int
	TaskTimeout time.Duration
}

// Orchestrator runs operations over project sets.
type Orchestrator struct {
	concurrency int
	taskTimeout time.Duration
	logger      *zap.Logger
}

type indexedResult struct {
	index  int
	result TaskResult
}

// NewOrchestrator constructs an Orchestrator. A non-positive concurrency uses
// the number of available CPUs; a non-positive timeout disables it.
func NewOrchestrator(options OrchestratorOptions, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}

	concurrency := options.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	taskTimeout := options.TaskTimeout
	if taskTimeout < 0 {
		taskTimeout = 0
	}

	return &Orchestrator{concurrency: concurrency, taskTimeout: taskTimeout, logger: logger}
}

// Concurrency reports the worker pool size.
func (orchestrator *Orchestrator) Concurrency() int {
	return orchestrator.concurrency
}

// Run executes operation for every project whose name is not in exclusions
// and blocks until all tasks have completed. A failing task never cancels its
// siblings; a cancelled context makes tasks that have not started yet fail
// immediately.
func (orchestrator *Orchestrator) Run(executionContext context.Context, projects []*gitlab.Project, operation Operation, exclusions []string) Report {
	tasks, excluded := selectProjects(projects, exclusions)
	report := Report{Operation: operation.Name, Excluded: excluded, Results: make([]TaskResult, len(tasks))}

	for _, excludedProject := range excluded {
		orchestrator.logger.Info(
			projectExcludedMessageConstant,
			zap.String(logFieldOperationConstant, operation.Name),
			zap.String(logFieldProjectConstant, ProjectLabel(excludedProject)),
		)
	}

	if operation.Prepare != nil {
		operation.Prepare(tasks)
	}

	orchestrator.logger.Info(
		transferStartedMessageConstant,
		zap.String(logFieldOperationConstant, operation.Name),
		zap.Int(logFieldTaskCountConstant, len(tasks)),
		zap.Int(logFieldConcurrencyConstant, orchestrator.concurrency),
	)

	results := make(chan indexedResult, len(tasks))
	pool := workerpool.New(orchestrator.concurrency)
	for taskIndex, project := range tasks {
		pool.Submit(func() {
			results <- indexedResult{index: taskIndex, result: orchestrator.runTask(executionContext, operation, project)}
		})
	}
	pool.StopWait()
	close(results)

	for completed := range results {
		report.Results[completed.index] = completed.result
	}

	orchestrator.logger.Info(
		transferCompletedMessageConstant,
		zap.String(logFieldOperationConstant, operation.Name),
		zap.Int(logFieldSucceededConstant, report.Count(TaskStatusSucceeded)),
		zap.Int(logFieldSkippedConstant, report.Count(TaskStatusSkipped)),
		zap.Int(logFieldFailedConstant, report.Count(TaskStatusFailed)),
		zap.Int(logFieldExcludedConstant, len(excluded)),
	)

	return report
}

func (orchestrator *Orchestrator) runTask(executionContext context.Context, operation Operation, project *gitlab.Project) (result TaskResult) {
	startTime := time.Now()
	projectLabel := ProjectLabel(project)
	result = TaskResult{Project: project}

	defer func() {
		if recovered := recover(); recovered != nil {
			result.Status = TaskStatusFailed
			result.Err = TaskFailure{Operation: operation.Name, Project: projectLabel, Cause: PanicError{Value: recovered}}
		}
		result.Duration = time.Since(startTime)
		orchestrator.logResult(operation.Name, projectLabel, result)
	}()

	if contextError := executionContext.Err(); contextError != nil {
		result.Status = TaskStatusFailed
		result.Err = TaskFailure{Operation: operation.Name, Project: projectLabel, Cause: contextError}
		return result
	}

	taskContext := executionContext
	if orchestrator.taskTimeout > 0 {
		var cancel context.CancelFunc
		taskContext, cancel = context.WithTimeout(executionContext, orchestrator.taskTimeout)
		defer cancel()
	}

	executionError := operation.Execute(taskContext, project)
	if executionError == nil && taskContext.Err() != nil && executionContext.Err() == nil {
		executionError = taskContext.Err()
	}

	var preconditionError PreconditionError
	switch {
	case executionError == nil:
		result.Status = TaskStatusSucceeded
	case errors.As(executionError, &preconditionError):
		result.Status = TaskStatusSkipped
		result.Err = executionError
	default:
		result.Status = TaskStatusFailed
		result.Err = TaskFailure{Operation: operation.Name, Project: projectLabel, Cause: executionError}
	}
	return result
}

func (orchestrator *Orchestrator) logResult(operationName string, projectLabel string, result TaskResult) {
	fields := []zap.Field{
		zap.String(logFieldOperationConstant, operationName),
		zap.String(logFieldProjectConstant, projectLabel),
		zap.Duration(logFieldDurationConstant, result.Duration),
	}

	switch result.Status {
	case TaskStatusSucceeded:
		orchestrator.logger.Info(taskSucceededMessageConstant, fields...)
	case TaskStatusSkipped:
		orchestrator.logger.Warn(taskSkippedMessageConstant, append(fields, zap.Error(result.Err))...)
	default:
		orchestrator.logger.Error(taskFailedMessageConstant, append(fields, zap.Error(result.Err))...)
	}
}

// selectProjects drops excluded names and duplicate identifiers, keeping input order.
func selectProjects(projects []*gitlab.Project, exclusions []string) ([]*gitlab.Project, []*gitlab.Project) {
	normalizedExclusions := normalizeExclusions(exclusions)
	seenIdentifiers := make(map[int]struct{}, len(projects))

	var tasks []*gitlab.Project
	var excluded []*gitlab.Project
	for _, project := range projects {
		if project == nil {
			continue
		}
		if _, duplicate := seenIdentifiers[project.ID]; duplicate {
			continue
		}
		seenIdentifiers[project.ID] = struct{}{}

		if funk.ContainsString(normalizedExclusions, project.Name) {
			excluded = append(excluded, project)
			continue
		}
		tasks = append(tasks, project)
	}
	return tasks, excluded
}

func normalizeExclusions(exclusions []string) []string {
	normalized := make([]string, 0, len(exclusions))
	for _, exclusion := range exclusions {
		trimmedExclusion := strings.TrimSpace(exclusion)
		if len(trimmedExclusion) > 0 {
			normalized = append(normalized, trimmedExclusion)
		}
	}
	return normalized
}

// ProjectLabel renders a project as namespace/path for logs and errors.
func ProjectLabel(project *gitlab.Project) string {
	return gitlab.QualifiedPath(project.Namespace.FullPath, project.Path)
}
