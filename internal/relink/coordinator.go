package relink

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/glmigrate/internal/gitlab"
	"github.com/temirov/glmigrate/internal/transfer"
)

const (
	mappingWrittenMessageConstant     = "Link mapping written"
	buildMappingErrorTemplateConstant = "unable to build link mapping: %w"
	logFieldSourceURLConstant         = "source_url"
	logFieldDestinationURLConstant    = "destination_url"
	logFieldMappingPathConstant       = "mapping_path"
	missingDependencyMessageConstant  = "relink coordinator dependencies not configured"
)

// ErrDependenciesNotConfigured indicates a Coordinator built without its collaborators.
var ErrDependenciesNotConfigured = errors.New(missingDependencyMessageConstant)

// MappingWriter persists the shared mapping artifact and reports where it lives.
type MappingWriter interface {
	WriteMappingFile(content string) (string, error)
}

// TaskRunner fans an operation out over projects.
type TaskRunner interface {
	Run(executionContext context.Context, projects []*gitlab.Project, operation transfer.Operation, exclusions []string) transfer.Report
}

// OperationFactory builds the per-project relink operation.
type OperationFactory interface {
	Relink(instance gitlab.Instance, mappingPath string) transfer.Operation
}

// Request describes one relink pass.
type Request struct {
	SourceBaseURL     string
	Destination       gitlab.Instance
	RootGroupFullPath string
	Projects          []*gitlab.Project
}

// Coordinator writes the mapping artifact once and then relinks every project.
type Coordinator struct {
	writer     MappingWriter
	runner     TaskRunner
	operations OperationFactory
	logger     *zap.Logger
}

// NewCoordinator validates collaborators.
func NewCoordinator(writer MappingWriter, runner TaskRunner, operations OperationFactory, logger *zap.Logger) (*Coordinator, error) {
	if writer == nil || runner == nil || operations == nil {
		return nil, ErrDependenciesNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{writer: writer, runner: runner, operations: operations, logger: logger}, nil
}

// Relink must run after every project has been pushed to the destination. The
// artifact is written before any task starts and is not touched afterwards.
func (coordinator *Coordinator) Relink(executionContext context.Context, request Request) (transfer.Report, error) {
	destinationURL := DestinationURL(request.Destination.BaseURL, request.RootGroupFullPath)
	mapping, mappingError := BuildMapping(request.SourceBaseURL, destinationURL)
	if mappingError != nil {
		return transfer.Report{}, fmt.Errorf(buildMappingErrorTemplateConstant, mappingError)
	}

	mappingPath, writeError := coordinator.writer.WriteMappingFile(mapping)
	if writeError != nil {
		return transfer.Report{}, writeError
	}

	coordinator.logger.Info(
		mappingWrittenMessageConstant,
		zap.String(logFieldSourceURLConstant, request.SourceBaseURL),
		zap.String(logFieldDestinationURLConstant, destinationURL),
		zap.String(logFieldMappingPathConstant, mappingPath),
	)

	report := coordinator.runner.Run(executionContext, request.Projects, coordinator.operations.Relink(request.Destination, mappingPath), nil)
	return report, nil
}
