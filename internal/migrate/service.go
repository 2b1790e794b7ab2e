package migrate

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/glmigrate/internal/gitlab"
	"github.com/temirov/glmigrate/internal/namespace"
	"github.com/temirov/glmigrate/internal/relink"
	"github.com/temirov/glmigrate/internal/replication"
	"github.com/temirov/glmigrate/internal/transfer"
)

const (
	sourceClientMissingMessageConstant      = "source client not configured"
	destinationClientMissingMessageConstant = "destination client not configured"
	operationsMissingMessageConstant        = "transfer operations not configured"
	runnerMissingMessageConstant            = "transfer runner not configured"
	workspaceMissingMessageConstant         = "workspace not configured"
	relinkerMissingMessageConstant          = "relink coordinator not configured"
	rootGroupMissingMessageConstant         = "destination root group not found"
	rootGroupNotFoundTemplateConstant       = "%w: %q"
	sourceFetchErrorTemplateConstant        = "unable to fetch source namespaces: %w"
	destinationFetchErrorTemplateConstant   = "unable to fetch destination namespaces: %w"
	replicationErrorTemplateConstant        = "replication interrupted: %w"
	workspaceErrorTemplateConstant          = "workspace preparation failed: %w"
	relinkErrorTemplateConstant             = "relink failed: %w"
	phaseStartedMessageConstant             = "Migration phase started"
	phaseSkippedMessageConstant             = "Migration phase skipped"
	migrationCompletedMessageConstant       = "Migration completed"
	workspaceRetainedMessageConstant        = "Workspace retained"
	logFieldPhaseConstant                   = "phase"
	logFieldProjectCountConstant            = "project_count"
	logFieldFailureCountConstant            = "failure_count"
	phaseReplicateConstant                  = "replicate"
	phaseCloneSourceConstant                = "clone-source"
	phasePushDestinationConstant            = "push-destination"
	phaseCloneDestinationConstant           = "clone-destination"
	phaseRelinkConstant                     = "relink"
)

var (
	// ErrRootGroupNotFound indicates the configured destination root group does not exist.
	ErrRootGroupNotFound = errors.New(rootGroupMissingMessageConstant)

	errSourceClientMissing      = errors.New(sourceClientMissingMessageConstant)
	errDestinationClientMissing = errors.New(destinationClientMissingMessageConstant)
	errOperationsMissing        = errors.New(operationsMissingMessageConstant)
	errRunnerMissing            = errors.New(runnerMissingMessageConstant)
	errWorkspaceMissing         = errors.New(workspaceMissingMessageConstant)
	errRelinkerMissing          = errors.New(relinkerMissingMessageConstant)
)

// InstanceClient lists and creates namespaces on one instance.
type InstanceClient interface {
	namespace.Lister
	replication.Creator
	Instance() gitlab.Instance
}

// TransferOperations builds the per-project transfer operations.
type TransferOperations interface {
	MirrorClone(instance gitlab.Instance) transfer.Operation
	MirrorPush(instance gitlab.Instance, sources transfer.MirrorSources) transfer.Operation
}

// TaskRunner fans operations out over projects.
type TaskRunner interface {
	Run(executionContext context.Context, projects []*gitlab.Project, operation transfer.Operation, exclusions []string) transfer.Report
}

// WorkspaceManager prepares and clears the local mirror directory.
type WorkspaceManager interface {
	Ensure() error
	Clean() error
}

// Relinker rewrites history references after the push phase.
type Relinker interface {
	Relink(executionContext context.Context, request relink.Request) (transfer.Report, error)
}

// ServiceDependencies describes required collaborators for a migration.
type ServiceDependencies struct {
	Logger      *zap.Logger
	Source      InstanceClient
	Destination InstanceClient
	Operations  TransferOperations
	Runner      TaskRunner
	Workspace   WorkspaceManager
	Relinker    Relinker
}

// Options selects the phases and targets of one migration run.
type Options struct {
	RootGroupName    string
	Exclusions       []string
	TargetVisibility gitlab.Visibility
	SkipReplication  bool
	SkipRelink       bool
	KeepWorkspace    bool
}

// Result captures what each executed phase produced.
type Result struct {
	Source      namespace.Snapshot
	Destination namespace.Snapshot
	RootGroup   *gitlab.Group
	Replication *replication.Report
	Transfers   []transfer.Report
}

// Err joins every per-entity failure recorded across phases.
func (result Result) Err() error {
	var failures []error
	if result.Replication != nil {
		failures = append(failures, result.Replication.Err())
	}
	for _, report := range result.Transfers {
		failures = append(failures, report.Err())
	}
	return errors.Join(failures...)
}

// Service runs the migration pipeline.
type Service struct {
	logger      *zap.Logger
	source      InstanceClient
	destination InstanceClient
	operations  TransferOperations
	runner      TaskRunner
	workspace   WorkspaceManager
	relinker    Relinker
}

// NewService validates dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	switch {
	case dependencies.Source == nil:
		return nil, errSourceClientMissing
	case dependencies.Destination == nil:
		return nil, errDestinationClientMissing
	case dependencies.Operations == nil:
		return nil, errOperationsMissing
	case dependencies.Runner == nil:
		return nil, errRunnerMissing
	case dependencies.Workspace == nil:
		return nil, errWorkspaceMissing
	case dependencies.Relinker == nil:
		return nil, errRelinkerMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		logger:      logger,
		source:      dependencies.Source,
		destination: dependencies.Destination,
		operations:  dependencies.Operations,
		runner:      dependencies.Runner,
		workspace:   dependencies.Workspace,
		relinker:    dependencies.Relinker,
	}, nil
}

// Run executes the pipeline phases in order: fetch both instances, replicate
// the source forest, mirror source repositories into the destination, then
// clone the destination repositories again to relink their history.
//
// The returned error reports conditions that stop the pipeline. Per-project
// and per-group failures do not stop it and are available through Result.Err.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	result := Result{}

	sourceSnapshot, sourceError := namespace.Fetch(executionContext, service.source, service.logger)
	if sourceError != nil {
		return result, fmt.Errorf(sourceFetchErrorTemplateConstant, sourceError)
	}
	result.Source = sourceSnapshot

	destinationSnapshot, destinationError := namespace.Fetch(executionContext, service.destination, service.logger)
	if destinationError != nil {
		return result, fmt.Errorf(destinationFetchErrorTemplateConstant, destinationError)
	}
	result.Destination = destinationSnapshot

	if len(options.RootGroupName) > 0 {
		rootGroup, found := destinationSnapshot.FindGroupByName(options.RootGroupName)
		if !found {
			return result, fmt.Errorf(rootGroupNotFoundTemplateConstant, ErrRootGroupNotFound, options.RootGroupName)
		}
		result.RootGroup = &rootGroup
	}

	if options.SkipReplication {
		service.logPhaseSkipped(phaseReplicateConstant)
	} else {
		service.logPhaseStarted(phaseReplicateConstant, len(sourceSnapshot.Projects))
		walker, walkerError := replication.NewWalker(service.destination, destinationSnapshot.Groups, options.TargetVisibility, service.logger)
		if walkerError != nil {
			return result, walkerError
		}
		replicationReport, replicationError := walker.Replicate(executionContext, sourceSnapshot.Forest.Roots, result.RootGroup)
		result.Replication = &replicationReport
		if replicationError != nil {
			return result, fmt.Errorf(replicationErrorTemplateConstant, replicationError)
		}

		refreshedSnapshot, refreshError := namespace.Fetch(executionContext, service.destination, service.logger)
		if refreshError != nil {
			return result, fmt.Errorf(destinationFetchErrorTemplateConstant, refreshError)
		}
		result.Destination = refreshedSnapshot
	}

	if ensureError := service.workspace.Ensure(); ensureError != nil {
		return result, fmt.Errorf(workspaceErrorTemplateConstant, ensureError)
	}

	rootFullPath := rootGroupFullPath(result.RootGroup)
	destinationProjects, mirrorSources := pairReplicatedProjects(result.Destination.ProjectsUnder(rootFullPath), sourceSnapshot.Projects, rootFullPath)

	service.logPhaseStarted(phaseCloneSourceConstant, len(sourceSnapshot.Projects))
	if phaseError := service.runPhase(executionContext, &result, sourceSnapshot.Projects, service.operations.MirrorClone(service.source.Instance()), options.Exclusions); phaseError != nil {
		return result, phaseError
	}

	service.logPhaseStarted(phasePushDestinationConstant, len(destinationProjects))
	if phaseError := service.runPhase(executionContext, &result, destinationProjects, service.operations.MirrorPush(service.destination.Instance(), mirrorSources), nil); phaseError != nil {
		return result, phaseError
	}

	if options.SkipRelink {
		service.logPhaseSkipped(phaseRelinkConstant)
	} else {
		if relinkError := service.relinkDestination(executionContext, &result, destinationProjects, options.Exclusions); relinkError != nil {
			return result, relinkError
		}
	}

	if options.KeepWorkspace {
		service.logger.Info(workspaceRetainedMessageConstant)
	} else if cleanError := service.workspace.Clean(); cleanError != nil {
		return result, fmt.Errorf(workspaceErrorTemplateConstant, cleanError)
	}

	service.logger.Info(migrationCompletedMessageConstant, zap.Int(logFieldFailureCountConstant, countFailures(result)))
	return result, nil
}

func (service *Service) relinkDestination(executionContext context.Context, result *Result, destinationProjects []*gitlab.Project, exclusions []string) error {
	if cleanError := service.workspace.Clean(); cleanError != nil {
		return fmt.Errorf(workspaceErrorTemplateConstant, cleanError)
	}

	service.logPhaseStarted(phaseCloneDestinationConstant, len(destinationProjects))
	destinationInstance := service.destination.Instance()
	cloneReport := service.runner.Run(executionContext, destinationProjects, service.operations.MirrorClone(destinationInstance), exclusions)
	result.Transfers = append(result.Transfers, cloneReport)
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}

	service.logPhaseStarted(phaseRelinkConstant, len(cloneReport.Succeeded()))
	relinkReport, relinkError := service.relinker.Relink(executionContext, relink.Request{
		SourceBaseURL:     service.source.Instance().BaseURL,
		Destination:       destinationInstance,
		RootGroupFullPath: rootGroupFullPath(result.RootGroup),
		Projects:          cloneReport.Succeeded(),
	})
	if relinkError != nil {
		return fmt.Errorf(relinkErrorTemplateConstant, relinkError)
	}
	result.Transfers = append(result.Transfers, relinkReport)
	return executionContext.Err()
}

func (service *Service) runPhase(executionContext context.Context, result *Result, projects []*gitlab.Project, operation transfer.Operation, exclusions []string) error {
	report := service.runner.Run(executionContext, projects, operation, exclusions)
	result.Transfers = append(result.Transfers, report)
	return executionContext.Err()
}

func (service *Service) logPhaseStarted(phase string, projectCount int) {
	service.logger.Info(phaseStartedMessageConstant, zap.String(logFieldPhaseConstant, phase), zap.Int(logFieldProjectCountConstant, projectCount))
}

func (service *Service) logPhaseSkipped(phase string) {
	service.logger.Info(phaseSkippedMessageConstant, zap.String(logFieldPhaseConstant, phase))
}

// pairReplicatedProjects keeps the destination projects that replicate a source
// project and maps each of them to that source project. A destination project
// matches when its full path below the root group equals the source project's
// full path. Root-level source projects, whose namespace is personal or absent,
// match destination projects placed directly in the root group or, without a
// root group, in a personal namespace.
func pairReplicatedProjects(destinationProjects []*gitlab.Project, sourceProjects []*gitlab.Project, rootFullPath string) ([]*gitlab.Project, transfer.MirrorSources) {
	sourcesByPath := make(map[string]*gitlab.Project, len(sourceProjects))
	for _, sourceProject := range sourceProjects {
		relativePath := gitlab.QualifiedPath(sourceProject.Namespace.FullPath, sourceProject.Path)
		if namespace.IsRootProject(sourceProject) {
			relativePath = sourceProject.Path
		}
		if _, duplicate := sourcesByPath[relativePath]; !duplicate {
			sourcesByPath[relativePath] = sourceProject
		}
	}

	var paired []*gitlab.Project
	mirrorSources := transfer.MirrorSources{}
	for _, destinationProject := range destinationProjects {
		relativePath, matched := replicatedRelativePath(destinationProject, rootFullPath)
		if !matched {
			continue
		}
		sourceProject, found := sourcesByPath[relativePath]
		if !found {
			continue
		}
		paired = append(paired, destinationProject)
		mirrorSources[destinationProject.ID] = sourceProject
	}
	return paired, mirrorSources
}

func replicatedRelativePath(destinationProject *gitlab.Project, rootFullPath string) (string, bool) {
	if len(rootFullPath) == 0 && namespace.IsRootProject(destinationProject) {
		return destinationProject.Path, true
	}
	relativeNamespace, under := gitlab.RelativeFullPath(destinationProject.Namespace.FullPath, rootFullPath)
	if !under {
		return "", false
	}
	return gitlab.QualifiedPath(relativeNamespace, destinationProject.Path), true
}

func rootGroupFullPath(rootGroup *gitlab.Group) string {
	if rootGroup == nil {
		return ""
	}
	return rootGroup.FullPath
}

func countFailures(result Result) int {
	failureCount := 0
	if result.Replication != nil {
		failureCount += len(result.Replication.SubtreeFailures) + len(result.Replication.ProjectFailures)
	}
	for _, report := range result.Transfers {
		failureCount += report.Count(transfer.TaskStatusFailed)
	}
	return failureCount
}
