package replication

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/glmigrate/internal/gitlab"
	"github.com/temirov/glmigrate/internal/namespace"
)

const (
	creatorMissingMessageConstant           = "replication creator not configured"
	subtreeFailureTemplateConstant          = "group %q not replicated: %v"
	projectFailureTemplateConstant          = "project %q not replicated: %v"
	groupCreatedMessageConstant             = "Replicated group"
	groupReusedMessageConstant              = "Reusing existing destination group"
	subtreeSkippedMessageConstant           = "Skipping subtree without destination group"
	projectReplicatedMessageConstant        = "Replicated project"
	projectReplicationFailedMessageConstant = "Project replication failed"
	replicationCompletedMessageConstant     = "Replication completed"
	logFieldGroupConstant                   = "group"
	logFieldProjectConstant                 = "project"
	logFieldParentConstant                  = "parent"
	logFieldCreatedGroupsConstant           = "created_groups"
	logFieldReusedGroupsConstant            = "reused_groups"
	logFieldCreatedProjectsConstant         = "created_projects"
	logFieldFailuresConstant                = "failures"
	topLevelParentDescriptionConstant       = "<top level>"
)

// ErrCreatorNotConfigured indicates the walker was constructed without a destination client.
var ErrCreatorNotConfigured = errors.New(creatorMissingMessageConstant)

// Creator creates groups and projects on the destination instance.
type Creator interface {
	CreateGroup(executionContext context.Context, request gitlab.GroupCreateRequest) (gitlab.Group, error)
	CreateProject(executionContext context.Context, request gitlab.ProjectCreateRequest) (*gitlab.Project, error)
}

// SubtreeFailure records a group whose subtree was skipped.
type SubtreeFailure struct {
	Group gitlab.Group
	Cause error
}

// Error describes the skipped subtree.
func (failure SubtreeFailure) Error() string {
	return fmt.Sprintf(subtreeFailureTemplateConstant, failure.Group.FullPath, failure.Cause)
}

// Unwrap exposes the creation failure.
func (failure SubtreeFailure) Unwrap() error {
	return failure.Cause
}

// ProjectFailure records a project that could not be created.
type ProjectFailure struct {
	Project *gitlab.Project
	Cause   error
}

// Error describes the failed project.
func (failure ProjectFailure) Error() string {
	return fmt.Sprintf(projectFailureTemplateConstant, failure.Project.Name, failure.Cause)
}

// Unwrap exposes the creation failure.
func (failure ProjectFailure) Unwrap() error {
	return failure.Cause
}

// Report summarizes one replication walk.
type Report struct {
	CreatedGroups   []gitlab.Group
	ReusedGroups    []gitlab.Group
	CreatedProjects []*gitlab.Project
	SubtreeFailures []SubtreeFailure
	ProjectFailures []ProjectFailure
}

// Err joins every recorded failure, or returns nil when the walk was clean.
func (report Report) Err() error {
	failures := make([]error, 0, len(report.SubtreeFailures)+len(report.ProjectFailures))
	for _, subtreeFailure := range report.SubtreeFailures {
		failures = append(failures, subtreeFailure)
	}
	for _, projectFailure := range report.ProjectFailures {
		failures = append(failures, projectFailure)
	}
	return errors.Join(failures...)
}

// Walker replicates forests sequentially. It is not safe for concurrent use.
type Walker struct {
	creator     Creator
	knownGroups []gitlab.Group
	visibility  gitlab.Visibility
	logger      *zap.Logger
}

// NewWalker constructs a Walker. knownGroups seeds the registry used to
// resolve name conflicts; groups created during a walk are added to it.
func NewWalker(creator Creator, knownGroups []gitlab.Group, visibility gitlab.Visibility, logger *zap.Logger) (*Walker, error) {
	if creator == nil {
		return nil, ErrCreatorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(visibility) == 0 {
		visibility = gitlab.VisibilityPrivate
	}

	return &Walker{
		creator:     creator,
		knownGroups: append([]gitlab.Group(nil), knownGroups...),
		visibility:  visibility,
		logger:      logger,
	}, nil
}

// KnownGroups returns the registry of destination groups, including those created so far.
func (walker *Walker) KnownGroups() []gitlab.Group {
	return append([]gitlab.Group(nil), walker.knownGroups...)
}

// Replicate creates the given roots under parent, or at the top level when
// parent is nil. Creation failures are collected in the report; only context
// cancellation stops the walk early.
func (walker *Walker) Replicate(executionContext context.Context, roots []namespace.Node, parent *gitlab.Group) (Report, error) {
	report := Report{}
	for _, root := range roots {
		if walkError := walker.replicateNode(executionContext, root, parent, &report); walkError != nil {
			return report, walkError
		}
	}

	walker.logger.Info(
		replicationCompletedMessageConstant,
		zap.Int(logFieldCreatedGroupsConstant, len(report.CreatedGroups)),
		zap.Int(logFieldReusedGroupsConstant, len(report.ReusedGroups)),
		zap.Int(logFieldCreatedProjectsConstant, len(report.CreatedProjects)),
		zap.Int(logFieldFailuresConstant, len(report.SubtreeFailures)+len(report.ProjectFailures)),
	)

	return report, nil
}

func (walker *Walker) replicateNode(executionContext context.Context, node namespace.Node, parent *gitlab.Group, report *Report) error {
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}

	switch node.Kind {
	case namespace.NodeKindGroup:
		return walker.replicateGroup(executionContext, node.Group, parent, report)
	case namespace.NodeKindProject:
		walker.replicateProject(executionContext, node.Project, parent, report)
	}
	return nil
}

func (walker *Walker) replicateGroup(executionContext context.Context, groupNode *namespace.GroupNode, parent *gitlab.Group, report *Report) error {
	sourceGroup := groupNode.Group
	request := gitlab.GroupCreateRequest{
		Name:        sourceGroup.Name,
		Path:        sourceGroup.Path,
		Description: sourceGroup.Description,
		Visibility:  walker.visibility,
		ParentID:    parentIdentifier(parent),
	}

	destinationGroup, createError := walker.creator.CreateGroup(executionContext, request)
	switch {
	case createError == nil:
		walker.knownGroups = append(walker.knownGroups, destinationGroup)
		report.CreatedGroups = append(report.CreatedGroups, destinationGroup)
		walker.logger.Info(
			groupCreatedMessageConstant,
			zap.String(logFieldGroupConstant, destinationGroup.FullPath),
			zap.String(logFieldParentConstant, parentDescription(parent)),
		)
	case isContextError(executionContext, createError):
		return createError
	default:
		existingGroup, found := walker.lookupGroup(sourceGroup.Name, request.ParentID)
		if !found {
			report.SubtreeFailures = append(report.SubtreeFailures, SubtreeFailure{Group: sourceGroup, Cause: createError})
			walker.logger.Warn(
				subtreeSkippedMessageConstant,
				zap.String(logFieldGroupConstant, sourceGroup.FullPath),
				zap.String(logFieldParentConstant, parentDescription(parent)),
				zap.Error(createError),
			)
			return nil
		}
		destinationGroup = existingGroup
		report.ReusedGroups = append(report.ReusedGroups, destinationGroup)
		walker.logger.Info(
			groupReusedMessageConstant,
			zap.String(logFieldGroupConstant, destinationGroup.FullPath),
			zap.Error(createError),
		)
	}

	for _, child := range groupNode.Children {
		if childError := walker.replicateNode(executionContext, child, &destinationGroup, report); childError != nil {
			return childError
		}
	}
	return nil
}

func (walker *Walker) replicateProject(executionContext context.Context, sourceProject *gitlab.Project, parent *gitlab.Group, report *Report) {
	destinationProject, createError := walker.creator.CreateProject(executionContext, gitlab.ProjectCreateRequest{
		Name:        sourceProject.Name,
		Path:        sourceProject.Path,
		Description: sourceProject.Description,
		Visibility:  walker.visibility,
		NamespaceID: parentIdentifier(parent),
	})
	if createError != nil {
		report.ProjectFailures = append(report.ProjectFailures, ProjectFailure{Project: sourceProject, Cause: createError})
		walker.logger.Warn(
			projectReplicationFailedMessageConstant,
			zap.String(logFieldProjectConstant, sourceProject.Name),
			zap.String(logFieldParentConstant, parentDescription(parent)),
			zap.Error(createError),
		)
		return
	}

	report.CreatedProjects = append(report.CreatedProjects, destinationProject)
	walker.logger.Info(
		projectReplicatedMessageConstant,
		zap.String(logFieldProjectConstant, destinationProject.Name),
		zap.String(logFieldParentConstant, parentDescription(parent)),
	)
}

// lookupGroup finds a known group by name, preferring one under the expected parent.
func (walker *Walker) lookupGroup(name string, expectedParentID int) (gitlab.Group, bool) {
	var fallback *gitlab.Group
	for groupIndex := range walker.knownGroups {
		candidate := walker.knownGroups[groupIndex]
		if candidate.Name != name {
			continue
		}
		if candidate.ParentID == expectedParentID {
			return candidate, true
		}
		if fallback == nil {
			fallback = &walker.knownGroups[groupIndex]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return gitlab.Group{}, false
}

func isContextError(executionContext context.Context, failure error) bool {
	if executionContext.Err() == nil {
		return false
	}
	return errors.Is(failure, context.Canceled) || errors.Is(failure, context.DeadlineExceeded)
}

func parentIdentifier(parent *gitlab.Group) int {
	if parent == nil {
		return 0
	}
	return parent.ID
}

func parentDescription(parent *gitlab.Group) string {
	if parent == nil {
		return topLevelParentDescriptionConstant
	}
	return parent.FullPath
}
