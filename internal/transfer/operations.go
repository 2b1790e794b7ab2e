package transfer

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/temirov/glmigrate/internal/gitlab"
	"github.com/temirov/glmigrate/internal/gitrepo"
)

// Operation names reported in logs and summaries.
const (
	OperationMirrorClone = "mirror-clone"
	OperationMirrorPush  = "mirror-push"
	OperationRelink      = "relink"
)

// GitGateway performs the version-control side of each operation.
type GitGateway interface {
	MirrorClone(executionContext context.Context, remoteURL string, destinationPath string) error
	ConfigureRemote(executionContext context.Context, repositoryPath string, alias string, remoteURL string) error
	PushMirror(executionContext context.Context, repositoryPath string, alias string) error
	RewriteHistory(executionContext context.Context, repositoryPath string, mappingPath string) error
	ForcePushMirror(executionContext context.Context, repositoryPath string, alias string) error
}

// RepositoryLocator maps projects to their local mirror clone.
type RepositoryLocator interface {
	RepositoryPath(project *gitlab.Project) string
}

// OperationsDependencies wires the collaborators of Operations.
type OperationsDependencies struct {
	Gateway           GitGateway
	Workspace         RepositoryLocator
	AliasGenerator    func() string
	RepositoryChecker func(path string) bool
}

// Operations builds the per-project operations of a migration.
type Operations struct {
	gateway           GitGateway
	workspace         RepositoryLocator
	aliasGenerator    func() string
	repositoryChecker func(path string) bool
}

// NewOperations validates dependencies and applies defaults: uuid aliases and
// go-git based clone detection.
func NewOperations(dependencies OperationsDependencies) (*Operations, error) {
	if dependencies.Gateway == nil {
		return nil, ErrGatewayNotConfigured
	}
	if dependencies.Workspace == nil {
		return nil, ErrWorkspaceNotConfigured
	}

	aliasGenerator := dependencies.AliasGenerator
	if aliasGenerator == nil {
		aliasGenerator = uuid.NewString
	}

	repositoryChecker := dependencies.RepositoryChecker
	if repositoryChecker == nil {
		repositoryChecker = gitrepo.RepositoryExists
	}

	return &Operations{
		gateway:           dependencies.Gateway,
		workspace:         dependencies.Workspace,
		aliasGenerator:    aliasGenerator,
		repositoryChecker: repositoryChecker,
	}, nil
}

// MirrorClone copies each project from instance into the workspace as a bare mirror.
func (operations *Operations) MirrorClone(instance gitlab.Instance) Operation {
	return Operation{
		Name: OperationMirrorClone,
		Execute: func(executionContext context.Context, project *gitlab.Project) error {
			remoteURL, credentialError := operations.remoteURL(OperationMirrorClone, instance, project)
			if credentialError != nil {
				return credentialError
			}
			return operations.gateway.MirrorClone(executionContext, remoteURL, operations.workspace.RepositoryPath(project))
		},
	}
}

// MirrorSources maps a destination project identifier to the source project
// whose mirror clone is pushed into it.
type MirrorSources map[int]*gitlab.Project

// MirrorPush pushes the mirror of each project's source counterpart to that
// project on instance through a per-project remote alias. Projects without an
// entry in sources are skipped.
func (operations *Operations) MirrorPush(instance gitlab.Instance, sources MirrorSources) Operation {
	return Operation{
		Name:    OperationMirrorPush,
		Prepare: operations.AssignRemoteAliases,
		Execute: func(executionContext context.Context, project *gitlab.Project) error {
			remoteURL, credentialError := operations.remoteURL(OperationMirrorPush, instance, project)
			if credentialError != nil {
				return credentialError
			}
			sourceProject, found := sources[project.ID]
			if !found || sourceProject == nil {
				return PreconditionError{Operation: OperationMirrorPush, Project: ProjectLabel(project), Cause: ErrMirrorSourceMissing}
			}
			repositoryPath, cloneError := operations.localClone(OperationMirrorPush, sourceProject)
			if cloneError != nil {
				return cloneError
			}
			if configureError := operations.gateway.ConfigureRemote(executionContext, repositoryPath, project.RemoteAlias, remoteURL); configureError != nil {
				return configureError
			}
			return operations.gateway.PushMirror(executionContext, repositoryPath, project.RemoteAlias)
		},
	}
}

// Relink rewrites each project's local mirror with the rules in mappingPath and
// force-pushes the result to instance.
func (operations *Operations) Relink(instance gitlab.Instance, mappingPath string) Operation {
	return Operation{
		Name:    OperationRelink,
		Prepare: operations.AssignRemoteAliases,
		Execute: func(executionContext context.Context, project *gitlab.Project) error {
			remoteURL, credentialError := operations.remoteURL(OperationRelink, instance, project)
			if credentialError != nil {
				return credentialError
			}
			repositoryPath, cloneError := operations.localClone(OperationRelink, project)
			if cloneError != nil {
				return cloneError
			}
			if rewriteError := operations.gateway.RewriteHistory(executionContext, repositoryPath, mappingPath); rewriteError != nil {
				return rewriteError
			}
			if configureError := operations.gateway.ConfigureRemote(executionContext, repositoryPath, project.RemoteAlias, remoteURL); configureError != nil {
				return configureError
			}
			return operations.gateway.ForcePushMirror(executionContext, repositoryPath, project.RemoteAlias)
		},
	}
}

// AssignRemoteAliases gives every project without an alias a fresh one.
// Existing aliases are kept so reruns within a session reuse them.
func (operations *Operations) AssignRemoteAliases(projects []*gitlab.Project) {
	for _, project := range projects {
		if len(project.RemoteAlias) == 0 {
			project.RemoteAlias = operations.aliasGenerator()
		}
	}
}

func (operations *Operations) localClone(operationName string, project *gitlab.Project) (string, error) {
	repositoryPath := operations.workspace.RepositoryPath(project)
	if !operations.repositoryChecker(repositoryPath) {
		return "", PreconditionError{Operation: operationName, Project: ProjectLabel(project), Cause: ErrLocalCloneMissing}
	}
	return repositoryPath, nil
}

func (operations *Operations) remoteURL(operationName string, instance gitlab.Instance, project *gitlab.Project) (string, error) {
	if len(strings.TrimSpace(instance.Username)) == 0 || len(strings.TrimSpace(instance.AccessToken)) == 0 {
		return "", PreconditionError{Operation: operationName, Project: ProjectLabel(project), Cause: ErrUsernameNotConfigured}
	}
	return gitrepo.AuthenticatedRemoteURL(project.WebURL, instance.Username, instance.AccessToken)
}
