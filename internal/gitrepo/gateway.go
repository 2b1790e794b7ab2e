package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/temirov/glmigrate/internal/execshell"
)

const (
	gitCloneSubcommandConstant          = "clone"
	gitMirrorFlagConstant               = "--mirror"
	gitForceFlagConstant                = "--force"
	gitRemoteSubcommandConstant         = "remote"
	gitRemoteAddSubcommandConstant      = "add"
	gitRemoteSetURLSubcommandConstant   = "set-url"
	gitPushSubcommandConstant           = "push"
	filterRepoReplaceTextFlagConstant   = "--replace-text"
	remoteAlreadyExistsFragmentConstant = "already exists"
	executorMissingMessageConstant      = "git executor not configured"
	mappingPathErrorTemplateConstant    = "unable to resolve mapping file %s: %w"
)

// ErrExecutorNotConfigured indicates a gateway without a command executor.
var ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// CommandExecutor runs external commands.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// MirrorGateway performs the per-repository git operations of a migration.
type MirrorGateway struct {
	executor          CommandExecutor
	filterRepoCommand execshell.CommandName
}

// NewMirrorGateway constructs a gateway. An empty filterRepoExecutable selects git-filter-repo from PATH.
func NewMirrorGateway(executor CommandExecutor, filterRepoExecutable string) (*MirrorGateway, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	filterRepoCommand := execshell.CommandFilterRepo
	if trimmedExecutable := strings.TrimSpace(filterRepoExecutable); len(trimmedExecutable) > 0 {
		filterRepoCommand = execshell.CommandName(trimmedExecutable)
	}

	return &MirrorGateway{executor: executor, filterRepoCommand: filterRepoCommand}, nil
}

// MirrorClone creates a bare mirror of remoteURL at destinationPath.
func (gateway *MirrorGateway) MirrorClone(executionContext context.Context, remoteURL string, destinationPath string) error {
	return gateway.runGit(executionContext, filepath.Dir(destinationPath), gitCloneSubcommandConstant, gitMirrorFlagConstant, remoteURL, destinationPath)
}

// ConfigureRemote points alias at remoteURL, replacing the address when the alias already exists.
func (gateway *MirrorGateway) ConfigureRemote(executionContext context.Context, repositoryPath string, alias string, remoteURL string) error {
	addError := gateway.runGit(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitRemoteAddSubcommandConstant, alias, remoteURL)
	if addError == nil {
		return nil
	}

	var failedError execshell.CommandFailedError
	if !errors.As(addError, &failedError) || !strings.Contains(failedError.Result.StandardError, remoteAlreadyExistsFragmentConstant) {
		return addError
	}

	return gateway.runGit(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitRemoteSetURLSubcommandConstant, alias, remoteURL)
}

// PushMirror pushes every reference of the repository to alias.
func (gateway *MirrorGateway) PushMirror(executionContext context.Context, repositoryPath string, alias string) error {
	return gateway.runGit(executionContext, repositoryPath, gitPushSubcommandConstant, gitMirrorFlagConstant, alias)
}

// ForcePushMirror pushes every reference to alias, overwriting diverged history.
func (gateway *MirrorGateway) ForcePushMirror(executionContext context.Context, repositoryPath string, alias string) error {
	return gateway.runGit(executionContext, repositoryPath, gitPushSubcommandConstant, gitForceFlagConstant, gitMirrorFlagConstant, alias)
}

// RewriteHistory applies the replacement rules in mappingPath to every blob of the repository.
func (gateway *MirrorGateway) RewriteHistory(executionContext context.Context, repositoryPath string, mappingPath string) error {
	absoluteMappingPath, absoluteError := filepath.Abs(mappingPath)
	if absoluteError != nil {
		return fmt.Errorf(mappingPathErrorTemplateConstant, mappingPath, absoluteError)
	}

	_, executionError := gateway.executor.Execute(executionContext, execshell.ShellCommand{
		Name: gateway.filterRepoCommand,
		Details: execshell.CommandDetails{
			Arguments:        []string{filterRepoReplaceTextFlagConstant, absoluteMappingPath, gitForceFlagConstant},
			WorkingDirectory: repositoryPath,
		},
	})
	return executionError
}

func (gateway *MirrorGateway) runGit(executionContext context.Context, workingDirectory string, arguments ...string) error {
	_, executionError := gateway.executor.Execute(executionContext, execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        arguments,
			WorkingDirectory: workingDirectory,
		},
	})
	return executionError
}
