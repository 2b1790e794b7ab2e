package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitCloneSubcommandNameConstant        = "clone"
	gitRemoteSubcommandNameConstant       = "remote"
	gitRemoteAddSubcommandNameConstant    = "add"
	gitRemoteSetURLSubcommandNameConstant = "set-url"
	gitPushSubcommandNameConstant         = "push"
	gitForceFlagConstant                  = "--force"
	filterRepoReplaceTextFlagConstant     = "--replace-text"
)

const (
	gitCloneStartTemplateConstant                   = "Mirroring %s into %s"
	gitCloneSuccessTemplateConstant                 = "Mirrored %s into %s"
	gitCloneFailureTemplateConstant                 = "Failed to mirror %s into %s (exit code %d%s)"
	gitCloneExecutionFailureTemplateConstant        = "Unable to mirror %s into %s: %s"
	gitRemoteAddStartTemplateConstant               = "Adding %s remote for %s pointing to %s"
	gitRemoteAddSuccessTemplateConstant             = "Added %s remote for %s pointing to %s"
	gitRemoteAddFailureTemplateConstant             = "Failed to add %s remote for %s pointing to %s (exit code %d%s)"
	gitRemoteAddExecutionFailureTemplateConstant    = "Unable to add %s remote for %s pointing to %s: %s"
	gitRemoteUpdateStartTemplateConstant            = "Updating %s remote for %s to %s"
	gitRemoteUpdateSuccessTemplateConstant          = "%s remote for %s now points to %s"
	gitRemoteUpdateFailureTemplateConstant          = "Failed to update %s remote for %s to %s (exit code %d%s)"
	gitRemoteUpdateExecutionFailureTemplateConstant = "Unable to update %s remote for %s to %s: %s"
	gitPushStartTemplateConstant                    = "Pushing all references from %s to %s"
	gitPushSuccessTemplateConstant                  = "Pushed all references from %s to %s"
	gitPushFailureTemplateConstant                  = "Failed to push references from %s to %s (exit code %d%s)"
	gitPushExecutionFailureTemplateConstant         = "Unable to push references from %s to %s: %s"
	gitForcePushStartTemplateConstant               = "Force-pushing all references from %s to %s"
	gitForcePushSuccessTemplateConstant             = "Force-pushed all references from %s to %s"
	filterRepoStartTemplateConstant                 = "Rewriting history in %s using %s"
	filterRepoSuccessTemplateConstant               = "Rewrote history in %s using %s"
	filterRepoFailureTemplateConstant               = "Failed to rewrite history in %s using %s (exit code %d%s)"
	filterRepoExecutionFailureTemplateConstant      = "Unable to rewrite history in %s using %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandFilterRepo:
		return formatter.describeFilterRepoMessage(command, result, failure, stage)
	default:
		if containsArgument(command.Details.Arguments, filterRepoReplaceTextFlagConstant) {
			return formatter.describeFilterRepoMessage(command, result, failure, stage)
		}
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitCloneSubcommandNameConstant:
		return formatter.describeGitCloneMessage(command, result, failure, stage)
	case gitRemoteSubcommandNameConstant:
		return formatter.describeGitRemoteMessage(command, result, failure, stage)
	case gitPushSubcommandNameConstant:
		return formatter.describeGitPushMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitCloneMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	positionalArguments := formatter.positionalArguments(command.Details.Arguments[1:])
	sourceURL := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 0))
	destination := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 1))

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCloneStartTemplateConstant, sourceURL, destination)
	case messageStageSuccess:
		return fmt.Sprintf(gitCloneSuccessTemplateConstant, sourceURL, destination)
	case messageStageFailure:
		return fmt.Sprintf(gitCloneFailureTemplateConstant, sourceURL, destination, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitCloneExecutionFailureTemplateConstant, sourceURL, destination, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitRemoteMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)
	remoteName := formatter.ensureValue(formatter.argumentAtIndex(arguments, 2))
	remoteURL := formatter.ensureValue(formatter.argumentAtIndex(arguments, 3))

	switch strings.TrimSpace(formatter.argumentAtIndex(arguments, 1)) {
	case gitRemoteAddSubcommandNameConstant:
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitRemoteAddStartTemplateConstant, remoteName, workingDirectory, remoteURL)
		case messageStageSuccess:
			return fmt.Sprintf(gitRemoteAddSuccessTemplateConstant, remoteName, workingDirectory, remoteURL)
		case messageStageFailure:
			return fmt.Sprintf(gitRemoteAddFailureTemplateConstant, remoteName, workingDirectory, remoteURL, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitRemoteAddExecutionFailureTemplateConstant, remoteName, workingDirectory, remoteURL, formatter.describeFailure(failure))
		}
	case gitRemoteSetURLSubcommandNameConstant:
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitRemoteUpdateStartTemplateConstant, remoteName, workingDirectory, remoteURL)
		case messageStageSuccess:
			return fmt.Sprintf(gitRemoteUpdateSuccessTemplateConstant, remoteName, workingDirectory, remoteURL)
		case messageStageFailure:
			return fmt.Sprintf(gitRemoteUpdateFailureTemplateConstant, remoteName, workingDirectory, remoteURL, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitRemoteUpdateExecutionFailureTemplateConstant, remoteName, workingDirectory, remoteURL, formatter.describeFailure(failure))
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitPushMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)
	positionalArguments := formatter.positionalArguments(arguments[1:])
	remoteName := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, len(positionalArguments)-1))
	forced := containsArgument(arguments, gitForceFlagConstant)

	switch stage {
	case messageStageStart:
		if forced {
			return fmt.Sprintf(gitForcePushStartTemplateConstant, workingDirectory, remoteName)
		}
		return fmt.Sprintf(gitPushStartTemplateConstant, workingDirectory, remoteName)
	case messageStageSuccess:
		if forced {
			return fmt.Sprintf(gitForcePushSuccessTemplateConstant, workingDirectory, remoteName)
		}
		return fmt.Sprintf(gitPushSuccessTemplateConstant, workingDirectory, remoteName)
	case messageStageFailure:
		return fmt.Sprintf(gitPushFailureTemplateConstant, workingDirectory, remoteName, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitPushExecutionFailureTemplateConstant, workingDirectory, remoteName, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeFilterRepoMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	mappingFile := formatter.ensureValue(formatter.argumentFollowing(command.Details.Arguments, filterRepoReplaceTextFlagConstant))

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(filterRepoStartTemplateConstant, workingDirectory, mappingFile)
	case messageStageSuccess:
		return fmt.Sprintf(filterRepoSuccessTemplateConstant, workingDirectory, mappingFile)
	case messageStageFailure:
		return fmt.Sprintf(filterRepoFailureTemplateConstant, workingDirectory, mappingFile, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(filterRepoExecutionFailureTemplateConstant, workingDirectory, mappingFile, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := describeCommand(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) == 0 || strings.HasPrefix(trimmedArgument, flagPrefixConstant) {
			continue
		}
		positional = append(positional, trimmedArgument)
	}
	return positional
}

func (formatter CommandMessageFormatter) argumentFollowing(arguments []string, flag string) string {
	for argumentIndex, argument := range arguments {
		if strings.TrimSpace(argument) == flag {
			return formatter.argumentAtIndex(arguments, argumentIndex+1)
		}
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index >= 0 && index < len(arguments) {
		return arguments[index]
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}
