package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	commandFailedErrorTemplateConstant        = "%s exited with code %d%s"
	commandExecutionErrorTemplateConstant     = "%s could not be executed: %v"
	commandStartedLogMessageConstant          = "Executing command"
	commandCompletedLogMessageConstant        = "Command completed"
	commandFailedLogMessageConstant           = "Command exited with non-zero status"
	commandExecutionFailedLogMessageConstant  = "Command execution failed"
	logFieldCommandConstant                   = "command"
	logFieldArgumentsConstant                 = "arguments"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldExitCodeConstant                  = "exit_code"
	logFieldStandardErrorConstant             = "stderr"
	logFieldErrorConstant                     = "error"
)

// CommandName identifies an executable.
type CommandName string

// Executables invoked during a migration.
const (
	CommandGit        CommandName = "git"
	CommandFilterRepo CommandName = "git-filter-repo"
)

// CommandDetails describes the arguments and environment of an invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand couples an executable with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures process output.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes a ShellCommand. Implementations report a non-zero
// exit code through ExecutionResult and reserve the error for failures to run.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

var (
	// ErrLoggerNotConfigured indicates a missing logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates a missing runner.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
)

// CommandFailedError reports a process that exited with a non-zero code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failure with credentials redacted.
func (failedError CommandFailedError) Error() string {
	return fmt.Sprintf(
		commandFailedErrorTemplateConstant,
		describeCommand(failedError.Command),
		failedError.Result.ExitCode,
		CommandMessageFormatter{}.formatStandardErrorSuffix(RedactCredentials(failedError.Result.StandardError)),
	)
}

// CommandExecutionError reports a process that could not be started or waited on.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the failure with credentials redacted.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, describeCommand(executionError.Command), RedactCredentials(fmt.Sprint(executionError.Cause)))
}

// Unwrap exposes the underlying failure.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// ShellExecutor runs commands through a CommandRunner and logs their lifecycle.
type ShellExecutor struct {
	logger               *zap.Logger
	runner               CommandRunner
	humanReadableLogging bool
	messageFormatter     CommandMessageFormatter
}

// NewShellExecutor constructs a ShellExecutor. When humanReadableLogging is
// set, lifecycle entries are rendered as sentences instead of field sets.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, humanReadableLogging bool) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{
		logger:               logger,
		runner:               runner,
		humanReadableLogging: humanReadableLogging,
	}, nil
}

// Execute runs the command. A non-zero exit code yields CommandFailedError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.logStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.logExecutionFailure(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	if executionResult.ExitCode != 0 {
		executor.logFailure(command, executionResult)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logSuccess(command)
	return executionResult, nil
}

// ExecuteGit runs git with the supplied details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

func (executor *ShellExecutor) logStarted(command ShellCommand) {
	if executor.humanReadableLogging {
		executor.logger.Info(RedactCredentials(executor.messageFormatter.BuildStartedMessage(command)))
		return
	}
	executor.logger.Info(commandStartedLogMessageConstant, commandFields(command)...)
}

func (executor *ShellExecutor) logSuccess(command ShellCommand) {
	if executor.humanReadableLogging {
		executor.logger.Info(RedactCredentials(executor.messageFormatter.BuildSuccessMessage(command)))
		return
	}
	executor.logger.Info(commandCompletedLogMessageConstant, commandFields(command)...)
}

func (executor *ShellExecutor) logFailure(command ShellCommand, result ExecutionResult) {
	if executor.humanReadableLogging {
		executor.logger.Warn(RedactCredentials(executor.messageFormatter.BuildFailureMessage(command, result)))
		return
	}
	fields := append(commandFields(command),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
		zap.String(logFieldStandardErrorConstant, RedactCredentials(strings.TrimSpace(result.StandardError))),
	)
	executor.logger.Warn(commandFailedLogMessageConstant, fields...)
}

func (executor *ShellExecutor) logExecutionFailure(command ShellCommand, failure error) {
	if executor.humanReadableLogging {
		executor.logger.Error(RedactCredentials(executor.messageFormatter.BuildExecutionFailureMessage(command, failure)))
		return
	}
	fields := append(commandFields(command), zap.String(logFieldErrorConstant, RedactCredentials(failure.Error())))
	executor.logger.Error(commandExecutionFailedLogMessageConstant, fields...)
}

func commandFields(command ShellCommand) []zap.Field {
	return []zap.Field{
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, RedactArguments(command.Details.Arguments)),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	}
}

func describeCommand(command ShellCommand) string {
	commandParts := append([]string{string(command.Name)}, RedactArguments(command.Details.Arguments)...)
	return strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
}
