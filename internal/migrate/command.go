package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/glmigrate/internal/gitlab"
	"github.com/temirov/glmigrate/internal/ui"
	"github.com/temirov/glmigrate/internal/utils"
)

const (
	commandUseConstant                     = "migrate"
	commandShortDescriptionConstant        = "Migrate a GitLab namespace tree to another instance"
	commandLongDescriptionConstant         = "migrate replicates the source group hierarchy on the destination instance, mirrors every repository into it and rewrites references to the source instance in the pushed history."
	rootGroupFlagNameConstant              = "root-group"
	rootGroupFlagUsageConstant             = "Destination group the source forest is replicated under"
	concurrencyFlagNameConstant            = "concurrency"
	concurrencyFlagUsageConstant           = "Maximum number of repositories transferred at once (0 uses the CPU count)"
	excludeFlagNameConstant                = "exclude"
	excludeFlagUsageConstant               = "Project names to leave out of the clone phases"
	skipReplicationFlagNameConstant        = "skip-replication"
	skipReplicationFlagUsageConstant       = "Do not create groups and projects on the destination"
	skipRelinkFlagNameConstant             = "skip-relink"
	skipRelinkFlagUsageConstant            = "Do not rewrite source references in the destination history"
	keepWorkspaceFlagNameConstant          = "keep-workspace"
	keepWorkspaceFlagUsageConstant         = "Leave the local mirrors in place after the run"
	visibilityErrorTemplateConstant        = "invalid target visibility: %w"
	migrationErrorTemplateConstant         = "migration failed: %w"
	migrationFailuresErrorTemplateConstant = "migration completed with failures: %w"
	summaryErrorTemplateConstant           = "unable to print summary: %w"
	migrationStartedMessageConstant        = "Migration started"
	migrationFailuresMessageConstant       = "Migration completed with failures"
	logFieldSourceConstant                 = "source"
	logFieldDestinationConstant            = "destination"
	logFieldRootGroupConstant              = "root_group"
	logFieldConfigurationFileConstant      = "config_file"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// PipelineRunner executes a migration.
type PipelineRunner interface {
	Run(executionContext context.Context, options Options) (Result, error)
}

// ServiceProvider constructs a pipeline from resolved configuration.
type ServiceProvider func(configuration Configuration, logger *zap.Logger, humanReadableLogging bool) (PipelineRunner, error)

// CommandBuilder assembles the migrate Cobra command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() Configuration
	ServiceProvider              ServiceProvider
}

// Build constructs the migrate command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.run,
	}

	flagSet := command.Flags()
	flagSet.String(rootGroupFlagNameConstant, "", rootGroupFlagUsageConstant)
	flagSet.Int(concurrencyFlagNameConstant, 0, concurrencyFlagUsageConstant)
	flagSet.StringSlice(excludeFlagNameConstant, nil, excludeFlagUsageConstant)
	flagSet.Bool(skipReplicationFlagNameConstant, false, skipReplicationFlagUsageConstant)
	flagSet.Bool(skipRelinkFlagNameConstant, false, skipRelinkFlagUsageConstant)
	flagSet.Bool(keepWorkspaceFlagNameConstant, false, keepWorkspaceFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.applyFlags(command, builder.resolveConfiguration())

	targetVisibility, visibilityError := gitlab.ParseVisibility(configuration.Transfer.TargetVisibility)
	if visibilityError != nil {
		return fmt.Errorf(visibilityErrorTemplateConstant, visibilityError)
	}

	logger := resolveLogger(builder.LoggerProvider)
	options := Options{
		RootGroupName:    configuration.Destination.RootGroup,
		Exclusions:       configuration.Transfer.Exclusions,
		TargetVisibility: targetVisibility,
		SkipReplication:  flagValue(command, skipReplicationFlagNameConstant),
		SkipRelink:       flagValue(command, skipRelinkFlagNameConstant),
		KeepWorkspace:    configuration.Transfer.KeepWorkspace,
	}

	service, serviceError := builder.resolveService(configuration, logger)
	if serviceError != nil {
		return serviceError
	}

	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}

	startFields := []zap.Field{
		zap.String(logFieldSourceConstant, configuration.Source.BaseURL),
		zap.String(logFieldDestinationConstant, configuration.Destination.BaseURL),
		zap.String(logFieldRootGroupConstant, options.RootGroupName),
	}
	if configurationFile, available := utils.NewCommandContextAccessor().ConfigurationFilePath(executionContext); available {
		startFields = append(startFields, zap.String(logFieldConfigurationFileConstant, configurationFile))
	}
	logger.Info(migrationStartedMessageConstant, startFields...)

	result, runError := service.Run(executionContext, options)

	printer := ui.NewSummaryPrinter(utils.NewFlushingWriter(command.OutOrStdout()))
	if printError := printer.Print(ui.Summary{Replication: result.Replication, Transfers: result.Transfers}); printError != nil {
		return fmt.Errorf(summaryErrorTemplateConstant, printError)
	}

	if runError != nil {
		return fmt.Errorf(migrationErrorTemplateConstant, runError)
	}

	if failures := result.Err(); failures != nil {
		logger.Warn(migrationFailuresMessageConstant, zap.Error(failures))
		return fmt.Errorf(migrationFailuresErrorTemplateConstant, failures)
	}

	return nil
}

func (builder *CommandBuilder) applyFlags(command *cobra.Command, configuration Configuration) Configuration {
	flagSet := command.Flags()
	if flagSet.Changed(rootGroupFlagNameConstant) {
		rootGroup, _ := flagSet.GetString(rootGroupFlagNameConstant)
		configuration.Destination.RootGroup = strings.TrimSpace(rootGroup)
	}
	if flagSet.Changed(concurrencyFlagNameConstant) {
		concurrency, _ := flagSet.GetInt(concurrencyFlagNameConstant)
		configuration.Transfer.Concurrency = concurrency
	}
	if flagSet.Changed(excludeFlagNameConstant) {
		exclusions, _ := flagSet.GetStringSlice(excludeFlagNameConstant)
		configuration.Transfer.Exclusions = sanitizeExclusions(exclusions)
	}
	if flagSet.Changed(keepWorkspaceFlagNameConstant) {
		configuration.Transfer.KeepWorkspace = flagValue(command, keepWorkspaceFlagNameConstant)
	}
	return configuration
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveService(configuration Configuration, logger *zap.Logger) (PipelineRunner, error) {
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	if builder.ServiceProvider != nil {
		return builder.ServiceProvider(configuration, logger, humanReadableLogging)
	}
	return NewServiceFromConfiguration(configuration, logger, humanReadableLogging)
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	if logger := provider(); logger != nil {
		return logger
	}
	return zap.NewNop()
}

func flagValue(command *cobra.Command, name string) bool {
	value, _ := command.Flags().GetBool(name)
	return value
}
