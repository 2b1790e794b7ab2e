package migrate

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/glmigrate/internal/namespace"
	"github.com/temirov/glmigrate/internal/ui"
	"github.com/temirov/glmigrate/internal/utils"
	"github.com/temirov/glmigrate/internal/utils/flags"
)

const (
	treeCommandUseConstant              = "tree"
	treeCommandShortDescriptionConstant = "Print the namespace forest of an instance"
	treeCommandLongDescriptionConstant  = "tree fetches every group and project visible to the configured token and prints them as a forest, followed by any entity whose parent was not returned."
	instanceFlagNameConstant            = "instance"
	instanceFlagUsageConstant           = "Instance to inspect"
	formatFlagNameConstant              = "format"
	formatFlagUsageConstant             = "Output format"
	instanceSourceConstant              = "source"
	instanceDestinationConstant         = "destination"
	treeClientErrorTemplateConstant     = "unable to construct %s client: %w"
	treeFetchErrorTemplateConstant      = "unable to fetch %s namespaces: %w"
)

// ListerProvider constructs the namespace lister for one configured instance.
type ListerProvider func(instance InstanceConfiguration, api APIConfiguration, logger *zap.Logger) (namespace.Lister, error)

// TreeCommandBuilder assembles the tree Cobra command.
type TreeCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() Configuration
	ListerProvider        ListerProvider
}

// Build constructs the tree command.
func (builder *TreeCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           treeCommandUseConstant,
		Short:         treeCommandShortDescriptionConstant,
		Long:          treeCommandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
	}

	instanceChoice := flags.AddChoiceFlag(command.Flags(), instanceFlagNameConstant, instanceSourceConstant, []string{instanceSourceConstant, instanceDestinationConstant}, instanceFlagUsageConstant)
	formatChoice := flags.AddChoiceFlag(command.Flags(), formatFlagNameConstant, ui.FormatText, []string{ui.FormatText, ui.FormatYAML}, formatFlagUsageConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, instanceChoice.String(), formatChoice.String())
	}

	return command, nil
}

func (builder *TreeCommandBuilder) run(command *cobra.Command, instanceName string, format string) error {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider().Sanitize()
	}

	instanceConfiguration := configuration.Source
	if instanceName == instanceDestinationConstant {
		instanceConfiguration = configuration.Destination.InstanceConfiguration
	}

	logger := resolveLogger(builder.LoggerProvider)
	lister, listerError := builder.resolveLister(instanceConfiguration, configuration.API, logger)
	if listerError != nil {
		return fmt.Errorf(treeClientErrorTemplateConstant, instanceName, listerError)
	}

	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}

	snapshot, fetchError := namespace.Fetch(executionContext, lister, logger)
	if fetchError != nil {
		return fmt.Errorf(treeFetchErrorTemplateConstant, instanceName, fetchError)
	}

	return ui.RenderForest(utils.NewFlushingWriter(command.OutOrStdout()), snapshot.Forest, format)
}

func (builder *TreeCommandBuilder) resolveLister(instance InstanceConfiguration, api APIConfiguration, logger *zap.Logger) (namespace.Lister, error) {
	if builder.ListerProvider != nil {
		return builder.ListerProvider(instance, api, logger)
	}
	return NewInstanceClient(instance, api, logger)
}
