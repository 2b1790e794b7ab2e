package migrate

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/glmigrate/internal/execshell"
	"github.com/temirov/glmigrate/internal/gitlab"
	"github.com/temirov/glmigrate/internal/gitrepo"
	"github.com/temirov/glmigrate/internal/relink"
	"github.com/temirov/glmigrate/internal/transfer"
	pathutils "github.com/temirov/glmigrate/internal/utils/path"
	"github.com/temirov/glmigrate/internal/workspace"
)

const (
	sourceClientErrorTemplateConstant      = "unable to construct source client: %w"
	destinationClientErrorTemplateConstant = "unable to construct destination client: %w"
	executorErrorTemplateConstant          = "unable to construct command executor: %w"
	gatewayErrorTemplateConstant           = "unable to construct git gateway: %w"
	workspaceCreationErrorTemplateConstant = "unable to resolve workspace: %w"
	operationsErrorTemplateConstant        = "unable to construct transfer operations: %w"
	coordinatorErrorTemplateConstant       = "unable to construct relink coordinator: %w"
)

// NewInstanceClient builds a GitLab client for one configured instance.
func NewInstanceClient(instance InstanceConfiguration, api APIConfiguration, logger *zap.Logger) (*gitlab.Client, error) {
	return gitlab.NewClient(instance.Instance(), api.ClientOptions(), logger)
}

// NewServiceFromConfiguration wires the production collaborators of a migration.
func NewServiceFromConfiguration(configuration Configuration, logger *zap.Logger, humanReadableLogging bool) (*Service, error) {
	sourceClient, sourceError := NewInstanceClient(configuration.Source, configuration.API, logger)
	if sourceError != nil {
		return nil, fmt.Errorf(sourceClientErrorTemplateConstant, sourceError)
	}

	destinationClient, destinationError := NewInstanceClient(configuration.Destination.InstanceConfiguration, configuration.API, logger)
	if destinationError != nil {
		return nil, fmt.Errorf(destinationClientErrorTemplateConstant, destinationError)
	}

	shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), humanReadableLogging)
	if executorError != nil {
		return nil, fmt.Errorf(executorErrorTemplateConstant, executorError)
	}

	gateway, gatewayError := gitrepo.NewMirrorGateway(shellExecutor, configuration.Transfer.FilterRepoExecutable)
	if gatewayError != nil {
		return nil, fmt.Errorf(gatewayErrorTemplateConstant, gatewayError)
	}

	workspaceRoot := pathutils.NewHomeExpander(nil).Expand(configuration.Transfer.Workspace)
	mirrorWorkspace, workspaceError := workspace.New(workspaceRoot, nil)
	if workspaceError != nil {
		return nil, fmt.Errorf(workspaceCreationErrorTemplateConstant, workspaceError)
	}

	operations, operationsError := transfer.NewOperations(transfer.OperationsDependencies{
		Gateway:   gateway,
		Workspace: mirrorWorkspace,
	})
	if operationsError != nil {
		return nil, fmt.Errorf(operationsErrorTemplateConstant, operationsError)
	}

	orchestrator := transfer.NewOrchestrator(transfer.OrchestratorOptions{
		Concurrency: configuration.Transfer.Concurrency,
		TaskTimeout: configuration.Transfer.TaskTimeout,
	}, logger)

	coordinator, coordinatorError := relink.NewCoordinator(mirrorWorkspace, orchestrator, operations, logger)
	if coordinatorError != nil {
		return nil, fmt.Errorf(coordinatorErrorTemplateConstant, coordinatorError)
	}

	return NewService(ServiceDependencies{
		Logger:      logger,
		Source:      sourceClient,
		Destination: destinationClient,
		Operations:  operations,
		Runner:      orchestrator,
		Workspace:   mirrorWorkspace,
		Relinker:    coordinator,
	})
}
