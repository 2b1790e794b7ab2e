package relink_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/glmigrate/internal/gitlab"
	"github.com/temirov/glmigrate/internal/relink"
	"github.com/temirov/glmigrate/internal/transfer"
	"github.com/temirov/glmigrate/internal/workspace"
)

const (
	testSourceBaseURLConstant      = "https://old.example.com"
	testDestinationBaseURLConstant = "https://new.example.com"
	testRootGroupPathConstant      = "migrated"
)

type recordingFactory struct {
	mutex       sync.Mutex
	instance    gitlab.Instance
	mappingPath string
	mappingSeen []string
	failingID   int
}

func (factory *recordingFactory) Relink(instance gitlab.Instance, mappingPath string) transfer.Operation {
	factory.instance = instance
	factory.mappingPath = mappingPath
	return transfer.Operation{
		Name: transfer.OperationRelink,
		Execute: func(_ context.Context, project *gitlab.Project) error {
			content, readError := os.ReadFile(mappingPath)
			if readError != nil {
				return readError
			}
			factory.mutex.Lock()
			factory.mappingSeen = append(factory.mappingSeen, string(content))
			factory.mutex.Unlock()
			if project.ID == factory.failingID {
				return errors.New("filter-repo exited with status 1")
			}
			return nil
		},
	}
}

type failingWriter struct{}

func (failingWriter) WriteMappingFile(string) (string, error) {
	return "", os.ErrPermission
}

func TestCoordinatorWritesMappingBeforeRelinking(testInstance *testing.T) {
	workspaceRoot := filepath.Join(testInstance.TempDir(), "temp")
	projectWorkspace, workspaceError := workspace.New(workspaceRoot, nil)
	require.NoError(testInstance, workspaceError)

	factory := &recordingFactory{failingID: 2}
	orchestrator := transfer.NewOrchestrator(transfer.OrchestratorOptions{Concurrency: 2}, nil)
	coordinator, coordinatorError := relink.NewCoordinator(projectWorkspace, orchestrator, factory, nil)
	require.NoError(testInstance, coordinatorError)

	destination := gitlab.Instance{BaseURL: testDestinationBaseURLConstant, Username: "bob", AccessToken: "token"}
	report, relinkError := coordinator.Relink(context.Background(), relink.Request{
		SourceBaseURL:     testSourceBaseURLConstant,
		Destination:       destination,
		RootGroupFullPath: testRootGroupPathConstant,
		Projects:          []*gitlab.Project{{ID: 1, Name: "api", Path: "api"}, {ID: 2, Name: "web", Path: "web"}, {ID: 3, Name: "docs", Path: "docs"}},
	})
	require.NoError(testInstance, relinkError)

	expectedMapping := "https://old.example.com==>https://new.example.com/migrated\r\n@old.example.com==>@new.example.com/migrated\r\n"
	require.Equal(testInstance, filepath.Join(projectWorkspace.Root(), workspace.MappingFileName), factory.mappingPath)
	require.Equal(testInstance, destination, factory.instance)
	require.Len(testInstance, factory.mappingSeen, 3)
	for _, observedMapping := range factory.mappingSeen {
		require.Equal(testInstance, expectedMapping, observedMapping)
	}

	require.Equal(testInstance, 3, report.Attempted())
	require.Len(testInstance, report.Failures(), 1)
	require.Equal(testInstance, 2, report.Failures()[0].Project.ID)
}

func TestCoordinatorStopsWhenMappingCannotBeWritten(testInstance *testing.T) {
	factory := &recordingFactory{}
	orchestrator := transfer.NewOrchestrator(transfer.OrchestratorOptions{Concurrency: 1}, nil)
	coordinator, coordinatorError := relink.NewCoordinator(failingWriter{}, orchestrator, factory, nil)
	require.NoError(testInstance, coordinatorError)

	report, relinkError := coordinator.Relink(context.Background(), relink.Request{
		SourceBaseURL: testSourceBaseURLConstant,
		Destination:   gitlab.Instance{BaseURL: testDestinationBaseURLConstant},
		Projects:      []*gitlab.Project{{ID: 1, Name: "api", Path: "api"}},
	})
	require.ErrorIs(testInstance, relinkError, os.ErrPermission)
	require.Zero(testInstance, report.Attempted())
	require.Empty(testInstance, factory.mappingSeen)
}

func TestNewCoordinatorRequiresDependencies(testInstance *testing.T) {
	_, coordinatorError := relink.NewCoordinator(nil, nil, nil, nil)
	require.ErrorIs(testInstance, coordinatorError, relink.ErrDependenciesNotConfigured)
}
