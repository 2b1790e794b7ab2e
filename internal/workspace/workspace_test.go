package workspace_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/glmigrate/internal/gitlab"
	"github.com/temirov/glmigrate/internal/workspace"
)

const (
	testMappingContentConstant = "https://source.example.com==>https://destination.example.com/migrated\r\n"
)

func TestWorkspaceLayout(testInstance *testing.T) {
	rootDirectory := filepath.Join(testInstance.TempDir(), "work")
	migrationWorkspace, creationError := workspace.New(rootDirectory, nil)
	require.NoError(testInstance, creationError)

	project := &gitlab.Project{Name: "API", Path: "api", Namespace: gitlab.Namespace{FullPath: "team/core"}}
	require.Equal(testInstance, rootDirectory, migrationWorkspace.Root())
	require.Equal(testInstance, filepath.Join(rootDirectory, "team", "core", "api.git"), migrationWorkspace.RepositoryPath(project))

	rootLevelProject := &gitlab.Project{Name: "tools", Path: "tools"}
	require.Equal(testInstance, filepath.Join(rootDirectory, "tools.git"), migrationWorkspace.RepositoryPath(rootLevelProject))
	require.Equal(testInstance, filepath.Join(rootDirectory, "replace.txt"), migrationWorkspace.MappingFilePath())
}

func TestWorkspaceSeparatesSamePathProjects(testInstance *testing.T) {
	rootDirectory := filepath.Join(testInstance.TempDir(), "work")
	migrationWorkspace, creationError := workspace.New(rootDirectory, nil)
	require.NoError(testInstance, creationError)

	firstProject := &gitlab.Project{ID: 1, Name: "api", Path: "api", Namespace: gitlab.Namespace{FullPath: "team-a"}}
	secondProject := &gitlab.Project{ID: 2, Name: "api", Path: "api", Namespace: gitlab.Namespace{FullPath: "team-b"}}

	firstPath := migrationWorkspace.RepositoryPath(firstProject)
	secondPath := migrationWorkspace.RepositoryPath(secondProject)
	require.NotEqual(testInstance, firstPath, secondPath)
	require.Equal(testInstance, filepath.Join(rootDirectory, "team-a", "api.git"), firstPath)
	require.Equal(testInstance, filepath.Join(rootDirectory, "team-b", "api.git"), secondPath)
}

func TestWorkspaceDefaultsRoot(testInstance *testing.T) {
	migrationWorkspace, creationError := workspace.New("  ", nil)
	require.NoError(testInstance, creationError)
	require.True(testInstance, filepath.IsAbs(migrationWorkspace.Root()))
	require.Equal(testInstance, workspace.DefaultRoot, filepath.Base(migrationWorkspace.Root()))
}

func TestWorkspaceWriteMappingFile(testInstance *testing.T) {
	migrationWorkspace, creationError := workspace.New(filepath.Join(testInstance.TempDir(), "work"), nil)
	require.NoError(testInstance, creationError)

	mappingPath, writeError := migrationWorkspace.WriteMappingFile(testMappingContentConstant)
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, migrationWorkspace.MappingFilePath(), mappingPath)

	content, readError := os.ReadFile(mappingPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, testMappingContentConstant, string(content))
}

func TestWorkspaceCleanRemovesReadOnlyContent(testInstance *testing.T) {
	rootDirectory := filepath.Join(testInstance.TempDir(), "work")
	migrationWorkspace, creationError := workspace.New(rootDirectory, nil)
	require.NoError(testInstance, creationError)
	require.NoError(testInstance, migrationWorkspace.Ensure())

	objectDirectory := filepath.Join(rootDirectory, "api.git", "objects", "ab")
	require.NoError(testInstance, os.MkdirAll(objectDirectory, 0o755))
	objectFile := filepath.Join(objectDirectory, "cdef")
	require.NoError(testInstance, os.WriteFile(objectFile, []byte("blob"), 0o444))
	require.NoError(testInstance, os.Chmod(objectDirectory, 0o555))

	require.NoError(testInstance, migrationWorkspace.Clean())

	entries, readError := os.ReadDir(rootDirectory)
	require.NoError(testInstance, readError)
	require.Empty(testInstance, entries)
}

func TestWorkspaceCleanCreatesMissingRoot(testInstance *testing.T) {
	rootDirectory := filepath.Join(testInstance.TempDir(), "missing")
	migrationWorkspace, creationError := workspace.New(rootDirectory, nil)
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, migrationWorkspace.Clean())

	info, statError := os.Stat(rootDirectory)
	require.NoError(testInstance, statError)
	require.True(testInstance, info.IsDir())
}
