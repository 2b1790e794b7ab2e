package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/glmigrate/cmd/cli"
	"github.com/temirov/glmigrate/internal/gitlab"
	"github.com/temirov/glmigrate/internal/utils"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	readmeSnippetFileNameConstant    = "config.yaml"
	parentDirectoryReferenceConstant = ".."
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
)

func extractConfigurationSnippet(testInstance *testing.T) string {
	testInstance.Helper()

	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	readmePath := filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant)
	contentBytes, readError := os.ReadFile(readmePath)
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	remainingText := contentText[headerIndex:]
	fenceEndRelativeIndex := strings.Index(remainingText, yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)
	fenceEndIndex := headerIndex + fenceEndRelativeIndex

	return strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : fenceEndIndex])
}

func TestReadmeConfigurationLoads(testInstance *testing.T) {
	snippetPath := filepath.Join(testInstance.TempDir(), readmeSnippetFileNameConstant)
	require.NoError(testInstance, os.WriteFile(snippetPath, []byte(extractConfigurationSnippet(testInstance)), 0o600))

	loader := utils.NewConfigurationLoader("config", "yaml", "GLMIGRATEDOCS", nil)
	loader.SetEmbeddedConfiguration(cli.EmbeddedDefaultConfiguration())

	var configuration cli.ApplicationConfiguration
	loaded, loadError := loader.LoadConfiguration(snippetPath, cli.DefaultConfigurationValues(), &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, snippetPath, loaded.ConfigFileUsed)

	_, levelError := utils.ParseLogLevel(configuration.Common.LogLevel)
	require.NoError(testInstance, levelError)
	_, formatError := utils.ParseLogFormat(configuration.Common.LogFormat)
	require.NoError(testInstance, formatError)

	migration := configuration.Configuration.Sanitize()
	_, visibilityError := gitlab.ParseVisibility(migration.Transfer.TargetVisibility)
	require.NoError(testInstance, visibilityError)
	require.NotEmpty(testInstance, migration.Source.BaseURL)
	require.NotEmpty(testInstance, migration.Destination.BaseURL)
	require.NotEmpty(testInstance, migration.Destination.RootGroup)
	require.NotEmpty(testInstance, migration.Transfer.Exclusions)
	require.Positive(testInstance, migration.Transfer.TaskTimeout)
}
