package migrate_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/glmigrate/internal/gitlab"
	"github.com/temirov/glmigrate/internal/migrate"
	"github.com/temirov/glmigrate/internal/workspace"
)

func TestConfigurationSanitize(testInstance *testing.T) {
	testCases := []struct {
		name       string
		input      migrate.Configuration
		assertions func(testInstance *testing.T, sanitized migrate.Configuration)
	}{
		{
			name:  "empty_values_use_defaults",
			input: migrate.Configuration{},
			assertions: func(testInstance *testing.T, sanitized migrate.Configuration) {
				require.Equal(testInstance, workspace.DefaultRoot, sanitized.Transfer.Workspace)
				require.Equal(testInstance, string(gitlab.VisibilityPrivate), sanitized.Transfer.TargetVisibility)
				require.Equal(testInstance, "git-filter-repo", sanitized.Transfer.FilterRepoExecutable)
				require.Equal(testInstance, gitlab.DefaultPageSize, sanitized.API.PageSize)
				require.Equal(testInstance, gitlab.DefaultTimeout, sanitized.API.Timeout)
				require.Empty(testInstance, sanitized.Transfer.Exclusions)
			},
		},
		{
			name: "trims_and_splits",
			input: migrate.Configuration{
				Source: migrate.InstanceConfiguration{BaseURL: " https://source.example.com/ ", Username: " alice ", AccessToken: " token "},
				Destination: migrate.DestinationConfiguration{
					InstanceConfiguration: migrate.InstanceConfiguration{BaseURL: "https://destination.example.com"},
					RootGroup:             " landing ",
				},
				Transfer: migrate.TransferConfiguration{
					Exclusions:  []string{"api, docs", " ", "legacy"},
					TaskTimeout: -time.Second,
				},
			},
			assertions: func(testInstance *testing.T, sanitized migrate.Configuration) {
				require.Equal(testInstance, "https://source.example.com", sanitized.Source.BaseURL)
				require.Equal(testInstance, "alice", sanitized.Source.Username)
				require.Equal(testInstance, "token", sanitized.Source.AccessToken)
				require.Equal(testInstance, "landing", sanitized.Destination.RootGroup)
				require.Equal(testInstance, []string{"api", "docs", "legacy"}, sanitized.Transfer.Exclusions)
				require.Zero(testInstance, sanitized.Transfer.TaskTimeout)
			},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			testCase.assertions(testInstance, testCase.input.Sanitize())
		})
	}
}

func TestLegacyEnvironmentBindingsCoverCredentials(testInstance *testing.T) {
	bindings := migrate.LegacyEnvironmentBindings()
	require.Equal(testInstance, []string{"SOURCE_URL"}, bindings["source.base_url"])
	require.Equal(testInstance, []string{"DEST_ACCESS_TOKEN"}, bindings["destination.access_token"])
	require.Equal(testInstance, []string{"SRC_REPO_EXCEPTIONS"}, bindings["transfer.exclusions"])
}

func TestDefaultConfigurationValuesMatchDefaults(testInstance *testing.T) {
	values := migrate.DefaultConfigurationValues()
	defaults := migrate.DefaultConfiguration()
	require.Equal(testInstance, defaults.Transfer.Workspace, values["transfer.workspace"])
	require.Equal(testInstance, defaults.API.RetryMax, values["api.retry_max"])
	require.Equal(testInstance, defaults.API.Timeout, values["api.timeout"])
}

func TestInstanceConfigurationConversions(testInstance *testing.T) {
	instance := migrate.InstanceConfiguration{BaseURL: "https://source.example.com", Username: "alice", AccessToken: "token"}.Instance()
	require.Equal(testInstance, gitlab.Instance{BaseURL: "https://source.example.com", Username: "alice", AccessToken: "token"}, instance)

	options := migrate.APIConfiguration{PageSize: 20, RetryMax: 1, Timeout: time.Minute}.ClientOptions()
	require.Equal(testInstance, 20, options.PageSize)
	require.Equal(testInstance, 1, options.RetryMax)
	require.Equal(testInstance, time.Minute, options.Timeout)
}
