package migrate

import (
	"strings"
	"time"

	"github.com/temirov/glmigrate/internal/gitlab"
	"github.com/temirov/glmigrate/internal/workspace"
)

const (
	sourceConfigurationKeyConstant      = "source"
	destinationConfigurationKeyConstant = "destination"
	transferConfigurationKeyConstant    = "transfer"
	apiConfigurationKeyConstant         = "api"
	configurationKeySeparatorConstant   = "."
	defaultFilterRepoExecutableConstant = "git-filter-repo"
)

// InstanceConfiguration describes one GitLab instance.
type InstanceConfiguration struct {
	BaseURL     string `mapstructure:"base_url"`
	Username    string `mapstructure:"username"`
	AccessToken string `mapstructure:"access_token"`
}

// DestinationConfiguration adds the optional group the source forest is replicated under.
type DestinationConfiguration struct {
	InstanceConfiguration `mapstructure:",squash"`
	RootGroup string `mapstructure:"root_group"`
}

// TransferConfiguration tunes the repository transfer phases.
type TransferConfiguration struct {
	Workspace            string        `mapstructure:"workspace"`
	Concurrency          int           `mapstructure:"concurrency"`
	Exclusions           []string      `mapstructure:"exclusions"`
	TaskTimeout          time.Duration `mapstructure:"task_timeout"`
	TargetVisibility     string        `mapstructure:"target_visibility"`
	FilterRepoExecutable string        `mapstructure:"filter_repo_executable"`
	KeepWorkspace        bool          `mapstructure:"keep_workspace"`
}

// APIConfiguration tunes the GitLab HTTP clients.
type APIConfiguration struct {
	PageSize int           `mapstructure:"page_size"`
	RetryMax int           `mapstructure:"retry_max"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Configuration captures everything the migrate and tree commands read from configuration.
type Configuration struct {
	Source      InstanceConfiguration    `mapstructure:"source"`
	Destination DestinationConfiguration `mapstructure:"destination"`
	Transfer    TransferConfiguration    `mapstructure:"transfer"`
	API         APIConfiguration         `mapstructure:"api"`
}

// DefaultConfiguration returns baseline values.
func DefaultConfiguration() Configuration {
	return Configuration{
		Transfer: TransferConfiguration{
			Workspace:            workspace.DefaultRoot,
			TargetVisibility:     string(gitlab.VisibilityPrivate),
			FilterRepoExecutable: defaultFilterRepoExecutableConstant,
		},
		API: APIConfiguration{
			PageSize: gitlab.DefaultPageSize,
			RetryMax: gitlab.DefaultRetryMax,
			Timeout:  gitlab.DefaultTimeout,
		},
	}
}

// DefaultConfigurationValues exposes DefaultConfiguration as configuration keys.
func DefaultConfigurationValues() map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		configurationKey(transferConfigurationKeyConstant, "workspace"):              defaults.Transfer.Workspace,
		configurationKey(transferConfigurationKeyConstant, "concurrency"):            defaults.Transfer.Concurrency,
		configurationKey(transferConfigurationKeyConstant, "task_timeout"):           defaults.Transfer.TaskTimeout,
		configurationKey(transferConfigurationKeyConstant, "target_visibility"):      defaults.Transfer.TargetVisibility,
		configurationKey(transferConfigurationKeyConstant, "filter_repo_executable"): defaults.Transfer.FilterRepoExecutable,
		configurationKey(transferConfigurationKeyConstant, "keep_workspace"):         defaults.Transfer.KeepWorkspace,
		configurationKey(apiConfigurationKeyConstant, "page_size"):                   defaults.API.PageSize,
		configurationKey(apiConfigurationKeyConstant, "retry_max"):                   defaults.API.RetryMax,
		configurationKey(apiConfigurationKeyConstant, "timeout"):                     defaults.API.Timeout,
	}
}

// LegacyEnvironmentBindings maps configuration keys to the environment variable
// names earlier migration scripts used.
func LegacyEnvironmentBindings() map[string][]string {
	return map[string][]string{
		configurationKey(sourceConfigurationKeyConstant, "base_url"):          {"SOURCE_URL"},
		configurationKey(sourceConfigurationKeyConstant, "username"):          {"SOURCE_USERNAME"},
		configurationKey(sourceConfigurationKeyConstant, "access_token"):      {"SOURCE_ACCESS_TOKEN"},
		configurationKey(destinationConfigurationKeyConstant, "base_url"):     {"DEST_URL"},
		configurationKey(destinationConfigurationKeyConstant, "username"):     {"DEST_USERNAME"},
		configurationKey(destinationConfigurationKeyConstant, "access_token"): {"DEST_ACCESS_TOKEN"},
		configurationKey(transferConfigurationKeyConstant, "exclusions"):      {"SRC_REPO_EXCEPTIONS"},
	}
}

// Sanitize trims values and fills empty fields with defaults.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := configuration

	sanitized.Source = configuration.Source.sanitize()
	sanitized.Destination.InstanceConfiguration = configuration.Destination.InstanceConfiguration.sanitize()
	sanitized.Destination.RootGroup = strings.TrimSpace(configuration.Destination.RootGroup)

	sanitized.Transfer.Workspace = strings.TrimSpace(configuration.Transfer.Workspace)
	if len(sanitized.Transfer.Workspace) == 0 {
		sanitized.Transfer.Workspace = defaults.Transfer.Workspace
	}
	sanitized.Transfer.TargetVisibility = strings.TrimSpace(configuration.Transfer.TargetVisibility)
	if len(sanitized.Transfer.TargetVisibility) == 0 {
		sanitized.Transfer.TargetVisibility = defaults.Transfer.TargetVisibility
	}
	sanitized.Transfer.FilterRepoExecutable = strings.TrimSpace(configuration.Transfer.FilterRepoExecutable)
	if len(sanitized.Transfer.FilterRepoExecutable) == 0 {
		sanitized.Transfer.FilterRepoExecutable = defaults.Transfer.FilterRepoExecutable
	}
	sanitized.Transfer.Exclusions = sanitizeExclusions(configuration.Transfer.Exclusions)
	if sanitized.Transfer.TaskTimeout < 0 {
		sanitized.Transfer.TaskTimeout = 0
	}

	if sanitized.API.PageSize <= 0 {
		sanitized.API.PageSize = defaults.API.PageSize
	}
	if sanitized.API.Timeout <= 0 {
		sanitized.API.Timeout = defaults.API.Timeout
	}
	return sanitized
}

// Instance converts the configuration into a client identity.
func (configuration InstanceConfiguration) Instance() gitlab.Instance {
	return gitlab.Instance{
		BaseURL:     configuration.BaseURL,
		Username:    configuration.Username,
		AccessToken: configuration.AccessToken,
	}
}

// ClientOptions converts the API configuration into client options.
func (configuration APIConfiguration) ClientOptions() gitlab.ClientOptions {
	return gitlab.ClientOptions{
		PageSize: configuration.PageSize,
		RetryMax: configuration.RetryMax,
		Timeout:  configuration.Timeout,
	}
}

func (configuration InstanceConfiguration) sanitize() InstanceConfiguration {
	return InstanceConfiguration{
		BaseURL:     gitlab.NormalizeBaseURL(configuration.BaseURL),
		Username:    strings.TrimSpace(configuration.Username),
		AccessToken: strings.TrimSpace(configuration.AccessToken),
	}
}

// sanitizeExclusions also splits comma-joined entries, the format legacy
// environment variables use.
func sanitizeExclusions(exclusions []string) []string {
	var sanitized []string
	for _, exclusion := range exclusions {
		for _, name := range strings.Split(exclusion, ",") {
			trimmedName := strings.TrimSpace(name)
			if len(trimmedName) > 0 {
				sanitized = append(sanitized, trimmedName)
			}
		}
	}
	return sanitized
}

func configurationKey(section string, key string) string {
	return section + configurationKeySeparatorConstant + key
}
