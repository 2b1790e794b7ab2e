package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/glmigrate/internal/utils/path"
)

func TestHomeExpanderExpand(testInstance *testing.T) {
	homeDirectory := filepath.Join(string(filepath.Separator), "home", "migrator")
	providerCalls := 0
	expander := pathutils.NewHomeExpander(func() (string, error) {
		providerCalls++
		return homeDirectory, nil
	})

	testCases := []struct {
		name         string
		candidate    string
		expectedPath string
	}{
		{name: "bare_tilde", candidate: "~", expectedPath: homeDirectory},
		{name: "tilde_prefix", candidate: "~/glmigrate/temp", expectedPath: filepath.Join(homeDirectory, "glmigrate", "temp")},
		{name: "other_user_unchanged", candidate: "~alice/temp", expectedPath: "~alice/temp"},
		{name: "relative_unchanged", candidate: "temp", expectedPath: "temp"},
		{name: "absolute_unchanged", candidate: "/var/tmp/glmigrate", expectedPath: "/var/tmp/glmigrate"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.candidate))
		})
	}
	require.Equal(testInstance, 1, providerCalls)
}

func TestHomeExpanderProviderFailure(testInstance *testing.T) {
	expander := pathutils.NewHomeExpander(func() (string, error) {
		return "", errors.New("no home")
	})
	require.Equal(testInstance, "~/temp", expander.Expand("~/temp"))
}
