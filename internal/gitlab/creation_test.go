package gitlab_test

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"

	"github.com/temirov/glmigrate/internal/gitlab"
)

const (
	testMockBaseURLConstant        = "https://destination.example.com"
	testCreatedGroupBodyConstant   = `{"id":42,"name":"Platform Team","path":"Platform-Team","web_url":"https://destination.example.com/groups/root/Platform-Team","description":"infra","visibility":"internal","full_path":"root/Platform-Team","parent_id":5}`
	testCreatedProjectBodyConstant = `{"id":77,"name":"api","path":"api","web_url":"https://destination.example.com/root/api","description":null,"namespace":{"id":5,"name":"root","path":"root","web_url":"https://destination.example.com/groups/root","kind":"group","full_path":"root","parent_id":null}}`
	testConflictBodyConstant       = `{"message":"Failed to save group {:path=>[\"has already been taken\"]}"}`
)

type capturedForm struct {
	values url.Values
	token  string
}

func newMockedClient(testInstance *testing.T, mockTransport *httpmock.MockTransport) *gitlab.Client {
	client, creationError := gitlab.NewClient(
		gitlab.Instance{BaseURL: testMockBaseURLConstant, AccessToken: testAccessTokenConstant},
		gitlab.ClientOptions{RetryMax: 0, Transport: mockTransport},
		nil,
	)
	require.NoError(testInstance, creationError)
	return client
}

func capturingResponder(status int, body string, captured *capturedForm) httpmock.Responder {
	return func(request *http.Request) (*http.Response, error) {
		if parseError := request.ParseForm(); parseError != nil {
			return nil, parseError
		}
		captured.values = request.PostForm
		captured.token = request.Header.Get("PRIVATE-TOKEN")
		return httpmock.NewStringResponse(status, body), nil
	}
}

func TestClientCreateGroup(testInstance *testing.T) {
	testCases := []struct {
		name               string
		request            gitlab.GroupCreateRequest
		responseStatus     int
		responseBody       string
		expectError        bool
		expectedPath       string
		expectedParentID   string
		expectedVisibility string
	}{
		{
			name:               "derives_path_from_name",
			request:            gitlab.GroupCreateRequest{Name: "Platform Team", Description: "infra", Visibility: gitlab.VisibilityInternal, ParentID: 5},
			responseStatus:     http.StatusCreated,
			responseBody:       testCreatedGroupBodyConstant,
			expectedPath:       "Platform-Team",
			expectedParentID:   "5",
			expectedVisibility: "internal",
		},
		{
			name:               "top_level_omits_parent",
			request:            gitlab.GroupCreateRequest{Name: "Platform Team", Path: "platform"},
			responseStatus:     http.StatusCreated,
			responseBody:       testCreatedGroupBodyConstant,
			expectedPath:       "platform",
			expectedParentID:   "",
			expectedVisibility: "private",
		},
		{
			name:               "conflict_reports_api_error",
			request:            gitlab.GroupCreateRequest{Name: "Platform Team", ParentID: 5},
			responseStatus:     http.StatusBadRequest,
			responseBody:       testConflictBodyConstant,
			expectError:        true,
			expectedPath:       "Platform-Team",
			expectedParentID:   "5",
			expectedVisibility: "private",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			mockTransport := httpmock.NewMockTransport()
			captured := &capturedForm{}
			mockTransport.RegisterResponder(http.MethodPost, testMockBaseURLConstant+testGroupsPathConstant, capturingResponder(testCase.responseStatus, testCase.responseBody, captured))

			client := newMockedClient(testInstance, mockTransport)
			group, createError := client.CreateGroup(context.Background(), testCase.request)

			require.Equal(testInstance, 1, mockTransport.GetTotalCallCount())
			require.Equal(testInstance, testAccessTokenConstant, captured.token)
			require.Equal(testInstance, testCase.expectedPath, captured.values.Get("path"))
			require.Equal(testInstance, testCase.expectedParentID, captured.values.Get("parent_id"))
			require.Equal(testInstance, testCase.expectedVisibility, captured.values.Get("visibility"))

			if testCase.expectError {
				var apiError gitlab.APIError
				require.ErrorAs(testInstance, createError, &apiError)
				require.Equal(testInstance, http.StatusBadRequest, apiError.StatusCode)
				require.Contains(testInstance, apiError.Error(), "has already been taken")
				return
			}

			require.NoError(testInstance, createError)
			require.Equal(testInstance, 42, group.ID)
			require.Equal(testInstance, 5, group.ParentID)
			require.Equal(testInstance, "root/Platform-Team", group.FullPath)
			require.Equal(testInstance, gitlab.VisibilityInternal, group.Visibility)
		})
	}
}

func TestClientCreateProject(testInstance *testing.T) {
	mockTransport := httpmock.NewMockTransport()
	captured := &capturedForm{}
	mockTransport.RegisterResponder(http.MethodPost, testMockBaseURLConstant+testProjectsPathConstant, capturingResponder(http.StatusCreated, testCreatedProjectBodyConstant, captured))

	client := newMockedClient(testInstance, mockTransport)
	project, createError := client.CreateProject(context.Background(), gitlab.ProjectCreateRequest{
		Name:        "api",
		Path:        "api",
		Visibility:  gitlab.VisibilityInternal,
		NamespaceID: 5,
	})
	require.NoError(testInstance, createError)
	require.Equal(testInstance, "5", captured.values.Get("namespace_id"))
	require.Equal(testInstance, 77, project.ID)
	require.Equal(testInstance, 5, project.Namespace.ID)
	require.Equal(testInstance, "root", project.Namespace.FullPath)
	require.Empty(testInstance, project.Description)
}

func TestClientCreateProjectRejectsUnexpectedStatus(testInstance *testing.T) {
	mockTransport := httpmock.NewMockTransport()
	mockTransport.RegisterResponder(http.MethodPost, testMockBaseURLConstant+testProjectsPathConstant, httpmock.NewStringResponder(http.StatusOK, testCreatedProjectBodyConstant))

	client := newMockedClient(testInstance, mockTransport)
	project, createError := client.CreateProject(context.Background(), gitlab.ProjectCreateRequest{Name: "api"})
	require.Error(testInstance, createError)
	require.Nil(testInstance, project)

	var apiError gitlab.APIError
	require.ErrorAs(testInstance, createError, &apiError)
	require.Equal(testInstance, http.StatusOK, apiError.StatusCode)
}

func TestDerivePath(testInstance *testing.T) {
	testCases := []struct {
		name         string
		displayName  string
		expectedPath string
	}{
		{name: "spaces", displayName: "Platform Team", expectedPath: "Platform-Team"},
		{name: "slashes", displayName: "a/b\\c", expectedPath: "a-b-c"},
		{name: "unchanged", displayName: "api", expectedPath: "api"},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedPath, gitlab.DerivePath(testCase.displayName))
		})
	}
}
