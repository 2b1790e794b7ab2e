package gitlab

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	formContentTypeConstant         = "application/x-www-form-urlencoded"
	contentTypeHeaderConstant       = "Content-Type"
	createGroupOperationConstant    = "create group"
	createProjectOperationConstant  = "create project"
	formNameFieldConstant           = "name"
	formPathFieldConstant           = "path"
	formDescriptionFieldConstant    = "description"
	formVisibilityFieldConstant     = "visibility"
	formParentIDFieldConstant       = "parent_id"
	formNamespaceIDFieldConstant    = "namespace_id"
	groupCreatedMessageConstant     = "Created group"
	projectCreatedMessageConstant   = "Created project"
	creationRejectedMessageConstant = "Creation request rejected"
	logFieldNameConstant            = "name"
	logFieldFullPathConstant        = "full_path"
	logFieldStatusCodeConstant      = "status_code"
	logFieldOperationConstant       = "operation"
	logFieldParentIDConstant        = "parent_id"
)

// GroupCreateRequest describes a group to create. A zero ParentID creates a top-level group.
type GroupCreateRequest struct {
	Name        string
	Path        string
	Description string
	Visibility  Visibility
	ParentID    int
}

// ProjectCreateRequest describes a project to create. A zero NamespaceID uses the caller's personal namespace.
type ProjectCreateRequest struct {
	Name        string
	Path        string
	Description string
	Visibility  Visibility
	NamespaceID int
}

// CreateGroup creates a group and returns the record GitLab reports for it.
func (client *Client) CreateGroup(executionContext context.Context, request GroupCreateRequest) (Group, error) {
	form := buildCreationForm(request.Name, request.Path, request.Description, request.Visibility)
	if request.ParentID > 0 {
		form.Set(formParentIDFieldConstant, strconv.Itoa(request.ParentID))
	}

	responseBody, postError := client.postForm(executionContext, groupsResourceConstant, createGroupOperationConstant, form)
	if postError != nil {
		client.logRejection(createGroupOperationConstant, request.Name, request.ParentID, postError)
		return Group{}, postError
	}

	group, decodeError := DecodeGroup(responseBody)
	if decodeError != nil {
		return Group{}, decodeError
	}

	client.logger.Info(
		groupCreatedMessageConstant,
		zap.String(logFieldInstanceConstant, client.instance.BaseURL),
		zap.String(logFieldNameConstant, group.Name),
		zap.String(logFieldFullPathConstant, group.FullPath),
	)

	return group, nil
}

// CreateProject creates a project and returns the record GitLab reports for it.
func (client *Client) CreateProject(executionContext context.Context, request ProjectCreateRequest) (*Project, error) {
	form := buildCreationForm(request.Name, request.Path, request.Description, request.Visibility)
	if request.NamespaceID > 0 {
		form.Set(formNamespaceIDFieldConstant, strconv.Itoa(request.NamespaceID))
	}

	responseBody, postError := client.postForm(executionContext, projectsResourceConstant, createProjectOperationConstant, form)
	if postError != nil {
		client.logRejection(createProjectOperationConstant, request.Name, request.NamespaceID, postError)
		return nil, postError
	}

	project, decodeError := DecodeProject(responseBody)
	if decodeError != nil {
		return nil, decodeError
	}

	client.logger.Info(
		projectCreatedMessageConstant,
		zap.String(logFieldInstanceConstant, client.instance.BaseURL),
		zap.String(logFieldNameConstant, project.Name),
		zap.String(logFieldFullPathConstant, project.Namespace.FullPath),
	)

	return project, nil
}

func buildCreationForm(name string, path string, description string, visibility Visibility) url.Values {
	resolvedPath := strings.TrimSpace(path)
	if len(resolvedPath) == 0 {
		resolvedPath = DerivePath(name)
	}

	resolvedVisibility := visibility
	if len(resolvedVisibility) == 0 {
		resolvedVisibility = VisibilityPrivate
	}

	form := url.Values{}
	form.Set(formNameFieldConstant, name)
	form.Set(formPathFieldConstant, resolvedPath)
	form.Set(formDescriptionFieldConstant, description)
	form.Set(formVisibilityFieldConstant, string(resolvedVisibility))
	return form
}

func (client *Client) postForm(executionContext context.Context, resource string, operation string, form url.Values) (json.RawMessage, error) {
	request, requestError := client.newRequest(executionContext, http.MethodPost, resource, nil, strings.NewReader(form.Encode()))
	if requestError != nil {
		return nil, requestError
	}
	request.Header.Set(contentTypeHeaderConstant, formContentTypeConstant)

	response, responseError := client.httpClient.Do(request)
	if responseError != nil && response == nil {
		return nil, responseError
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusCreated {
		return nil, APIError{Operation: operation, StatusCode: response.StatusCode, Body: readBody(response)}
	}

	responseBody, readError := io.ReadAll(response.Body)
	if readError != nil {
		return nil, ResponseDecodingError{Resource: resource, Cause: readError}
	}

	return responseBody, nil
}

func (client *Client) logRejection(operation string, name string, parentID int, failure error) {
	client.logger.Debug(
		creationRejectedMessageConstant,
		zap.String(logFieldInstanceConstant, client.instance.BaseURL),
		zap.String(logFieldOperationConstant, operation),
		zap.String(logFieldNameConstant, name),
		zap.Int(logFieldParentIDConstant, parentID),
		zap.Error(failure),
	)
}
