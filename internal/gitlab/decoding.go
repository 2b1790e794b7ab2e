package gitlab

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	groupRecordResourceConstant       = "group"
	projectRecordResourceConstant     = "project"
	namespaceRecordResourceConstant   = "namespace"
	fieldIDConstant                   = "id"
	fieldNameConstant                 = "name"
	fieldPathConstant                 = "path"
	fieldWebURLConstant               = "web_url"
	fieldDescriptionConstant          = "description"
	fieldVisibilityConstant           = "visibility"
	fieldFullPathConstant             = "full_path"
	fieldParentIDConstant             = "parent_id"
	fieldKindConstant                 = "kind"
	fieldNamespaceConstant            = "namespace"
	jsonNullLiteralConstant           = "null"
	invalidNamespaceTemplateConstant  = "invalid namespace: %w"
	invalidVisibilityTemplateConstant = "invalid visibility: %w"
)

var (
	groupRequiredFields     = []string{fieldIDConstant, fieldNameConstant, fieldPathConstant, fieldWebURLConstant, fieldDescriptionConstant, fieldVisibilityConstant, fieldFullPathConstant, fieldParentIDConstant}
	groupNonNullFields      = []string{fieldIDConstant, fieldNameConstant, fieldPathConstant, fieldWebURLConstant, fieldVisibilityConstant, fieldFullPathConstant}
	projectRequiredFields   = []string{fieldIDConstant, fieldNameConstant, fieldPathConstant, fieldWebURLConstant, fieldDescriptionConstant, fieldNamespaceConstant}
	projectNonNullFields    = []string{fieldIDConstant, fieldNameConstant, fieldPathConstant, fieldWebURLConstant, fieldNamespaceConstant}
	namespaceRequiredFields = []string{fieldIDConstant, fieldNameConstant, fieldPathConstant, fieldWebURLConstant, fieldKindConstant, fieldFullPathConstant, fieldParentIDConstant}
	namespaceNonNullFields  = []string{fieldIDConstant, fieldNameConstant, fieldPathConstant, fieldKindConstant, fieldFullPathConstant}
)

type groupRecord struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	WebURL      string `json:"web_url"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
	FullPath    string `json:"full_path"`
	ParentID    *int   `json:"parent_id"`
}

type namespaceRecord struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	WebURL   string `json:"web_url"`
	Kind     string `json:"kind"`
	FullPath string `json:"full_path"`
	ParentID *int   `json:"parent_id"`
}

type projectRecord struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Path        string          `json:"path"`
	WebURL      string          `json:"web_url"`
	Description string          `json:"description"`
	Namespace   json.RawMessage `json:"namespace"`
}

// DecodeGroup converts a raw API record into a Group.
func DecodeGroup(raw json.RawMessage) (Group, error) {
	var record groupRecord
	if decodeError := decodeRecord(raw, groupRecordResourceConstant, groupRequiredFields, groupNonNullFields, &record); decodeError != nil {
		return Group{}, decodeError
	}

	visibility, visibilityError := ParseVisibility(record.Visibility)
	if visibilityError != nil {
		return Group{}, ResponseDecodingError{Resource: groupRecordResourceConstant, Cause: fmt.Errorf(invalidVisibilityTemplateConstant, visibilityError)}
	}

	return Group{
		ID:          record.ID,
		Name:        record.Name,
		Path:        record.Path,
		WebURL:      record.WebURL,
		Description: record.Description,
		FullPath:    record.FullPath,
		ParentID:    dereferenceIdentifier(record.ParentID),
		Visibility:  visibility,
	}, nil
}

// DecodeProject converts a raw API record into a Project, including its namespace.
func DecodeProject(raw json.RawMessage) (*Project, error) {
	var record projectRecord
	if decodeError := decodeRecord(raw, projectRecordResourceConstant, projectRequiredFields, projectNonNullFields, &record); decodeError != nil {
		return nil, decodeError
	}

	namespace, namespaceError := decodeNamespace(record.Namespace)
	if namespaceError != nil {
		return nil, ResponseDecodingError{Resource: projectRecordResourceConstant, Cause: fmt.Errorf(invalidNamespaceTemplateConstant, namespaceError)}
	}

	return &Project{
		ID:          record.ID,
		Name:        record.Name,
		Path:        record.Path,
		WebURL:      record.WebURL,
		Description: record.Description,
		Namespace:   namespace,
	}, nil
}

func decodeNamespace(raw json.RawMessage) (Namespace, error) {
	var record namespaceRecord
	if decodeError := decodeRecord(raw, namespaceRecordResourceConstant, namespaceRequiredFields, namespaceNonNullFields, &record); decodeError != nil {
		var decodingError ResponseDecodingError
		if errors.As(decodeError, &decodingError) {
			return Namespace{}, decodingError.Cause
		}
		return Namespace{}, decodeError
	}

	return Namespace{
		ID:       record.ID,
		Name:     record.Name,
		Path:     record.Path,
		WebURL:   record.WebURL,
		Kind:     NamespaceKind(record.Kind),
		FullPath: record.FullPath,
		ParentID: dereferenceIdentifier(record.ParentID),
	}, nil
}

func decodeRecord(raw json.RawMessage, resource string, requiredFields []string, nonNullFields []string, target any) error {
	var fields map[string]json.RawMessage
	if unmarshalError := json.Unmarshal(raw, &fields); unmarshalError != nil {
		return ResponseDecodingError{Resource: resource, Cause: unmarshalError}
	}

	for _, fieldName := range requiredFields {
		if _, present := fields[fieldName]; !present {
			return ResponseDecodingError{Resource: resource, Cause: MissingFieldError{Resource: resource, Field: fieldName}}
		}
	}

	for _, fieldName := range nonNullFields {
		if string(fields[fieldName]) == jsonNullLiteralConstant {
			return ResponseDecodingError{Resource: resource, Cause: MissingFieldError{Resource: resource, Field: fieldName, Null: true}}
		}
	}

	if unmarshalError := json.Unmarshal(raw, target); unmarshalError != nil {
		return ResponseDecodingError{Resource: resource, Cause: unmarshalError}
	}

	return nil
}

func dereferenceIdentifier(identifier *int) int {
	if identifier == nil {
		return 0
	}
	return *identifier
}
