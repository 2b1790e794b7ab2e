package gitlab

import (
	"fmt"
	"strings"
)

const (
	visibilityPrivateStringConstant       = "private"
	visibilityInternalStringConstant      = "internal"
	visibilityPublicStringConstant        = "public"
	namespaceKindGroupStringConstant      = "group"
	namespaceKindUserStringConstant       = "user"
	unsupportedVisibilityTemplateConstant = "unsupported visibility %q"
	pathReplacementCharacterConstant      = "-"
	fullPathSeparatorConstant             = "/"
)

// Visibility enumerates GitLab visibility levels.
type Visibility string

// Supported visibility levels.
const (
	VisibilityPrivate  Visibility = Visibility(visibilityPrivateStringConstant)
	VisibilityInternal Visibility = Visibility(visibilityInternalStringConstant)
	VisibilityPublic   Visibility = Visibility(visibilityPublicStringConstant)
)

// NamespaceKind distinguishes group namespaces from personal ones.
type NamespaceKind string

// Namespace kinds reported by GitLab.
const (
	NamespaceKindGroup NamespaceKind = NamespaceKind(namespaceKindGroupStringConstant)
	NamespaceKindUser  NamespaceKind = NamespaceKind(namespaceKindUserStringConstant)
)

// ParseVisibility validates a textual visibility level.
func ParseVisibility(value string) (Visibility, error) {
	switch Visibility(strings.ToLower(strings.TrimSpace(value))) {
	case VisibilityPrivate:
		return VisibilityPrivate, nil
	case VisibilityInternal:
		return VisibilityInternal, nil
	case VisibilityPublic:
		return VisibilityPublic, nil
	default:
		return "", fmt.Errorf(unsupportedVisibilityTemplateConstant, value)
	}
}

// Namespace describes the owner of a project. ParentID is zero when absent.
type Namespace struct {
	ID       int
	Name     string
	Path     string
	WebURL   string
	Kind     NamespaceKind
	FullPath string
	ParentID int
}

// Group is a GitLab group. ParentID is zero for top-level groups.
type Group struct {
	ID          int
	Name        string
	Path        string
	WebURL      string
	Description string
	FullPath    string
	ParentID    int
	Visibility  Visibility
}

// Project is a GitLab repository.
type Project struct {
	ID          int
	Name        string
	Path        string
	WebURL      string
	Description string
	Namespace   Namespace

	// RemoteAlias names the push remote used for this project during a
	// transfer session. It is assigned once and reused afterwards.
	RemoteAlias string
}

// DerivePath turns a display name into a path GitLab accepts.
func DerivePath(name string) string {
	replacer := strings.NewReplacer(
		" ", pathReplacementCharacterConstant,
		"/", pathReplacementCharacterConstant,
		"\\", pathReplacementCharacterConstant,
	)
	return replacer.Replace(strings.TrimSpace(name))
}

// QualifiedPath joins a namespace full path and a project path. An empty
// namespace yields the project path alone.
func QualifiedPath(namespaceFullPath string, projectPath string) string {
	trimmedNamespace := strings.Trim(namespaceFullPath, fullPathSeparatorConstant)
	if len(trimmedNamespace) == 0 {
		return projectPath
	}
	return trimmedNamespace + fullPathSeparatorConstant + projectPath
}

// RelativeFullPath strips the group full path prefix from fullPath. The boolean
// is false when fullPath is neither prefix nor one of its descendants. An empty
// prefix leaves fullPath unchanged.
func RelativeFullPath(fullPath string, prefix string) (string, bool) {
	trimmedPath := strings.Trim(fullPath, fullPathSeparatorConstant)
	trimmedPrefix := strings.Trim(prefix, fullPathSeparatorConstant)
	switch {
	case len(trimmedPrefix) == 0:
		return trimmedPath, true
	case trimmedPath == trimmedPrefix:
		return "", true
	case strings.HasPrefix(trimmedPath, trimmedPrefix+fullPathSeparatorConstant):
		return trimmedPath[len(trimmedPrefix)+len(fullPathSeparatorConstant):], true
	default:
		return "", false
	}
}
