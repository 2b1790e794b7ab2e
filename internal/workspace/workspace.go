package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/temirov/glmigrate/internal/gitlab"
)

const (
	// DefaultRoot is the workspace directory used when none is configured.
	DefaultRoot = "temp"
	// MappingFileName names the link-substitution artifact inside the workspace.
	MappingFileName = "replace.txt"

	bareRepositorySuffixConstant      = ".git"
	namespaceSeparatorConstant        = "/"
	directoryPermissionsConstant      = fs.FileMode(0o755)
	writableFilePermissionsConstant   = fs.FileMode(0o644)
	mappingFilePermissionsConstant    = fs.FileMode(0o644)
	resolveRootErrorTemplateConstant  = "unable to resolve workspace root %s: %w"
	ensureRootErrorTemplateConstant   = "unable to create workspace %s: %w"
	cleanRootErrorTemplateConstant    = "unable to clean workspace %s: %w"
	writeMappingErrorTemplateConstant = "unable to write mapping file %s: %w"
)

// Workspace is a directory partitioned per project.
type Workspace struct {
	root       string
	fileSystem FileSystem
}

// New resolves root to an absolute path. A nil fileSystem uses the operating system.
func New(root string, fileSystem FileSystem) (*Workspace, error) {
	if fileSystem == nil {
		fileSystem = OSFileSystem{}
	}

	trimmedRoot := strings.TrimSpace(root)
	if len(trimmedRoot) == 0 {
		trimmedRoot = DefaultRoot
	}

	absoluteRoot, absoluteError := fileSystem.Abs(trimmedRoot)
	if absoluteError != nil {
		return nil, fmt.Errorf(resolveRootErrorTemplateConstant, trimmedRoot, absoluteError)
	}

	return &Workspace{root: absoluteRoot, fileSystem: fileSystem}, nil
}

// Root reports the absolute workspace directory.
func (workspace *Workspace) Root() string {
	return workspace.root
}

// Ensure creates the workspace directory when it is missing.
func (workspace *Workspace) Ensure() error {
	if mkdirError := workspace.fileSystem.MkdirAll(workspace.root, directoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(ensureRootErrorTemplateConstant, workspace.root, mkdirError)
	}
	return nil
}

// Clean removes everything inside the workspace and leaves it empty. Git
// object files are read-only, so permissions are relaxed before removal.
func (workspace *Workspace) Clean() error {
	walkError := workspace.fileSystem.WalkDir(workspace.root, func(path string, entry fs.DirEntry, visitError error) error {
		if visitError != nil {
			if errors.Is(visitError, fs.ErrNotExist) {
				return nil
			}
			return visitError
		}
		permissions := writableFilePermissionsConstant
		if entry.IsDir() {
			permissions = directoryPermissionsConstant
		}
		return workspace.fileSystem.Chmod(path, permissions)
	})
	if walkError != nil && !errors.Is(walkError, fs.ErrNotExist) {
		return fmt.Errorf(cleanRootErrorTemplateConstant, workspace.root, walkError)
	}

	if removeError := workspace.fileSystem.RemoveAll(workspace.root); removeError != nil {
		return fmt.Errorf(cleanRootErrorTemplateConstant, workspace.root, removeError)
	}

	return workspace.Ensure()
}

// RepositoryPath locates the bare mirror of a project:
// <root>/<namespace full path>/<path>.git. Full paths are unique per instance,
// so projects sharing a path in different namespaces never share a mirror.
func (workspace *Workspace) RepositoryPath(project *gitlab.Project) string {
	namespaceDirectory := filepath.FromSlash(strings.Trim(project.Namespace.FullPath, namespaceSeparatorConstant))
	return filepath.Join(workspace.root, namespaceDirectory, project.Path+bareRepositorySuffixConstant)
}

// MappingFilePath locates the link-substitution artifact.
func (workspace *Workspace) MappingFilePath() string {
	return filepath.Join(workspace.root, MappingFileName)
}

// WriteMappingFile stores the link-substitution artifact and returns its path.
func (workspace *Workspace) WriteMappingFile(content string) (string, error) {
	if ensureError := workspace.Ensure(); ensureError != nil {
		return "", ensureError
	}

	mappingPath := workspace.MappingFilePath()
	if writeError := workspace.fileSystem.WriteFile(mappingPath, []byte(content), mappingFilePermissionsConstant); writeError != nil {
		return "", fmt.Errorf(writeMappingErrorTemplateConstant, mappingPath, writeError)
	}
	return mappingPath, nil
}
