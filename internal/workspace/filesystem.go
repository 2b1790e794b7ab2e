package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem abstracts the file operations the workspace performs.
type FileSystem interface {
	Abs(path string) (string, error)
	MkdirAll(path string, permissions fs.FileMode) error
	RemoveAll(path string) error
	WriteFile(path string, data []byte, permissions fs.FileMode) error
	WalkDir(root string, visit fs.WalkDirFunc) error
	Chmod(path string, permissions fs.FileMode) error
}

// OSFileSystem implements FileSystem using the operating system primitives.
type OSFileSystem struct{}

// Abs resolves an absolute path.
func (OSFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// MkdirAll ensures a directory hierarchy exists with the provided permissions.
func (OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}

// RemoveAll deletes a path and any children it contains.
func (OSFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// WriteFile writes data to a file with the supplied permissions.
func (OSFileSystem) WriteFile(path string, data []byte, permissions fs.FileMode) error {
	return os.WriteFile(path, data, permissions)
}

// WalkDir visits the tree rooted at root.
func (OSFileSystem) WalkDir(root string, visit fs.WalkDirFunc) error {
	return filepath.WalkDir(root, visit)
}

// Chmod changes the permissions of a path.
func (OSFileSystem) Chmod(path string, permissions fs.FileMode) error {
	return os.Chmod(path, permissions)
}
