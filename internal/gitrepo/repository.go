package gitrepo

import (
	"github.com/go-git/go-git/v5"
)

// RepositoryExists reports whether path holds a git repository, bare or not.
func RepositoryExists(path string) bool {
	_, openError := git.PlainOpen(path)
	return openError == nil
}
