// Package workspace manages the temporary directory that holds mirrored bare
// repositories and the link-substitution mapping file.
package workspace
