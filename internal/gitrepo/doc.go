// Package gitrepo is the version-control gateway used during a migration.
//
// MirrorGateway drives mirror clones, remote configuration, mirror pushes and
// history rewrites through execshell, AuthenticatedRemoteURL embeds credentials
// into HTTPS remotes, and RepositoryExists inspects local clones with go-git.
package gitrepo
