// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with lifecycle logging and credential
// redaction, OSCommandRunner executes processes through os/exec, and
// CommandMessageFormatter renders human-readable descriptions of the git and
// git-filter-repo invocations used during a migration.
package execshell
