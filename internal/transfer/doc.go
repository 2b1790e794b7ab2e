// Package transfer fans per-project operations out over a bounded worker pool.
//
// Orchestrator.Run executes one Operation for every project, isolates task
// failures from one another, and returns a Report only after every task has
// finished. Operations builds the mirror-clone, mirror-push and relink
// operations on top of a git gateway and a workspace.
package transfer
