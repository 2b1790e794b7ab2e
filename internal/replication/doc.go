// Package replication recreates a source namespace forest on a destination
// GitLab instance.
//
// The Walker visits the forest in pre-order and creates each group before any
// of its children. Group name conflicts are resolved by reusing an existing
// destination group with the same name; subtrees whose group can be neither
// created nor found are skipped and reported.
package replication
