// Package migrate runs the end-to-end namespace migration between two GitLab
// instances and exposes it, together with forest inspection, as Cobra commands.
package migrate
