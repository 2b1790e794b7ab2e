// Package namespace reconstructs GitLab namespace forests from flat group and
// project listings.
//
// Build indexes entities by parent identifier in one pass and attaches children
// by lookup. Snapshot couples a consistent fetch of both listings with the
// forest derived from it.
package namespace
