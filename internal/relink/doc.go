// Package relink rewrites references to the source instance inside migrated
// repository history so they point at the destination instance.
package relink
