// Package flags provides enumerated-value flags for Cobra commands.
package flags
