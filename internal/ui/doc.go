// Package ui renders migration results and namespace forests for people
// reading the terminal. Detailed telemetry continues to flow through the
// structured logger.
package ui
