// Package utils holds the command-line plumbing shared by every command:
// Viper-backed configuration loading, zap logger construction and the values
// commands pass to each other through their context.
package utils
