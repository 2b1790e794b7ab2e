// Package cli constructs the glmigrate command-line interface. It wires the
// Cobra command hierarchy to the layered configuration loader and the zap
// logger factory, and registers the migrate and tree commands.
package cli
