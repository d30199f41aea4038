// Package app contains the verifier's lifecycle. It loads programs, runs the
// analysis, writes reports and serves health and metrics endpoints,
// decoupled from any specific entrypoint like a CLI.
package app
