// Package main generates pipeline configuration sources.
//
// pipegen walks the built-in variant catalogue, filters it by capability
// level and name pattern, and writes one Go source file per kind and
// capability plus a manifest.yaml describing the run.
//
// Configuration:
//   - PIPEGEN_* environment variables
//   - CLI flags (override env vars)
//
// Usage:
//
//	# everything the default capabilities cover
//	pipegen -out generated
//
//	# only copy pipelines, skip the deep rings, verbose logs
//	pipegen -names 'copy*' -ignore '*s7*' -dev
//
// Signals:
//   - SIGINT, SIGTERM: cancel emission
package main
