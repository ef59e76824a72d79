// Package build provides the canonical build pipeline for docsite.
//
// A build loads the site configuration, resolves the sidebars, discovers
// content, assembles the site model and writes the site manifest for the
// renderer. Each stage is timed and logged; the outcome is recorded as
// metrics and lifecycle events and the report is published to subscribers.
// All execution paths (CLI commands, the watcher) route through Service.
//
// The package also defines sentinel errors naming the stage that failed.
// They are wrapped into the structured errors of internal/errors so the CLI
// can map them to exit codes.
package build
