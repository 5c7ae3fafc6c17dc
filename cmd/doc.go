// Package cmd implements the command-line interface of itemnav. It provides
// a hierarchical command structure for running the navigation service and
// for navigating results from a terminal.
//
// The package is organized into several subpackages:
//
//   - serve: Starts the navigation HTTP service
//   - nav: Remembers a result list and steps through it (remember, show, next, prev, forget)
//   - store: Inspects the key-value store of the local profile (get, set, rm)
//   - util: Shared utilities for command-line processing, configuration and profiles (internal use)
//
// See itemnav -help for a list of all commands.
package cmd
