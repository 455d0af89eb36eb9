// Package core contains the shared domain types for snowduck: models,
// sources, seeds, tests, snapshots and run results.
//
// This package has no dependencies on other snowduck packages so that
// every layer (compiler, scheduler, engine, CLI) can share the same types
// without import cycles.
package core
