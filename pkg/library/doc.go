// Package library defines the data model and the provider/catalog/host
// boundary of the restore engine.
//
// # Overview
//
// A manifest entry is an [InstallationState]. A [Provider] resolves it
// through its [Catalog] into a [Library] (the files one version ships), then
// expands the entry's file filters into a [GoalState]: the authoritative
// destination-file to source-file plan. Installing a goal state writes files
// through the embedding [Host].
//
// Every provider, catalog and engine operation reports through
// [OperationResult], carrying coded errors from
// [github.com/matzehuels/libman/pkg/errors] instead of panics or raw
// exceptions.
//
// # Interfaces
//
//   - [Catalog]: search, resolve, latest-version and completion queries.
//   - [Provider]: owns a catalog, download/cache path rules, goal-state
//     planning and installation.
//   - [Host]: file primitives, working and cache directories, logger and
//     settings supplied by the embedding application.
package library
