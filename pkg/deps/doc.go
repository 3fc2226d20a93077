// Package deps resolves the transitive artifact graph of Maven coordinates.
//
// # Overview
//
// Given seed coordinates (group:artifact:version), a [Resolver] downloads
// each artifact, fetches its POM, extracts the child declarations and
// repeats for every child not seen before. The run is depth-first in
// document order and expands every coordinate at most once, so cycles and
// diamonds in the repository graph are harmless.
//
// # Resolving
//
//	repo := mavenrepo.NewClient(mavenrepo.Options{})
//	res, err := deps.NewResolver(repo, deps.Options{
//	    OutputDir: "lib",
//	    Logger:    logger,
//	}).Resolve(ctx, seeds)
//
// Only invalid seeds and unusable directories are fatal. A failed download
// or unparsable POM is logged, counted in [Stats] and marked on the graph;
// the traversal continues with the next pending coordinate.
//
// # Exclusions
//
// Exclusion rules declared on a dependency are merged into a run-wide
// table owned by the [Context]. Before expanding a child the resolver
// consults the table under its parent's key. How that key is shaped is
// selected by [maven.KeyMode]:
//
//   - [maven.KeyWithVersion]: rules apply under the exact declaring coordinate
//   - [maven.KeyWithoutVersion]: rules apply to every version of the declarer
//   - [maven.KeyLegacy]: rules are recorded but never found
//
// # Concurrency
//
// Metadata expansion and all bookkeeping happen on the goroutine that
// calls Resolve. Artifact downloads are handed to a pool of
// [Options.Workers] goroutines and their outcomes are attached to the
// graph once the pool drains. Cancelling the context stops the traversal,
// waits for in-flight downloads and returns the partial [Result].
//
// # Output
//
// [Result.Graph] holds every coordinate seen, including excluded and
// pruned ones, with node and edge metadata under the Meta* keys.
// [Result.VersionSpread] reports modules reached at several versions.
package deps
