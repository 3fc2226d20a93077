// Package pkg provides the libraries behind kdeps, a transitive Maven
// artifact downloader.
//
// # Overview
//
// kdeps starts from group:artifact:version coordinates, downloads each
// artifact and follows the dependencies declared in its POM until every
// reachable coordinate is local. The pkg directory is organized as follows:
//
//  1. [maven] - Coordinates, repository URL layout, POM extraction and
//     exclusion tables
//  2. [deps] - The resolver: depth-first traversal, download pool, run
//     statistics and version-spread report
//  3. [integrations] - HTTP transport with caching and retries, plus the
//     Maven repository client in [integrations/maven]
//  4. [dag], [io], [render/nodelink] - The resolved graph, its JSON form and
//     its Graphviz rendering
//  5. [cache], [config], [errors], [observability] - Infrastructure
//
// # Architecture
//
// The data flow of one run:
//
//	seed coordinates
//	       ↓
//	  [deps] Resolver ──→ [integrations/maven] Client ──→ repository
//	       ↓                     ↓
//	  [maven] Parse         artifacts (lib/), POMs (pom/)
//	       ↓
//	  [dag] graph ──→ [io] JSON, [render/nodelink] DOT/SVG
//
// # Quick Start
//
//	repo := mavenrepo.NewClient(mavenrepo.Options{})
//	seed, _ := maven.ParseCoordinate("org.jetbrains.kotlinx:kotlinx-coroutines-core-jvm:1.8.0")
//	res, err := deps.NewResolver(repo, deps.Options{}).Resolve(ctx, []maven.Coordinate{seed})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Stats.Visited, "coordinates")
//
// # Infrastructure
//
// [cache] - Metadata caches: FileCache (local, default), RedisCache
// (shared), NullCache (disabled). All entries carry a TTL.
//
// [observability] - Hook interfaces for resolve, cache and HTTP events with
// a Prometheus implementation.
//
// [errors] - Structured errors with machine-readable codes that separate
// fatal input errors from node-local failures.
package pkg
