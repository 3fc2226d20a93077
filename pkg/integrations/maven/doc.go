// Package maven provides an HTTP client for Maven 2 layout repositories.
//
// # Overview
//
// The client fetches POM documents and materializes binary artifacts from a
// repository such as Maven Central (https://repo1.maven.org/maven2) or any
// mirror that serves the same directory layout.
//
// # Usage
//
//	client := maven.NewClient(maven.Options{Cache: c})
//
//	md, err := client.FetchMetadata(ctx, coord)
//	if err != nil {
//	    return err
//	}
//	skipped, err := client.DownloadArtifact(ctx, coord, "lib")
//
// # Caching
//
// POM bytes are cached under the URL, so a warm cache lets a run skip every
// metadata round-trip. Artifacts are never cached: the output directory
// itself is the record of what was downloaded, and [Client.DownloadArtifact]
// skips files that already exist there.
//
// # Errors
//
// Errors carry a [errors.Code]: NOT_FOUND for 404 and NETWORK_ERROR for
// everything else. Context cancellation is returned unchanged.
package maven
