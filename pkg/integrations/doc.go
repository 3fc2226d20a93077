// Package integrations provides the HTTP plumbing shared by repository clients.
//
// # Overview
//
// [Client] wraps an [http.Client] with the concerns every repository client
// needs:
//
//   - Response caching via [cache.Cache], keyed by URL
//   - Retry of transient failures via [httputil.Policy]
//   - Atomic, idempotent file downloads ([Client.Materialize])
//   - HTTP events reported to [observability.HTTP]
//
// Repository-specific clients live in subpackages; [maven] implements the
// Maven 2 repository layout on top of Client.
//
// # Errors
//
// Failures are classified with sentinel errors so callers can use errors.Is:
//
//   - [ErrNotFound]: the repository answered 404
//   - [ErrNetwork]: connection failures, timeouts and other non-200 statuses
//
// 5xx responses and connection failures are additionally wrapped in
// [httputil.RetryableError].
package integrations
