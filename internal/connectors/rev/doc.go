// Package rev implements the Rev API connector: an authenticated, retrying
// HTTP transport plus the order enumeration and attachment content
// operations the sync engine consumes.
//
// The connector implements the driven.OrderSource and driven.ContentFetcher
// ports. All requests it issues are idempotent reads or deterministic
// content fetches, so retrying a failed request is always safe.
package rev
