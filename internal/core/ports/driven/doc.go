// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - OrderSource: Paginated enumeration and hydration of remote orders
//   - ContentFetcher: Attachment metadata and content retrieval
//   - DownloadIndex: Durable idempotency ledger of downloaded attachment ids
//   - ExportStore: On-disk export tree and deterministic filenames
//   - CredentialProvider: Opaque authorization value for the transport
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
