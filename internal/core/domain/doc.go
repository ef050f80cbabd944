// Package domain defines the core business entities for the sync engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Order: A remote job record, the unit of enumeration and metadata
//   - Attachment: A downloadable unit, the unit of idempotency
//   - Category/Format: Closed attachment classification and transfer format
//
// Classification, filename sanitisation and extension resolution live here
// because they are pure, deterministic functions over domain values.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
