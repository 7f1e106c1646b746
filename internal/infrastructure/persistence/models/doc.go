// Package models holds the GORM rows behind the purchase order repository.
//
// Every vendor writes to the same po_headers and po_lines tables. Vendor
// columns with no common counterpart go into the JSON attributes column.
// The versioned SQL under infrastructure/migration must stay in step with
// these struct tags.
package models
