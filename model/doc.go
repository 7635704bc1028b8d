// Package model contains the obligation aggregate and its append-only audit
// trail (transition and opinion records).
//
// Status, role and attachment catalogs live in the `status`, `role` and
// `attachment` sub-packages; error kinds shared by every layer live in `types`.
package model
