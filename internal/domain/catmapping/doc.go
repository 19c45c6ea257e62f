// Package catmapping defines the canonical category-mapping structure that
// records how a product's internal categories relate to category IDs on an
// external integration target, together with detection and migration of the
// legacy persisted shapes and validation of the canonical invariants.
//
// The package is pure: it operates on already-decoded JSON values and never
// touches storage or logging. Callers own persistence and the decision of
// what to do with a failed validation.
package catmapping
