// Package idgen generates record identifiers. Callers treat ids as opaque
// strings; tests may swap NewFunc for a deterministic sequence.
package idgen
