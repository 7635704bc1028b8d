package dao

import (
	"context"
)

// Service is the keyed store contract shared by the attachment stores.
// Obligations use the richer obligation.Store, which adds versioned commits.
type Service[K comparable, T any] interface {
	// Save inserts or replaces t.
	Save(ctx context.Context, t *T) error

	// Load returns ErrNotFound when id is unknown.
	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	// List filters by parameters such as the obligation id or document kind.
	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
