// Package way is a lifecycle engine for regulatory compliance obligations.
//
// An obligation moves through an execution flow owned by its assigned area
// (not started, pending, in progress, overdue), regulatory validation, and an
// approval chain that ends with a board signature round. Every change is
// re-validated against one permission table, recorded as an immutable
// transition or opinion, and committed with an optimistic version check.
//
// The root package wires the engine with its stores and collaborators:
//
//	srv, _ := way.New()
//	ctx := identity.WithActor(ctx, &identity.Actor{ID: "ana", Role: role.Administrator})
//	o, _ := srv.Engine().Create(ctx, &engine.CreateCommand{Obligation: obligation})
//
// NewFromConfig builds the same service from a YAML or JSON document (see
// LoadConfig) with file, SQLite or Postgres storage, Redis locks and
// post-commit notifications.
package way
