// Package identity resolves the acting user of a request.
package identity

import (
	"context"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/role"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/types"
)

// Actor is an authenticated user with a role and area memberships.
type Actor struct {
	ID    string    `json:"id"`
	Role  role.Role `json:"role"`
	Areas []string  `json:"areas,omitempty"`
}

// InArea reports whether the actor belongs to area.
func (a *Actor) InArea(area string) bool {
	if a == nil || area == "" {
		return false
	}
	for _, candidate := range a.Areas {
		if candidate == area {
			return true
		}
	}
	return false
}

// InAnyArea reports whether the actor belongs to any of areas.
func (a *Actor) InAnyArea(areas []string) bool {
	for _, area := range areas {
		if a.InArea(area) {
			return true
		}
	}
	return false
}

// Provider returns the current actor.
type Provider interface {
	Actor(ctx context.Context) (*Actor, error)
}

// ReasonUnauthenticated is reported when no actor is available.
const ReasonUnauthenticated = "No authenticated actor"

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithActor embeds actor in ctx.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, actor)
}

// FromContext extracts the actor or nil.
func FromContext(ctx context.Context) *Actor {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Actor); ok {
		return v
	}
	return nil
}

// ContextProvider reads the actor placed in the context by WithActor.
type ContextProvider struct{}

func (ContextProvider) Actor(ctx context.Context) (*Actor, error) {
	actor := FromContext(ctx)
	if actor == nil || actor.ID == "" {
		return nil, types.NewPermissionDeniedError("identify", ReasonUnauthenticated)
	}
	return actor, nil
}

// Static always returns the same actor; a context actor takes precedence.
type Static struct {
	actor *Actor
}

// NewStatic creates a provider for actor.
func NewStatic(actor *Actor) *Static {
	return &Static{actor: actor}
}

func (s *Static) Actor(ctx context.Context) (*Actor, error) {
	if actor := FromContext(ctx); actor != nil && actor.ID != "" {
		return actor, nil
	}
	if s.actor == nil || s.actor.ID == "" {
		return nil, types.NewPermissionDeniedError("identify", ReasonUnauthenticated)
	}
	return s.actor, nil
}
