package auth

import (
	"context"
)

// ActorRole identifies the kind of authenticated account
type ActorRole string

const (
	RoleAdmin   ActorRole = "admin"
	RolePartner ActorRole = "partner"
)

// ActorContext holds authenticated account information
type ActorContext struct {
	AccountID int
	Email     string
	Role      ActorRole
}

type contextKey string

const actorContextKey contextKey = "actorContext"

// WithActorContext adds actor context to the context
func WithActorContext(ctx context.Context, actor *ActorContext) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// FromContext extracts actor context from the context
func FromContext(ctx context.Context) (*ActorContext, bool) {
	actor, ok := ctx.Value(actorContextKey).(*ActorContext)
	return actor, ok
}

// MustFromContext extracts actor context or panics
func MustFromContext(ctx context.Context) *ActorContext {
	actor, ok := FromContext(ctx)
	if !ok {
		panic("actor context not found in context")
	}
	return actor
}

// IsAdmin checks if the actor is a platform operator
func (a *ActorContext) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsPartner checks if the actor is a contractor account
func (a *ActorContext) IsPartner() bool {
	return a.Role == RolePartner
}

// PartnerID returns the partner account id, or 0 for non-partner actors.
// Repositories use it to scope queries to the caller's own records.
func PartnerID(ctx context.Context) int {
	if actor, ok := FromContext(ctx); ok && actor.IsPartner() {
		return actor.AccountID
	}
	return 0
}
