package catalog

import "context"

type contextKey string

const actorKey contextKey = "actor"

// DefaultActor is recorded on audit entries when the request carries no
// acting identity.
const DefaultActor = "system"

// WithActor returns a context carrying the acting identity for audit
// entries. Blank actors are ignored.
func WithActor(ctx context.Context, actor string) context.Context {
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the acting identity, or DefaultActor when the
// context carries none.
func ActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey).(string); ok && actor != "" {
		return actor
	}
	return DefaultActor
}
