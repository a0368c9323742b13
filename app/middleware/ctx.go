package middleware

import (
	"context"

	"medstock/app/models"
)

type ctxKey int

const principalKey ctxKey = 1

// Principal is the authenticated caller attached to the request context
// by RequireAuth.
type Principal struct {
	UserID       uint
	Email        string
	Role         models.Role
	SessionToken string
}

func GetPrincipal(ctx context.Context) *Principal {
	if v := ctx.Value(principalKey); v != nil {
		if p, ok := v.(*Principal); ok {
			return p
		}
	}
	return nil
}

func withPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}
