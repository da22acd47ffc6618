package auth

import "context"

type ctxKey string

const principalKey ctxKey = "principal"

// Principal is the identity asserted by a verified credential.
type Principal struct {
	Subject  string
	Username string
	Roles    Roles
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
