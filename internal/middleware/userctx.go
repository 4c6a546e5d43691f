package middleware

import (
	"context"

	"github.com/asauntung/bumdes/internal/models"
)

type principalKey struct{}

func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(models.Principal)
	return p, ok && p.Valid()
}
