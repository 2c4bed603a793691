package middlewares

import (
	"context"

	"github.com/dropDatabas3/bookjohn/internal/jwt"
)

type ridKey struct{}
type claimsKey struct{}

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ridKey{}, rid)
}

// GetRequestID extrae el request ID del contexto; "" si no hay.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ridKey{}).(string); ok {
		return v
	}
	return ""
}

func setClaims(ctx context.Context, c *jwt.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// GetClaims extrae los claims del access token; nil si el request no pasó
// por WithAuth.
func GetClaims(ctx context.Context) *jwt.Claims {
	if v, ok := ctx.Value(claimsKey{}).(*jwt.Claims); ok {
		return v
	}
	return nil
}

// GetUserID es un shortcut para el user ID del token; 0 si no hay claims.
func GetUserID(ctx context.Context) int64 {
	if c := GetClaims(ctx); c != nil {
		return c.UserID
	}
	return 0
}
