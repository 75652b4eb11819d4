package middleware

import (
	"context"

	"github.com/angelmondragon/inventory-reorder/pkg/auth"
)

type contextKey string

const ctxWebhookClaims contextKey = "webhook_claims"

// WithWebhookClaims attaches verified supplier token claims to the context.
func WithWebhookClaims(ctx context.Context, claims *auth.WebhookClaims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxWebhookClaims, claims)
}

// WebhookClaimsFromContext returns the claims set by WebhookAuth, or nil when
// webhook auth is disabled.
func WebhookClaimsFromContext(ctx context.Context) *auth.WebhookClaims {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxWebhookClaims).(*auth.WebhookClaims); ok {
		return v
	}
	return nil
}
