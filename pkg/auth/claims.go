package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// WebhookClaims are carried by the bearer token on supplier callbacks.
// The token is scoped to a single order.
type WebhookClaims struct {
	OrderID uuid.UUID `json:"order_id"`
	jwt.RegisteredClaims
}
