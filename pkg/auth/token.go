package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultWebhookTokenTTL = 5 * time.Minute

var jwtSigningMethod = jwt.SigningMethodHS256

// WebhookSigner mints and verifies HS256 tokens for supplier callbacks.
type WebhookSigner struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewWebhookSigner returns nil when secret is empty, which disables webhook auth.
func NewWebhookSigner(secret, issuer string, ttl time.Duration) *WebhookSigner {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultWebhookTokenTTL
	}
	return &WebhookSigner{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// Mint issues a token bound to orderID.
func (s *WebhookSigner) Mint(now time.Time, orderID uuid.UUID) (string, error) {
	if s == nil {
		return "", fmt.Errorf("webhook signer not configured")
	}
	claims := WebhookClaims{
		OrderID: orderID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   orderID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// Parse validates signature, issuer, and expiry and returns the claims.
func (s *WebhookSigner) Parse(tokenString string) (*WebhookClaims, error) {
	if s == nil {
		return nil, fmt.Errorf("webhook signer not configured")
	}
	claims := &WebhookClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (any, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
