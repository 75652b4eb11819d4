package middleware

import (
	"net/http"

	"github.com/angelmondragon/inventory-reorder/api/responses"
	"github.com/angelmondragon/inventory-reorder/pkg/auth"
	pkgerrors "github.com/angelmondragon/inventory-reorder/pkg/errors"
	"github.com/angelmondragon/inventory-reorder/pkg/logger"
)

// WebhookAuth verifies the supplier's bearer token. A nil signer leaves the
// endpoint open.
func WebhookAuth(signer *auth.WebhookSigner, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if signer == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing bearer token"))
				return
			}
			claims, err := signer.Parse(token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid webhook token"))
				return
			}

			ctx := WithWebhookClaims(r.Context(), claims)
			if logg != nil {
				ctx = logg.WithField(ctx, "token_order_id", claims.OrderID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
