package webhooks

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/inventory-reorder/api/middleware"
	"github.com/angelmondragon/inventory-reorder/api/responses"
	"github.com/angelmondragon/inventory-reorder/api/validators"
	"github.com/angelmondragon/inventory-reorder/internal/supplierorders"
	pkgerrors "github.com/angelmondragon/inventory-reorder/pkg/errors"
	"github.com/angelmondragon/inventory-reorder/pkg/logger"
)

type orderConfirmationRequest struct {
	OrderID     uuid.UUID `json:"orderId" validate:"required"`
	Status      string    `json:"status" validate:"required,max=32"`
	SupplierRef *string   `json:"supplierRef" validate:"omitempty,max=64"`
}

// OrderConfirmation applies the supplier's callback to a pending order.
// When webhook auth is on, the token must be scoped to the posted order.
func OrderConfirmation(svc supplierorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req orderConfirmationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if claims := middleware.WebhookClaimsFromContext(r.Context()); claims != nil && claims.OrderID != req.OrderID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "token does not match order"))
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithOrderID(ctx, req.OrderID.String())
		}
		result, err := svc.Confirm(ctx, supplierorders.ConfirmationInput{
			OrderID:     req.OrderID,
			Status:      req.Status,
			SupplierRef: req.SupplierRef,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
