package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/inventory-reorder/api/responses"
	"github.com/angelmondragon/inventory-reorder/api/validators"
	"github.com/angelmondragon/inventory-reorder/internal/supplierorders"
	"github.com/angelmondragon/inventory-reorder/pkg/logger"
)

type placeOrderRequest struct {
	ItemID       uuid.UUID `json:"itemId" validate:"required"`
	Quantity     int       `json:"quantity" validate:"required,gt=0"`
	DeliveryDate *string   `json:"deliveryDate"`
}

// SupplierOrderList returns supplier orders newest first, optionally filtered
// by ?status= and ?source=.
func SupplierOrderList(svc supplierorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		orders, err := svc.List(r.Context(), supplierorders.ListQuery{
			Status: query.Get("status"),
			Source: query.Get("source"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

// SupplierOrderPlace records a manual order. The supplier confirmation arrives
// later through the webhook, so the response is 202.
func SupplierOrderPlace(svc supplierorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req placeOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		delivery, err := validators.ParseDate("deliveryDate", req.DeliveryDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := svc.Place(r.Context(), supplierorders.PlaceOrderInput{
			ItemID:       req.ItemID,
			Quantity:     req.Quantity,
			DeliveryDate: delivery,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, status)
	}
}
