package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/inventory-reorder/api/responses"
	"github.com/angelmondragon/inventory-reorder/api/validators"
	"github.com/angelmondragon/inventory-reorder/internal/demand"
	"github.com/angelmondragon/inventory-reorder/pkg/logger"
)

// DemandLedger is the demand surface exposed over HTTP.
type DemandLedger interface {
	Record(ctx context.Context, itemID uuid.UUID, day time.Time, quantity int) error
	Trailing(ctx context.Context, itemID uuid.UUID) ([]demand.StatDTO, error)
}

type recordDemandRequest struct {
	Quantity *int    `json:"quantity" validate:"required,gte=0"`
	Day      *string `json:"day"`
}

// DemandHistory lists the item's recorded demand inside the trailing window, oldest first.
func DemandHistory(ledger DemandLedger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		stats, err := ledger.Trailing(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// DemandRecord adds quantity to the item's demand for the given day, today by default.
func DemandRecord(ledger DemandLedger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req recordDemandRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		day, err := validators.ParseDate("day", req.Day)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var at time.Time
		if day != nil {
			at = *day
		}
		if err := ledger.Record(r.Context(), id, at, *req.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
