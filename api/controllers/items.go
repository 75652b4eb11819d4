package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/inventory-reorder/api/responses"
	"github.com/angelmondragon/inventory-reorder/api/validators"
	"github.com/angelmondragon/inventory-reorder/internal/items"
	"github.com/angelmondragon/inventory-reorder/internal/reorder"
	pkgerrors "github.com/angelmondragon/inventory-reorder/pkg/errors"
	"github.com/angelmondragon/inventory-reorder/pkg/logger"
)

const maxNameQueryLength = 100

// BulkRecomputer recomputes every item's computed reorder point.
type BulkRecomputer interface {
	RecomputeAll(ctx context.Context) (reorder.RecomputeSummary, error)
}

type createItemRequest struct {
	SKU          string `json:"sku" validate:"required,max=64,sku"`
	Name         string `json:"name" validate:"required,max=200"`
	Stock        int    `json:"stock" validate:"gte=0"`
	LeadTimeDays *int   `json:"leadTimeDays" validate:"omitempty,gt=0"`
	SafetyStock  *int   `json:"safetyStock" validate:"omitempty,gte=0"`
}

type updateItemRequest struct {
	SKU          string `json:"sku" validate:"required,max=64,sku"`
	Name         string `json:"name" validate:"required,max=200"`
	Stock        *int   `json:"stock" validate:"required,gte=0"`
	LeadTimeDays *int   `json:"leadTimeDays" validate:"required,gt=0"`
	SafetyStock  *int   `json:"safetyStock" validate:"required,gte=0"`
}

type thresholdRequest struct {
	ReorderPoint *int `json:"reorderPoint" validate:"omitempty,gte=0"`
	SafetyStock  *int `json:"safetyStock" validate:"omitempty,gte=0"`
}

func ItemList(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := validators.SanitizeString(r.URL.Query().Get("q"), maxNameQueryLength)
		rows, err := svc.List(r.Context(), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func ItemDetail(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ItemCreate stores a new item and returns it with its freshly computed threshold.
func ItemCreate(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Create(r.Context(), items.CreateItemInput{
			SKU:          req.SKU,
			Name:         req.Name,
			Stock:        req.Stock,
			LeadTimeDays: req.LeadTimeDays,
			SafetyStock:  req.SafetyStock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func ItemUpdate(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		err = svc.Update(r.Context(), id, items.UpdateItemInput{
			SKU:          req.SKU,
			Name:         req.Name,
			Stock:        *req.Stock,
			LeadTimeDays: *req.LeadTimeDays,
			SafetyStock:  *req.SafetyStock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ItemSetThreshold sets or clears the manual reorder point without recomputing.
func ItemSetThreshold(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req thresholdRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetReorderThreshold(r.Context(), id, items.ThresholdInput{
			ReorderPoint: req.ReorderPoint,
			SafetyStock:  req.SafetyStock,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ItemRecompute(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		value, err := svc.Recompute(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"reorderPoint": value})
	}
}

// ItemForceReorder asks the coordinator for a replenishment order regardless of stock.
func ItemForceReorder(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.ForceReorder(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"itemId": id.String()})
	}
}

// ItemRecomputeAll runs the bulk recompute. Per-item failures are counted in
// the summary rather than failing the request.
func ItemRecomputeAll(calc BulkRecomputer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if calc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reorder calculator unavailable"))
			return
		}
		summary, err := calc.RecomputeAll(r.Context())
		if err != nil && summary.Total == 0 {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
