package reorder

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/inventory-reorder/internal/demand"
	"github.com/angelmondragon/inventory-reorder/internal/items"
	"github.com/angelmondragon/inventory-reorder/pkg/db"
	pkgerrors "github.com/angelmondragon/inventory-reorder/pkg/errors"
	"github.com/angelmondragon/inventory-reorder/pkg/logger"
	"github.com/angelmondragon/inventory-reorder/pkg/metrics"
)

type demandWindow interface {
	Window(ctx context.Context, itemID uuid.UUID) (demand.Window, error)
}

// CalculatorParams wires the reorder point calculator.
type CalculatorParams struct {
	Items   items.Repository
	Demand  demandWindow
	Logger  *logger.Logger
	Metrics *metrics.ReorderMetrics
}

// Calculator derives computed reorder points from the trailing demand window.
type Calculator struct {
	items   items.Repository
	demand  demandWindow
	logg    *logger.Logger
	metrics *metrics.ReorderMetrics
}

func NewCalculator(params CalculatorParams) (*Calculator, error) {
	if params.Items == nil {
		return nil, errors.New("item repository required")
	}
	if params.Demand == nil {
		return nil, errors.New("demand window required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	return &Calculator{
		items:   params.Items,
		demand:  params.Demand,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// ReorderPoint returns ceil(total / days * leadTimeDays) + safetyStock, where
// total/days is the mean demand over recorded days. No recorded days yields safetyStock.
func ReorderPoint(window demand.Window, leadTimeDays, safetyStock int) int {
	if window.Days <= 0 {
		return safetyStock
	}
	leadDemand := decimal.NewFromInt(window.Total).
		Mul(decimal.NewFromInt(int64(leadTimeDays))).
		Div(decimal.NewFromInt(window.Days)).
		Ceil()
	return int(leadDemand.IntPart()) + safetyStock
}

// ComputeReorderPoint recomputes and persists the item's computed threshold.
// The manual override is never modified.
func (c *Calculator) ComputeReorderPoint(ctx context.Context, itemID uuid.UUID) (int, error) {
	value, err := c.compute(ctx, itemID)
	c.metrics.IncRecompute(err == nil)
	return value, err
}

func (c *Calculator) compute(ctx context.Context, itemID uuid.UUID) (int, error) {
	item, err := c.items.FindByID(ctx, itemID)
	if err != nil {
		if db.IsNotFound(err) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load item")
	}

	window, err := c.demand.Window(ctx, itemID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load demand window")
	}

	value := ReorderPoint(window, item.LeadTimeDays, item.SafetyStock)
	if err := c.items.UpdateComputedReorderPoint(ctx, itemID, value); err != nil {
		if db.IsNotFound(err) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save reorder point")
	}

	c.logg.Debug(c.logg.WithFields(ctx, map[string]any{
		"item_id":       itemID.String(),
		"reorder_point": value,
		"demand_total":  window.Total,
		"demand_days":   window.Days,
	}), "reorder point computed")
	return value, nil
}

// RecomputeSummary reports a bulk recompute.
type RecomputeSummary struct {
	Total   int `json:"total"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// RecomputeAll recomputes every item in turn. A failing item is logged and
// counted; the rest still run. The returned error combines the failures.
// Cancellation is checked between items; the item in progress completes.
func (c *Calculator) RecomputeAll(ctx context.Context) (RecomputeSummary, error) {
	ids, err := c.items.ListIDs(ctx)
	if err != nil {
		return RecomputeSummary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list items")
	}

	summary := RecomputeSummary{Total: len(ids)}
	var errs error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, multierr.Append(errs, err)
		}
		if _, err := c.ComputeReorderPoint(context.WithoutCancel(ctx), id); err != nil {
			summary.Failed++
			errs = multierr.Append(errs, fmt.Errorf("item %s: %w", id, err))
			c.logg.Error(c.logg.WithItemID(ctx, id.String()), "reorder point recompute failed", err)
			continue
		}
		summary.Updated++
	}

	c.logg.Info(c.logg.WithFields(ctx, map[string]any{
		"total":   summary.Total,
		"updated": summary.Updated,
		"failed":  summary.Failed,
	}), "reorder points recomputed")
	return summary, errs
}

// Name and Run let the bulk recompute be scheduled as a cron job.
func (c *Calculator) Name() string { return "reorder-recompute" }

func (c *Calculator) Run(ctx context.Context) error {
	_, err := c.RecomputeAll(ctx)
	return err
}
