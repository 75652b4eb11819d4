package reorder

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/angelmondragon/inventory-reorder/internal/events"
	"github.com/angelmondragon/inventory-reorder/internal/items"
	"github.com/angelmondragon/inventory-reorder/internal/supplierorders"
	"github.com/angelmondragon/inventory-reorder/pkg/db"
	"github.com/angelmondragon/inventory-reorder/pkg/db/models"
	"github.com/angelmondragon/inventory-reorder/pkg/enums"
	"github.com/angelmondragon/inventory-reorder/pkg/logger"
	"github.com/angelmondragon/inventory-reorder/pkg/metrics"
)

// DefaultMinOrderQuantity is the smallest automatic replenishment order.
const DefaultMinOrderQuantity = 10

const coordinatorHandlerName = "reorder-coordinator"

var errAlreadyPending = errors.New("pending supplier order exists")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// CoordinatorParams wires the reorder coordinator.
type CoordinatorParams struct {
	DB          txRunner
	Items       items.Repository
	Orders      supplierorders.Repository
	Publisher   eventPublisher
	Logger      *logger.Logger
	Metrics     *metrics.ReorderMetrics
	MinQuantity int
}

// Coordinator turns StockLow events into pending supplier orders, at most
// one pending order per item.
type Coordinator struct {
	db          txRunner
	items       items.Repository
	orders      supplierorders.Repository
	publisher   eventPublisher
	logg        *logger.Logger
	metrics     *metrics.ReorderMetrics
	minQuantity int
	locks       *keyLock
}

func NewCoordinator(params CoordinatorParams) (*Coordinator, error) {
	if params.DB == nil {
		return nil, errors.New("db client required")
	}
	if params.Items == nil {
		return nil, errors.New("item repository required")
	}
	if params.Orders == nil {
		return nil, errors.New("supplier order repository required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	minQty := params.MinQuantity
	if minQty <= 0 {
		minQty = DefaultMinOrderQuantity
	}
	return &Coordinator{
		db:          params.DB,
		items:       params.Items,
		orders:      params.Orders,
		publisher:   params.Publisher,
		logg:        params.Logger,
		metrics:     params.Metrics,
		minQuantity: minQty,
		locks:       newKeyLock(),
	}, nil
}

// OrderQuantity is the shortfall below the threshold, floored at minQuantity.
func OrderQuantity(reorderPoint, stock, minQuantity int) int {
	return max(reorderPoint-stock, 0, minQuantity)
}

// Register subscribes the coordinator to StockLow events on bus.
func (c *Coordinator) Register(bus *events.Bus) (*events.Subscription, error) {
	return events.SubscribeStockLow(bus, coordinatorHandlerName, c.HandleStockLow)
}

// HandleStockLow creates a pending automatic order for the item unless the
// item is gone or already has a pending order. The check and insert run in
// one transaction under a per-item lock. Cancelling ctx does not abort an
// order creation that has already started.
func (c *Coordinator) HandleStockLow(ctx context.Context, event events.StockLow) error {
	ctx = c.logg.WithFields(context.WithoutCancel(ctx), map[string]any{
		"item_id":       event.ItemID.String(),
		"stock":         event.Stock,
		"reorder_point": event.ReorderPoint,
	})

	unlock := c.locks.Lock(event.ItemID)
	defer unlock()

	var created *models.SupplierOrder
	var skipReason string
	err := c.db.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := c.items.WithTx(tx).FindByID(ctx, event.ItemID); err != nil {
			if db.IsNotFound(err) {
				skipReason = "item_missing"
				return nil
			}
			return err
		}

		orders := c.orders.WithTx(tx)
		pending, err := orders.HasPending(ctx, event.ItemID)
		if err != nil {
			return err
		}
		if pending {
			skipReason = "pending_order"
			return nil
		}

		order := &models.SupplierOrder{
			ItemID:   event.ItemID,
			Quantity: OrderQuantity(event.ReorderPoint, event.Stock, c.minQuantity),
			Status:   enums.SupplierOrderStatusPending,
			Source:   enums.OrderSourceAutomatic,
		}
		if err := orders.Create(ctx, order); err != nil {
			if db.IsUniqueViolation(err, supplierorders.PendingAutomaticIndex) {
				return errAlreadyPending
			}
			return err
		}
		created = order
		return nil
	})
	if errors.Is(err, errAlreadyPending) {
		skipReason, err = "pending_order", nil
	}
	if err != nil {
		c.logg.Error(ctx, "reorder coordination failed", err)
		return err
	}

	if created == nil {
		c.metrics.IncSkipped(skipReason)
		c.logg.Debug(c.logg.WithField(ctx, "reason", skipReason), "reorder skipped")
		return nil
	}

	c.metrics.IncOrderCreated(string(enums.OrderSourceAutomatic))
	ctx = c.logg.WithFields(ctx, map[string]any{"order_id": created.ID.String(), "quantity": created.Quantity})
	c.logg.Info(ctx, "automatic supplier order created")

	if c.publisher != nil {
		placed := events.SupplierOrderPlaced{
			OrderID:  created.ID,
			ItemID:   created.ItemID,
			Quantity: created.Quantity,
			Source:   created.Source,
		}
		if err := c.publisher.Publish(ctx, placed); err != nil {
			c.logg.Warn(ctx, "supplier order placed but subscribers failed: "+err.Error())
		}
	}
	return nil
}
