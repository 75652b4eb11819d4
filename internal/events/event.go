package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/inventory-reorder/pkg/enums"
)

// Kind tags each event variant and keys the bus dispatch table.
type Kind string

const (
	KindStockLow            Kind = "stock_low"
	KindSupplierOrderPlaced Kind = "supplier_order_placed"
)

var validKinds = []Kind{KindStockLow, KindSupplierOrderPlaced}

func (k Kind) String() string {
	return string(k)
}

func (k Kind) IsValid() bool {
	for _, candidate := range validKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// Event is implemented only by the variants declared in this package.
type Event interface {
	Kind() Kind
	sealed()
}

// StockLow reports an item observed below its effective reorder point.
// Stock and ReorderPoint are the values seen at observation time.
type StockLow struct {
	ItemID       uuid.UUID
	Stock        int
	ReorderPoint int
	ObservedAt   time.Time
}

func (StockLow) Kind() Kind { return KindStockLow }
func (StockLow) sealed()    {}

// SupplierOrderPlaced reports a newly created pending supplier order.
type SupplierOrderPlaced struct {
	OrderID  uuid.UUID
	ItemID   uuid.UUID
	Quantity int
	Source   enums.OrderSource
}

func (SupplierOrderPlaced) Kind() Kind { return KindSupplierOrderPlaced }
func (SupplierOrderPlaced) sealed()    {}
