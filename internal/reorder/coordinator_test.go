package reorder

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/inventory-reorder/internal/events"
	"github.com/angelmondragon/inventory-reorder/internal/items"
	"github.com/angelmondragon/inventory-reorder/internal/repo/repotest"
	"github.com/angelmondragon/inventory-reorder/internal/supplierorders"
	"github.com/angelmondragon/inventory-reorder/pkg/db"
	"github.com/angelmondragon/inventory-reorder/pkg/db/models"
	"github.com/angelmondragon/inventory-reorder/pkg/enums"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func newCoordinator(t *testing.T, conn *gorm.DB, pub eventPublisher) *Coordinator {
	t.Helper()
	coord, err := NewCoordinator(CoordinatorParams{
		DB:        db.Wrap(conn),
		Items:     items.NewRepository(conn),
		Orders:    supplierorders.NewRepository(conn),
		Publisher: pub,
		Logger:    testLogger(),
	})
	require.NoError(t, err)
	return coord
}

func listOrders(t *testing.T, conn *gorm.DB, itemID uuid.UUID) []models.SupplierOrder {
	t.Helper()
	var orders []models.SupplierOrder
	require.NoError(t, conn.Where("item_id = ?", itemID).Find(&orders).Error)
	return orders
}

func TestOrderQuantity(t *testing.T) {
	assert.Equal(t, 10, OrderQuantity(10, 2, 10))
	assert.Equal(t, 25, OrderQuantity(30, 5, 10))
	assert.Equal(t, 10, OrderQuantity(0, 0, 10))
	assert.Equal(t, 10, OrderQuantity(3, 8, 10))
}

func TestHandleStockLowCreatesPendingOrder(t *testing.T) {
	conn := repotest.NewDB(t)
	pub := &recordingPublisher{}
	coord := newCoordinator(t, conn, pub)
	item := createItem(t, conn, models.Item{Stock: 2, LeadTimeDays: 3, SafetyStock: 5})

	err := coord.HandleStockLow(context.Background(), events.StockLow{ItemID: item.ID, Stock: 2, ReorderPoint: 10})
	require.NoError(t, err)

	orders := listOrders(t, conn, item.ID)
	require.Len(t, orders, 1)
	assert.Equal(t, 10, orders[0].Quantity)
	assert.Equal(t, enums.SupplierOrderStatusPending, orders[0].Status)
	assert.Equal(t, enums.OrderSourceAutomatic, orders[0].Source)

	require.Len(t, pub.events, 1)
	placed, ok := pub.events[0].(events.SupplierOrderPlaced)
	require.True(t, ok)
	assert.Equal(t, orders[0].ID, placed.OrderID)
	assert.Equal(t, 10, placed.Quantity)
}

func TestHandleStockLowSkipsWhenPending(t *testing.T) {
	conn := repotest.NewDB(t)
	pub := &recordingPublisher{}
	coord := newCoordinator(t, conn, pub)
	item := createItem(t, conn, models.Item{Stock: 2, LeadTimeDays: 3, SafetyStock: 5})
	ctx := context.Background()

	require.NoError(t, coord.HandleStockLow(ctx, events.StockLow{ItemID: item.ID, Stock: 2, ReorderPoint: 10}))
	require.NoError(t, coord.HandleStockLow(ctx, events.StockLow{ItemID: item.ID, Stock: 1, ReorderPoint: 40}))

	orders := listOrders(t, conn, item.ID)
	require.Len(t, orders, 1)
	assert.Equal(t, 10, orders[0].Quantity)
	assert.Len(t, pub.events, 1)
}

func TestHandleStockLowSkipsWhenManualOrderPending(t *testing.T) {
	conn := repotest.NewDB(t)
	coord := newCoordinator(t, conn, &recordingPublisher{})
	item := createItem(t, conn, models.Item{Stock: 2, LeadTimeDays: 3, SafetyStock: 5})
	require.NoError(t, conn.Create(&models.SupplierOrder{
		ItemID:   item.ID,
		Quantity: 3,
		Status:   enums.SupplierOrderStatusPending,
		Source:   enums.OrderSourceManual,
	}).Error)

	require.NoError(t, coord.HandleStockLow(context.Background(), events.StockLow{ItemID: item.ID, Stock: 2, ReorderPoint: 10}))
	assert.Len(t, listOrders(t, conn, item.ID), 1)
}

func TestHandleStockLowReordersAfterResolution(t *testing.T) {
	conn := repotest.NewDB(t)
	coord := newCoordinator(t, conn, &recordingPublisher{})
	item := createItem(t, conn, models.Item{Stock: 2, LeadTimeDays: 3, SafetyStock: 5})
	ctx := context.Background()

	require.NoError(t, coord.HandleStockLow(ctx, events.StockLow{ItemID: item.ID, Stock: 2, ReorderPoint: 10}))
	require.NoError(t, conn.Model(&models.SupplierOrder{}).
		Where("item_id = ?", item.ID).
		Update("status", enums.SupplierOrderStatusFailed).Error)

	require.NoError(t, coord.HandleStockLow(ctx, events.StockLow{ItemID: item.ID, Stock: 2, ReorderPoint: 10}))
	assert.Len(t, listOrders(t, conn, item.ID), 2)
}

func TestHandleStockLowIgnoresMissingItem(t *testing.T) {
	conn := repotest.NewDB(t)
	pub := &recordingPublisher{}
	coord := newCoordinator(t, conn, pub)

	require.NoError(t, coord.HandleStockLow(context.Background(), events.StockLow{ItemID: uuid.New(), Stock: 0, ReorderPoint: 5}))

	var count int64
	require.NoError(t, conn.Model(&models.SupplierOrder{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, pub.events)
}

func TestHandleStockLowCompletesAfterCancel(t *testing.T) {
	conn := repotest.NewDB(t)
	pub := &recordingPublisher{}
	coord := newCoordinator(t, conn, pub)
	item := createItem(t, conn, models.Item{Stock: 2, LeadTimeDays: 3, SafetyStock: 5})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, coord.HandleStockLow(ctx, events.StockLow{ItemID: item.ID, Stock: 2, ReorderPoint: 10}))

	orders := listOrders(t, conn, item.ID)
	require.Len(t, orders, 1)
	assert.Equal(t, 10, orders[0].Quantity)
	assert.Len(t, pub.events, 1)
}

func TestConcurrentStockLowCreatesSingleOrder(t *testing.T) {
	conn := repotest.NewDB(t)
	coord := newCoordinator(t, conn, &recordingPublisher{})
	item := createItem(t, conn, models.Item{Stock: 0, LeadTimeDays: 3, SafetyStock: 5})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, coord.HandleStockLow(context.Background(), events.StockLow{ItemID: item.ID, Stock: 0, ReorderPoint: 5}))
		}()
	}
	wg.Wait()

	assert.Len(t, listOrders(t, conn, item.ID), 1)
}

func TestRegisterSubscribesToBus(t *testing.T) {
	conn := repotest.NewDB(t)
	bus, err := events.NewBus(events.BusParams{Logger: testLogger()})
	require.NoError(t, err)
	coord := newCoordinator(t, conn, bus)
	item := createItem(t, conn, models.Item{Stock: 1, LeadTimeDays: 3, SafetyStock: 5})

	sub, err := coord.Register(bus)
	require.NoError(t, err)
	assert.Equal(t, 1, bus.HandlerCount(events.KindStockLow))

	require.NoError(t, bus.Publish(context.Background(), events.StockLow{ItemID: item.ID, Stock: 1, ReorderPoint: 6}))
	assert.Len(t, listOrders(t, conn, item.ID), 1)

	sub.Unsubscribe()
	assert.Zero(t, bus.HandlerCount(events.KindStockLow))
}
