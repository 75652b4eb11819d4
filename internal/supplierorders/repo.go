package supplierorders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/inventory-reorder/internal/repo"
	"github.com/angelmondragon/inventory-reorder/pkg/db/models"
	"github.com/angelmondragon/inventory-reorder/pkg/enums"
)

// ErrNotPending is returned when a transition targets an order that already left pending.
var ErrNotPending = errors.New("supplier order is not pending")

// PendingAutomaticIndex is the partial unique index allowing one pending automatic order per item.
const PendingAutomaticIndex = "supplier_orders_one_pending_automatic_idx"

// Repository defines persistence operations for the supplier_orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.SupplierOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.SupplierOrder, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.SupplierOrder, error)
	HasPending(ctx context.Context, itemID uuid.UUID) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]models.SupplierOrder, error)
	Resolve(ctx context.Context, id uuid.UUID, status enums.SupplierOrderStatus, supplierRef *string) error
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Rebind(tx)}
}

func (r *repository) Create(ctx context.Context, order *models.SupplierOrder) error {
	return r.DB(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SupplierOrder, error) {
	var order models.SupplierOrder
	if err := r.DB(ctx).Preload("Item").Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate row-locks the order on Postgres; SQLite ignores the locking clause.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.SupplierOrder, error) {
	var order models.SupplierOrder
	err := r.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) HasPending(ctx context.Context, itemID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.SupplierOrder{}).
		Where("item_id = ? AND status = ?", itemID, enums.SupplierOrderStatusPending).
		Count(&count).Error
	return count > 0, err
}

// ListFilter narrows List. Nil fields match everything.
type ListFilter struct {
	Status *enums.SupplierOrderStatus
	Source *enums.OrderSource
}

// List returns orders newest first with their item loaded.
func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.SupplierOrder, error) {
	query := r.DB(ctx).Preload("Item").Order("created_at DESC").Order("id ASC")
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Source != nil {
		query = query.Where("source = ?", *filter.Source)
	}
	var orders []models.SupplierOrder
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Resolve moves a pending order to a terminal status. ErrNotPending when it already moved.
func (r *repository) Resolve(ctx context.Context, id uuid.UUID, status enums.SupplierOrderStatus, supplierRef *string) error {
	res := r.DB(ctx).
		Model(&models.SupplierOrder{}).
		Where("id = ? AND status = ?", id, enums.SupplierOrderStatusPending).
		Updates(map[string]any{"status": status, "supplier_ref": supplierRef})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}
