package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/inventory-reorder/pkg/enums"
)

// SupplierOrder is a replenishment request sent to the supplier.
type SupplierOrder struct {
	ID                    uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	ItemID                uuid.UUID                 `gorm:"column:item_id;type:uuid;not null;index"`
	Quantity              int                       `gorm:"column:quantity;not null"`
	RequestedDeliveryDate *time.Time                `gorm:"column:requested_delivery_date"`
	Status                enums.SupplierOrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Source                enums.OrderSource         `gorm:"column:source;type:text;not null;default:'automatic'"`
	SupplierRef           *string                   `gorm:"column:supplier_ref"`
	Item                  *Item                     `gorm:"foreignKey:ItemID"`
	CreatedAt             time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *SupplierOrder) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
