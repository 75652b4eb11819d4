package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Item is a stock-keeping unit tracked for replenishment.
type Item struct {
	ID                   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	SKU                  string    `gorm:"column:sku;not null;uniqueIndex:items_sku_key"`
	Name                 string    `gorm:"column:name;not null"`
	Stock                int       `gorm:"column:stock;not null;default:0"`
	LeadTimeDays         int       `gorm:"column:lead_time_days;not null;default:3"`
	SafetyStock          int       `gorm:"column:safety_stock;not null;default:5"`
	ManualReorderPoint   *int      `gorm:"column:manual_reorder_point"`
	ComputedReorderPoint int       `gorm:"column:computed_reorder_point;not null;default:0"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *Item) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// EffectiveReorderPoint is the manual override when set, otherwise the computed value.
func (i Item) EffectiveReorderPoint() int {
	if i.ManualReorderPoint != nil {
		return *i.ManualReorderPoint
	}
	return i.ComputedReorderPoint
}

// IsBelowReorderPoint reports whether a positive threshold is strictly above stock.
func (i Item) IsBelowReorderPoint() bool {
	threshold := i.EffectiveReorderPoint()
	return threshold > 0 && i.Stock < threshold
}
