package items

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/inventory-reorder/pkg/db/models"
	"github.com/angelmondragon/inventory-reorder/pkg/enums"
)

// ItemDTO is the full item payload returned to clients.
type ItemDTO struct {
	ID                   uuid.UUID         `json:"id"`
	SKU                  string            `json:"sku"`
	Name                 string            `json:"name"`
	Stock                int               `json:"stock"`
	LeadTimeDays         int               `json:"leadTimeDays"`
	SafetyStock          int               `json:"safetyStock"`
	ManualReorderPoint   *int              `json:"manualReorderPoint"`
	ComputedReorderPoint int               `json:"computedReorderPoint"`
	ReorderPoint         int               `json:"reorderPoint"`
	Status               enums.StockStatus `json:"status"`
	CreatedAt            time.Time         `json:"createdAt"`
	UpdatedAt            time.Time         `json:"updatedAt"`
}

// ItemSummaryDTO is the list-view row: stock against the effective threshold.
type ItemSummaryDTO struct {
	ID           uuid.UUID         `json:"id"`
	SKU          string            `json:"sku"`
	Name         string            `json:"name"`
	Stock        int               `json:"stock"`
	ReorderPoint int               `json:"reorderPoint"`
	Status       enums.StockStatus `json:"status"`
}

func NewItemDTO(item *models.Item) *ItemDTO {
	if item == nil {
		return nil
	}
	threshold := item.EffectiveReorderPoint()
	return &ItemDTO{
		ID:                   item.ID,
		SKU:                  item.SKU,
		Name:                 item.Name,
		Stock:                item.Stock,
		LeadTimeDays:         item.LeadTimeDays,
		SafetyStock:          item.SafetyStock,
		ManualReorderPoint:   item.ManualReorderPoint,
		ComputedReorderPoint: item.ComputedReorderPoint,
		ReorderPoint:         threshold,
		Status:               enums.ClassifyStock(item.Stock, threshold),
		CreatedAt:            item.CreatedAt,
		UpdatedAt:            item.UpdatedAt,
	}
}

func NewItemSummaryDTO(item models.Item) ItemSummaryDTO {
	threshold := item.EffectiveReorderPoint()
	return ItemSummaryDTO{
		ID:           item.ID,
		SKU:          item.SKU,
		Name:         item.Name,
		Stock:        item.Stock,
		ReorderPoint: threshold,
		Status:       enums.ClassifyStock(item.Stock, threshold),
	}
}
