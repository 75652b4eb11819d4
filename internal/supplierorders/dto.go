package supplierorders

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/inventory-reorder/pkg/db/models"
	"github.com/angelmondragon/inventory-reorder/pkg/enums"
)

// OrderDTO is a supplier order with a summary of its item.
type OrderDTO struct {
	ID                    uuid.UUID                 `json:"id"`
	ItemID                uuid.UUID                 `json:"itemId"`
	ItemSKU               string                    `json:"itemSku,omitempty"`
	ItemName              string                    `json:"itemName,omitempty"`
	Quantity              int                       `json:"quantity"`
	RequestedDeliveryDate *time.Time                `json:"requestedDeliveryDate"`
	Status                enums.SupplierOrderStatus `json:"status"`
	Source                enums.OrderSource         `json:"source"`
	SupplierRef           *string                   `json:"supplierRef"`
	CreatedAt             time.Time                 `json:"createdAt"`
	UpdatedAt             time.Time                 `json:"updatedAt"`
}

// StatusDTO is the short acknowledgement returned by place-order and the webhook.
type StatusDTO struct {
	ID     uuid.UUID                 `json:"id"`
	Status enums.SupplierOrderStatus `json:"status"`
}

func NewOrderDTO(order models.SupplierOrder) OrderDTO {
	dto := OrderDTO{
		ID:                    order.ID,
		ItemID:                order.ItemID,
		Quantity:              order.Quantity,
		RequestedDeliveryDate: order.RequestedDeliveryDate,
		Status:                order.Status,
		Source:                order.Source,
		SupplierRef:           order.SupplierRef,
		CreatedAt:             order.CreatedAt,
		UpdatedAt:             order.UpdatedAt,
	}
	if order.Item != nil {
		dto.ItemSKU = order.Item.SKU
		dto.ItemName = order.Item.Name
	}
	return dto
}
