package items

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/inventory-reorder/pkg/db/models"
)

// Repository defines persistence operations for the items table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	List(ctx context.Context, nameQuery string) ([]models.Item, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateComputedReorderPoint(ctx context.Context, id uuid.UUID, value int) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error
}
