package items

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/inventory-reorder/internal/repo"
	"github.com/angelmondragon/inventory-reorder/pkg/db/models"
)

type repository struct {
	repo.Base
}

// NewRepository builds an items repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Rebind(tx)}
}

func (r *repository) Create(ctx context.Context, item *models.Item) error {
	return r.DB(ctx).Create(item).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.DB(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns items ordered by name, optionally filtered by a case-insensitive name substring.
func (r *repository) List(ctx context.Context, nameQuery string) ([]models.Item, error) {
	query := r.DB(ctx).Model(&models.Item{})
	if q := strings.TrimSpace(nameQuery); q != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	var rows []models.Item
	if err := query.Order("name ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.DB(ctx).Model(&models.Item{}).Order("name ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Item{}).Count(&count).Error
	return count, err
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.updateOne(ctx, id, updates)
}

// UpdateComputedReorderPoint writes only the computed threshold; the manual override is untouched.
func (r *repository) UpdateComputedReorderPoint(ctx context.Context, id uuid.UUID, value int) error {
	return r.updateOne(ctx, id, map[string]any{"computed_reorder_point": value})
}

func (r *repository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	return r.updateOne(ctx, id, map[string]any{"stock": gorm.Expr("stock + ?", delta)})
}

func (r *repository) updateOne(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	res := r.DB(ctx).Model(&models.Item{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
