package demand

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/inventory-reorder/internal/repo"
	"github.com/angelmondragon/inventory-reorder/pkg/db/models"
)

// Window aggregates the demand rows recorded for an item since a cutoff day.
type Window struct {
	Total int64
	Days  int64
}

// Repository defines persistence operations for the demand_stats table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Increment(ctx context.Context, itemID uuid.UUID, day time.Time, quantity int) error
	Find(ctx context.Context, itemID uuid.UUID, day time.Time) (*models.DemandStat, error)
	ListSince(ctx context.Context, itemID uuid.UUID, since time.Time) ([]models.DemandStat, error)
	WindowSince(ctx context.Context, itemID uuid.UUID, since time.Time) (Window, error)
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

// Increment adds quantity to the (item, day) row, creating it when missing.
func (r *repository) Increment(ctx context.Context, itemID uuid.UUID, day time.Time, quantity int) error {
	row := models.DemandStat{
		ItemID:   itemID,
		Day:      models.DayOf(day),
		Quantity: quantity,
	}
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "item_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("demand_stats.quantity + excluded.quantity"),
			"updated_at": time.Now().UTC(),
		}),
	}).Create(&row).Error
}

func (r *repository) Find(ctx context.Context, itemID uuid.UUID, day time.Time) (*models.DemandStat, error) {
	var row models.DemandStat
	err := r.DB(ctx).
		Where("item_id = ? AND day = ?", itemID, models.DayOf(day)).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListSince(ctx context.Context, itemID uuid.UUID, since time.Time) ([]models.DemandStat, error) {
	var rows []models.DemandStat
	err := r.DB(ctx).
		Where("item_id = ? AND day >= ?", itemID, models.DayOf(since)).
		Order("day ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) WindowSince(ctx context.Context, itemID uuid.UUID, since time.Time) (Window, error) {
	var w Window
	err := r.DB(ctx).
		Model(&models.DemandStat{}).
		Select("COALESCE(SUM(quantity), 0) AS total, COUNT(*) AS days").
		Where("item_id = ? AND day >= ?", itemID, models.DayOf(since)).
		Scan(&w).Error
	return w, err
}
