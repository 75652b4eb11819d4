package models

import (
	"time"

	"github.com/google/uuid"
)

// DemandStat is the accumulated demand of one item on one UTC calendar day.
type DemandStat struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ItemID    uuid.UUID `gorm:"column:item_id;type:uuid;not null;uniqueIndex:demand_stats_item_day_key,priority:1"`
	Day       time.Time `gorm:"column:day;type:date;not null;uniqueIndex:demand_stats_item_day_key,priority:2"`
	Quantity  int       `gorm:"column:quantity;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// DayOf truncates t to the start of its UTC calendar day.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
