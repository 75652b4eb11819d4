// Package seed loads a sample catalog into an empty database for local development.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/inventory-reorder/internal/items"
	"github.com/angelmondragon/inventory-reorder/pkg/db/models"
	"github.com/angelmondragon/inventory-reorder/pkg/logger"
)

const (
	historyDays     = 15
	maxDailyDemand  = 9
	insertBatchSize = 100
)

type sampleItem struct {
	sku      string
	name     string
	stock    int
	computed int
	manual   *int
}

func intPtr(v int) *int { return &v }

var catalog = []sampleItem{
	{sku: "IPH15", name: "Apple iPhone 15", stock: 50, computed: 20},
	{sku: "SAM23", name: "Samsung Galaxy S23", stock: 10, computed: 15, manual: intPtr(25)},
	{sku: "PIX9", name: "Google Pixel 9", stock: 30, computed: 12},
	{sku: "DX13", name: "Dell XPS 13", stock: 8, computed: 10},
	{sku: "MBA3", name: "MacBook Air M3", stock: 20, computed: 10},
	{sku: "IPDPR", name: "iPad Pro", stock: 15, computed: 8},
	{sku: "SONYXM5", name: "Sony WH-1000XM5", stock: 40, computed: 10},
	{sku: "LOGIMX3", name: "Logitech MX Master 3", stock: 60, computed: 20},
	{sku: "ECHO5", name: "Amazon Echo Dot 5th Gen", stock: 12, computed: 10},
	{sku: "ASUSROG", name: "Asus ROG Laptop", stock: 6, computed: 8},
	{sku: "HPX360", name: "HP Envy x360", stock: 18, computed: 10},
	{sku: "AWU1", name: "Apple Watch Ultra", stock: 14, computed: 6},
	{sku: "FIT6", name: "Fitbit Charge 6", stock: 22, computed: 10},
	{sku: "CANR8", name: "Canon EOS R8", stock: 7, computed: 5},
	{sku: "GPH12", name: "GoPro Hero 12", stock: 9, computed: 6},
}

// Params wires Run. Now and Rand default to the wall clock and math/rand.
type Params struct {
	DB     *gorm.DB
	Logger *logger.Logger
	Now    func() time.Time
	Rand   func(n int) int
}

// Result reports what Run inserted. Both counts are zero when the catalog already had items.
type Result struct {
	Items       int
	DemandStats int
}

// Run inserts the sample catalog and the last fifteen days of demand for each
// item, but only when the items table is empty.
func Run(ctx context.Context, params Params) (Result, error) {
	if params.DB == nil {
		return Result{}, fmt.Errorf("db required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	rnd := params.Rand
	if rnd == nil {
		rnd = rand.IntN
	}

	var result Result
	err := params.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := items.NewRepository(tx).Count(ctx)
		if err != nil {
			return fmt.Errorf("count items: %w", err)
		}
		if count > 0 {
			return nil
		}

		rows := make([]models.Item, 0, len(catalog))
		for _, sample := range catalog {
			rows = append(rows, models.Item{
				SKU:                  sample.sku,
				Name:                 sample.name,
				Stock:                sample.stock,
				LeadTimeDays:         3,
				SafetyStock:          5,
				ManualReorderPoint:   sample.manual,
				ComputedReorderPoint: sample.computed,
			})
		}
		if err := tx.CreateInBatches(&rows, insertBatchSize).Error; err != nil {
			return fmt.Errorf("insert items: %w", err)
		}

		today := models.DayOf(now())
		stats := make([]models.DemandStat, 0, len(rows)*historyDays)
		for _, item := range rows {
			for i := 0; i < historyDays; i++ {
				stats = append(stats, models.DemandStat{
					ItemID:   item.ID,
					Day:      today.AddDate(0, 0, -i),
					Quantity: 1 + rnd(maxDailyDemand),
				})
			}
		}
		if err := tx.CreateInBatches(&stats, insertBatchSize).Error; err != nil {
			return fmt.Errorf("insert demand stats: %w", err)
		}

		result = Result{Items: len(rows), DemandStats: len(stats)}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if params.Logger != nil {
		if result.Items == 0 {
			params.Logger.Info(ctx, "seed skipped: items already present")
		} else {
			params.Logger.Info(params.Logger.WithFields(ctx, map[string]any{
				"items":        result.Items,
				"demand_stats": result.DemandStats,
			}), "sample data seeded")
		}
	}
	return result, nil
}
