package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/inventory-reorder/pkg/config"
	"github.com/angelmondragon/inventory-reorder/pkg/db"
	"github.com/angelmondragon/inventory-reorder/pkg/db/models"
	"github.com/angelmondragon/inventory-reorder/pkg/logger"
)

// MaybeRunDev migrates the schema automatically in dev when the feature flag is on.
// SQLite databases are brought up from the gorm models; Postgres runs the goose files.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": client.Dialect()})

	if cfg.DB.IsSQLite() {
		logg.Info(ctx, "auto-migrating sqlite schema from models")
		if err := AutoMigrate(client.DB().WithContext(ctx)); err != nil {
			return fmt.Errorf("auto-migrating sqlite: %w", err)
		}
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	runner, err := NewRunner(sqlDB, DialectFor(client.Dialect()), Migrations(), logg)
	if err != nil {
		return err
	}
	logg.Info(ctx, "applying embedded migrations")
	return runner.Up(ctx)
}

// pendingAutomaticIndexSQL mirrors the partial unique index from the goose files.
const pendingAutomaticIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS supplier_orders_one_pending_automatic_idx
	ON supplier_orders (item_id) WHERE status = 'pending' AND source = 'automatic'`

// AutoMigrate creates the inventory tables from the gorm models. Used for SQLite.
func AutoMigrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&models.Item{}, &models.DemandStat{}, &models.SupplierOrder{}); err != nil {
		return err
	}
	return conn.Exec(pendingAutomaticIndexSQL).Error
}
