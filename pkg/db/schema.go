package db

import (
	"context"
	"fmt"

	"github.com/omerfarooq187/pizza-pos-backend/pkg/db/models"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/logger"
)

// schemaModels lists every table the service owns, leaves first.
var schemaModels = []any{
	&models.Category{},
	&models.MenuItem{},
	&models.ItemVariant{},
	&models.Member{},
	&models.Order{},
	&models.OrderItem{},
	&models.RawItem{},
	&models.Recipe{},
	&models.InventoryTransaction{},
}

// EnsureSchema creates any missing tables on the local database file. The
// service carries no cross-version migrations; a fresh file gets the full
// schema at startup.
func (c *Client) EnsureSchema(ctx context.Context, logg *logger.Logger) error {
	if err := c.conn.WithContext(ctx).AutoMigrate(schemaModels...); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	if logg != nil {
		logg.Info(ctx, "database schema ready")
	}
	return nil
}
