package migration

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrated marks that the schema is in place. Components that touch tables
// at construction depend on it.
type Migrated struct{}

var Module = fx.Module("migrations",
	fx.Provide(func(conn *gorm.DB, log *zap.Logger) (Migrated, error) {
		if err := Run(conn); err != nil {
			return Migrated{}, err
		}
		log.Info("schema ready", zap.String("dialect", conn.Dialector.Name()))
		return Migrated{}, nil
	}),
)
