package migrations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// Migration is one named schema step. Up must be safe to run again on an up-to-date schema.
type Migration struct {
	Name string
	Up   func(ctx context.Context, db *gorm.DB) error
}

// Run executes migrations sequentially and stops at the first failure.
func Run(ctx context.Context, db *gorm.DB, log *slog.Logger, migrations ...Migration) error {
	if len(migrations) == 0 {
		if log != nil {
			log.Info("no database migrations registered")
		}
		return nil
	}

	for _, migration := range migrations {
		if err := ctx.Err(); err != nil {
			return err
		}

		if log != nil {
			log.Info("running migration", slog.String("name", migration.Name))
		}

		started := time.Now()
		if err := migration.Up(ctx, db.WithContext(ctx)); err != nil {
			return fmt.Errorf("migration %s failed: %w", migration.Name, err)
		}

		if log != nil {
			log.Info("migration completed",
				slog.String("name", migration.Name),
				slog.Duration("elapsed", time.Since(started)),
			)
		}
	}

	return nil
}
