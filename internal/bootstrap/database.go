package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/mo-amir99/coursetrack-server-go/internal/features/access"
	"github.com/mo-amir99/coursetrack-server-go/internal/features/lesson"
	"github.com/mo-amir99/coursetrack-server-go/internal/features/product"
	"github.com/mo-amir99/coursetrack-server-go/internal/features/user"
	"github.com/mo-amir99/coursetrack-server-go/internal/features/view"
	"github.com/mo-amir99/coursetrack-server-go/pkg/config"
	"github.com/mo-amir99/coursetrack-server-go/pkg/database/migrations"
)

// Models lists every persisted entity in dependency order.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&lesson.Lesson{},
		&product.Product{},
		&access.Access{},
		&access.LessonProduct{},
		&view.View{},
	}
}

// Migrations returns the schema steps of the service in order.
func Migrations() []migrations.Migration {
	return []migrations.Migration{
		{
			Name: "001_schema",
			Up: func(_ context.Context, db *gorm.DB) error {
				return db.AutoMigrate(Models()...)
			},
		},
		{
			// statistics filter watched views per lesson
			Name: "002_views_lesson_status_index",
			Up: func(_ context.Context, db *gorm.DB) error {
				return db.Exec("CREATE INDEX IF NOT EXISTS idx_views_lesson_status ON views (lesson_id, status)").Error
			},
		},
	}
}

// ApplyDatabaseMigrations runs database migrations when enabled via configuration.
func ApplyDatabaseMigrations(ctx context.Context, db *gorm.DB, cfg *config.Config, logger *slog.Logger) error {
	if !cfg.Database.RunMigrations {
		logger.Info("database migrations skipped", slog.String("env_var", "APP_DB_RUN_MIGRATIONS=false"))
		return nil
	}

	if err := migrations.Run(ctx, db, logger, Migrations()...); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	logger.Info("database migrations applied successfully")
	return nil
}

// DropTables removes every table of the service, dependents first.
func DropTables(ctx context.Context, db *gorm.DB, logger *slog.Logger) (int, error) {
	models := Models()
	migrator := db.WithContext(ctx).Migrator()

	dropped := 0
	for i := len(models) - 1; i >= 0; i-- {
		if !migrator.HasTable(models[i]) {
			continue
		}
		if err := migrator.DropTable(models[i]); err != nil {
			return dropped, fmt.Errorf("drop table: %w", err)
		}
		dropped++
	}

	logger.Info("tables dropped", slog.Int("count", dropped))
	return dropped, nil
}
