package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"section3/internal/bootstrap/config"
	"section3/internal/bootstrap/database"
	"section3/internal/bootstrap/logging"
	"section3/internal/errs"
	"section3/internal/infrastructure/persistence/sqlite/model"
)

type App struct {
	Config config.Config
	DB     *gorm.DB
}

func New(ctx context.Context, configFile string) (*App, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithComponent(ctx, "bootstrap.app")
	logging.Info(logCtx, "loading application config", slog.String("config_file", configFile))

	cfg, err := config.Load(logCtx, configFile)
	if err != nil {
		return nil, errs.Wrap(err, "load config")
	}

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, errs.Wrap(err, "open database")
	}

	logging.Info(logCtx, "application bootstrap completed", slog.String("database_driver", cfg.Database.Driver))

	return &App{
		Config: cfg,
		DB:     db,
	}, nil
}

func (a *App) InitSchema(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	logCtx := logging.WithComponent(ctx, "bootstrap.app")
	logging.Info(logCtx, "start schema migration")

	models := model.All()
	if err := a.DB.WithContext(ctx).AutoMigrate(models...); err != nil {
		return errs.Store(err, "auto migrate schema")
	}

	if err := a.stampSchema(ctx); err != nil {
		return err
	}

	logging.Info(
		logCtx,
		"schema migration completed",
		slog.Int("tables", len(models)),
		slog.String("schema_version", model.SchemaVersion),
	)
	return nil
}

func (a *App) stampSchema(ctx context.Context) error {
	entries := []model.SchemaMeta{
		{Key: "schema_version", Value: model.SchemaVersion},
		{Key: "app_name", Value: a.Config.App.Name},
	}
	if err := a.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entries).Error; err != nil {
		return errs.Store(err, "stamp schema version")
	}
	return nil
}

// SchemaVersion reads the stamp written by InitSchema; empty means the schema was never initialized.
func (a *App) SchemaVersion(ctx context.Context) (string, error) {
	var entry model.SchemaMeta
	err := a.DB.WithContext(ctx).Where("key = ?", "schema_version").Limit(1).Find(&entry).Error
	if err != nil {
		return "", errs.Store(err, "read schema version")
	}
	return entry.Value, nil
}

func (a *App) Close(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	sqlDB, err := a.DB.DB()
	if err != nil {
		return errs.Wrap(err, "get sql db")
	}

	if err := sqlDB.Close(); err != nil {
		return errs.Wrap(err, "close sql db")
	}

	logging.Info(logging.WithComponent(ctx, "bootstrap.app"), "database connection closed")
	return nil
}
