package bootstrap

import (
	"context"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"section3/internal/bootstrap/config"
	"section3/internal/bootstrap/database"
	"section3/internal/bootstrap/logging"
	domain "section3/internal/domain/compliance"
	cacheinfra "section3/internal/infrastructure/cache"
	"section3/internal/infrastructure/messaging/natsbus"
	"section3/internal/infrastructure/metrics"
	sqliterepo "section3/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "section3/internal/infrastructure/persistence/sqlite/uow"
	"section3/internal/ports"
	"section3/internal/usecase/compliance"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(provideRules),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewComplianceRepository,
			fx.As(new(ports.ComplianceRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(
		fx.Annotate(
			providePublisher,
			fx.As(new(ports.NotificationPublisher)),
		),
	),
	fx.Provide(
		fx.Annotate(
			metrics.New,
			fx.As(fx.Self()),
			fx.As(new(ports.JobMetrics)),
		),
	),
	fx.Provide(compliance.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithComponent(p.Ctx, "bootstrap.fx")
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithComponent(ctx, "bootstrap.fx")

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

// Rules were validated by config.Load.
func provideRules(cfg config.Config) domain.Rules {
	return cfg.Rules.ToRules()
}

func providePublisher(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*natsbus.Publisher, error) {
	logCtx := logging.WithComponent(ctx, "bootstrap.fx")

	publisher, err := natsbus.Connect(logCtx, cfg.NATS.URL, cfg.NATS.Subject)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})

	return publisher, nil
}
