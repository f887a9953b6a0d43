package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	appsvc "photolabel/internal/app"
	"photolabel/internal/catalog"
	"photolabel/internal/config"
	"photolabel/internal/model"
	mysqlClient "photolabel/internal/platform/mysql"
	redisClient "photolabel/internal/platform/redis"
	"photolabel/internal/repository"
	"photolabel/internal/session"
	"photolabel/internal/vision"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger

	MySQL *gorm.DB
	Redis *redis.Client

	Sessions     session.Store
	Catalog      *catalog.Catalog
	Gateway      *vision.Gateway
	Presentation *appsvc.Presentation

	StartedAt time.Time
}

// New wires every dependency and loads the classifier before returning.
// A model that cannot be acquired or constructed surfaces as vision.ErrModelUnavailable.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	logger := NewLogger(cfg.App.LogLevel, cfg.App.Env)
	slog.SetDefault(logger)

	a := &App{Config: cfg, Logger: logger, StartedAt: time.Now()}
	if err := a.init(ctx); err != nil {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("release partially started resources failed", "error", closeErr)
		}
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	sessions, err := a.openSessions(ctx)
	if err != nil {
		return err
	}
	a.Sessions = sessions

	table, err := a.loadCatalogTable(ctx)
	if err != nil {
		return err
	}
	a.Catalog = catalog.New(table, catalog.Options{MaxImageRefBytes: cfg.Catalog.MaxImageRefBytes})

	acquirer, err := NewAcquirer(cfg.Model, a.Logger)
	if err != nil {
		return err
	}
	a.Gateway = vision.NewGateway(ModelLoader(cfg, acquirer, a.Logger))

	started := time.Now()
	if _, err := a.Gateway.EnsureLoaded(ctx); err != nil {
		return err
	}
	labels := a.Gateway.Labels()
	a.Logger.Info("classifier ready", "labels", len(labels), "took", time.Since(started).Round(time.Millisecond))

	if report := a.Catalog.Validate(labels); !report.OK() {
		a.Logger.Warn("catalog does not match classifier vocabulary",
			"unknown_keys", report.UnknownKeys,
			"labels_without_content", report.MissingLabels,
		)
	}

	a.Presentation = appsvc.NewPresentation(a.Sessions, a.Gateway, a.Catalog, a.Logger)
	return nil
}

func (a *App) openSessions(ctx context.Context) (session.Store, error) {
	cfg := a.Config
	ttl := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	if cfg.Session.Store != "redis" {
		return session.NewMemoryStore(ttl, cfg.Session.MemoryMaxEntries), nil
	}

	client, err := redisClient.New(ctx, redisClient.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	a.Redis = client
	return session.NewRedisStore(client, cfg.Session.RedisKeySpace, ttl), nil
}

func (a *App) loadCatalogTable(ctx context.Context) (map[string]catalog.RawBundle, error) {
	cfg := a.Config
	if cfg.Catalog.Source != "mysql" {
		table, err := catalog.LoadFile(cfg.Catalog.Path)
		if err != nil {
			return nil, err
		}
		a.Logger.Info("catalog loaded", "source", "file", "path", cfg.Catalog.Path, "labels", len(table))
		return table, nil
	}

	db, err := mysqlClient.New(ctx, mysqlClient.Options{DSN: cfg.MySQLDSN(), Quiet: cfg.App.Env == "prod"})
	if err != nil {
		return nil, err
	}
	a.MySQL = db
	if err := db.AutoMigrate(&model.CatalogEntry{}); err != nil {
		return nil, fmt.Errorf("auto migrate catalog table failed: %w", err)
	}
	table, err := repository.NewCatalogRepository(db).LoadTable()
	if err != nil {
		return nil, err
	}
	a.Logger.Info("catalog loaded", "source", "mysql", "labels", len(table))
	return table, nil
}

// CatalogDB returns a health probe for the catalog database, or nil for file catalogs.
func (a *App) CatalogDB() interface{ Ping(context.Context) error } {
	if a.MySQL == nil {
		return nil
	}
	return gormPinger{db: a.MySQL}
}

type gormPinger struct{ db *gorm.DB }

func (p gormPinger) Ping(ctx context.Context) error {
	return mysqlClient.Ping(ctx, p.db)
}

func (a *App) Close() error {
	var errs []error
	if a.Gateway != nil {
		if err := a.Gateway.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close classifier: %w", err))
		}
		if err := vision.DestroyEnvironment(); err != nil {
			errs = append(errs, fmt.Errorf("destroy onnx environment: %w", err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.MySQL != nil {
		if err := mysqlClient.Close(a.MySQL); err != nil {
			errs = append(errs, fmt.Errorf("close mysql: %w", err))
		}
	}
	return errors.Join(errs...)
}
