package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Kosench/shortlink/internal/cache"
	"github.com/Kosench/shortlink/internal/config"
	"github.com/Kosench/shortlink/internal/database"
	"github.com/Kosench/shortlink/internal/handler"
	"github.com/Kosench/shortlink/internal/logging"
	"github.com/Kosench/shortlink/internal/observer"
	"github.com/Kosench/shortlink/internal/repository"
	"github.com/Kosench/shortlink/internal/service"
	"github.com/Kosench/shortlink/internal/utils"
)

const sentryFlushTimeout = 2 * time.Second

// App holds the wired dependencies shared by the server and the CLI commands.
type App struct {
	cfg      *config.Config
	logger   *logging.Logger
	registry *service.LinkRegistry

	store  repository.LinkStore
	db     *sql.DB
	gormDB *gorm.DB
	redis  *cache.RedisClient
	cache  cache.Cache

	checks  []handler.HealthCheck
	closers []func() error
	sentry  bool
}

// New подключает хранилище, кэш и наблюдателей согласно конфигурации
func New(cfg *config.Config, logger *logging.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	if err := a.initSentry(); err != nil {
		return nil, err
	}

	if cfg.UsesRedis() {
		if err := a.initRedis(); err != nil {
			a.Close()
			return nil, err
		}
	}

	if err := a.initStore(); err != nil {
		a.Close()
		return nil, err
	}

	if err := a.initCache(); err != nil {
		a.Close()
		return nil, err
	}

	a.registry = service.NewLinkRegistry(
		a.store,
		utils.NewRandomGenerator(utils.DefaultShortCodeLength),
		service.WithMaxAttempts(cfg.App.MaxAttempts),
		service.WithReservedCodes(handler.CreatePath),
		service.WithObserver(a.observers()),
	)

	return a, nil
}

func (a *App) initSentry() error {
	if a.cfg.Sentry.DSN == "" {
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              a.cfg.Sentry.DSN,
		Environment:      a.cfg.App.Environment,
		TracesSampleRate: a.cfg.Sentry.TracesSampleRate,
	}); err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}

	a.sentry = true
	return nil
}

func (a *App) initRedis() error {
	redisClient, err := cache.NewRedisClient(cache.RedisConfig{
		Host:         a.cfg.Redis.Host,
		Port:         a.cfg.Redis.Port,
		Password:     a.cfg.Redis.Password,
		DB:           a.cfg.Redis.DB,
		PoolSize:     a.cfg.Redis.PoolSize,
		MinIdleConns: a.cfg.Redis.MinIdleConns,
		MaxRetries:   a.cfg.Redis.MaxRetries,
		CacheTTL:     int(a.cfg.Cache.TTL.Seconds()),
	})
	if err != nil {
		// Без Redis не обойтись только если это основное хранилище
		if a.cfg.Storage.Driver == "redis" {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		a.logger.Printf("Failed to connect to Redis (running without cache and events): %v", err)
		return nil
	}

	a.redis = redisClient
	a.closers = append(a.closers, redisClient.Close)
	a.checks = append(a.checks, handler.HealthCheck{Name: "redis", Check: redisClient.HealthCheck})
	a.logger.Println("Successfully connected to Redis")
	return nil
}

func (a *App) initStore() error {
	switch a.cfg.Storage.Driver {
	case "postgres":
		db, err := database.Connect(
			a.cfg.Database.Host,
			a.cfg.Database.Port,
			a.cfg.Database.User,
			a.cfg.Database.Password,
			a.cfg.Database.DBName)
		if err != nil {
			return fmt.Errorf("failed to connect database: %w", err)
		}
		a.db = db
		a.store = repository.NewPostgresLinkStore(db)
		a.closers = append(a.closers, db.Close)
		a.checks = append(a.checks, handler.HealthCheck{
			Name:  "database",
			Check: func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
		})
		a.logger.Println("Successfully connected to database")

	case "sqlite":
		db, err := database.OpenSQLite(a.cfg.Storage.SQLitePath, a.logger.Logger)
		if err != nil {
			return fmt.Errorf("failed to open sqlite database: %w", err)
		}
		a.gormDB = db
		a.store = repository.NewGormLinkStore(db)
		a.closers = append(a.closers, func() error { return database.CloseSQLite(db) })
		a.checks = append(a.checks, handler.HealthCheck{
			Name:  "database",
			Check: func(ctx context.Context) error { return database.HealthCheckSQLite(ctx, db) },
		})

	case "redis":
		a.store = repository.NewRedisLinkStore(a.redis.Client(), a.cfg.Redis.Namespace)

	default:
		a.store = repository.NewMemoryLinkStore()
	}

	return nil
}

func (a *App) initCache() error {
	switch a.cfg.Cache.Driver {
	case "redis":
		if a.redis == nil {
			return nil
		}
		a.cache = a.redis

	case "bigcache":
		bc, err := cache.NewBigCacheClient(a.cfg.Cache.TTL)
		if err != nil {
			return fmt.Errorf("failed to create bigcache: %w", err)
		}
		a.cache = bc
		a.closers = append(a.closers, bc.Close)

	default:
		return nil
	}

	a.store = repository.NewCachedLinkStore(a.store, a.cache, a.cfg.Redis.Namespace, a.logger.Logger)
	a.logger.Printf("Cache enabled (%s)", a.cfg.Cache.Driver)
	return nil
}

func (a *App) observers() service.Observer {
	observers := observer.Multi{observer.NewLogObserver(a.logger.Logger)}

	if a.sentry {
		observers = append(observers, observer.NewSentryObserver(nil))
	}

	if a.cfg.Events.Enabled && a.redis != nil {
		observers = append(observers, observer.NewEventPublisher(a.redis.Client(), a.cfg.Events.Channel, a.logger.Logger))
	}

	return observers
}

// Migrate creates the links table in the configured SQL store. Memory and Redis
// stores need no schema.
func (a *App) Migrate(ctx context.Context) error {
	switch {
	case a.db != nil:
		return database.Migrate(ctx, a.db)
	case a.gormDB != nil:
		return repository.NewGormLinkStore(a.gormDB).Migrate(ctx)
	default:
		return nil
	}
}

func (a *App) Registry() *service.LinkRegistry {
	return a.registry
}

// Router собирает HTTP обработчики поверх реестра
func (a *App) Router() *gin.Engine {
	return handler.NewRouter(handler.RouterConfig{
		Links:          handler.NewLinkHandler(a.registry, a.cfg.GetBaseURL()),
		Health:         handler.NewHealthHandler(a.checks...),
		RequestTimeout: a.cfg.App.RequestTimeout,
		LogWriter:      a.logger.Writer(),
	})
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil

	if a.sentry {
		sentry.Flush(sentryFlushTimeout)
	}

	return errors.Join(errs...)
}
