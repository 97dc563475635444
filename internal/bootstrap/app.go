package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	appsvc "guestbook/internal/app"
	"guestbook/internal/cache"
	"guestbook/internal/config"
	"guestbook/internal/observability"
	"guestbook/internal/platform/logger"
	mysqlClient "guestbook/internal/platform/mysql"
	rabbitmqClient "guestbook/internal/platform/rabbitmq"
	redisClient "guestbook/internal/platform/redis"
	sqliteClient "guestbook/internal/platform/sqlite"
	"guestbook/internal/repository"
)

type App struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Metrics *observability.Metrics

	DB    *gorm.DB
	Store appsvc.Store

	// Optional collaborators stay nil when disabled or unreachable.
	Redis       *redis.Client
	RecentCache appsvc.RecentCache
	MQConn      *amqp.Connection
	Publisher   appsvc.MessagePublisher

	StartedAt time.Time

	logCloser io.Closer
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	return NewWithConfig(ctx, cfg)
}

// NewWithConfig opens every resource the service needs. Only the database
// is mandatory; redis and rabbitmq degrade to disabled on failure.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	log, logCloser, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger failed: %w", err)
	}

	a := &App{
		Config:    cfg,
		Logger:    log,
		Metrics:   observability.NewMetrics(),
		StartedAt: time.Now(),
		logCloser: logCloser,
	}

	db, err := openDatabase(cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.DB = db

	messageRepo := repository.NewMessageRepository(db)
	if err := initSchema(ctx, messageRepo, cfg.Database.StrictSchema, log); err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Store = messageRepo

	if cfg.Redis.Enabled {
		a.connectRedis(ctx)
	}
	if cfg.RabbitMQ.Enabled {
		a.connectRabbitMQ(ctx)
	}

	return a, nil
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		return sqliteClient.New(cfg.SQLite.Path)
	case config.DriverMySQL:
		dsn, err := cfg.MySQLDSN()
		if err != nil {
			return nil, err
		}
		return mysqlClient.New(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// initSchema ensures the messages table before traffic is accepted. Unless
// strict, failures are logged and startup continues; queries will then fail
// until the database recovers.
func initSchema(ctx context.Context, repo *repository.MessageRepository, strict bool, log logrus.FieldLogger) error {
	schemaCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := repo.EnsureSchema(schemaCtx); err != nil {
		if strict {
			return fmt.Errorf("initialize database failed: %w", err)
		}
		log.WithError(err).Error("database initialization failed, continuing without schema")
		return nil
	}
	log.Info("database initialized")
	return nil
}

func (a *App) connectRedis(ctx context.Context) {
	client, err := redisClient.New(ctx, a.Config.Redis)
	if err != nil {
		a.Logger.WithError(err).Warn("redis unavailable, recent messages cache disabled")
		return
	}
	a.Redis = client
	a.RecentCache = cache.NewRecentCache(client, time.Duration(a.Config.Redis.RecentTTLSeconds)*time.Second)
}

func (a *App) connectRabbitMQ(ctx context.Context) {
	conn, err := rabbitmqClient.New(ctx, a.Config.RabbitMQ.URL)
	if err != nil {
		a.Logger.WithError(err).Warn("rabbitmq unavailable, message events disabled")
		return
	}
	a.MQConn = conn
	a.Publisher = rabbitmqClient.NewMessagePublisher(conn, a.Config.RabbitMQ.MessageCreatedQueue)
}

func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis failed: %w", err))
		}
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		if err := a.MQConn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rabbitmq failed: %w", err))
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close database failed: %w", err))
			}
		}
	}
	if a.logCloser != nil {
		if err := a.logCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log file failed: %w", err))
		}
	}
	return errors.Join(errs...)
}
