package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	httpin "marketplace/internal/adapters/in/http"
	"marketplace/internal/adapters/out/cache"
	"marketplace/internal/adapters/out/kafka"
	"marketplace/internal/adapters/out/memory"
	"marketplace/internal/adapters/out/postgres"
	"marketplace/internal/adapters/out/postgres/migrations"
	"marketplace/internal/core/ports"
	"marketplace/internal/observability"
	"marketplace/internal/pkg/logger"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Core provides configuration, logging, storage and the composition root.
var Core = fx.Options(
	fx.Provide(
		LoadConfig,
		NewLogger,
		observability.NewMetrics,
		NewTracing,
		NewStorage,
		NewStockCache,
		NewOrderEventPublisher,
		NewRoot,
	),
	fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: l.Named("fx")}
	}),
)

// Serve runs the HTTP API and the scheduled jobs on top of Core.
var Serve = fx.Options(
	Core,
	fx.Invoke(RunService),
)

// Storage holds the unit of work factories of the selected store driver.
type Storage struct {
	Writer ports.UnitOfWorkFactory
	Reader ports.UnitOfWorkFactory
	// DB is the primary connection; nil for the memory driver.
	DB *gorm.DB
}

func NewLogger(lc fx.Lifecycle, cfg Config) (*zap.Logger, error) {
	l, err := logger.New(logger.Options{
		Level:       cfg.LogLevel,
		Encoding:    cfg.LogEncoding,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = l.Sync()
			return nil
		},
	})
	return l, nil
}

func NewTracing(lc fx.Lifecycle, cfg Config) (*observability.Tracing, error) {
	tracing, err := observability.NewTracing(context.Background(), cfg.ServiceName, cfg.TracingEnabled)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: tracing.Shutdown})
	return tracing, nil
}

// NewStorage opens the primary and, when configured, the replica connection. The memory
// driver serves both sides from one process-local store.
func NewStorage(lc fx.Lifecycle, cfg Config, log *zap.Logger) (*Storage, error) {
	if cfg.StoreDriver == StoreDriverMemory {
		store := memory.NewStore()
		log.Warn("using in-memory store, data is lost on exit")
		return &Storage{Writer: store, Reader: store}, nil
	}

	writer, err := postgres.Open(cfg.WriterDSN(), postgres.DefaultPoolOptions, log)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	reader := writer
	if cfg.ReaderDSN() != cfg.WriterDSN() {
		if reader, err = postgres.Open(cfg.ReaderDSN(), postgres.DefaultPoolOptions, log); err != nil {
			_ = postgres.Close(writer)
			return nil, fmt.Errorf("open reader: %w", err)
		}
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := postgres.Ping(ctx, writer); err != nil {
				return fmt.Errorf("ping writer: %w", err)
			}
			if reader != writer {
				if err := postgres.Ping(ctx, reader); err != nil {
					return fmt.Errorf("ping reader: %w", err)
				}
			}
			log.Info("database connected", zap.Bool("replica", reader != writer))
			return nil
		},
		OnStop: func(context.Context) error {
			closeErr := postgres.Close(writer)
			if reader != writer {
				closeErr = errors.Join(closeErr, postgres.Close(reader))
			}
			return closeErr
		},
	})

	return &Storage{
		Writer: postgres.NewGormUnitOfWorkFactory(writer),
		Reader: postgres.NewGormUnitOfWorkFactory(reader),
		DB:     writer,
	}, nil
}

func NewStockCache(lc fx.Lifecycle, cfg Config, log *zap.Logger) (ports.StockCache, error) {
	if cfg.CacheDriver != CacheDriverRedis {
		return cache.NoopStockCache{}, nil
	}

	client, err := cache.Connect(context.Background(), cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return client.Close() },
	})
	return cache.NewRedisStockCache(client, cfg.CacheTTL, log).WithFence(cfg.CacheFence), nil
}

func NewOrderEventPublisher(lc fx.Lifecycle, cfg Config, log *zap.Logger) ports.OrderEventPublisher {
	if !cfg.KafkaEnabled {
		return kafka.NoopPublisher{}
	}

	publisher := kafka.NewOrderEventPublisher(kafka.NewWriter(cfg.KafkaHost, cfg.KafkaOrderChangedTopic, log), log)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return publisher.Close() },
	})
	return publisher
}

func NewRoot(
	cfg Config,
	storage *Storage,
	stockCache ports.StockCache,
	publisher ports.OrderEventPublisher,
	metrics *observability.Metrics,
	log *zap.Logger,
) (*CompositionRoot, error) {
	root, err := NewCompositionRoot(cfg, Adapters{
		Writer:    storage.Writer,
		Reader:    storage.Reader,
		Cache:     stockCache,
		Publisher: publisher,
		Metrics:   metrics,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}
	return &root, nil
}

// NewMigrator needs the postgres driver.
func NewMigrator(storage *Storage, log *zap.Logger) (*migrations.Migrator, error) {
	if storage.DB == nil {
		return nil, errors.New("migrations require STORE_DRIVER=postgres")
	}
	sqlDB, err := storage.DB.DB()
	if err != nil {
		return nil, err
	}
	return migrations.New(sqlDB, log)
}

// RunService ties the HTTP server and the job manager to the application lifecycle.
func RunService(
	lc fx.Lifecycle,
	cfg Config,
	root *CompositionRoot,
	tracing *observability.Tracing,
	metrics *observability.Metrics,
	log *zap.Logger,
) error {
	e, err := httpin.NewEcho(root.CreateHTTPServer(), httpin.Options{
		ServiceName:    cfg.ServiceName,
		TracingEnabled: tracing.Enabled(),
		Metrics:        metrics,
		Logger:         log,
	})
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	server := &http.Server{Addr: addr, Handler: e}
	jobManager := root.CreateJobManager()

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := jobManager.StartAll(); err != nil {
				return err
			}
			log.Info("starting HTTP server", zap.String("addr", addr))
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping HTTP server and jobs")
			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return server.Shutdown(ctx) })
			g.Go(func() error {
				jobManager.StopAll()
				return nil
			})
			return g.Wait()
		},
	})
	return nil
}
