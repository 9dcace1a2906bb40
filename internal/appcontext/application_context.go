package appcontext

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/RoyceAzure/lab/barcheckout/internal/config"
	"github.com/RoyceAzure/lab/barcheckout/internal/constants"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/metrics"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/producer"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/ratelimit"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository/memory"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/ticket"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/token"
	"github.com/RoyceAzure/lab/barcheckout/internal/logger"
	"github.com/RoyceAzure/lab/barcheckout/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type ApplicationContext struct {
	Cf               *config.Config
	Logger           *zerolog.Logger
	Store            repository.Store
	Redis            *redis.Client
	CatalogCache     redis_repo.ICatalogCache
	EventProducer    producer.IOrderEventProducer
	Registry         *prometheus.Registry
	Metrics          *metrics.Metrics
	TokenMaker       token.Maker
	TicketGenerator  *ticket.Generator
	Limiter          ratelimit.ILimiter
	InventoryService service.IInventoryService
	CatalogService   *service.CatalogService
	CartService      service.ICartService
	TicketService    *service.TicketService
	CheckoutService  *service.CheckoutService
	OrderService     service.IOrderService
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf: cf,
	}
	err := app.Init()
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init() error {
	steps := []func() error{
		app.setUpLogger,
		app.setUpMetrics,
		app.setUpStore,
		app.setUpRedis,
		app.setUpEventProducer,
		app.setUpTokenMaker,
		app.setUpTicketGenerator,
		app.setUpLimiter,
		app.setUpServices,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (app *ApplicationContext) setUpLogger() error {
	app.Logger = logger.New(os.Stdout, app.Cf.ServiceName, app.Cf.Env, app.Cf.LogLevel)
	return nil
}

func (app *ApplicationContext) setUpMetrics() error {
	app.Logger.Info().Msg("Start setup metrics")
	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.Metrics = metrics.New(app.Registry)
	app.Logger.Info().Msg("Finish setup metrics")
	return nil
}

// setUpStore memory 只用於本機開發, 會放入示範資料
func (app *ApplicationContext) setUpStore() error {
	app.Logger.Info().Str("driver", app.Cf.StorageDriver).Msg("Start setup store")
	switch constants.StorageDriver(app.Cf.StorageDriver) {
	case constants.StorageMemory:
		store := memory.NewStore()
		if err := seedDemoData(store); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		app.Store = store
	case constants.StoragePostgres:
		if err := db.RunDBMigration(
			app.Cf.MigrationURL,
			db.MigrationDSN(app.Cf.DbName, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbUser, app.Cf.DbPas),
		); err != nil {
			return fmt.Errorf("run db migration: %w", err)
		}
		conn, err := db.GetDbConn(app.Cf.DbName, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbUser, app.Cf.DbPas)
		if err != nil {
			return fmt.Errorf("connect db: %w", err)
		}
		app.Store = db.NewStore(conn)
	default:
		return fmt.Errorf("unknown storage driver %q", app.Cf.StorageDriver)
	}
	app.Logger.Info().Msg("Finish setup store")
	return nil
}

// setUpRedis 沒設定 REDIS_ADDR 就不用快取
func (app *ApplicationContext) setUpRedis() error {
	if app.Cf.RedisAddr == "" {
		app.Logger.Info().Msg("redis not configured, catalog cache disabled")
		return nil
	}
	app.Logger.Info().Msg("Start setup redis")
	client, err := redis_repo.NewRedisClient(context.Background(), app.Cf.RedisAddr, app.Cf.RedisPassword, app.Cf.RedisDB)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	app.Redis = client
	app.CatalogCache = redis_repo.NewCatalogCache(client, app.Cf.CatalogCacheTTL)
	app.Logger.Info().Msg("Finish setup redis")
	return nil
}

func (app *ApplicationContext) setUpEventProducer() error {
	brokers := app.Cf.KafkaBrokerList()
	if len(brokers) == 0 {
		app.Logger.Info().Msg("kafka not configured, order events are only logged")
		app.EventProducer = producer.NewNopOrderEventProducer(logger.Component(app.Logger, "event_producer"))
		return nil
	}
	app.Logger.Info().Strs("brokers", brokers).Str("topic", app.Cf.KafkaTopic).Msg("Start setup kafka producer")
	app.EventProducer = producer.NewKafkaOrderEventProducer(producer.NewKafkaWriter(brokers, app.Cf.KafkaTopic))
	app.Logger.Info().Msg("Finish setup kafka producer")
	return nil
}

func (app *ApplicationContext) setUpTokenMaker() error {
	tokenMaker, err := token.NewJWTMaker(app.Cf.AuthTokenKey)
	if err != nil {
		return fmt.Errorf("create token maker: %w", err)
	}
	app.TokenMaker = tokenMaker
	return nil
}

func (app *ApplicationContext) setUpTicketGenerator() error {
	generator, err := ticket.NewGenerator(app.Cf.TicketSigningKey)
	if err != nil {
		return fmt.Errorf("create ticket generator: %w", err)
	}
	app.TicketGenerator = generator
	return nil
}

// setUpLimiter 有 redis 時用共享的桶, 多個 instance 共用額度
func (app *ApplicationContext) setUpLimiter() error {
	if app.Cf.RateLimitCapacity <= 0 {
		return nil
	}
	cfg := &ratelimit.LimiterConfig{
		Capacity: app.Cf.RateLimitCapacity,
		RatePS:   app.Cf.RateLimitPerSecond,
	}
	if app.Redis != nil {
		app.Limiter = ratelimit.NewRedisTokenBucket(app.Redis, cfg, logger.Component(app.Logger, "rate_limit"))
	} else {
		app.Limiter = ratelimit.NewTokenBucket(cfg)
	}
	return nil
}

func (app *ApplicationContext) setUpServices() error {
	app.Logger.Info().Msg("Start setup services")
	app.InventoryService = service.NewInventoryService(app.Store)
	app.CatalogService = service.NewCatalogService(app.Store, app.CatalogCache, app.Metrics, logger.Component(app.Logger, "catalog"))
	app.CartService = service.NewCartService(app.Store)
	app.TicketService = service.NewTicketService(
		app.Store,
		app.TicketGenerator,
		app.EventProducer,
		app.Metrics,
		logger.Component(app.Logger, "ticket_pool"),
		service.TicketPoolConfig{
			Workers:          app.Cf.TicketWorkers,
			QueueSize:        app.Cf.TicketQueueSize,
			MaxAttempts:      app.Cf.TicketMaxAttempts,
			RecoveryInterval: app.Cf.TicketRecoveryInterval,
		},
	)
	app.CheckoutService = service.NewCheckoutService(
		app.Store,
		app.InventoryService,
		app.TicketService,
		app.EventProducer,
		app.CatalogService,
		app.Metrics,
		logger.Component(app.Logger, "checkout"),
		app.Cf.CheckoutTimeout,
	)
	app.OrderService = service.NewOrderService(app.Store, app.TicketGenerator)
	app.TicketService.Start()
	app.Logger.Info().Msg("Finish setup services")
	return nil
}

// Shutdown 依序關閉, 個別錯誤不中斷流程
func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	app.Logger.Info().Msg("Start application shutdown")
	var errs []error

	if app.TicketService != nil {
		if err := app.TicketService.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if app.CheckoutService != nil {
		done := make(chan struct{})
		go func() {
			app.CheckoutService.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("wait order events: %w", ctx.Err()))
		}
	}

	if app.EventProducer != nil {
		if err := app.EventProducer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close producer: %w", err))
		}
	}
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if app.Store != nil {
		if err := app.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}

	app.Logger.Info().Msg("Application shutdown complete")
	return errors.Join(errs...)
}
