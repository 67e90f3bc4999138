package app

import (
	"context"
	"io"
	"net/http"

	"ridebooking/internal/api"
	"ridebooking/internal/config"
	"ridebooking/internal/database"
	"ridebooking/internal/domain"
	"ridebooking/internal/events"
	"ridebooking/internal/models"
	"ridebooking/internal/notify"
	"ridebooking/internal/service"
	"ridebooking/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// App holds the process-wide clients. The store client is created once and reused by every request.
type App struct {
	Config     *config.Config
	Store      domain.DocumentStore
	Redis      *redis.Client
	Bus        *events.EventBus
	Dispatcher *worker.Dispatcher
	Bookings   *service.BookingService
	Tracking   *service.TrackingService
	Auth       *api.BearerAuth

	logger  *zerolog.Logger
	closers []io.Closer
}

// Options selects what a given entry point needs.
type Options struct {
	// WithSinks connects notification sinks so this process can deliver events.
	WithSinks bool
}

func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, opts Options) (*App, error) {
	store, err := database.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Store.Driver).Msg("init store")
		return nil, err
	}

	a := &App{
		Config: cfg,
		Store:  store,
		Bus:    events.NewEventBus(),
		Auth:   api.NewBearerAuth(cfg.Auth),
		logger: logger,
	}
	a.closers = append(a.closers, store)

	a.Redis = InitRedis(ctx, cfg.Redis, logger)
	if a.Redis != nil {
		a.closers = append(a.closers, a.Redis)
	}

	var sinks []worker.Sink
	if opts.WithSinks {
		var closers []io.Closer
		sinks, closers = notify.BuildSinks(ctx, cfg.Notify, logger)
		a.closers = append(a.closers, closers...)
	}
	a.Dispatcher = worker.NewDispatcher(sinks, a.Redis, worker.PolicyFromConfig(cfg.Notify.Retry), models.WorkerQueueSize, logger)

	a.Bookings = service.NewBookingService(store, a.Bus, logger)
	a.Tracking = service.NewTrackingService(store, a.Bus, logger)
	return a, nil
}

// SubscribeDispatcher routes booking and tracking events into the notification queue.
func (a *App) SubscribeDispatcher() {
	a.Bus.Subscribe(events.EventBookingCreated, a.Dispatcher.Handle)
	a.Bus.Subscribe(events.EventLocationUpdated, a.Dispatcher.Handle)
}

func (a *App) Router() http.Handler {
	return api.NewRouter(api.RouterDeps{
		HTTP:     a.Config.HTTP,
		CORS:     a.Config.CORS,
		Auth:     a.Auth,
		Bookings: a.Bookings,
		Tracking: a.Tracking,
		Checker:  a.Store,
		Logger:   a.logger,
	})
}

// Close releases clients in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn().Err(err).Msg("close client")
		}
	}
}

func InitRedis(ctx context.Context, cfg config.RedisConfig, logger *zerolog.Logger) *redis.Client {
	if cfg.Address == "" {
		return nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Address).Msg("redis connected")
	return redisClient
}
