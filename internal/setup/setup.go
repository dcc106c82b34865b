package setup

import (
	"context"

	"github.com/crowdsift/crowdsift/internal/database"
	"github.com/crowdsift/crowdsift/internal/events"
	"github.com/crowdsift/crowdsift/internal/redis"
	"github.com/crowdsift/crowdsift/internal/setup/config"
	"go.uber.org/zap"
)

// App bundles all core dependencies needed by the engine binaries.
type App struct {
	Config       *config.Config  // Application configuration
	Logger       *zap.Logger     // Main application logger
	DBLogger     *zap.Logger     // Database-specific logger
	DB           database.Client // Database connection pool
	RedisManager *redis.Manager  // Redis connection manager
	Emitter      *events.Emitter // Consensus event publisher
}

// InitializeApp bootstraps all application dependencies in the correct
// order, ensuring each component has its required dependencies available.
func InitializeApp(ctx context.Context, autoMigrate bool) (*App, error) {
	cfg, configDir, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger, dbLogger, err := newLoggers(&cfg.Debug)
	if err != nil {
		return nil, err
	}

	logger.Info("Configuration loaded", zap.String("configDir", configDir))

	// Redis carries the fire-and-forget event channels.
	redisManager := redis.NewManager(&cfg.Redis, logger)

	eventsClient, err := redisManager.GetClient(redis.EventsDBIndex)
	if err != nil {
		return nil, err
	}

	emitter := events.NewEmitter(eventsClient, cfg.Engine.EventPublishers, logger)

	db, err := database.NewConnection(ctx, cfg, emitter, dbLogger, autoMigrate)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:       cfg,
		Logger:       logger,
		DBLogger:     dbLogger,
		DB:           db,
		RedisManager: redisManager,
		Emitter:      emitter,
	}, nil
}

// Cleanup releases all resources. Event publishes drain before the Redis
// clients close.
func (a *App) Cleanup() {
	a.Emitter.Close()
	a.RedisManager.Close()

	if err := a.DB.Close(); err != nil {
		a.Logger.Error("Failed to close database", zap.Error(err))
	}

	_ = a.Logger.Sync()
}
