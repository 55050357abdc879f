package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ecoclick-api/internal/app"
	"ecoclick-api/internal/config"
	"ecoclick-api/internal/event"
	"ecoclick-api/internal/infra/file"
	"ecoclick-api/internal/infra/memory"
	mongostore "ecoclick-api/internal/infra/mongo"
	pgstore "ecoclick-api/internal/infra/postgres"
	redisstore "ecoclick-api/internal/infra/redis"
	"ecoclick-api/internal/infra/sqlite"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// runtime owns the connections opened for one command invocation.
type runtime struct {
	store   app.RecordStore
	service *app.Service
	redis   *redis.Client
	closers []func(context.Context) error
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// openRuntime connects the configured storage backend, cache and event publisher.
func openRuntime(ctx context.Context, cfg config.Config, logger *slog.Logger) (*runtime, error) {
	rt := &runtime{}
	if err := rt.openStore(ctx, cfg, logger); err != nil {
		rt.Close(ctx, logger)
		return nil, err
	}

	quizzes, err := rt.quizCatalog(ctx, cfg, logger)
	if err != nil {
		rt.Close(ctx, logger)
		return nil, err
	}

	var answers app.AnswerStore
	if !cfg.Gameplay.PersistAnswers {
		answers = memory.NewAnswerStore()
	}

	rt.service = app.NewService(app.Deps{
		Store:   rt.store,
		Answers: answers,
		Quizzes: quizzes,
		Events:  rt.publisher(cfg, logger),
		Logger:  logger,
	})
	return rt, nil
}

func (rt *runtime) openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	switch cfg.Storage.Driver {
	case config.DriverFile:
		store, err := file.NewStore(cfg.Storage.DataDir)
		if err != nil {
			return err
		}
		rt.store = store
	case config.DriverMemory:
		rt.store = memory.NewRecordStore()
	case config.DriverRedis:
		client, err := rt.redisClient(ctx, cfg)
		if err != nil {
			return err
		}
		rt.store = redisstore.NewRecordStore(client, cfg.Redis.Prefix)
	case config.DriverPostgres:
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		rt.closers = append(rt.closers, func(context.Context) error {
			pool.Close()
			return nil
		})
		rt.store = pgstore.NewRecordStore(pool)
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return err
		}
		rt.closers = append(rt.closers, func(context.Context) error { return store.Close() })
		rt.store = store
	case config.DriverMongo:
		store, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return err
		}
		rt.closers = append(rt.closers, store.Close)
		rt.store = store
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	logger.Info("record store ready", "driver", cfg.Storage.Driver)
	return nil
}

func (rt *runtime) redisClient(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if rt.redis != nil {
		return rt.redis, nil
	}
	if cfg.Redis.Addr == "" {
		return nil, errors.New("redis addr not configured")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	rt.redis = client
	rt.closers = append(rt.closers, func(context.Context) error { return client.Close() })
	return client, nil
}

// quizCatalog picks the quiz cache: "none", "redis", or the in-process cache by default.
func (rt *runtime) quizCatalog(ctx context.Context, cfg config.Config, logger *slog.Logger) (app.QuizCatalog, error) {
	ttl := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	loader := app.NewQuizLoader(rt.store)
	switch strings.ToLower(cfg.Quiz.Cache) {
	case "none":
		return nil, nil
	case "redis":
		client, err := rt.redisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return redisstore.NewQuizCatalog(client, loader, cfg.Redis.Prefix, ttl, logger), nil
	default:
		return memory.NewQuizCatalog(loader, ttl), nil
	}
}

func (rt *runtime) publisher(cfg config.Config, logger *slog.Logger) app.EventPublisher {
	if cfg.Events.AMQPURL == "" {
		return event.NewLogPublisher(logger)
	}
	pub, err := event.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange, logger)
	if err != nil {
		logger.Warn("amqp unavailable, events will be logged", "error", err)
		return event.NewLogPublisher(logger)
	}
	rt.closers = append(rt.closers, func(context.Context) error {
		pub.Close()
		return nil
	})
	return pub
}

// Close releases resources in reverse order of acquisition.
func (rt *runtime) Close(ctx context.Context, logger *slog.Logger) {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](ctx); err != nil {
			logger.Warn("close resource failed", "error", err)
		}
	}
	rt.closers = nil
}
