package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"ecoclick-api/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuizLoader fetches quiz content from the backing Record Store.
type QuizLoader interface {
	LoadQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// QuizCatalog caches the encoded quiz list in Redis and falls back to the loader on a miss.
// Cache entry: SET {prefix}cache:quizzes <json> PX ttl
// Generation: INCR {prefix}cache:quizzes:gen on every invalidation.
type QuizCatalog struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	key    string
	genKey string
	logger *slog.Logger
	sf     singleflight.Group
}

// storeIfCurrent writes the cache entry only while the generation still matches the one
// read before loading.
var storeIfCurrent = redis.NewScript(`
local gen = redis.call("GET", KEYS[2]) or "0"
if gen ~= ARGV[1] then
  return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

func NewQuizCatalog(client *redis.Client, loader QuizLoader, prefix string, ttl time.Duration, logger *slog.Logger) *QuizCatalog {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QuizCatalog{
		client: client,
		loader: loader,
		ttl:    ttl,
		key:    prefix + "cache:quizzes",
		genKey: prefix + "cache:quizzes:gen",
		logger: logger,
	}
}

func (c *QuizCatalog) Quizzes(ctx context.Context) ([]domain.Quiz, error) {
	if quizzes, ok := c.cached(ctx); ok {
		return quizzes, nil
	}

	result, err, _ := c.sf.Do(c.key, func() (interface{}, error) {
		gen, genErr := c.generation(ctx)
		// Re-check cache in case another goroutine filled it.
		if quizzes, ok := c.cached(ctx); ok {
			return quizzes, nil
		}

		quizzes, err := c.loader.LoadQuizzes(ctx)
		if err != nil {
			return nil, err
		}

		if ttl := c.ttlWithJitter(); ttl > 0 && genErr == nil {
			c.store(ctx, gen, quizzes, ttl)
		}
		return quizzes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Quiz), nil
}

// Invalidate bumps the generation and removes the cached list. Loads that started before the
// bump do not write their result back.
func (c *QuizCatalog) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, c.genKey).Err(); err != nil {
		c.logger.Warn("bump quiz cache generation failed", "error", err)
	}
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		c.logger.Warn("invalidate quiz cache failed", "error", err)
	}
	c.sf.Forget(c.key)
}

func (c *QuizCatalog) generation(ctx context.Context) (string, error) {
	gen, err := c.client.Get(ctx, c.genKey).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	if err != nil {
		c.logger.Warn("read quiz cache generation failed", "error", err)
	}
	return gen, err
}

func (c *QuizCatalog) store(ctx context.Context, gen string, quizzes []domain.Quiz, ttl time.Duration) {
	data, err := json.Marshal(quizzes)
	if err != nil {
		c.logger.Warn("encode quizzes for cache failed", "error", err)
		return
	}
	stored, err := storeIfCurrent.Run(ctx, c.client, []string{c.key, c.genKey}, gen, data, ttl.Milliseconds()).Int()
	if err != nil {
		c.logger.Warn("cache quizzes failed", "error", err)
		return
	}
	if stored == 0 {
		c.logger.Debug("quiz cache invalidated during load, result not cached")
	}
}

func (c *QuizCatalog) cached(ctx context.Context) ([]domain.Quiz, bool) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("read quiz cache failed", "error", err)
		}
		return nil, false
	}
	var quizzes []domain.Quiz
	if err := json.Unmarshal(data, &quizzes); err != nil {
		return nil, false
	}
	return quizzes, true
}

func (c *QuizCatalog) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
