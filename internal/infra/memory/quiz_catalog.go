package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"ecoclick-api/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuizLoader fetches quiz content from a backing store.
type QuizLoader interface {
	LoadQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// QuizCatalog caches the quiz list with a TTL so list and detail reads do not hit the store each time.
type QuizCatalog struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu         sync.RWMutex
	quizzes    []domain.Quiz
	expiresAt  time.Time
	loaded     bool
	generation uint64
}

const catalogKey = "quizzes"

func NewQuizCatalog(loader QuizLoader, ttl time.Duration) *QuizCatalog {
	return &QuizCatalog{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
	}
}

func (c *QuizCatalog) Quizzes(ctx context.Context) ([]domain.Quiz, error) {
	if quizzes, ok := c.cached(c.clock()); ok {
		return quizzes, nil
	}

	result, err, _ := c.sf.Do(catalogKey, func() (interface{}, error) {
		now := c.clock()
		if quizzes, ok := c.cached(now); ok {
			return quizzes, nil
		}
		c.mu.RLock()
		gen := c.generation
		c.mu.RUnlock()

		quizzes, err := c.loader.LoadQuizzes(ctx)
		if err != nil {
			return nil, err
		}

		// an Invalidate during the load means the snapshot may predate a write
		c.mu.Lock()
		if c.generation == gen {
			c.quizzes = quizzes
			c.expiresAt = now.Add(c.ttlWithJitter())
			c.loaded = true
		}
		c.mu.Unlock()
		return quizzes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Quiz), nil
}

// Invalidate drops the cached list; the next read reloads it.
func (c *QuizCatalog) Invalidate(context.Context) {
	c.mu.Lock()
	c.generation++
	c.loaded = false
	c.quizzes = nil
	c.mu.Unlock()
	c.sf.Forget(catalogKey)
}

func (c *QuizCatalog) cached(now time.Time) ([]domain.Quiz, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.loaded && c.expiresAt.After(now) {
		return c.quizzes, true
	}
	return nil, false
}

func (c *QuizCatalog) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
