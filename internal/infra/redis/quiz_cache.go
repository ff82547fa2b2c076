package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"knowme-quiz-service/internal/domain"
)

// QuizSource is the backing store the cache falls through to.
type QuizSource interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	GetQuizByCode(ctx context.Context, code string) (domain.Quiz, error)
}

// QuizCache caches full quiz documents in Redis keyed by short code and by
// id, with a TTL, and falls back to the source on miss. Join traffic is the
// hot path here: every participant resolves the same code, so cache hits
// spare the document store. Staleness after an edit is bounded by the TTL;
// last writer wins, same as the store itself.
type QuizCache struct {
	client *redis.Client
	source QuizSource
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizCache(client *redis.Client, source QuizSource, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) GetQuizByCode(ctx context.Context, code string) (domain.Quiz, error) {
	return c.get(ctx, c.codeKey(code), func(ctx context.Context) (domain.Quiz, error) {
		return c.source.GetQuizByCode(ctx, code)
	})
}

func (c *QuizCache) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return c.get(ctx, c.idKey(quizID), func(ctx context.Context) (domain.Quiz, error) {
		return c.source.GetQuiz(ctx, quizID)
	})
}

func (c *QuizCache) get(ctx context.Context, key string, load func(context.Context) (domain.Quiz, error)) (domain.Quiz, error) {
	if quiz, ok := c.lookup(ctx, key); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another goroutine filled it.
		if quiz, ok := c.lookup(ctx, key); ok {
			return quiz, nil
		}
		quiz, err := load(ctx)
		if err != nil {
			return domain.Quiz{}, err
		}
		c.fill(ctx, key, quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *QuizCache) lookup(ctx context.Context, key string) (domain.Quiz, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("quiz cache read %s: %v", key, err)
		}
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		log.Printf("quiz cache decode %s: %v", key, err)
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (c *QuizCache) fill(ctx context.Context, key string, quiz domain.Quiz) {
	raw, err := json.Marshal(quiz)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err(); err != nil {
		log.Printf("quiz cache write %s: %v", key, err)
	}
}

func (c *QuizCache) codeKey(code string) string {
	return "quiz:code:" + code
}

func (c *QuizCache) idKey(quizID string) string {
	return "quiz:id:" + quizID
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
