package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"bookshelf/internal/book"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "bookshelf:lookup:v1:"

// SearchCache is a read-through cache in front of a book.Upstream. Redis
// failures are logged and the upstream is called directly. Failed upstream
// searches are not cached.
type SearchCache struct {
	client *redis.Client
	next   book.Upstream
	ttl    time.Duration
	logger *slog.Logger
}

func NewSearchCache(client *redis.Client, next book.Upstream, ttl time.Duration, logger *slog.Logger) *SearchCache {
	return &SearchCache{client: client, next: next, ttl: ttl, logger: logger}
}

func (c *SearchCache) Search(ctx context.Context, q string, limit int) ([]book.Book, error) {
	key := Key(q, limit)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var books []book.Book
		if jsonErr := json.Unmarshal(raw, &books); jsonErr == nil {
			return books, nil
		}
		c.logger.WarnContext(ctx, "discarding corrupt cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "search cache read failed", "error", err)
	}

	books, err := c.next.Search(ctx, q, limit)
	if err != nil {
		return books, err
	}

	if payload, err := json.Marshal(books); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "search cache write failed", "error", err)
		}
	}
	return books, nil
}

// Key is the cache key for a query. Case and surrounding or repeated
// whitespace do not change it.
func Key(q string, limit int) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(q), " "))
	sum := sha256.Sum256([]byte(normalized))
	return keyPrefix + strconv.Itoa(limit) + ":" + hex.EncodeToString(sum[:16])
}
