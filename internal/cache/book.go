package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lectio/lectio/internal/model"
)

// Cache key prefixes and TTLs.
const (
	bookKeyPrefix     = "book:"
	negCacheKeySuffix = ":neg"

	// DefaultBookTTL is the TTL for cached book data.
	DefaultBookTTL = 24 * time.Hour

	// NegativeCacheTTL is the TTL for negative cache entries.
	NegativeCacheTTL = 5 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

func bookKey(id int64) string {
	return bookKeyPrefix + strconv.FormatInt(id, 10)
}

// GetBook retrieves a book from cache by ID.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetBook(ctx context.Context, id int64) (*model.Book, error) {
	raw, err := c.client.Get(ctx, bookKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cached model.CachedBook
	if err := json.Unmarshal(raw, &cached); err != nil {
		// Corrupt entry behaves like a miss and is overwritten on the next fill.
		return nil, ErrCacheMiss
	}

	return cached.ToBook(id), nil
}

// SetBook stores a book in cache. A ttl <= 0 uses DefaultBookTTL.
// Books are immutable, so entries only ever expire.
func (c *Cache) SetBook(ctx context.Context, book *model.Book, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultBookTTL
	}

	payload, err := json.Marshal(book.ToCachedBook())
	if err != nil {
		return fmt.Errorf("failed to encode book: %w", err)
	}

	key := bookKey(book.ID)
	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, payload, ttl)
	// Remove negative cache if exists
	pipe.Del(ctx, key+negCacheKeySuffix)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache book: %w", err)
	}

	return nil
}

// DeleteBook removes a book and its negative entry from cache.
func (c *Cache) DeleteBook(ctx context.Context, id int64) error {
	key := bookKey(id)

	if err := c.client.Del(ctx, key, key+negCacheKeySuffix).Err(); err != nil {
		return fmt.Errorf("failed to delete book from cache: %w", err)
	}

	return nil
}

// IsNegativelyCached checks if a book ID is in negative cache.
func (c *Cache) IsNegativelyCached(ctx context.Context, id int64) (bool, error) {
	exists, err := c.client.Exists(ctx, bookKey(id)+negCacheKeySuffix).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check negative cache: %w", err)
	}

	return exists > 0, nil
}

// SetNegativeCache marks a book ID as not found.
func (c *Cache) SetNegativeCache(ctx context.Context, id int64) error {
	err := c.client.SetEx(ctx, bookKey(id)+negCacheKeySuffix, "", NegativeCacheTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to set negative cache: %w", err)
	}

	return nil
}
