package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"guestbook/internal/model"
)

const (
	generationKey   = "guestbook:messages:generation"
	recentKeyPrefix = "guestbook:messages:recent:"
)

// RecentCache keeps the rendered-page message list in redis. Entries are
// keyed by a generation counter that every submit bumps, so a list read
// before a submit can only be written under a generation nobody reads again.
type RecentCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewRecentCache(client *redisv9.Client, ttl time.Duration) *RecentCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RecentCache{
		client: client,
		ttl:    ttl,
	}
}

// GetRecent returns the cached list for the current generation. The
// generation is returned on a miss too and must be passed to SetRecent.
func (c *RecentCache) GetRecent(ctx context.Context, limit int) ([]model.Message, int64, bool, error) {
	generation, err := c.generation(ctx)
	if err != nil {
		return nil, 0, false, err
	}

	raw, err := c.client.Get(ctx, c.recentKey(generation, limit)).Bytes()
	if errors.Is(err, redisv9.Nil) {
		return nil, generation, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("redis get recent messages failed: %w", err)
	}

	var messages []model.Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, 0, false, fmt.Errorf("unmarshal cached messages failed: %w", err)
	}
	return messages, generation, true, nil
}

func (c *RecentCache) SetRecent(ctx context.Context, limit int, generation int64, messages []model.Message) error {
	if messages == nil {
		messages = []model.Message{}
	}
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal recent messages failed: %w", err)
	}
	if err := c.client.Set(ctx, c.recentKey(generation, limit), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set recent messages failed: %w", err)
	}
	return nil
}

// Invalidate moves readers to a new generation. Lists of older generations
// expire on their own.
func (c *RecentCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("redis bump recent generation failed: %w", err)
	}
	return nil
}

func (c *RecentCache) generation(ctx context.Context) (int64, error) {
	generation, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redisv9.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get recent generation failed: %w", err)
	}
	return generation, nil
}

func (c *RecentCache) recentKey(generation int64, limit int) string {
	return fmt.Sprintf("%s%d:%d", recentKeyPrefix, generation, limit)
}
