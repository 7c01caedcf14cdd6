// Package cache implements the category cache on top of Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/finance-tracker/bookkeeping/config"
	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
)

const categoryKeyPrefix = "bookkeeping:categories:"

type cachedCategory struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Color     string     `json:"color"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// categoryCache implements the adapter.CategoryCache interface.
type categoryCache struct {
	client *redis.Client
}

// NewCategoryCache creates a new Redis-backed category cache.
func NewCategoryCache(client *redis.Client) adapter.CategoryCache {
	return &categoryCache{
		client: client,
	}
}

// NewClient opens a Redis client from configuration and checks the connection.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// Get returns the cached categories and whether the entry was present.
func (c *categoryCache) Get(ctx context.Context, workspaceID uuid.UUID) ([]*entity.Category, bool, error) {
	raw, err := c.client.Get(ctx, key(workspaceID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read category cache: %w", err)
	}

	var cached []cachedCategory
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, fmt.Errorf("failed to decode category cache: %w", err)
	}

	categories := make([]*entity.Category, len(cached))
	for i, cc := range cached {
		categories[i] = &entity.Category{
			ID:          cc.ID,
			WorkspaceID: workspaceID,
			Name:        cc.Name,
			ParentID:    cc.ParentID,
			Color:       cc.Color,
			CreatedAt:   cc.CreatedAt,
			UpdatedAt:   cc.UpdatedAt,
		}
	}
	return categories, true, nil
}

// Set stores the categories for the given TTL.
func (c *categoryCache) Set(ctx context.Context, workspaceID uuid.UUID, categories []*entity.Category, ttl time.Duration) error {
	cached := make([]cachedCategory, len(categories))
	for i, cat := range categories {
		cached[i] = cachedCategory{
			ID:        cat.ID,
			Name:      cat.Name,
			ParentID:  cat.ParentID,
			Color:     cat.Color,
			CreatedAt: cat.CreatedAt,
			UpdatedAt: cat.UpdatedAt,
		}
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to encode category cache: %w", err)
	}
	if err := c.client.Set(ctx, key(workspaceID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write category cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached entry.
func (c *categoryCache) Invalidate(ctx context.Context, workspaceID uuid.UUID) error {
	if err := c.client.Del(ctx, key(workspaceID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate category cache: %w", err)
	}
	return nil
}

func key(workspaceID uuid.UUID) string {
	return categoryKeyPrefix + workspaceID.String()
}
