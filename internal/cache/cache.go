package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	projectViewPrefix = "project:view:"
	defaultTTL        = 5 * time.Minute
)

// ProjectViewCache stores rendered project views in Redis so membership
// mutations can invalidate them. Misses are not errors.
type ProjectViewCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(addr string) (*ProjectViewCache, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &ProjectViewCache{rdb: rdb, ttl: defaultTTL}, nil
}

func (c *ProjectViewCache) GetProject(ctx context.Context, projectID uuid.UUID) ([]byte, error) {
	payload, err := c.rdb.Get(ctx, projectViewPrefix+projectID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *ProjectViewCache) SetProject(ctx context.Context, projectID uuid.UUID, payload []byte) error {
	return c.rdb.Set(ctx, projectViewPrefix+projectID.String(), payload, c.ttl).Err()
}

func (c *ProjectViewCache) InvalidateProject(ctx context.Context, projectID uuid.UUID) error {
	return c.rdb.Del(ctx, projectViewPrefix+projectID.String()).Err()
}

func (c *ProjectViewCache) Close() error {
	return c.rdb.Close()
}
