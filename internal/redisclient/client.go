package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pos-service/internal/models"

	"github.com/go-redis/redis/v8"
)

const tableStatusKey = "pos:table-status"

type Client struct {
	rdb       *redis.Client
	statusTTL time.Duration
}

// NewClient creates a new Redis client for the table status board cache
func NewClient(addr, password string, db int, statusTTL time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, statusTTL: statusTTL}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetTableStatuses returns the cached status board, or (nil, false, nil) on
// a cache miss.
func (c *Client) GetTableStatuses(ctx context.Context) ([]models.TableStatus, bool, error) {
	raw, err := c.rdb.Get(ctx, tableStatusKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read table status cache: %w", err)
	}

	var statuses []models.TableStatus
	if err := json.Unmarshal(raw, &statuses); err != nil {
		return nil, false, fmt.Errorf("failed to decode table status cache: %w", err)
	}

	return statuses, true, nil
}

// SetTableStatuses caches the status board with a short TTL so a stale board
// expires on its own even if an invalidation is lost.
func (c *Client) SetTableStatuses(ctx context.Context, statuses []models.TableStatus) error {
	raw, err := json.Marshal(statuses)
	if err != nil {
		return fmt.Errorf("failed to encode table statuses: %w", err)
	}

	return c.rdb.Set(ctx, tableStatusKey, raw, c.statusTTL).Err()
}

// InvalidateTableStatuses drops the cached board after a ledger write.
func (c *Client) InvalidateTableStatuses(ctx context.Context) error {
	return c.rdb.Del(ctx, tableStatusKey).Err()
}
