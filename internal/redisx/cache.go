package redisx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// OrderCache drops the cached copy of one order. Best effort: redis down
// just means the entry ages out by TTL instead.
type OrderCache struct {
	r *redis.Client
}

func NewOrderCache(r *redis.Client) *OrderCache { return &OrderCache{r: r} }

func (c *OrderCache) Invalidate(ctx context.Context, orderNo string) {
	if c == nil || c.r == nil {
		return
	}
	_ = c.r.Del(ctx, fmt.Sprintf(KeyOrder, orderNo)).Err()
}
