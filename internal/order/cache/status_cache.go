package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/domain"
	"storefront/internal/dto"
)

const keyOrderStatus = "order_status:%d"

// setIfNewer writes ARGV[2] unless the stored entry already carries a
// version >= ARGV[1]. ARGV[3] is the TTL in milliseconds, 0 for none.
var setIfNewer = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
	local ok, entry = pcall(cjson.decode, cur)
	if ok and type(entry) == 'table' then
		local v = tonumber(entry.version)
		if v and v >= tonumber(ARGV[1]) then
			return 0
		end
	end
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

type entry struct {
	Version int64                   `json:"version"`
	Status  dto.OrderStatusResponse `json:"status"`
}

// RedisStatusCache keeps the latest payment and delivery status per order.
// MySQL stays the source of truth; entries expire after ttl. Writes are
// ordered by Order.Version, so a late write of an older row is dropped.
type RedisStatusCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStatusCache(client redis.Cmdable, ttl time.Duration) *RedisStatusCache {
	return &RedisStatusCache{client: client, ttl: ttl}
}

func key(orderID int64) string {
	return fmt.Sprintf(keyOrderStatus, orderID)
}

// Get returns nil and no error on a miss.
func (c *RedisStatusCache) Get(ctx context.Context, orderID int64) (*dto.OrderStatusResponse, error) {
	raw, err := c.client.Get(ctx, key(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading order status cache: %w", err)
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decoding order status cache: %w", err)
	}
	return &e.Status, nil
}

// Set stores o's status unless the cache already holds the same or a newer
// version of the order.
func (c *RedisStatusCache) Set(ctx context.Context, o domain.Order) error {
	raw, err := json.Marshal(entry{Version: o.Version, Status: dto.NewOrderStatusResponse(o)})
	if err != nil {
		return fmt.Errorf("encoding order status: %w", err)
	}
	err = setIfNewer.Run(ctx, c.client, []string{key(o.ID)}, o.Version, raw, c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("writing order status cache: %w", err)
	}
	return nil
}
