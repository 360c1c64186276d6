// internal/service/stock/infrastructure/redis_cache.go
package infrastructure

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"bazaar/internal/pkg/redis"
)

const (
	availabilityKeyTTL = 24 * time.Hour
	checkScriptName    = "check_available"
)

// RedisAvailabilityCache 是 port.AvailabilityCache 的 Redis 实现。
// 台账每次变更后写入最新可售量，购物车的加购前置检查直接读缓存。
type RedisAvailabilityCache struct {
	redisClient *redis.Client
}

// NewRedisAvailabilityCache 创建缓存适配器，同时加载比较脚本。
func NewRedisAvailabilityCache(redisClient *redis.Client) (*RedisAvailabilityCache, error) {
	if err := redisClient.LoadScriptFromContent(checkScriptName, checkAvailableScript); err != nil {
		return nil, fmt.Errorf("failed to load availability check script: %w", err)
	}
	return &RedisAvailabilityCache{redisClient: redisClient}, nil
}

func availabilityKey(productID, warehouseID string) string {
	// hash tag 保证同一商品的键落在同一个 cluster slot
	return fmt.Sprintf("stock:available:{%s}:%s", productID, warehouseID)
}

func (c *RedisAvailabilityCache) SetAvailable(ctx context.Context, productID, warehouseID string, available int64) error {
	return c.redisClient.GetClient().
		Set(ctx, availabilityKey(productID, warehouseID), available, availabilityKeyTTL).Err()
}

func (c *RedisAvailabilityCache) GetAvailable(ctx context.Context, productID, warehouseID string) (int64, bool, error) {
	val, err := c.redisClient.GetClient().Get(ctx, availabilityKey(productID, warehouseID)).Int64()
	if err == goredis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}

// CheckAvailable 原子地比较缓存中的可售量与请求数量。
// 返回值: 1 够, 0 不够, -1 缓存未命中（调用方应回源台账）。
func (c *RedisAvailabilityCache) CheckAvailable(ctx context.Context, productID, warehouseID string, quantity int64) (int64, error) {
	result, err := c.redisClient.RunScript(ctx, checkScriptName,
		[]string{availabilityKey(productID, warehouseID)}, quantity)
	if err != nil {
		return -1, err
	}
	code, ok := result.(int64)
	if !ok {
		return -1, fmt.Errorf("unexpected result type from Lua script: %T", result)
	}
	return code, nil
}

var checkAvailableScript = `
-- KEYS[1]: 可售量缓存的 Key, 例如 stock:available:{prod-1}:wh-1
-- ARGV[1]: 请求的数量

local available = redis.call('get', KEYS[1])
if not available then
    return -1 -- 缓存未命中
end

if tonumber(available) >= tonumber(ARGV[1]) then
    return 1
end
return 0
`
