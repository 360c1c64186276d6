// internal/service/stock/domain/port/locker.go
package port

import "context"

// KeyLocker 是按资源键互斥的出站端口。
// 同一 (productID, warehouseID) 上的 reserve/commit/release 必须串行，
// 单实例部署用进程内锁即可，多实例部署换成 ZooKeeper 实现。
type KeyLocker interface {
	// Acquire 获取 key 上的互斥锁，阻塞直到成功或 ctx 取消。
	// 返回的 release 必须被调用，通常配合 defer。
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// AvailabilityCache 是可售量缓存的出站端口。
// 购物车的加购前置检查走缓存，避免每次加购都打到库存主存储。
type AvailabilityCache interface {
	// SetAvailable 写入某个键的最新可售量。
	SetAvailable(ctx context.Context, productID, warehouseID string, available int64) error

	// GetAvailable 读取可售量。缓存未命中时 ok 为 false。
	GetAvailable(ctx context.Context, productID, warehouseID string) (available int64, ok bool, err error)
}
