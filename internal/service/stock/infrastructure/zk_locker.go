// internal/service/stock/infrastructure/zk_locker.go
package infrastructure

import (
	"context"

	"github.com/pkg/errors"

	"bazaar/internal/zookeeper"
)

// ZkKeyLocker 是 port.KeyLocker 的 ZooKeeper 实现，
// 用于多实例部署时跨进程串行化同一库存键上的操作。
type ZkKeyLocker struct {
	conn *zookeeper.Conn
}

func NewZkKeyLocker(conn *zookeeper.Conn) *ZkKeyLocker {
	return &ZkKeyLocker{conn: conn}
}

func (l *ZkKeyLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lock, err := zookeeper.NewDistributedLock(l.conn, key)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create distributed lock for %s", key)
	}
	if err := lock.Lock(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to acquire distributed lock for %s", key)
	}
	return func() { _ = lock.Unlock() }, nil
}
