// internal/service/stock/infrastructure/keylock.go
package infrastructure

import (
	"context"
	"sync"
)

// LocalKeyLocker 是 port.KeyLocker 的进程内实现。
// 每个键对应一个容量为 1 的 channel，天然支持 ctx 取消排队。
type LocalKeyLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewLocalKeyLocker() *LocalKeyLocker {
	return &LocalKeyLocker{locks: make(map[string]chan struct{})}
}

func (l *LocalKeyLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	return ch
}

// Acquire 获取 key 上的互斥锁，阻塞直到成功或 ctx 取消。
func (l *LocalKeyLocker) Acquire(ctx context.Context, key string) (func(), error) {
	ch := l.slot(key)
	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
