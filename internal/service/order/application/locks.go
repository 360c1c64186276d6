// internal/service/order/application/locks.go
package application

import (
	"context"
	"sync"
)

// orderLocks 按 orderID 串行化状态流转: 同一订单不允许两个并发流转竞争，
// 不同订单完全并行。条目用引用计数回收，不随订单数无界增长。
type orderLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	ch   chan struct{}
	refs int
}

func newOrderLocks() *orderLocks {
	return &orderLocks{entries: make(map[string]*lockEntry)}
}

// acquire 阻塞到拿到 orderID 的锁或 ctx 取消，返回释放函数。
func (l *orderLocks) acquire(ctx context.Context, orderID string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.entries[orderID]
	if !ok {
		entry = &lockEntry{ch: make(chan struct{}, 1)}
		l.entries[orderID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.ch <- struct{}{}:
		return func() {
			<-entry.ch
			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.entries, orderID)
			}
			l.mu.Unlock()
		}, nil
	case <-ctx.Done():
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, orderID)
		}
		l.mu.Unlock()
		return nil, ctx.Err()
	}
}
