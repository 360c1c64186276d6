// internal/service/stock/application/sweeper.go
package application

import (
	"context"
	"time"

	"bazaar/internal/pkg/logger"
)

// HoldSweeper 定时扫描并释放过期的 HELD 预占。
// 它与请求路径共用同一把 per-key 锁，因此不会与正在进行的预占互相踩踏。
type HoldSweeper struct {
	ledger   *LedgerService
	interval time.Duration
}

func NewHoldSweeper(ledger *LedgerService, interval time.Duration) *HoldSweeper {
	return &HoldSweeper{ledger: ledger, interval: interval}
}

// Run 阻塞运行清理循环，直到 ctx 取消。
// 单轮失败只记录日志，下一轮继续——清理任务永远不应拖垮进程。
func (w *HoldSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Ctx(ctx).Info().Dur("interval", w.interval).Msg("hold sweeper started")
	for {
		select {
		case <-ticker.C:
			if _, err := w.ledger.ExpireStaleHolds(ctx, time.Now()); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("hold sweep cycle failed, will retry next cycle")
			}
		case <-ctx.Done():
			logger.Ctx(ctx).Info().Msg("hold sweeper stopped")
			return ctx.Err()
		}
	}
}
