// internal/service/stock/application/ledger.go
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/service/stock/domain"
	"bazaar/internal/service/stock/domain/port"
)

// LedgerService 是库存台账的应用服务，负责预占的创建、提交、释放与过期清理。
// 对同一 (productID, warehouseID) 的所有修改都在 KeyLocker 的保护下串行执行。
type LedgerService struct {
	stocks       domain.StockRepository
	reservations domain.ReservationRepository
	locker       port.KeyLocker
	cache        port.AvailabilityCache // 可为 nil，缓存是可选的
	holdTimeout  time.Duration
	tracer       trace.Tracer
}

func NewLedgerService(
	stocks domain.StockRepository,
	reservations domain.ReservationRepository,
	locker port.KeyLocker,
	cache port.AvailabilityCache,
	holdTimeout time.Duration,
	tracer trace.Tracer,
) *LedgerService {
	return &LedgerService{
		stocks:       stocks,
		reservations: reservations,
		locker:       locker,
		cache:        cache,
		holdTimeout:  holdTimeout,
		tracer:       tracer,
	}
}

// LockKey 计算 (productID, warehouseID) 对应的锁键。
// 订单侧对多个条目加锁时按该键排序，保证全局一致的加锁顺序。
func LockKey(productID, warehouseID string) string {
	return fmt.Sprintf("%s/%s", productID, warehouseID)
}

// Reserve 为订单预占库存: 原子地校验可售量并创建一个 HELD 预占。
// 可售量不足时返回 ErrInsufficientStock，库存不发生任何变化。
func (s *LedgerService) Reserve(ctx context.Context, productID, warehouseID string, quantity int64, orderID string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "stock.Reserve", trace.WithAttributes(
		attribute.String("product.id", productID),
		attribute.String("warehouse.id", warehouseID),
		attribute.Int64("quantity", quantity),
		attribute.String("order.id", orderID),
	))
	defer span.End()

	if quantity <= 0 {
		return "", errors.Wrapf(domain.ErrInvalidQuantity, "reserve quantity %d", quantity)
	}

	release, err := s.locker.Acquire(ctx, LockKey(productID, warehouseID))
	if err != nil {
		return "", errors.Wrap(err, "failed to acquire stock lock")
	}
	defer release()

	record, err := s.stocks.Get(ctx, productID, warehouseID)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	if err := record.Hold(quantity); err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			reservationsRejected.Inc()
			span.SetStatus(codes.Error, "insufficient stock")
		}
		return "", err
	}
	if err := s.stocks.Save(ctx, record); err != nil {
		return "", errors.Wrap(err, "failed to save stock record")
	}

	reservation := domain.NewReservation(orderID, productID, warehouseID, quantity)
	if err := s.reservations.Save(ctx, reservation); err != nil {
		// 预占记录写入失败时回滚刚才的预占量，避免悬挂的 Hold
		_ = record.ReleaseHold(quantity)
		_ = s.stocks.Save(ctx, record)
		return "", errors.Wrap(err, "failed to save reservation")
	}

	reservationsCreated.Inc()
	s.refreshCache(ctx, record)
	logger.Ctx(ctx).Info().
		Str("reservation_id", reservation.ID).
		Str("order_id", orderID).
		Int64("available", record.Available()).
		Msg("stock reserved")
	return reservation.ID, nil
}

// Commit 提交一个 HELD 预占: 物理库存与预占量一起扣减。
// 对已 COMMITTED 的预占重复调用是幂等空操作。
func (s *LedgerService) Commit(ctx context.Context, reservationID string) error {
	ctx, span := s.tracer.Start(ctx, "stock.Commit",
		trace.WithAttributes(attribute.String("reservation.id", reservationID)))
	defer span.End()

	return s.mutateReservation(ctx, reservationID, func(r *domain.Reservation, rec *domain.StockRecord) error {
		if err := r.Commit(); err != nil {
			return err
		}
		if err := rec.CommitHold(r.Quantity); err != nil {
			return err
		}
		reservationsCommitted.Inc()
		return nil
	})
}

// Release 释放一个 HELD 预占: 预占量回到可售池，物理库存不变。
// 对已 RELEASED 的预占重复调用是幂等空操作。
func (s *LedgerService) Release(ctx context.Context, reservationID string) error {
	ctx, span := s.tracer.Start(ctx, "stock.Release",
		trace.WithAttributes(attribute.String("reservation.id", reservationID)))
	defer span.End()

	return s.mutateReservation(ctx, reservationID, func(r *domain.Reservation, rec *domain.StockRecord) error {
		if err := r.Release(); err != nil {
			return err
		}
		if err := rec.ReleaseHold(r.Quantity); err != nil {
			return err
		}
		reservationsReleased.Inc()
		return nil
	})
}

// mutateReservation 在预占对应键的锁内执行状态变更，保证与并发的
// Reserve/Release/过期清理互斥。ErrAlreadyProcessed 被吞掉并视为成功。
func (s *LedgerService) mutateReservation(ctx context.Context, reservationID string, mutate func(*domain.Reservation, *domain.StockRecord) error) error {
	reservation, err := s.reservations.Get(ctx, reservationID)
	if err != nil {
		return err
	}

	release, err := s.locker.Acquire(ctx, LockKey(reservation.ProductID, reservation.WarehouseID))
	if err != nil {
		return errors.Wrap(err, "failed to acquire stock lock")
	}
	defer release()

	// 拿到锁之后重新读取，避免基于过期快照做状态判断
	reservation, err = s.reservations.Get(ctx, reservationID)
	if err != nil {
		return err
	}
	record, err := s.stocks.Get(ctx, reservation.ProductID, reservation.WarehouseID)
	if err != nil {
		return err
	}

	if err := mutate(reservation, record); err != nil {
		if errors.Is(err, domain.ErrAlreadyProcessed) {
			return nil
		}
		return err
	}

	if err := s.stocks.Save(ctx, record); err != nil {
		return errors.Wrap(err, "failed to save stock record")
	}
	if err := s.reservations.Save(ctx, reservation); err != nil {
		return errors.Wrap(err, "failed to save reservation")
	}
	s.refreshCache(ctx, record)
	return nil
}

// ExpireStaleHolds 释放所有超过持有时限的 HELD 预占，返回释放数量。
// 单个预占的失败只记录日志，不中断整个清理周期。
func (s *LedgerService) ExpireStaleHolds(ctx context.Context, now time.Time) (int, error) {
	ctx, span := s.tracer.Start(ctx, "stock.ExpireStaleHolds")
	defer span.End()

	stale, err := s.reservations.FindStaleHeld(ctx, now.Add(-s.holdTimeout))
	if err != nil {
		sweepFailures.Inc()
		return 0, errors.Wrap(err, "failed to scan stale holds")
	}

	released := 0
	for _, reservation := range stale {
		if err := s.Release(ctx, reservation.ID); err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("reservation_id", reservation.ID).
				Msg("failed to expire stale hold")
			continue
		}
		holdsExpired.Inc()
		released++
	}

	if released > 0 {
		span.SetAttributes(attribute.Int("holds.released", released))
		logger.Ctx(ctx).Info().Int("released", released).Msg("expired stale holds")
	}
	return released, nil
}

// Availability 返回当前可售量。购物车的加购检查走这里（或其缓存前端）。
func (s *LedgerService) Availability(ctx context.Context, productID, warehouseID string) (int64, error) {
	record, err := s.stocks.Get(ctx, productID, warehouseID)
	if err != nil {
		return 0, err
	}
	return record.Available(), nil
}

// AdjustStock 将某个键的物理库存调整到 quantity。记录不存在时创建。
// 用于入库、盘点修正和退货回仓。
func (s *LedgerService) AdjustStock(ctx context.Context, productID, warehouseID string, quantity int64) error {
	ctx, span := s.tracer.Start(ctx, "stock.AdjustStock")
	defer span.End()

	release, err := s.locker.Acquire(ctx, LockKey(productID, warehouseID))
	if err != nil {
		return errors.Wrap(err, "failed to acquire stock lock")
	}
	defer release()

	record, err := s.stocks.Get(ctx, productID, warehouseID)
	if errors.Is(err, domain.ErrNotFound) {
		record = &domain.StockRecord{ProductID: productID, WarehouseID: warehouseID}
	} else if err != nil {
		return err
	}

	if err := record.Adjust(quantity); err != nil {
		return err
	}
	if err := s.stocks.Save(ctx, record); err != nil {
		return errors.Wrap(err, "failed to save stock record")
	}
	s.refreshCache(ctx, record)
	return nil
}

// Restock 将 quantity 件库存加回可售池，用于退货回仓。
func (s *LedgerService) Restock(ctx context.Context, productID, warehouseID string, quantity int64) error {
	ctx, span := s.tracer.Start(ctx, "stock.Restock")
	defer span.End()

	if quantity <= 0 {
		return errors.Wrapf(domain.ErrInvalidQuantity, "restock quantity %d", quantity)
	}

	release, err := s.locker.Acquire(ctx, LockKey(productID, warehouseID))
	if err != nil {
		return errors.Wrap(err, "failed to acquire stock lock")
	}
	defer release()

	record, err := s.stocks.Get(ctx, productID, warehouseID)
	if errors.Is(err, domain.ErrNotFound) {
		record = &domain.StockRecord{ProductID: productID, WarehouseID: warehouseID}
	} else if err != nil {
		return err
	}

	if err := record.Adjust(record.Quantity + quantity); err != nil {
		return err
	}
	if err := s.stocks.Save(ctx, record); err != nil {
		return errors.Wrap(err, "failed to save stock record")
	}
	s.refreshCache(ctx, record)
	logger.Ctx(ctx).Info().
		Str("product_id", productID).
		Str("warehouse_id", warehouseID).
		Int64("quantity", quantity).
		Msg("stock restocked")
	return nil
}

// refreshCache 尽力而为地刷新可售量缓存，失败只记日志。
func (s *LedgerService) refreshCache(ctx context.Context, record *domain.StockRecord) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetAvailable(ctx, record.ProductID, record.WarehouseID, record.Available()); err != nil {
		logger.Ctx(ctx).Warn().Err(err).
			Str("product_id", record.ProductID).
			Msg("failed to refresh availability cache")
	}
}
