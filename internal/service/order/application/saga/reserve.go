// internal/service/order/application/saga/reserve.go
package saga

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	stockdomain "bazaar/internal/service/stock/domain"

	"bazaar/internal/service/order/domain"
)

// ReserveHandler 为订单的每个条目预占库存，全部成功或全部回滚。
// 条目按 (productID, warehouseID) 排序后依次加锁预占，
// 和库存侧约定一致的全局加锁顺序，避免多单互相死锁。
type ReserveHandler struct {
	NextHandler
}

func (h *ReserveHandler) Handle(checkoutCtx *CheckoutContext) error {
	ctx, span := checkoutCtx.Tracer.Start(checkoutCtx.Ctx, "saga.ReserveStock")
	defer span.End()

	order := checkoutCtx.Order
	indexes := make([]int, len(order.Items))
	for i := range indexes {
		indexes[i] = i
	}
	sort.Slice(indexes, func(a, b int) bool {
		ia, ib := order.Items[indexes[a]], order.Items[indexes[b]]
		if ia.ProductID != ib.ProductID {
			return ia.ProductID < ib.ProductID
		}
		return ia.WarehouseID < ib.WarehouseID
	})

	for _, idx := range indexes {
		item := &order.Items[idx]
		reservationID, err := checkoutCtx.Stock.Reserve(ctx, item.ProductID, item.WarehouseID, item.Quantity, order.ID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "stock reservation failed")
			if errors.Is(err, stockdomain.ErrInsufficientStock) || errors.Is(err, stockdomain.ErrNotFound) {
				return errors.Wrapf(domain.ErrOutOfStock,
					"product %s warehouse %s quantity %d", item.ProductID, item.WarehouseID, item.Quantity)
			}
			return err
		}
		item.ReservationID = reservationID

		// 每成功一件就注册对应的释放补偿，结算中途失败不留悬挂的预占
		checkoutCtx.AddCompensation(func(compCtx context.Context) {
			compCtx, compSpan := checkoutCtx.Tracer.Start(compCtx, "saga.compensation.ReleaseStock")
			defer compSpan.End()
			compSpan.SetAttributes(attribute.String("reservation.id", reservationID))
			if err := checkoutCtx.Stock.Release(compCtx, reservationID); err != nil {
				compSpan.RecordError(err)
			}
		})
	}

	span.AddEvent("All items reserved successfully.")
	return h.executeNext(checkoutCtx)
}
