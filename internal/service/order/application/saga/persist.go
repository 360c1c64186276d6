// internal/service/order/application/saga/persist.go
package saga

import (
	"github.com/pkg/errors"
)

// PersistOrderHandler 将 PENDING 订单落库。
// 这一步之后订单对外可见，之前的任何失败都只留下可补偿的预占。
type PersistOrderHandler struct {
	NextHandler
}

func (h *PersistOrderHandler) Handle(checkoutCtx *CheckoutContext) error {
	ctx, span := checkoutCtx.Tracer.Start(checkoutCtx.Ctx, "saga.PersistOrder")
	defer span.End()

	if err := checkoutCtx.Repo.Save(ctx, checkoutCtx.Order); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to save pending order")
	}
	span.AddEvent("Pending order saved.")

	return h.executeNext(checkoutCtx)
}
