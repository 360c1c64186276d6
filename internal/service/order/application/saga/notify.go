// internal/service/order/application/saga/notify.go
package saga

import (
	"go.opentelemetry.io/otel/attribute"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/service/order/domain"
)

// NotifyHandler 是结算链的最后一步，发送下单成功通知。
// 通知是非关键路径: 发送失败只记录告警，整个结算仍然成功。
type NotifyHandler struct {
	NextHandler
}

func (h *NotifyHandler) Handle(checkoutCtx *CheckoutContext) error {
	ctx, span := checkoutCtx.Tracer.Start(checkoutCtx.Ctx, "saga.Notify")
	defer span.End()

	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("order.id", checkoutCtx.Order.ID),
	)

	if checkoutCtx.Notifier != nil {
		event := domain.NewOrderStatusChanged(checkoutCtx.Order, "")
		if err := checkoutCtx.Notifier.SendStatusChanged(ctx, event); err != nil {
			span.RecordError(err)
			logger.Ctx(ctx).Warn().Err(err).
				Str("order_id", checkoutCtx.Order.ID).
				Msg("failed to publish order created notification")
		}
	}

	span.AddEvent("Checkout saga finalized.")
	return h.executeNext(checkoutCtx)
}
