// internal/service/order/application/saga/validate.go
package saga

import (
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"bazaar/internal/service/order/domain"
)

// ValidationHandler 是结算链的第一步，校验输入条目。
// 到达领域核心的请求必须是完整且类型化的，边界不做兜底。
type ValidationHandler struct {
	NextHandler
}

func (h *ValidationHandler) Handle(checkoutCtx *CheckoutContext) error {
	_, span := checkoutCtx.Tracer.Start(checkoutCtx.Ctx, "saga.Validate")
	defer span.End()

	if len(checkoutCtx.Lines) == 0 {
		span.SetAttributes(attribute.Bool("checkout.empty", true))
		return errors.Wrapf(domain.ErrEmptyOrder, "checkout for customer %s", checkoutCtx.Order.CustomerID)
	}
	for _, line := range checkoutCtx.Lines {
		if line.Quantity <= 0 {
			return errors.Wrapf(domain.ErrInvalidQuantity,
				"product %s quantity %d", line.ProductID, line.Quantity)
		}
		if line.ProductID == "" || line.WarehouseID == "" {
			return errors.New("checkout line missing product or warehouse id")
		}
	}
	span.SetAttributes(attribute.Int("checkout.lines", len(checkoutCtx.Lines)))

	return h.executeNext(checkoutCtx)
}
