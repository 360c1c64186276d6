// internal/service/order/application/saga/clear_cart.go
package saga

import (
	"bazaar/internal/pkg/logger"
)

// ClearCartHandler 在订单与预占都已落库之后清空购物车。
// 顺序不可调换: 先清空再落库的话，落库前崩溃会让客户白白丢掉购物车。
// 直接结算（无购物车）时 Cart 为 nil，本步骤跳过。
type ClearCartHandler struct {
	NextHandler
}

func (h *ClearCartHandler) Handle(checkoutCtx *CheckoutContext) error {
	if checkoutCtx.Cart == nil {
		return h.executeNext(checkoutCtx)
	}

	ctx, span := checkoutCtx.Tracer.Start(checkoutCtx.Ctx, "saga.ClearCart")
	defer span.End()

	// 清空失败不回滚订单——订单已经有效，残留的购物车下次结算前清理即可
	if err := checkoutCtx.Cart.Clear(ctx, checkoutCtx.Order.CustomerID); err != nil {
		span.RecordError(err)
		logger.Ctx(ctx).Warn().Err(err).
			Str("order_id", checkoutCtx.Order.ID).
			Str("customer_id", checkoutCtx.Order.CustomerID).
			Msg("failed to clear cart after checkout")
	}

	return h.executeNext(checkoutCtx)
}
