// internal/service/order/application/saga/handler.go
package saga

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/service/order/domain"
	"bazaar/internal/service/order/domain/port"
)

// CheckoutContext 在结算 Saga 流程中传递上下文数据。
// 所有外部依赖都是抽象的出站端口。
type CheckoutContext struct {
	Ctx    context.Context
	Order  *domain.Order
	Tracer trace.Tracer

	// 结算的输入条目，定价步骤会把它们转成带快照的 OrderItem
	Lines []port.CartLine

	// 依赖出站端口
	Catalog  port.ProductCatalog
	Stock    port.StockReserver
	Repo     domain.OrderRepository
	Cart     port.CartProvider // 直接结算时为 nil
	Notifier port.NotificationProducer

	// 补偿动作按注册的逆序执行
	compensations []func(ctx context.Context)
	compLock      sync.Mutex
}

// AddCompensation 注册一个补偿动作。新动作插到队首，触发时先进后出。
func (c *CheckoutContext) AddCompensation(comp func(ctx context.Context)) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	c.compensations = append([]func(context.Context){comp}, c.compensations...)
}

// TriggerCompensation 逆序执行所有已注册的补偿动作。
// 结算失败的原因可能正是请求上下文被取消（客户端断开），
// 回滚必须照常完成，所以补偿在脱离取消信号的上下文里跑，trace 信息保留。
func (c *CheckoutContext) TriggerCompensation(ctx context.Context) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	logger.Ctx(ctx).Warn().
		Str("order_id", c.Order.ID).
		Int("compensations", len(c.compensations)).
		Msg("checkout failed, executing compensation functions")
	compCtx := context.WithoutCancel(ctx)
	for _, comp := range c.compensations {
		comp(compCtx)
	}
	c.compensations = nil
}

// Handler 是结算责任链的一个环节。
type Handler interface {
	SetNext(handler Handler) Handler
	Handle(checkoutCtx *CheckoutContext) error
}

type NextHandler struct {
	next Handler
}

func (h *NextHandler) SetNext(handler Handler) Handler {
	h.next = handler
	return handler
}

func (h *NextHandler) executeNext(checkoutCtx *CheckoutContext) error {
	if h.next != nil {
		return h.next.Handle(checkoutCtx)
	}
	return nil
}
