// internal/service/order/domain/port/policy.go
package port

import "context"

// FailureReaction 是配送失败后订单侧的处置方式。
type FailureReaction string

const (
	ReactionReopen FailureReaction = "REOPEN" // 退回 PROCESSING 重新发货
	ReactionCancel FailureReaction = "CANCEL" // 取消订单并释放预占
)

// PolicyFact 是策略表达式求值时可见的订单事实。
type PolicyFact struct {
	OrderID      string
	CustomerID   string
	Status       string
	TotalAmount  float64
	Currency     string
	ItemCount    int
	DaysSinceDelivery float64
}

// PolicyEngine 对运营可配置的业务策略求值。
// 规则本体是配置中心下发的表达式，不硬编码在引擎里。
type PolicyEngine interface {
	// ShouldRestockOnReturn 退货后库存是否回仓。
	ShouldRestockOnReturn(ctx context.Context, fact PolicyFact) (bool, error)
	// ReactOnDeliveryFailure 配送失败后重新发货还是取消订单。
	ReactOnDeliveryFailure(ctx context.Context, fact PolicyFact) (FailureReaction, error)
}
