// internal/service/order/domain/port/payment.go
package port

import "context"

// PaymentGateway 是订单侧对支付服务的出站端口。
// 订单只在 PENDING -> CONFIRMED 前询问一次支付结果，
// 重试策略由支付侧自理，这里是一次不透明的可失败调用。
type PaymentGateway interface {
	// ConfirmPayment 确认一笔订单的支付已完成。未支付或失败时返回错误。
	ConfirmPayment(ctx context.Context, orderID string, amount float64, currency string, method string) error
}
