// internal/service/order/domain/state.go
package domain

// Status 定义了订单的生命周期状态
type Status string

const (
	StatusPending          Status = "PENDING"            // 已下单，库存已预占，等待确认
	StatusConfirmed        Status = "CONFIRMED"          // 支付确认通过
	StatusProcessing       Status = "PROCESSING"         // 卖家备货中
	StatusReadyForDelivery Status = "READY_FOR_DELIVERY" // 备货完成，已请求创建配送单
	StatusInDelivery       Status = "IN_DELIVERY"        // 配送中
	StatusDelivered        Status = "DELIVERED"          // 已送达，预占已提交出库
	StatusCancelled        Status = "CANCELLED"          // 已取消，预占已释放
	StatusReturned         Status = "RETURNED"           // 已退货
)

// PaymentStatus 定义了订单的支付状态
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// DeliveryMethod 定义了订单的交付方式
type DeliveryMethod string

const (
	DeliveryPickup  DeliveryMethod = "PICKUP"
	DeliveryCourier DeliveryMethod = "DELIVERY"
	DeliveryExpress DeliveryMethod = "EXPRESS_DELIVERY"
)

// PaymentMethod 定义了订单的支付方式
type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "CASH"
	PaymentMethodCard    PaymentMethod = "CARD"
	PaymentMethodOnline  PaymentMethod = "ONLINE"
	PaymentMethodInvoice PaymentMethod = "INVOICE"
)

// validTransitions 是订单状态机的唯一事实来源。
// 不在表内的流转一律返回 ErrInvalidTransition。
var validTransitions = map[Status][]Status{
	StatusPending:          {StatusConfirmed, StatusCancelled},
	StatusConfirmed:        {StatusProcessing, StatusCancelled},
	StatusProcessing:       {StatusReadyForDelivery, StatusCancelled},
	StatusReadyForDelivery: {StatusInDelivery, StatusProcessing},
	StatusInDelivery:       {StatusDelivered, StatusProcessing},
	StatusDelivered:        {StatusReturned},
}

// CanTransition 判断 from -> to 是否是合法的状态流转。
func CanTransition(from, to Status) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal 判断状态是否为终态。
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}
