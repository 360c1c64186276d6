// internal/service/order/domain/event.go
package domain

import "time"

// OrderStatusChanged 是订单状态变更时发布的通知事件（尽力而为投递）。
type OrderStatusChanged struct {
	OrderID    string  `json:"orderId"`
	CustomerID string  `json:"customerId"`
	From       Status  `json:"from"`
	To         Status  `json:"to"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	OccurredAt int64   `json:"occurredAt"`
}

// DeliveryStatusSynced 是物流侧在配送到达终态时发出的状态同步命令。
// 订单侧的消费者适配器消费它并驱动订单状态机，物流永远不直接改订单。
type DeliveryStatusSynced struct {
	DeliveryID string `json:"deliveryId"`
	OrderID    string `json:"orderId"`
	Status     string `json:"status"` // DELIVERED / FAILED / CANCELLED
	Reason     string `json:"reason,omitempty"`
	OccurredAt int64  `json:"occurredAt"`
	TraceID    string `json:"traceId,omitempty"`
}

// 配送终态常量，与物流侧保持一致的线上契约。
const (
	SyncPickedUp  = "PICKED_UP"
	SyncDelivered = "DELIVERED"
	SyncFailed    = "FAILED"
	SyncCancelled = "CANCELLED"
)

// NewOrderStatusChanged 构造一条状态变更通知。
func NewOrderStatusChanged(order *Order, from Status) *OrderStatusChanged {
	return &OrderStatusChanged{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		From:       from,
		To:         order.Status,
		Amount:     order.TotalAmount,
		Currency:   order.Currency,
		OccurredAt: time.Now().Unix(),
	}
}
