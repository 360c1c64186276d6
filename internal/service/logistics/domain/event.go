// internal/service/logistics/domain/event.go
package domain

import "time"

// DeliveryStatusSynced 是配送到达关键节点时发给订单侧的状态同步命令。
// 这是物流影响订单的唯一通道。字段与订单侧消费者保持线上契约一致。
type DeliveryStatusSynced struct {
	DeliveryID string `json:"deliveryId"`
	OrderID    string `json:"orderId"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	OccurredAt int64  `json:"occurredAt"`
	TraceID    string `json:"traceId,omitempty"`
}

// 同步命令的状态常量。
const (
	SyncPickedUp  = "PICKED_UP"
	SyncDelivered = "DELIVERED"
	SyncFailed    = "FAILED"
	SyncCancelled = "CANCELLED"
)

// LocationReport 是承运商上报的一次位置。推送网关订阅这些事件，
// 把实时位置流给正在查看订单的客户。
type LocationReport struct {
	DeliveryID string  `json:"deliveryId"`
	OrderID    string  `json:"orderId"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Note       string  `json:"note,omitempty"`
	ReportedAt int64   `json:"reportedAt"`
}

// NewStatusSync 构造一条状态同步命令。
func NewStatusSync(delivery *Delivery, status, reason string) *DeliveryStatusSynced {
	return &DeliveryStatusSynced{
		DeliveryID: delivery.ID,
		OrderID:    delivery.OrderID,
		Status:     status,
		Reason:     reason,
		OccurredAt: time.Now().Unix(),
	}
}
