// internal/service/order/domain/port/notification.go
package port

import (
	"context"

	"bazaar/internal/service/order/domain"
)

// NotificationProducer 是订单侧的状态变更通知端口。
// 投递是尽力而为的: 发送失败只记录，不影响主流程。
type NotificationProducer interface {
	SendStatusChanged(ctx context.Context, event *domain.OrderStatusChanged) error
}
