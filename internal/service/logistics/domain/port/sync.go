// internal/service/logistics/domain/port/sync.go
package port

import (
	"context"

	"bazaar/internal/service/logistics/domain"
)

// OrderSyncProducer 把状态同步命令发给订单侧。
// 同步命令是订单状态机的驱动输入，发送失败必须让调用方知道。
type OrderSyncProducer interface {
	SendStatusSync(ctx context.Context, cmd *domain.DeliveryStatusSynced) error
}

// LocationPublisher 发布承运商位置事件，供推送网关订阅。
// 投递是尽力而为的。
type LocationPublisher interface {
	PublishLocation(ctx context.Context, report *domain.LocationReport) error
}
