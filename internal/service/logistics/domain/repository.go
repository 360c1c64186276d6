// internal/service/logistics/domain/repository.go
package domain

import "context"

// DeliveryRepository 定义了配送单聚合的持久化接口。
type DeliveryRepository interface {
	Save(ctx context.Context, delivery *Delivery) error
	FindByID(ctx context.Context, id string) (*Delivery, error)
	// FindByOrder 按订单查找配送单。1:1 约束靠 order_id 唯一索引保证。
	FindByOrder(ctx context.Context, orderID string) (*Delivery, error)
}

// CarrierRepository 定义了承运商注册表的持久化接口。
type CarrierRepository interface {
	Save(ctx context.Context, carrier *Carrier) error
	FindByID(ctx context.Context, id string) (*Carrier, error)
	List(ctx context.Context) ([]*Carrier, error)
}

// LocationRepository 存储承运商的位置上报历史。
type LocationRepository interface {
	Append(ctx context.Context, report *LocationReport) error
	ListByDelivery(ctx context.Context, deliveryID string) ([]*LocationReport, error)
}
