// internal/service/order/domain/port/delivery.go
package port

import (
	"context"

	"bazaar/internal/service/order/domain"
)

// DeliveryRequest 是创建配送单所需的全部信息。
type DeliveryRequest struct {
	OrderID         string         `json:"orderId"`
	PickupAddress   domain.Address `json:"pickupAddress"`
	DeliveryAddress domain.Address `json:"deliveryAddress"`
	Currency        string         `json:"currency"`
}

// DeliveryRequester 是订单侧对物流协调器的出站端口。
// 订单备货完成后请求创建配送单，返回配送单 ID。
type DeliveryRequester interface {
	RequestDelivery(ctx context.Context, req *DeliveryRequest) (string, error)
}
