// internal/service/order/application/dto.go
package application

import (
	"time"

	"bazaar/internal/service/order/domain"
	"bazaar/internal/service/order/domain/port"
)

// CheckoutRequest 是直接结算（不经购物车）的输入。
type CheckoutRequest struct {
	CustomerID      string          `json:"customerId"`
	Lines           []port.CartLine `json:"lines"`
	DeliveryMethod  string          `json:"deliveryMethod"`
	PaymentMethod   string          `json:"paymentMethod"`
	DeliveryAddress domain.Address  `json:"deliveryAddress"`
	Currency        string          `json:"currency"`
	Notes           string          `json:"notes,omitempty"`
}

// CheckoutCartRequest 是购物车结算的输入，条目取自客户的活动购物车。
type CheckoutCartRequest struct {
	CustomerID      string         `json:"customerId"`
	DeliveryMethod  string         `json:"deliveryMethod"`
	PaymentMethod   string         `json:"paymentMethod"`
	DeliveryAddress domain.Address `json:"deliveryAddress"`
	Currency        string         `json:"currency"`
	Notes           string         `json:"notes,omitempty"`
}

// OrderItemView 是订单条目的对外视图。
type OrderItemView struct {
	ItemID        string  `json:"itemId"`
	ProductID     string  `json:"productId"`
	ProductName   string  `json:"productName"`
	WarehouseID   string  `json:"warehouseId"`
	SellerID      string  `json:"sellerId"`
	Quantity      int64   `json:"quantity"`
	UnitPrice     float64 `json:"unitPrice"`
	TotalPrice    float64 `json:"totalPrice"`
	ReservationID string  `json:"reservationId,omitempty"`
}

// OrderView 是订单聚合的对外视图。
type OrderView struct {
	OrderID            string          `json:"orderId"`
	CustomerID         string          `json:"customerId"`
	Status             domain.Status   `json:"status"`
	PaymentStatus      string          `json:"paymentStatus"`
	PaymentMethod      string          `json:"paymentMethod"`
	DeliveryMethod     string          `json:"deliveryMethod"`
	DeliveryAddress    domain.Address  `json:"deliveryAddress"`
	Items              []OrderItemView `json:"items"`
	TotalAmount        float64         `json:"totalAmount"`
	Currency           string          `json:"currency"`
	Notes              string          `json:"notes,omitempty"`
	CancellationReason string          `json:"cancellationReason,omitempty"`
	EstimatedDelivery  *time.Time      `json:"estimatedDelivery,omitempty"`
	ActualDelivery     *time.Time      `json:"actualDelivery,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// SearchResult 是订单分页检索的结果。
type SearchResult struct {
	Orders []*OrderView `json:"orders"`
	Total  int64        `json:"total"`
	Page   int          `json:"page"`
	Limit  int          `json:"limit"`
}

func toOrderView(order *domain.Order) *OrderView {
	view := &OrderView{
		OrderID:            order.ID,
		CustomerID:         order.CustomerID,
		Status:             order.Status,
		PaymentStatus:      string(order.PaymentStatus),
		PaymentMethod:      string(order.PaymentMethod),
		DeliveryMethod:     string(order.DeliveryMethod),
		DeliveryAddress:    order.DeliveryAddress,
		TotalAmount:        order.TotalAmount,
		Currency:           order.Currency,
		Notes:              order.Notes,
		CancellationReason: order.CancellationReason,
		EstimatedDelivery:  order.EstimatedDelivery,
		ActualDelivery:     order.ActualDelivery,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
		Items:              make([]OrderItemView, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, OrderItemView{
			ItemID:        item.ID,
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			WarehouseID:   item.WarehouseID,
			SellerID:      item.SellerID,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			TotalPrice:    item.TotalPrice,
			ReservationID: item.ReservationID,
		})
	}
	return view
}
