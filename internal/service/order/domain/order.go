// internal/service/order/domain/order.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Address 是订单与配送共用的地址值对象。
type Address struct {
	Street      string  `json:"street"`
	House       string  `json:"house"`
	Apartment   string  `json:"apartment,omitempty"`
	City        string  `json:"city"`
	Region      string  `json:"region,omitempty"`
	PostalCode  string  `json:"postalCode,omitempty"`
	Country     string  `json:"country"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
	ContactName string  `json:"contactName,omitempty"`
	Phone       string  `json:"phone,omitempty"`
}

// OrderItem 是下单时刻的商品快照。
// 目录侧后续的改名、改价不会回溯影响已下的订单。
type OrderItem struct {
	ID            string
	ProductID     string
	ProductName   string
	WarehouseID   string
	SellerID      string
	Quantity      int64
	UnitPrice     float64
	TotalPrice    float64
	ReservationID string // 结算时创建的库存预占
}

// Order 是订单聚合的根实体。状态只能沿 validTransitions 流转，
// 所有修改入口都在聚合方法上，应用层不直接改字段。
type Order struct {
	ID                 string
	CustomerID         string
	Items              []OrderItem
	Status             Status
	PaymentStatus      PaymentStatus
	PaymentMethod      PaymentMethod
	DeliveryMethod     DeliveryMethod
	DeliveryAddress    Address
	TotalAmount        float64
	Currency           string
	Notes              string
	CancellationReason string
	EstimatedDelivery  *time.Time
	ActualDelivery     *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewOrder 创建一个 PENDING 状态的订单。条目快照由结算流程填充。
func NewOrder(customerID string, deliveryMethod DeliveryMethod, paymentMethod PaymentMethod, address Address, currency string) (*Order, error) {
	if customerID == "" {
		return nil, errors.New("customer id is required")
	}
	now := time.Now()
	return &Order{
		ID:              uuid.New().String(),
		CustomerID:      customerID,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		PaymentMethod:   paymentMethod,
		DeliveryMethod:  deliveryMethod,
		DeliveryAddress: address,
		Currency:        currency,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// AddItem 追加一条商品快照并累加总额。
func (o *Order) AddItem(item OrderItem) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.TotalPrice = item.UnitPrice * float64(item.Quantity)
	o.Items = append(o.Items, item)
	o.TotalAmount += item.TotalPrice
	o.UpdatedAt = time.Now()
}

func (o *Order) transitionTo(to Status) error {
	if !CanTransition(o.Status, to) {
		return errors.Wrapf(ErrInvalidTransition, "order %s: %s -> %s", o.ID, o.Status, to)
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	return nil
}

// Confirm 确认订单（支付确认通过后调用）。
func (o *Order) Confirm() error {
	if err := o.transitionTo(StatusConfirmed); err != nil {
		return err
	}
	o.PaymentStatus = PaymentPaid
	return nil
}

// StartProcessing 进入备货状态。
func (o *Order) StartProcessing() error {
	return o.transitionTo(StatusProcessing)
}

// MarkReadyForDelivery 备货完成。配送单的创建由应用层在流转成功后触发。
func (o *Order) MarkReadyForDelivery() error {
	return o.transitionTo(StatusReadyForDelivery)
}

// MarkInDelivery 承运商已揽收。
func (o *Order) MarkInDelivery() error {
	return o.transitionTo(StatusInDelivery)
}

// MarkDelivered 订单送达。预占的提交由应用层在流转前完成。
func (o *Order) MarkDelivered(at time.Time) error {
	if err := o.transitionTo(StatusDelivered); err != nil {
		return err
	}
	o.ActualDelivery = &at
	return nil
}

// Cancel 取消订单并记录原因。只允许从 PENDING/CONFIRMED/PROCESSING 取消。
func (o *Order) Cancel(reason string) error {
	if err := o.transitionTo(StatusCancelled); err != nil {
		return err
	}
	o.CancellationReason = reason
	if o.PaymentStatus == PaymentPaid {
		o.PaymentStatus = PaymentRefunded
	}
	return nil
}

// Return 退货。只允许在送达后的退货时限内发起。
func (o *Order) Return(now time.Time, window time.Duration) error {
	if o.Status == StatusDelivered && o.ActualDelivery != nil &&
		now.After(o.ActualDelivery.Add(window)) {
		return errors.Wrapf(ErrReturnWindowClosed,
			"order %s delivered at %s", o.ID, o.ActualDelivery.Format(time.RFC3339))
	}
	if err := o.transitionTo(StatusReturned); err != nil {
		return err
	}
	o.PaymentStatus = PaymentRefunded
	return nil
}

// ReopenAfterDeliveryFailure 配送失败后把订单退回备货状态，等待重新发货。
func (o *Order) ReopenAfterDeliveryFailure() error {
	if o.Status != StatusReadyForDelivery && o.Status != StatusInDelivery {
		return errors.Wrapf(ErrInvalidTransition,
			"order %s: cannot reopen from %s", o.ID, o.Status)
	}
	return o.transitionTo(StatusProcessing)
}
