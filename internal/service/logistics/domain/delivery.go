// internal/service/logistics/domain/delivery.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Address 是物流域的地址值对象。与订单域的地址结构线上契约一致，
// 但两个域各自持有定义，互不引用。
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

// Delivery 是配送单聚合根。每张订单同一时刻只有一张配送单（1:1），
// 对订单的影响只通过状态同步命令传递，从不直接改订单。
type Delivery struct {
	ID              string
	OrderID         string
	CarrierID       string
	Status          Status
	PickupAddress   Address
	DeliveryAddress Address

	EstimatedPickup   *time.Time
	EstimatedDelivery *time.Time
	ActualPickup      *time.Time
	ActualDelivery    *time.Time

	Cost         float64
	Currency     string
	Notes        string
	CancelReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewDelivery 为订单创建一张 PENDING 配送单，此时尚未选承运商。
func NewDelivery(orderID string, pickup, dropoff Address, currency string) (*Delivery, error) {
	if orderID == "" {
		return nil, errors.New("order id is required")
	}
	now := time.Now()
	return &Delivery{
		ID:              uuid.New().String(),
		OrderID:         orderID,
		Status:          StatusPending,
		PickupAddress:   pickup,
		DeliveryAddress: dropoff,
		Currency:        currency,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// AssignCarrier 指派承运商。只允许在 PENDING 状态下指派。
func (d *Delivery) AssignCarrier(carrierID string, estimatedPickup, estimatedDelivery time.Time, cost float64) error {
	if d.Status != StatusPending {
		return errors.Wrapf(ErrInvalidTransition,
			"delivery %s: cannot assign carrier in state %s", d.ID, d.Status)
	}
	d.CarrierID = carrierID
	d.EstimatedPickup = &estimatedPickup
	d.EstimatedDelivery = &estimatedDelivery
	d.Cost = cost
	d.Status = StatusAssigned
	d.UpdatedAt = time.Now()
	return nil
}

// Advance 沿序列推进一步，或进入 FAILED。揽收与送达时刻随流转记录。
func (d *Delivery) Advance(to Status) error {
	if to == StatusCancelled {
		return errors.Wrapf(ErrInvalidTransition,
			"delivery %s: use Cancel for cancellation", d.ID)
	}
	// 指派必须经过 AssignCarrier,那里才有承运商可用性检查
	if to == StatusAssigned {
		return errors.Wrapf(ErrInvalidTransition,
			"delivery %s: use AssignCarrier for assignment", d.ID)
	}
	if !CanAdvance(d.Status, to) {
		return errors.Wrapf(ErrInvalidTransition,
			"delivery %s: %s -> %s", d.ID, d.Status, to)
	}
	now := time.Now()
	switch to {
	case StatusInTransit:
		d.ActualPickup = &now
	case StatusDelivered:
		d.ActualDelivery = &now
	}
	d.Status = to
	d.UpdatedAt = now
	return nil
}

// Cancel 取消配送单并记录原因。终态不可取消。
func (d *Delivery) Cancel(reason string) error {
	if d.Status.IsTerminal() {
		return errors.Wrapf(ErrInvalidTransition,
			"delivery %s: cannot cancel in state %s", d.ID, d.Status)
	}
	d.Status = StatusCancelled
	d.CancelReason = reason
	d.UpdatedAt = time.Now()
	return nil
}
