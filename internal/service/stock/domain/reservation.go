// internal/service/stock/domain/reservation.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ReservationState 定义了库存预占的生命周期状态
type ReservationState string

const (
	StateHeld      ReservationState = "HELD"      // 已预占，等待订单走完流程
	StateCommitted ReservationState = "COMMITTED" // 已提交，库存实际出库
	StateReleased  ReservationState = "RELEASED"  // 已释放（取消或超时）
)

// Reservation 是一次库存预占。创建即为 HELD，
// 订单进入不可取消状态时 COMMITTED，取消或超时则 RELEASED。
type Reservation struct {
	ID          string
	OrderID     string
	ProductID   string
	WarehouseID string
	Quantity    int64
	State       ReservationState
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewReservation 工厂函数，创建一个 HELD 状态的预占。
func NewReservation(orderID, productID, warehouseID string, quantity int64) *Reservation {
	now := time.Now()
	return &Reservation{
		ID:          uuid.New().String(),
		OrderID:     orderID,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    quantity,
		State:       StateHeld,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Commit 将预占标记为已提交。
// 重复提交返回 ErrAlreadyProcessed（调用方视为幂等成功）。
func (r *Reservation) Commit() error {
	switch r.State {
	case StateCommitted:
		return ErrAlreadyProcessed
	case StateHeld:
		r.State = StateCommitted
		r.UpdatedAt = time.Now()
		return nil
	default:
		return errors.Wrapf(ErrInvalidState, "cannot commit reservation %s in state %s", r.ID, r.State)
	}
}

// Release 将预占标记为已释放。
// 重复释放返回 ErrAlreadyProcessed；已提交的预占不可再释放。
func (r *Reservation) Release() error {
	switch r.State {
	case StateReleased:
		return ErrAlreadyProcessed
	case StateHeld:
		r.State = StateReleased
		r.UpdatedAt = time.Now()
		return nil
	default:
		return errors.Wrapf(ErrInvalidState, "cannot release reservation %s in state %s", r.ID, r.State)
	}
}

// ExpiredAt 判断该预占在 now 时刻是否已超过持有时限。
func (r *Reservation) ExpiredAt(now time.Time, holdTimeout time.Duration) bool {
	return r.State == StateHeld && r.CreatedAt.Before(now.Add(-holdTimeout))
}
