// internal/service/order/domain/errors.go
package domain

import "github.com/pkg/errors"

var (
	// ErrNotFound 订单不存在
	ErrNotFound = errors.New("order: not found")
	// ErrInvalidTransition 非法的状态流转
	ErrInvalidTransition = errors.New("order: invalid transition")
	// ErrOutOfStock 结算时库存预占失败
	ErrOutOfStock = errors.New("order: out of stock")
	// ErrInvalidQuantity 条目数量非法
	ErrInvalidQuantity = errors.New("order: invalid quantity")
	// ErrEmptyOrder 订单没有任何条目
	ErrEmptyOrder = errors.New("order: no items")
	// ErrReturnWindowClosed 超出退货时限
	ErrReturnWindowClosed = errors.New("order: return window closed")
)
