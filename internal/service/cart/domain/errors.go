// internal/service/cart/domain/errors.go
package domain

import "github.com/pkg/errors"

var (
	// ErrNotFound 购物车或购物车条目不存在
	ErrNotFound = errors.New("cart: not found")
	// ErrInvalidQuantity 数量必须为正
	ErrInvalidQuantity = errors.New("cart: invalid quantity")
	// ErrOutOfStock 加购时可售量不足（前置检查，真正的预占发生在结算时）
	ErrOutOfStock = errors.New("cart: out of stock")
)
