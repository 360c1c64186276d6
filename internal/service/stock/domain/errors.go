// internal/service/stock/domain/errors.go
package domain

import "github.com/pkg/errors"

var (
	// ErrNotFound 库存记录或预占不存在
	ErrNotFound = errors.New("stock: not found")
	// ErrInsufficientStock 可售量不足以完成预占
	ErrInsufficientStock = errors.New("stock: insufficient stock")
	// ErrInvalidState 预占状态不允许当前操作
	ErrInvalidState = errors.New("stock: invalid reservation state")
	// ErrInvalidQuantity 数量非法
	ErrInvalidQuantity = errors.New("stock: invalid quantity")
	// ErrAlreadyProcessed 重复的 commit/release，调用方应视为幂等成功
	ErrAlreadyProcessed = errors.New("stock: already processed")
)
