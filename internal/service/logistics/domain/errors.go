// internal/service/logistics/domain/errors.go
package domain

import "github.com/pkg/errors"

var (
	// ErrNotFound 配送单或承运商不存在
	ErrNotFound = errors.New("logistics: not found")
	// ErrInvalidTransition 非法的配送状态流转
	ErrInvalidTransition = errors.New("logistics: invalid transition")
	// ErrCarrierUnavailable 承运商不存在或当前不可用
	ErrCarrierUnavailable = errors.New("logistics: carrier unavailable")
)
