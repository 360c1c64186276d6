// internal/service/stock/domain/stock.go
package domain

import (
	"time"

	"github.com/pkg/errors"
)

// StockRecord 是某个商品在某个仓库的库存记录，是库存域的聚合根。
// AvailableQuantity 永远是推导值 (Quantity - Reserved)，不单独存储。
// 不变式: 0 <= Reserved <= Quantity。
type StockRecord struct {
	ProductID   string
	WarehouseID string
	Quantity    int64
	Reserved    int64
	UpdatedAt   time.Time
}

// Available 返回当前可售数量。
func (s *StockRecord) Available() int64 {
	return s.Quantity - s.Reserved
}

// Hold 预占 quantity 件库存。可售量不足时失败，库存本身不变。
func (s *StockRecord) Hold(quantity int64) error {
	if quantity <= 0 {
		return errors.Wrapf(ErrInvalidQuantity, "hold quantity %d", quantity)
	}
	if s.Available() < quantity {
		return errors.Wrapf(ErrInsufficientStock,
			"product %s warehouse %s: requested %d, available %d",
			s.ProductID, s.WarehouseID, quantity, s.Available())
	}
	s.Reserved += quantity
	s.UpdatedAt = time.Now()
	return nil
}

// ReleaseHold 释放 quantity 件预占，物理库存不变。
func (s *StockRecord) ReleaseHold(quantity int64) error {
	if quantity <= 0 || quantity > s.Reserved {
		return errors.Wrapf(ErrInvalidQuantity,
			"release quantity %d with reserved %d", quantity, s.Reserved)
	}
	s.Reserved -= quantity
	s.UpdatedAt = time.Now()
	return nil
}

// CommitHold 将 quantity 件预占转为实际出库: 物理库存与预占量同时扣减。
func (s *StockRecord) CommitHold(quantity int64) error {
	if quantity <= 0 || quantity > s.Reserved {
		return errors.Wrapf(ErrInvalidQuantity,
			"commit quantity %d with reserved %d", quantity, s.Reserved)
	}
	s.Quantity -= quantity
	s.Reserved -= quantity
	s.UpdatedAt = time.Now()
	return nil
}

// Adjust 将物理库存调整为 quantity，用于入库和运营修正。
// 不允许调整到低于当前预占量，否则会打破不变式。
func (s *StockRecord) Adjust(quantity int64) error {
	if quantity < s.Reserved {
		return errors.Wrapf(ErrInvalidQuantity,
			"cannot adjust quantity to %d below reserved %d", quantity, s.Reserved)
	}
	s.Quantity = quantity
	s.UpdatedAt = time.Now()
	return nil
}
