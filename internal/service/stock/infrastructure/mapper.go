// internal/service/stock/infrastructure/mapper.go
package infrastructure

import (
	"bazaar/internal/service/stock/domain"
)

// ToDomainStockRecord 将数据库模型转换为领域模型
func ToDomainStockRecord(model *StockRecordModel) *domain.StockRecord {
	if model == nil {
		return nil
	}
	return &domain.StockRecord{
		ProductID:   model.ProductID,
		WarehouseID: model.WarehouseID,
		Quantity:    model.Quantity,
		Reserved:    model.Reserved,
		UpdatedAt:   model.UpdatedAt,
	}
}

// ToDomainReservation 将数据库模型转换为领域模型
func ToDomainReservation(model *ReservationModel) *domain.Reservation {
	if model == nil {
		return nil
	}
	return &domain.Reservation{
		ID:          model.ReservationID,
		OrderID:     model.OrderID,
		ProductID:   model.ProductID,
		WarehouseID: model.WarehouseID,
		Quantity:    model.Quantity,
		State:       model.State,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// FromDomainReservation 将领域模型转换为数据库模型 (用于插入或更新)
func FromDomainReservation(dmn *domain.Reservation) *ReservationModel {
	if dmn == nil {
		return nil
	}
	return &ReservationModel{
		ReservationID: dmn.ID,
		OrderID:       dmn.OrderID,
		ProductID:     dmn.ProductID,
		WarehouseID:   dmn.WarehouseID,
		Quantity:      dmn.Quantity,
		State:         dmn.State,
		CreatedAt:     dmn.CreatedAt,
		UpdatedAt:     dmn.UpdatedAt,
	}
}
