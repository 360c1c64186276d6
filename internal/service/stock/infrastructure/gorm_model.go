// internal/service/stock/infrastructure/gorm_model.go
package infrastructure

import (
	"time"

	"gorm.io/gorm"

	"bazaar/internal/service/stock/domain"
)

// StockRecordModel 对应数据库中的 stock_record 表
type StockRecordModel struct {
	gorm.Model
	ProductID   string `gorm:"uniqueIndex:idx_product_warehouse;size:64"`
	WarehouseID string `gorm:"uniqueIndex:idx_product_warehouse;size:64"`
	Quantity    int64
	Reserved    int64
}

// TableName 指定 GORM 应该使用的表名
func (StockRecordModel) TableName() string {
	return "stock_record"
}

// ReservationModel 对应数据库中的 stock_reservation 表
type ReservationModel struct {
	ReservationID string `gorm:"primaryKey;size:36"`
	OrderID       string `gorm:"index;size:36"`
	ProductID     string `gorm:"size:64"`
	WarehouseID   string `gorm:"size:64"`
	Quantity      int64
	State         domain.ReservationState `gorm:"index;size:16"`
	CreatedAt     time.Time               `gorm:"index"`
	UpdatedAt     time.Time
}

// TableName 指定 GORM 应该使用的表名
func (ReservationModel) TableName() string {
	return "stock_reservation"
}
